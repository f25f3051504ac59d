package modules

import "github.com/loomworks/tenantdb/internal/schema"

// payrollModule owns salary structures and payroll execution.
func payrollModule() Module {
	return &tableModule{
		name: "payroll",
		deps: []string{"hr_core"},
		tables: []schema.Table{
			{
				Name: "salary_structures",
				Columns: append([]schema.Column{
					pkID(),
					notNull("employee_id", "BIGINT"),
					notNull("effective_from", "DATE"),
					withDefault("basic", "NUMERIC(12,2)", "0"),
					withDefault("allowances", "NUMERIC(12,2)", "0"),
					withDefault("deductions", "NUMERIC(12,2)", "0"),
					withDefault("currency", "TEXT", "'USD'"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_salary_structures_employee", []string{"employee_id"}, "employees", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("salary_structures", "employee_id", "effective_from"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("salary_structures")},
				Audited:  true,
			},
			{
				Name: "payroll_runs",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("period_start", "DATE"),
					notNull("period_end", "DATE"),
					withDefault("status", "TEXT", "'draft'"),
					col("processed_at", "TIMESTAMPTZ"),
					col("processed_by", "BIGINT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_payroll_runs_processor", []string{"processed_by"}, "users", []string{"id"}, "SET NULL"),
				},
				Indexes: []schema.Index{
					uniqueIndex("payroll_runs", "company_id", "period_start", "period_end"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("payroll_runs")},
				TenantScoped: true,
			},
			{
				Name: "payslips",
				Columns: append([]schema.Column{
					pkID(),
					notNull("payroll_run_id", "BIGINT"),
					notNull("employee_id", "BIGINT"),
					withDefault("gross", "NUMERIC(12,2)", "0"),
					withDefault("net", "NUMERIC(12,2)", "0"),
					col("breakdown", "JSONB"),
					withDefault("status", "TEXT", "'generated'"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_payslips_run", []string{"payroll_run_id"}, "payroll_runs", []string{"id"}, "CASCADE"),
					fk("fk_payslips_employee", []string{"employee_id"}, "employees", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("payslips", "payroll_run_id", "employee_id"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("payslips")},
			},
			{
				Name: "reimbursements",
				Columns: append([]schema.Column{
					pkID(),
					notNull("employee_id", "BIGINT"),
					notNull("amount", "NUMERIC(12,2)"),
					notNull("category", "TEXT"),
					col("description", "TEXT"),
					withDefault("status", "TEXT", "'submitted'"),
					col("approved_by", "BIGINT"),
					col("paid_on", "DATE"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_reimbursements_employee", []string{"employee_id"}, "employees", []string{"id"}, "CASCADE"),
					fk("fk_reimbursements_approver", []string{"approved_by"}, "employees", []string{"id"}, "SET NULL"),
				},
				Indexes:  []schema.Index{index("reimbursements", "employee_id", "status")},
				Triggers: []schema.Trigger{updatedAtTrigger("reimbursements")},
			},
		},
	}
}
