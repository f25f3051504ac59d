package modules

import "github.com/loomworks/tenantdb/internal/schema"

// leaveModule owns leave types, requests and per-employee balances.
func leaveModule() Module {
	return &tableModule{
		name: "leave",
		deps: []string{"hr_core"},
		tables: []schema.Table{
			{
				Name: "leave_types",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					withDefault("days_per_year", "NUMERIC(5,2)", "0"),
					withDefault("is_paid", "BOOLEAN", "true"),
					withDefault("carry_forward", "BOOLEAN", "false"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				Indexes: []schema.Index{
					uniqueIndex("leave_types", "company_id", "name"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("leave_types")},
				TenantScoped: true,
			},
			{
				Name: "leave_requests",
				Columns: append([]schema.Column{
					pkID(),
					notNull("employee_id", "BIGINT"),
					notNull("leave_type_id", "BIGINT"),
					notNull("starts_on", "DATE"),
					notNull("ends_on", "DATE"),
					withDefault("days", "NUMERIC(5,2)", "1"),
					col("reason", "TEXT"),
					withDefault("status", "TEXT", "'pending'"),
					col("approved_by", "BIGINT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_leave_requests_employee", []string{"employee_id"}, "employees", []string{"id"}, "CASCADE"),
					fk("fk_leave_requests_type", []string{"leave_type_id"}, "leave_types", []string{"id"}, "CASCADE"),
					fk("fk_leave_requests_approver", []string{"approved_by"}, "employees", []string{"id"}, "SET NULL"),
				},
				Migrations: []schema.ColumnMigration{
					{Column: col("rejection_reason", "TEXT")},
					{Column: withDefault("half_day", "BOOLEAN", "false"), FillWith: "false"},
				},
				Indexes: []schema.Index{
					index("leave_requests", "employee_id", "starts_on"),
					index("leave_requests", "status"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("leave_requests")},
				Audited:  true,
			},
			{
				Name: "leave_balances",
				Columns: append([]schema.Column{
					pkID(),
					notNull("employee_id", "BIGINT"),
					notNull("leave_type_id", "BIGINT"),
					notNull("year", "INTEGER"),
					withDefault("entitled", "NUMERIC(5,2)", "0"),
					withDefault("used", "NUMERIC(5,2)", "0"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_leave_balances_employee", []string{"employee_id"}, "employees", []string{"id"}, "CASCADE"),
					fk("fk_leave_balances_type", []string{"leave_type_id"}, "leave_types", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("leave_balances", "employee_id", "leave_type_id", "year"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("leave_balances")},
			},
		},
	}
}
