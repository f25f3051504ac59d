package modules

import "github.com/loomworks/tenantdb/internal/schema"

// hrCoreModule owns the employee master data. Every HR satellite module
// (attendance, leave, payroll) hangs off employees.
func hrCoreModule() Module {
	return &tableModule{
		name: "hr_core",
		deps: []string{"identity", "organization"},
		tables: []schema.Table{
			{
				Name: "employees",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("user_id", "BIGINT"),
					notNull("employee_code", "TEXT"),
					col("department_id", "BIGINT"),
					col("designation_id", "BIGINT"),
					col("manager_id", "BIGINT"),
					col("date_of_birth", "DATE"),
					col("joined_on", "DATE"),
					col("left_on", "DATE"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_employees_user", []string{"user_id"}, "users", []string{"id"}, "CASCADE"),
					fk("fk_employees_department", []string{"department_id"}, "departments", []string{"id"}, "SET NULL"),
					fk("fk_employees_designation", []string{"designation_id"}, "designations", []string{"id"}, "SET NULL"),
					fk("fk_employees_manager", []string{"manager_id"}, "employees", []string{"id"}, "SET NULL"),
				},
				Migrations: []schema.ColumnMigration{
					{Column: notNull("status", "TEXT"), FillWith: "'active'"},
					{Column: col("work_location_id", "BIGINT")},
					{Column: col("contract_type", "TEXT")},
				},
				Indexes: []schema.Index{
					uniqueIndex("employees", "company_id", "employee_code"),
					index("employees", "user_id"),
					index("employees", "department_id"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("employees")},
				Audited:      true,
				TenantScoped: true,
			},
			{
				Name: "emergency_contacts",
				Columns: append([]schema.Column{
					pkID(),
					notNull("employee_id", "BIGINT"),
					notNull("name", "TEXT"),
					notNull("phone", "TEXT"),
					col("relationship", "TEXT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_emergency_contacts_employee", []string{"employee_id"}, "employees", []string{"id"}, "CASCADE"),
				},
				Indexes:  []schema.Index{index("emergency_contacts", "employee_id")},
				Triggers: []schema.Trigger{updatedAtTrigger("emergency_contacts")},
			},
			{
				Name: "employment_history",
				Columns: []schema.Column{
					pkID(),
					notNull("employee_id", "BIGINT"),
					notNull("event", "TEXT"),
					col("department_id", "BIGINT"),
					col("designation_id", "BIGINT"),
					notNull("effective_on", "DATE"),
					col("notes", "TEXT"),
					withDefault("created_at", "TIMESTAMPTZ", "now()"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_employment_history_employee", []string{"employee_id"}, "employees", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{index("employment_history", "employee_id", "effective_on")},
			},
		},
	}
}
