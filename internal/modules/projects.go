package modules

import "github.com/loomworks/tenantdb/internal/schema"

// projectsModule owns project tracking. projects.client_id is a required
// key into crm's clients table, which is why crm is a declared dependency;
// the manager link into hr_core stays optional for the same reason as in
// crm.
func projectsModule() Module {
	return &tableModule{
		name: "projects",
		deps: []string{"organization", "crm"},
		tables: []schema.Table{
			{
				Name: "projects",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					notNull("client_id", "BIGINT"),
					col("code", "TEXT"),
					col("description", "TEXT"),
					withDefault("status", "TEXT", "'planned'"),
					col("manager_id", "BIGINT"),
					col("starts_on", "DATE"),
					col("ends_on", "DATE"),
					withDefault("budget", "NUMERIC(14,2)", "0"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_projects_client", []string{"client_id"}, "clients", []string{"id"}, "CASCADE"),
					optionalFK("fk_projects_manager", []string{"manager_id"}, "employees", []string{"id"}, "SET NULL"),
				},
				Migrations: []schema.ColumnMigration{
					{Column: notNull("billing_type", "TEXT"), FillWith: "'fixed'"},
					{Column: col("completed_at", "TIMESTAMPTZ")},
				},
				Indexes: []schema.Index{
					uniqueIndex("projects", "company_id", "name"),
					index("projects", "client_id"),
					index("projects", "status"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("projects")},
				Audited:      true,
				TenantScoped: true,
			},
			{
				Name: "project_members",
				Columns: append([]schema.Column{
					pkID(),
					notNull("project_id", "BIGINT"),
					notNull("user_id", "BIGINT"),
					withDefault("role", "TEXT", "'member'"),
					withDefault("allocation_pct", "INTEGER", "100"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_project_members_project", []string{"project_id"}, "projects", []string{"id"}, "CASCADE"),
					fk("fk_project_members_user", []string{"user_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("project_members", "project_id", "user_id"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("project_members")},
			},
			{
				Name: "milestones",
				Columns: append([]schema.Column{
					pkID(),
					notNull("project_id", "BIGINT"),
					notNull("title", "TEXT"),
					col("due_on", "DATE"),
					withDefault("status", "TEXT", "'open'"),
					withDefault("billable_amount", "NUMERIC(12,2)", "0"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_milestones_project", []string{"project_id"}, "projects", []string{"id"}, "CASCADE"),
				},
				Indexes:  []schema.Index{index("milestones", "project_id", "due_on")},
				Triggers: []schema.Trigger{updatedAtTrigger("milestones")},
			},
		},
	}
}
