package modules

import "github.com/loomworks/tenantdb/internal/schema"

// reportingModule owns saved report definitions and their schedules.
func reportingModule() Module {
	return &tableModule{
		name: "reporting",
		deps: []string{"identity"},
		tables: []schema.Table{
			{
				Name: "report_definitions",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					notNull("report_type", "TEXT"),
					col("query_config", "JSONB"),
					notNull("created_by", "BIGINT"),
					withDefault("is_shared", "BOOLEAN", "false"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_report_definitions_creator", []string{"created_by"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("report_definitions", "company_id", "name"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("report_definitions")},
				TenantScoped: true,
			},
			{
				Name: "report_schedules",
				Columns: append([]schema.Column{
					pkID(),
					notNull("report_id", "BIGINT"),
					notNull("frequency", "TEXT"),
					notNull("recipients", "TEXT"),
					col("last_run_at", "TIMESTAMPTZ"),
					col("next_run_at", "TIMESTAMPTZ"),
					withDefault("is_active", "BOOLEAN", "true"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_report_schedules_report", []string{"report_id"}, "report_definitions", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					index("report_schedules", "next_run_at"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("report_schedules")},
			},
			{
				Name: "saved_filters",
				Columns: append([]schema.Column{
					pkID(),
					notNull("user_id", "BIGINT"),
					notNull("scope", "TEXT"),
					notNull("name", "TEXT"),
					col("filter_config", "JSONB"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_saved_filters_user", []string{"user_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("saved_filters", "user_id", "scope", "name"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("saved_filters")},
			},
		},
	}
}
