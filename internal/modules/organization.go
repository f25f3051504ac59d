package modules

import "github.com/loomworks/tenantdb/internal/schema"

// organizationModule owns the company structure: the companies row the
// discriminator column points at, departments, designations and office
// locations.
func organizationModule() Module {
	return &tableModule{
		name: "organization",
		deps: []string{"identity"},
		tables: []schema.Table{
			{
				Name: "companies",
				Columns: append([]schema.Column{
					pkID(),
					notNull("name", "TEXT"),
					col("legal_name", "TEXT"),
					col("tax_number", "TEXT"),
					col("address", "TEXT"),
					col("phone", "TEXT"),
					col("email", "TEXT"),
					withDefault("currency", "TEXT", "'USD'"),
					withDefault("timezone", "TEXT", "'UTC'"),
					withDefault("is_active", "BOOLEAN", "true"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				Migrations: []schema.ColumnMigration{
					{Column: col("logo_url", "TEXT")},
					{Column: notNull("fiscal_year_start", "INTEGER"), FillWith: "1"},
				},
				Indexes:  []schema.Index{uniqueIndex("companies", "name")},
				Triggers: []schema.Trigger{updatedAtTrigger("companies")},
				Audited:  true,
			},
			{
				Name: "departments",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					col("parent_id", "BIGINT"),
					col("head_user_id", "BIGINT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_departments_parent", []string{"parent_id"}, "departments", []string{"id"}, "SET NULL"),
					fk("fk_departments_head", []string{"head_user_id"}, "users", []string{"id"}, "SET NULL"),
				},
				Indexes: []schema.Index{
					uniqueIndex("departments", "company_id", "name"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("departments")},
				TenantScoped: true,
			},
			{
				Name: "designations",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("title", "TEXT"),
					col("grade", "TEXT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				Indexes: []schema.Index{
					uniqueIndex("designations", "company_id", "title"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("designations")},
				TenantScoped: true,
			},
			{
				Name: "office_locations",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					col("address", "TEXT"),
					col("city", "TEXT"),
					col("country", "TEXT"),
					withDefault("is_primary", "BOOLEAN", "false"),
				}, timestamps()...),
				PrimaryKey:   []string{"id"},
				Indexes:      []schema.Index{index("office_locations", "company_id")},
				Triggers:     []schema.Trigger{updatedAtTrigger("office_locations")},
				TenantScoped: true,
			},
		},
	}
}
