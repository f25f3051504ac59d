package modules

import "github.com/loomworks/tenantdb/internal/schema"

// salesModule owns the pipeline in front of clients: leads, deals and
// quotations.
func salesModule() Module {
	return &tableModule{
		name: "sales",
		deps: []string{"crm"},
		tables: []schema.Table{
			{
				Name: "leads",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					col("email", "TEXT"),
					col("phone", "TEXT"),
					col("source", "TEXT"),
					withDefault("status", "TEXT", "'new'"),
					col("owner_id", "BIGINT"),
					col("converted_client_id", "BIGINT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_leads_owner", []string{"owner_id"}, "users", []string{"id"}, "SET NULL"),
					fk("fk_leads_converted_client", []string{"converted_client_id"}, "clients", []string{"id"}, "SET NULL"),
				},
				Migrations: []schema.ColumnMigration{
					{Column: col("estimated_value", "NUMERIC(12,2)")},
				},
				Indexes: []schema.Index{
					index("leads", "status"),
					index("leads", "owner_id"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("leads")},
				TenantScoped: true,
			},
			{
				Name: "deals",
				Columns: append([]schema.Column{
					pkID(),
					notNull("client_id", "BIGINT"),
					notNull("title", "TEXT"),
					withDefault("value", "NUMERIC(12,2)", "0"),
					withDefault("stage", "TEXT", "'qualification'"),
					withDefault("probability", "INTEGER", "50"),
					col("expected_close", "DATE"),
					col("owner_id", "BIGINT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_deals_client", []string{"client_id"}, "clients", []string{"id"}, "CASCADE"),
					fk("fk_deals_owner", []string{"owner_id"}, "users", []string{"id"}, "SET NULL"),
				},
				Indexes:  []schema.Index{index("deals", "client_id", "stage")},
				Triggers: []schema.Trigger{updatedAtTrigger("deals")},
				Audited:  true,
			},
			{
				Name: "quotations",
				Columns: append([]schema.Column{
					pkID(),
					notNull("deal_id", "BIGINT"),
					notNull("quote_number", "TEXT"),
					withDefault("amount", "NUMERIC(12,2)", "0"),
					withDefault("status", "TEXT", "'draft'"),
					col("valid_until", "DATE"),
					col("terms", "TEXT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_quotations_deal", []string{"deal_id"}, "deals", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("quotations", "quote_number"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("quotations")},
			},
		},
	}
}
