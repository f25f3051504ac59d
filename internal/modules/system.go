package modules

import "github.com/loomworks/tenantdb/internal/schema"

// systemModule owns the cross-cutting tables every other area leans on:
// the audit log every audited table writes into, tenant settings, and the
// per-document-type numbering sequences. It has no dependencies and runs
// first.
func systemModule() Module {
	return &tableModule{
		name: "system",
		tables: []schema.Table{
			{
				Name: "audit_logs",
				Columns: []schema.Column{
					pkID(),
					notNull("table_name", "TEXT"),
					notNull("action", "TEXT"),
					col("row_data", "JSONB"),
					col("actor_id", "BIGINT"),
					withDefault("changed_at", "TIMESTAMPTZ", "now()"),
				},
				PrimaryKey: []string{"id"},
				Indexes: []schema.Index{
					index("audit_logs", "table_name"),
					index("audit_logs", "changed_at"),
				},
			},
			{
				Name: "settings",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("key", "TEXT"),
					col("value", "TEXT"),
					withDefault("is_system", "BOOLEAN", "false"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				Indexes: []schema.Index{
					uniqueIndex("settings", "company_id", "key"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("settings")},
				TenantScoped: true,
			},
			{
				Name: "announcements",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("title", "TEXT"),
					col("body", "TEXT"),
					col("starts_on", "DATE"),
					col("ends_on", "DATE"),
					withDefault("is_published", "BOOLEAN", "false"),
				}, timestamps()...),
				PrimaryKey:   []string{"id"},
				Indexes:      []schema.Index{index("announcements", "starts_on")},
				Triggers:     []schema.Trigger{updatedAtTrigger("announcements")},
				TenantScoped: true,
			},
			{
				Name: "numbering_sequences",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("document_type", "TEXT"),
					withDefault("prefix", "TEXT", "''"),
					withDefault("next_number", "BIGINT", "1"),
					withDefault("padding", "INTEGER", "5"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				Indexes: []schema.Index{
					uniqueIndex("numbering_sequences", "company_id", "document_type"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("numbering_sequences")},
				TenantScoped: true,
			},
		},
	}
}
