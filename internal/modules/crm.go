package modules

import "github.com/loomworks/tenantdb/internal/schema"

// crmModule owns clients and their contact history.
//
// clients.account_manager_id points at employees, which belongs to
// hr_core. crm deliberately does not depend on hr_core (CRM-only
// deployments run without the HR area), so the key is declared optional:
// it is attached on the first run after hr_core's tables appear and
// skipped with a warning until then.
func crmModule() Module {
	return &tableModule{
		name: "crm",
		deps: []string{"identity", "organization"},
		tables: []schema.Table{
			{
				Name: "clients",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					col("email", "TEXT"),
					col("phone", "TEXT"),
					col("website", "TEXT"),
					col("address", "TEXT"),
					col("account_manager_id", "BIGINT"),
					withDefault("is_active", "BOOLEAN", "true"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					optionalFK("fk_clients_account_manager", []string{"account_manager_id"}, "employees", []string{"id"}, "SET NULL"),
				},
				Renames: []schema.Rename{
					{From: "phone_number", To: "phone"},
				},
				Migrations: []schema.ColumnMigration{
					{Column: col("industry", "TEXT")},
					{Column: notNull("rating", "INTEGER"), FillWith: "3"},
				},
				Indexes: []schema.Index{
					uniqueIndex("clients", "company_id", "name"),
					index("clients", "account_manager_id"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("clients")},
				Audited:      true,
				TenantScoped: true,
			},
			{
				Name: "client_contacts",
				Columns: append([]schema.Column{
					pkID(),
					notNull("client_id", "BIGINT"),
					notNull("name", "TEXT"),
					col("email", "TEXT"),
					col("phone", "TEXT"),
					col("title", "TEXT"),
					withDefault("is_primary", "BOOLEAN", "false"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_client_contacts_client", []string{"client_id"}, "clients", []string{"id"}, "CASCADE"),
				},
				Indexes:  []schema.Index{index("client_contacts", "client_id")},
				Triggers: []schema.Trigger{updatedAtTrigger("client_contacts")},
			},
			{
				Name: "client_notes",
				Columns: []schema.Column{
					pkID(),
					notNull("client_id", "BIGINT"),
					notNull("author_id", "BIGINT"),
					notNull("body", "TEXT"),
					withDefault("pinned", "BOOLEAN", "false"),
					withDefault("created_at", "TIMESTAMPTZ", "now()"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_client_notes_client", []string{"client_id"}, "clients", []string{"id"}, "CASCADE"),
					fk("fk_client_notes_author", []string{"author_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{index("client_notes", "client_id")},
			},
		},
	}
}
