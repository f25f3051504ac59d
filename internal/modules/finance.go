package modules

import "github.com/loomworks/tenantdb/internal/schema"

// financeModule owns invoicing and payments. invoices keeps balance_due in
// sync with total and paid amounts through the shared trigger function
// installed by the bootstrapper; the column itself was added after
// invoices shipped, so it arrives as a migration with a computed backfill.
func financeModule() Module {
	return &tableModule{
		name: "finance",
		deps: []string{"crm", "projects"},
		tables: []schema.Table{
			{
				Name: "invoices",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("client_id", "BIGINT"),
					col("project_id", "BIGINT"),
					notNull("invoice_number", "TEXT"),
					notNull("issued_on", "DATE"),
					col("due_on", "DATE"),
					withDefault("total_amount", "NUMERIC(14,2)", "0"),
					withDefault("amount_paid", "NUMERIC(14,2)", "0"),
					withDefault("status", "TEXT", "'draft'"),
					withDefault("currency", "TEXT", "'USD'"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_invoices_client", []string{"client_id"}, "clients", []string{"id"}, "CASCADE"),
					fk("fk_invoices_project", []string{"project_id"}, "projects", []string{"id"}, "SET NULL"),
				},
				Migrations: []schema.ColumnMigration{
					{Column: notNull("balance_due", "NUMERIC(14,2)"), FillWith: "COALESCE(total_amount, 0) - COALESCE(amount_paid, 0)"},
					{Column: col("sent_at", "TIMESTAMPTZ")},
				},
				Indexes: []schema.Index{
					uniqueIndex("invoices", "company_id", "invoice_number"),
					index("invoices", "client_id"),
					index("invoices", "status"),
				},
				Triggers: []schema.Trigger{
					updatedAtTrigger("invoices"),
					{
						Name:     "trg_invoices_balance",
						Timing:   "BEFORE",
						Events:   []string{"INSERT", "UPDATE"},
						Function: "sync_invoice_balance",
					},
				},
				Audited:      true,
				TenantScoped: true,
			},
			{
				Name: "invoice_items",
				Columns: []schema.Column{
					pkID(),
					notNull("invoice_id", "BIGINT"),
					notNull("description", "TEXT"),
					withDefault("quantity", "NUMERIC(10,2)", "1"),
					withDefault("unit_price", "NUMERIC(12,2)", "0"),
					withDefault("tax_pct", "NUMERIC(5,2)", "0"),
					withDefault("line_total", "NUMERIC(14,2)", "0"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_invoice_items_invoice", []string{"invoice_id"}, "invoices", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{index("invoice_items", "invoice_id")},
			},
			{
				Name: "payments",
				Columns: append([]schema.Column{
					pkID(),
					notNull("invoice_id", "BIGINT"),
					notNull("amount", "NUMERIC(14,2)"),
					notNull("received_on", "DATE"),
					withDefault("method", "TEXT", "'bank_transfer'"),
					col("reference", "TEXT"),
					col("notes", "TEXT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_payments_invoice", []string{"invoice_id"}, "invoices", []string{"id"}, "CASCADE"),
				},
				Indexes:  []schema.Index{index("payments", "invoice_id")},
				Triggers: []schema.Trigger{updatedAtTrigger("payments")},
				Audited:  true,
			},
			{
				Name: "expenses",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					col("project_id", "BIGINT"),
					notNull("category", "TEXT"),
					notNull("amount", "NUMERIC(12,2)"),
					notNull("incurred_on", "DATE"),
					col("description", "TEXT"),
					col("receipt_url", "TEXT"),
					withDefault("billable", "BOOLEAN", "false"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_expenses_project", []string{"project_id"}, "projects", []string{"id"}, "SET NULL"),
				},
				Indexes:      []schema.Index{index("expenses", "project_id")},
				Triggers:     []schema.Trigger{updatedAtTrigger("expenses")},
				TenantScoped: true,
			},
		},
	}
}
