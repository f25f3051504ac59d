package modules

import "github.com/loomworks/tenantdb/internal/schema"

// billingModule owns the recurring side of finance: tax rates, credit
// notes and recurring invoice templates.
func billingModule() Module {
	return &tableModule{
		name: "billing",
		deps: []string{"finance"},
		tables: []schema.Table{
			{
				Name: "tax_rates",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					notNull("rate_pct", "NUMERIC(5,2)"),
					withDefault("is_default", "BOOLEAN", "false"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				Indexes: []schema.Index{
					uniqueIndex("tax_rates", "company_id", "name"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("tax_rates")},
				TenantScoped: true,
			},
			{
				Name: "credit_notes",
				Columns: append([]schema.Column{
					pkID(),
					notNull("invoice_id", "BIGINT"),
					notNull("credit_number", "TEXT"),
					notNull("amount", "NUMERIC(14,2)"),
					notNull("issued_on", "DATE"),
					col("reason", "TEXT"),
					withDefault("status", "TEXT", "'issued'"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_credit_notes_invoice", []string{"invoice_id"}, "invoices", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("credit_notes", "credit_number"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("credit_notes")},
				Audited:  true,
			},
			{
				Name: "recurring_invoices",
				Columns: append([]schema.Column{
					pkID(),
					notNull("client_id", "BIGINT"),
					notNull("frequency", "TEXT"),
					notNull("next_issue_on", "DATE"),
					withDefault("amount", "NUMERIC(14,2)", "0"),
					col("template", "JSONB"),
					withDefault("is_active", "BOOLEAN", "true"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_recurring_invoices_client", []string{"client_id"}, "clients", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					index("recurring_invoices", "next_issue_on"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("recurring_invoices")},
			},
		},
	}
}
