package modules

import "github.com/loomworks/tenantdb/internal/schema"

// procurementModule owns vendors and purchase orders.
func procurementModule() Module {
	return &tableModule{
		name: "procurement",
		deps: []string{"inventory"},
		tables: []schema.Table{
			{
				Name: "vendors",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					col("email", "TEXT"),
					col("phone", "TEXT"),
					col("address", "TEXT"),
					col("tax_number", "TEXT"),
					withDefault("is_active", "BOOLEAN", "true"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				Migrations: []schema.ColumnMigration{
					{Column: col("payment_terms", "TEXT")},
				},
				Indexes: []schema.Index{
					uniqueIndex("vendors", "company_id", "name"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("vendors")},
				Audited:      true,
				TenantScoped: true,
			},
			{
				Name: "purchase_orders",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("vendor_id", "BIGINT"),
					notNull("po_number", "TEXT"),
					notNull("ordered_on", "DATE"),
					col("expected_on", "DATE"),
					withDefault("status", "TEXT", "'draft'"),
					withDefault("total_amount", "NUMERIC(14,2)", "0"),
					col("warehouse_id", "BIGINT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_purchase_orders_vendor", []string{"vendor_id"}, "vendors", []string{"id"}, "CASCADE"),
					fk("fk_purchase_orders_warehouse", []string{"warehouse_id"}, "warehouses", []string{"id"}, "SET NULL"),
				},
				Indexes: []schema.Index{
					uniqueIndex("purchase_orders", "company_id", "po_number"),
					index("purchase_orders", "vendor_id"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("purchase_orders")},
				Audited:      true,
				TenantScoped: true,
			},
			{
				Name: "purchase_order_items",
				Columns: []schema.Column{
					pkID(),
					notNull("purchase_order_id", "BIGINT"),
					notNull("item_id", "BIGINT"),
					withDefault("quantity", "NUMERIC(12,2)", "1"),
					withDefault("unit_cost", "NUMERIC(12,2)", "0"),
					withDefault("received_quantity", "NUMERIC(12,2)", "0"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_po_items_po", []string{"purchase_order_id"}, "purchase_orders", []string{"id"}, "CASCADE"),
					fk("fk_po_items_item", []string{"item_id"}, "items", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{index("purchase_order_items", "purchase_order_id")},
			},
			{
				Name: "goods_receipts",
				Columns: append([]schema.Column{
					pkID(),
					notNull("purchase_order_id", "BIGINT"),
					notNull("received_on", "DATE"),
					col("received_by", "BIGINT"),
					col("notes", "TEXT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_goods_receipts_po", []string{"purchase_order_id"}, "purchase_orders", []string{"id"}, "CASCADE"),
					fk("fk_goods_receipts_receiver", []string{"received_by"}, "users", []string{"id"}, "SET NULL"),
				},
				Indexes:  []schema.Index{index("goods_receipts", "purchase_order_id")},
				Triggers: []schema.Trigger{updatedAtTrigger("goods_receipts")},
			},
		},
	}
}
