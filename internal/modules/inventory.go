package modules

import "github.com/loomworks/tenantdb/internal/schema"

// inventoryModule owns items and stock. stock_levels keeps
// quantity_available derived from on-hand minus reserved through the
// shared sync trigger; the column is retrofitted with a computed backfill
// on databases that predate it.
func inventoryModule() Module {
	return &tableModule{
		name: "inventory",
		deps: []string{"organization"},
		tables: []schema.Table{
			{
				Name: "item_categories",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					col("parent_id", "BIGINT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_item_categories_parent", []string{"parent_id"}, "item_categories", []string{"id"}, "SET NULL"),
				},
				Indexes: []schema.Index{
					uniqueIndex("item_categories", "company_id", "name"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("item_categories")},
				TenantScoped: true,
			},
			{
				Name: "items",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("sku", "TEXT"),
					notNull("name", "TEXT"),
					col("category_id", "BIGINT"),
					col("description", "TEXT"),
					withDefault("unit", "TEXT", "'each'"),
					withDefault("unit_price", "NUMERIC(12,2)", "0"),
					withDefault("reorder_level", "NUMERIC(12,2)", "0"),
					withDefault("is_active", "BOOLEAN", "true"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_items_category", []string{"category_id"}, "item_categories", []string{"id"}, "SET NULL"),
				},
				Migrations: []schema.ColumnMigration{
					{Column: col("barcode", "TEXT")},
					{Column: notNull("costing_method", "TEXT"), FillWith: "'fifo'"},
				},
				Indexes: []schema.Index{
					uniqueIndex("items", "company_id", "sku"),
					index("items", "category_id"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("items")},
				Audited:      true,
				TenantScoped: true,
			},
			{
				Name: "warehouses",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					col("address", "TEXT"),
					withDefault("is_default", "BOOLEAN", "false"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				Indexes: []schema.Index{
					uniqueIndex("warehouses", "company_id", "name"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("warehouses")},
				TenantScoped: true,
			},
			{
				Name: "stock_levels",
				Columns: append([]schema.Column{
					pkID(),
					notNull("item_id", "BIGINT"),
					notNull("warehouse_id", "BIGINT"),
					withDefault("quantity_on_hand", "NUMERIC(12,2)", "0"),
					withDefault("quantity_reserved", "NUMERIC(12,2)", "0"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_stock_levels_item", []string{"item_id"}, "items", []string{"id"}, "CASCADE"),
					fk("fk_stock_levels_warehouse", []string{"warehouse_id"}, "warehouses", []string{"id"}, "CASCADE"),
				},
				Migrations: []schema.ColumnMigration{
					{Column: notNull("quantity_available", "NUMERIC(12,2)"), FillWith: "COALESCE(quantity_on_hand, 0) - COALESCE(quantity_reserved, 0)"},
				},
				Indexes: []schema.Index{
					uniqueIndex("stock_levels", "item_id", "warehouse_id"),
				},
				Triggers: []schema.Trigger{
					updatedAtTrigger("stock_levels"),
					{
						Name:     "trg_stock_levels_available",
						Timing:   "BEFORE",
						Events:   []string{"INSERT", "UPDATE"},
						Function: "sync_stock_available",
					},
				},
			},
			{
				Name: "stock_movements",
				Columns: []schema.Column{
					pkID(),
					notNull("item_id", "BIGINT"),
					notNull("warehouse_id", "BIGINT"),
					notNull("movement_type", "TEXT"),
					notNull("quantity", "NUMERIC(12,2)"),
					col("reference_type", "TEXT"),
					col("reference_id", "BIGINT"),
					col("notes", "TEXT"),
					withDefault("moved_at", "TIMESTAMPTZ", "now()"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_stock_movements_item", []string{"item_id"}, "items", []string{"id"}, "CASCADE"),
					fk("fk_stock_movements_warehouse", []string{"warehouse_id"}, "warehouses", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					index("stock_movements", "item_id", "moved_at"),
				},
			},
		},
	}
}
