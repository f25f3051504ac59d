package modules

import "github.com/loomworks/tenantdb/internal/schema"

// documentsModule owns the file store metadata: folders, documents and
// shares.
func documentsModule() Module {
	return &tableModule{
		name: "documents",
		deps: []string{"identity", "organization"},
		tables: []schema.Table{
			{
				Name: "folders",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					col("parent_id", "BIGINT"),
					notNull("owner_id", "BIGINT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_folders_parent", []string{"parent_id"}, "folders", []string{"id"}, "CASCADE"),
					fk("fk_folders_owner", []string{"owner_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					index("folders", "parent_id"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("folders")},
				TenantScoped: true,
			},
			{
				Name: "documents",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					col("folder_id", "BIGINT"),
					notNull("name", "TEXT"),
					notNull("storage_key", "TEXT"),
					col("mime_type", "TEXT"),
					withDefault("size_bytes", "BIGINT", "0"),
					notNull("uploaded_by", "BIGINT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_documents_folder", []string{"folder_id"}, "folders", []string{"id"}, "SET NULL"),
					fk("fk_documents_uploader", []string{"uploaded_by"}, "users", []string{"id"}, "CASCADE"),
				},
				Migrations: []schema.ColumnMigration{
					{Column: col("checksum", "TEXT")},
					{Column: withDefault("version", "INTEGER", "1"), FillWith: "1"},
				},
				Indexes: []schema.Index{
					index("documents", "folder_id"),
					uniqueIndex("documents", "storage_key"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("documents")},
				Audited:      true,
				TenantScoped: true,
			},
			{
				Name: "document_shares",
				Columns: []schema.Column{
					pkID(),
					notNull("document_id", "BIGINT"),
					col("shared_with", "BIGINT"),
					withDefault("token", "UUID", "gen_random_uuid()"),
					withDefault("can_edit", "BOOLEAN", "false"),
					col("expires_at", "TIMESTAMPTZ"),
					withDefault("created_at", "TIMESTAMPTZ", "now()"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_document_shares_document", []string{"document_id"}, "documents", []string{"id"}, "CASCADE"),
					fk("fk_document_shares_user", []string{"shared_with"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("document_shares", "token"),
					index("document_shares", "document_id"),
				},
			},
		},
	}
}
