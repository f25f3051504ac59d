package modules

import "github.com/loomworks/tenantdb/internal/schema"

// messagingModule owns in-app conversations.
func messagingModule() Module {
	return &tableModule{
		name: "messaging",
		deps: []string{"identity"},
		tables: []schema.Table{
			{
				Name: "conversations",
				Columns: append([]schema.Column{
					pkID(),
					col("subject", "TEXT"),
					withDefault("is_group", "BOOLEAN", "false"),
					notNull("created_by", "BIGINT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_conversations_creator", []string{"created_by"}, "users", []string{"id"}, "CASCADE"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("conversations")},
			},
			{
				Name: "conversation_participants",
				Columns: []schema.Column{
					pkID(),
					notNull("conversation_id", "BIGINT"),
					notNull("user_id", "BIGINT"),
					withDefault("joined_at", "TIMESTAMPTZ", "now()"),
					col("last_read_at", "TIMESTAMPTZ"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_conversation_participants_conversation", []string{"conversation_id"}, "conversations", []string{"id"}, "CASCADE"),
					fk("fk_conversation_participants_user", []string{"user_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("conversation_participants", "conversation_id", "user_id"),
				},
			},
			{
				Name: "messages",
				Columns: []schema.Column{
					pkID(),
					notNull("conversation_id", "BIGINT"),
					notNull("sender_id", "BIGINT"),
					notNull("body", "TEXT"),
					col("attachment_url", "TEXT"),
					withDefault("sent_at", "TIMESTAMPTZ", "now()"),
					col("edited_at", "TIMESTAMPTZ"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_messages_conversation", []string{"conversation_id"}, "conversations", []string{"id"}, "CASCADE"),
					fk("fk_messages_sender", []string{"sender_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Migrations: []schema.ColumnMigration{
					{Column: withDefault("is_system", "BOOLEAN", "false"), FillWith: "false"},
				},
				Indexes: []schema.Index{
					index("messages", "conversation_id", "sent_at"),
				},
			},
		},
	}
}
