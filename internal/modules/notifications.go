package modules

import "github.com/loomworks/tenantdb/internal/schema"

// notificationsModule owns user notifications and delivery preferences.
func notificationsModule() Module {
	return &tableModule{
		name: "notifications",
		deps: []string{"identity"},
		tables: []schema.Table{
			{
				Name: "notifications",
				Columns: []schema.Column{
					pkID(),
					notNull("user_id", "BIGINT"),
					notNull("kind", "TEXT"),
					notNull("title", "TEXT"),
					col("body", "TEXT"),
					col("link", "TEXT"),
					col("read_at", "TIMESTAMPTZ"),
					withDefault("created_at", "TIMESTAMPTZ", "now()"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_notifications_user", []string{"user_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					index("notifications", "user_id", "created_at"),
					{Name: "idx_notifications_unread", Columns: []string{"user_id"}, Where: "read_at IS NULL"},
				},
			},
			{
				Name: "notification_preferences",
				Columns: append([]schema.Column{
					pkID(),
					notNull("user_id", "BIGINT"),
					notNull("channel", "TEXT"),
					notNull("kind", "TEXT"),
					withDefault("enabled", "BOOLEAN", "true"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_notification_preferences_user", []string{"user_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("notification_preferences", "user_id", "channel", "kind"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("notification_preferences")},
			},
		},
	}
}
