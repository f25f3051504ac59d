package modules

import "github.com/loomworks/tenantdb/internal/schema"

// identityModule owns authentication: accounts, sessions, password resets
// and API tokens. The role column uses the enum installed by the
// capability bootstrapper.
//
// users carried a single "name" column in early releases; it is renamed to
// full_name with data preserved.
func identityModule() Module {
	return &tableModule{
		name: "identity",
		deps: []string{"system"},
		tables: []schema.Table{
			{
				Name: "users",
				Columns: append([]schema.Column{
					pkID(),
					notNull("email", "TEXT"),
					notNull("password_hash", "TEXT"),
					col("full_name", "TEXT"),
					withDefault("role", "user_role", "'employee'"),
					withDefault("is_active", "BOOLEAN", "true"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				Renames: []schema.Rename{
					{From: "name", To: "full_name"},
				},
				Migrations: []schema.ColumnMigration{
					{Column: col("last_login_at", "TIMESTAMPTZ")},
					{Column: notNull("locale", "TEXT"), FillWith: "'en'"},
					{Column: col("avatar_url", "TEXT")},
				},
				Indexes: []schema.Index{
					uniqueIndex("users", "email"),
					index("users", "role"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("users")},
				Audited:  true,
			},
			{
				Name: "user_sessions",
				Columns: []schema.Column{
					pkID(),
					notNull("user_id", "BIGINT"),
					withDefault("token", "UUID", "gen_random_uuid()"),
					col("ip_address", "INET"),
					col("user_agent", "TEXT"),
					notNull("expires_at", "TIMESTAMPTZ"),
					withDefault("created_at", "TIMESTAMPTZ", "now()"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_user_sessions_user", []string{"user_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("user_sessions", "token"),
					index("user_sessions", "user_id"),
				},
			},
			{
				Name: "password_resets",
				Columns: []schema.Column{
					pkID(),
					notNull("user_id", "BIGINT"),
					withDefault("token", "UUID", "gen_random_uuid()"),
					notNull("expires_at", "TIMESTAMPTZ"),
					withDefault("used", "BOOLEAN", "false"),
					withDefault("created_at", "TIMESTAMPTZ", "now()"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_password_resets_user", []string{"user_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{index("password_resets", "user_id")},
			},
			{
				Name: "api_tokens",
				Columns: append([]schema.Column{
					pkID(),
					notNull("user_id", "BIGINT"),
					notNull("name", "TEXT"),
					withDefault("token", "UUID", "gen_random_uuid()"),
					col("last_used_at", "TIMESTAMPTZ"),
					col("expires_at", "TIMESTAMPTZ"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_api_tokens_user", []string{"user_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("api_tokens", "token"),
					index("api_tokens", "user_id"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("api_tokens")},
			},
		},
	}
}
