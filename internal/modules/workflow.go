package modules

import (
	"context"

	"github.com/loomworks/tenantdb/internal/migrate"
	"github.com/loomworks/tenantdb/internal/schema"
)

// workflowModule owns tasks and approvals.
//
// tasks.position is the board ordering introduced after tasks already held
// data in production. The post step assigns ordinals per project with one
// bulk statement; the row_number ordering is stable (created_at, id), so
// re-running it rewrites nothing once positions match.
func workflowModule() Module {
	return &tableModule{
		name: "workflow",
		deps: []string{"projects"},
		tables: []schema.Table{
			{
				Name: "tasks",
				Columns: append([]schema.Column{
					pkID(),
					notNull("project_id", "BIGINT"),
					col("milestone_id", "BIGINT"),
					notNull("title", "TEXT"),
					col("description", "TEXT"),
					withDefault("status", "TEXT", "'open'"),
					withDefault("priority", "TEXT", "'normal'"),
					col("due_on", "DATE"),
					col("estimate_hours", "NUMERIC(6,2)"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_tasks_project", []string{"project_id"}, "projects", []string{"id"}, "CASCADE"),
					fk("fk_tasks_milestone", []string{"milestone_id"}, "milestones", []string{"id"}, "SET NULL"),
				},
				Migrations: []schema.ColumnMigration{
					{Column: col("position", "INTEGER")},
					{Column: col("completed_at", "TIMESTAMPTZ")},
				},
				Indexes: []schema.Index{
					index("tasks", "project_id", "status"),
					index("tasks", "project_id", "position"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("tasks")},
				Audited:  true,
			},
			{
				Name: "task_assignees",
				Columns: []schema.Column{
					pkID(),
					notNull("task_id", "BIGINT"),
					notNull("user_id", "BIGINT"),
					withDefault("assigned_at", "TIMESTAMPTZ", "now()"),
				},
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_task_assignees_task", []string{"task_id"}, "tasks", []string{"id"}, "CASCADE"),
					fk("fk_task_assignees_user", []string{"user_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes: []schema.Index{
					uniqueIndex("task_assignees", "task_id", "user_id"),
				},
			},
			{
				Name: "task_comments",
				Columns: append([]schema.Column{
					pkID(),
					notNull("task_id", "BIGINT"),
					notNull("author_id", "BIGINT"),
					notNull("body", "TEXT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_task_comments_task", []string{"task_id"}, "tasks", []string{"id"}, "CASCADE"),
					fk("fk_task_comments_author", []string{"author_id"}, "users", []string{"id"}, "CASCADE"),
				},
				Indexes:  []schema.Index{index("task_comments", "task_id")},
				Triggers: []schema.Trigger{updatedAtTrigger("task_comments")},
			},
			{
				Name: "approvals",
				Columns: append([]schema.Column{
					pkID(),
					notNull("subject_type", "TEXT"),
					notNull("subject_id", "BIGINT"),
					notNull("requested_by", "BIGINT"),
					col("approver_id", "BIGINT"),
					withDefault("status", "TEXT", "'pending'"),
					col("decided_at", "TIMESTAMPTZ"),
					col("comment", "TEXT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_approvals_requester", []string{"requested_by"}, "users", []string{"id"}, "CASCADE"),
					fk("fk_approvals_approver", []string{"approver_id"}, "users", []string{"id"}, "SET NULL"),
				},
				Indexes: []schema.Index{
					index("approvals", "subject_type", "subject_id"),
					index("approvals", "status"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("approvals")},
			},
		},
		post: backfillTaskPositions,
	}
}

// backfillTaskPositions assigns board ordinals grouped by project in a
// single bulk statement. Rows are numbered in (created_at, id) order and
// only rows whose position disagrees are written, so the statement is a
// no-op on a converged table.
func backfillTaskPositions(ctx context.Context, mig *migrate.Migrator) ([]string, error) {
	const stmt = `
		UPDATE tasks SET position = numbered.rn
		FROM (
			SELECT id, ROW_NUMBER() OVER (
				PARTITION BY project_id ORDER BY created_at, id
			) AS rn
			FROM tasks
		) numbered
		WHERE tasks.id = numbered.id
		AND tasks.position IS DISTINCT FROM numbered.rn`
	if err := mig.Exec(ctx, stmt); err != nil {
		return []string{"task position backfill failed: " + err.Error()}, nil
	}
	return nil, nil
}
