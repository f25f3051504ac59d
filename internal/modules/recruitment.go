package modules

import "github.com/loomworks/tenantdb/internal/schema"

// recruitmentModule owns hiring: openings, candidates and interviews.
func recruitmentModule() Module {
	return &tableModule{
		name: "recruitment",
		deps: []string{"organization"},
		tables: []schema.Table{
			{
				Name: "job_openings",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("title", "TEXT"),
					col("department_id", "BIGINT"),
					col("description", "TEXT"),
					withDefault("headcount", "INTEGER", "1"),
					withDefault("status", "TEXT", "'open'"),
					col("closes_on", "DATE"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_job_openings_department", []string{"department_id"}, "departments", []string{"id"}, "SET NULL"),
				},
				Indexes:      []schema.Index{index("job_openings", "status")},
				Triggers:     []schema.Trigger{updatedAtTrigger("job_openings")},
				TenantScoped: true,
			},
			{
				Name: "candidates",
				Columns: append([]schema.Column{
					pkID(),
					notNull("job_opening_id", "BIGINT"),
					notNull("name", "TEXT"),
					notNull("email", "TEXT"),
					col("phone", "TEXT"),
					col("resume_url", "TEXT"),
					withDefault("stage", "TEXT", "'applied'"),
					col("source", "TEXT"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_candidates_opening", []string{"job_opening_id"}, "job_openings", []string{"id"}, "CASCADE"),
				},
				Migrations: []schema.ColumnMigration{
					{Column: col("expected_salary", "NUMERIC(12,2)")},
					{Column: col("rejected_reason", "TEXT")},
				},
				Indexes: []schema.Index{
					uniqueIndex("candidates", "job_opening_id", "email"),
					index("candidates", "stage"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("candidates")},
			},
			{
				Name: "interviews",
				Columns: append([]schema.Column{
					pkID(),
					notNull("candidate_id", "BIGINT"),
					notNull("scheduled_at", "TIMESTAMPTZ"),
					col("interviewer_id", "BIGINT"),
					withDefault("round", "INTEGER", "1"),
					col("feedback", "TEXT"),
					col("score", "INTEGER"),
					withDefault("status", "TEXT", "'scheduled'"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_interviews_candidate", []string{"candidate_id"}, "candidates", []string{"id"}, "CASCADE"),
					fk("fk_interviews_interviewer", []string{"interviewer_id"}, "users", []string{"id"}, "SET NULL"),
				},
				Indexes:  []schema.Index{index("interviews", "candidate_id", "round")},
				Triggers: []schema.Trigger{updatedAtTrigger("interviews")},
			},
		},
	}
}
