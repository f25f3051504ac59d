package modules

import "github.com/loomworks/tenantdb/internal/schema"

// attendanceModule owns shifts and daily attendance capture.
//
// attendance_records originally stored clock times in a "punch_in" /
// "punch_out" pair; those columns were renamed when correction workflows
// landed.
func attendanceModule() Module {
	return &tableModule{
		name: "attendance",
		deps: []string{"hr_core"},
		tables: []schema.Table{
			{
				Name: "shifts",
				Columns: append([]schema.Column{
					pkID(),
					companyCol(),
					notNull("name", "TEXT"),
					notNull("starts_at", "TIME"),
					notNull("ends_at", "TIME"),
					withDefault("grace_minutes", "INTEGER", "0"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				Indexes: []schema.Index{
					uniqueIndex("shifts", "company_id", "name"),
				},
				Triggers:     []schema.Trigger{updatedAtTrigger("shifts")},
				TenantScoped: true,
			},
			{
				Name: "attendance_records",
				Columns: append([]schema.Column{
					pkID(),
					notNull("employee_id", "BIGINT"),
					col("shift_id", "BIGINT"),
					notNull("work_date", "DATE"),
					col("clock_in", "TIMESTAMPTZ"),
					col("clock_out", "TIMESTAMPTZ"),
					withDefault("status", "TEXT", "'present'"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_attendance_records_employee", []string{"employee_id"}, "employees", []string{"id"}, "CASCADE"),
					fk("fk_attendance_records_shift", []string{"shift_id"}, "shifts", []string{"id"}, "SET NULL"),
				},
				Renames: []schema.Rename{
					{From: "punch_in", To: "clock_in"},
					{From: "punch_out", To: "clock_out"},
				},
				Migrations: []schema.ColumnMigration{
					{Column: col("worked_minutes", "INTEGER")},
				},
				Indexes: []schema.Index{
					uniqueIndex("attendance_records", "employee_id", "work_date"),
				},
				Triggers: []schema.Trigger{updatedAtTrigger("attendance_records")},
			},
			{
				Name: "attendance_corrections",
				Columns: append([]schema.Column{
					pkID(),
					notNull("record_id", "BIGINT"),
					notNull("requested_by", "BIGINT"),
					col("approved_by", "BIGINT"),
					notNull("reason", "TEXT"),
					col("new_clock_in", "TIMESTAMPTZ"),
					col("new_clock_out", "TIMESTAMPTZ"),
					withDefault("status", "TEXT", "'pending'"),
				}, timestamps()...),
				PrimaryKey: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					fk("fk_attendance_corrections_record", []string{"record_id"}, "attendance_records", []string{"id"}, "CASCADE"),
					fk("fk_attendance_corrections_requester", []string{"requested_by"}, "employees", []string{"id"}, "CASCADE"),
					fk("fk_attendance_corrections_approver", []string{"approved_by"}, "employees", []string{"id"}, "SET NULL"),
				},
				Indexes:  []schema.Index{index("attendance_corrections", "record_id")},
				Triggers: []schema.Trigger{updatedAtTrigger("attendance_corrections")},
			},
		},
	}
}
