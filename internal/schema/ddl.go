package schema

// ddl.go - PostgreSQL DDL rendering for table specifications

import (
	"fmt"
	"strings"
)

// CreateTableSQL renders the CREATE TABLE IF NOT EXISTS statement for the
// full desired column set, primary key and required foreign keys. Optional
// foreign keys are deliberately left out; the migrator retries those
// separately once their target exists.
func (t Table) CreateTableSQL() string {
	var parts []string
	for _, c := range t.Columns {
		parts = append(parts, "\t"+c.definition())
	}
	if len(t.PrimaryKey) > 0 {
		parts = append(parts, fmt.Sprintf("\tPRIMARY KEY (%s)", strings.Join(t.PrimaryKey, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		if fk.Optional {
			continue
		}
		parts = append(parts, "\t"+fk.definition())
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", t.Name, strings.Join(parts, ",\n"))
}

func (fk ForeignKey) definition() string {
	def := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		fk.Name,
		strings.Join(fk.Columns, ", "),
		fk.RefTable,
		strings.Join(fk.RefColumns, ", "))
	if fk.OnDelete != "" {
		def += " ON DELETE " + fk.OnDelete
	}
	return def
}

// AddForeignKeySQL renders the ALTER TABLE statement that attaches a
// deferred foreign key to an existing table.
func (t Table) AddForeignKeySQL(fk ForeignKey) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", t.Name, fk.definition())
}

// AddColumnSQL renders the ALTER TABLE statement adding a migrated column.
// The column is always added nullable first; NOT NULL is tightened in a
// separate step once the backfill is confirmed complete.
func AddColumnSQL(table string, c Column) string {
	loose := c
	loose.NotNull = false
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, loose.definition())
}

// SetNotNullSQL renders the constraint-tightening statement for a
// backfilled column.
func SetNotNullSQL(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, column)
}

// RenameColumnSQL renders the data-preserving rename of a legacy column.
func RenameColumnSQL(table string, r Rename) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", table, r.From, r.To)
}

// BackfillSQL renders the idempotent backfill statement for a column
// migration, or an empty string when the migration declares no backfill.
// Only rows still holding NULL are touched, so re-running after a partial
// failure or a crash picks up where the previous run stopped.
func BackfillSQL(table string, m ColumnMigration) string {
	switch {
	case m.CopyFrom != "":
		return fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s IS NULL",
			table, m.Column.Name, m.CopyFrom, m.Column.Name)
	case m.FillWith != "":
		return fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s IS NULL",
			table, m.Column.Name, m.FillWith, m.Column.Name)
	default:
		return ""
	}
}

// CreateIndexSQL renders the idempotent index creation statement.
func (t Table) CreateIndexSQL(ix Index) string {
	unique := ""
	if ix.Unique {
		unique = "UNIQUE "
	}
	sql := fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		unique, ix.Name, t.Name, strings.Join(ix.Columns, ", "))
	if ix.Where != "" {
		sql += " WHERE " + ix.Where
	}
	return sql
}

// DropTriggerSQL renders the statement removing a trigger binding before
// it is recreated.
func (t Table) DropTriggerSQL(tr Trigger) string {
	return fmt.Sprintf("DROP TRIGGER IF EXISTS %s ON %s", tr.Name, t.Name)
}

// CreateTriggerSQL renders the trigger binding statement.
func (t Table) CreateTriggerSQL(tr Trigger) string {
	return fmt.Sprintf("CREATE TRIGGER %s %s %s ON %s FOR EACH ROW EXECUTE FUNCTION %s()",
		tr.Name, tr.Timing, strings.Join(tr.Events, " OR "), t.Name, tr.Function)
}

// AuditTrigger is the binding attached to every audited table. The
// function itself is installed by the capability bootstrapper.
func (t Table) AuditTrigger() Trigger {
	return Trigger{
		Name:     "trg_audit_" + t.Name,
		Timing:   "AFTER",
		Events:   []string{"INSERT", "UPDATE", "DELETE"},
		Function: "log_audit_event",
	}
}
