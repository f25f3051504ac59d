// Package schema defines the declarative table specifications the
// reconciliation engine converges tenant databases toward, together with
// the PostgreSQL DDL rendering for each specification element.
package schema

import (
	"fmt"
	"strings"
)

// Table describes the desired shape of one table. A module owns a set of
// tables and hands each one to the migrator, which applies the differences
// between the live catalog and this specification.
type Table struct {
	// Name is the table name in the public schema.
	Name string

	// Columns is the full desired column set, in creation order.
	Columns []Column

	// PrimaryKey lists the primary key columns.
	PrimaryKey []string

	// ForeignKeys lists referential constraints. Required keys are part of
	// the initial CREATE TABLE; optional keys are retried on every run and
	// skipped while their target table does not exist yet.
	ForeignKeys []ForeignKey

	// Indexes lists secondary indexes created after the table exists.
	Indexes []Index

	// Triggers lists bindings to shared functions installed by the
	// capability bootstrapper. Triggers are dropped and recreated on every
	// run since their definitions carry no version of their own.
	Triggers []Trigger

	// Renames lists legacy column renames, applied before column
	// migrations so a migration never re-adds a column that merely moved.
	Renames []Rename

	// Migrations lists columns that have to be added to a pre-existing
	// table, optionally with a backfill for rows that predate the column.
	Migrations []ColumnMigration

	// Audited attaches the generic audit trigger to the table.
	Audited bool

	// TenantScoped marks tables that must carry the company discriminator
	// column; the backward-compatibility pass re-checks these.
	TenantScoped bool
}

// Column describes one column.
type Column struct {
	Name    string
	Type    string
	NotNull bool
	// Default is a raw SQL expression, empty for no default.
	Default string
}

// ForeignKey describes a named referential constraint.
type ForeignKey struct {
	Name       string
	Columns    []string
	RefTable   string
	RefColumns []string
	// OnDelete is the referential action, e.g. "CASCADE" or "SET NULL".
	// Empty means NO ACTION.
	OnDelete string
	// Optional keys point at tables owned by modules that may not have run
	// yet. They are created only once the target table exists and their
	// absence is a warning, not a failure.
	Optional bool
}

// Index describes a secondary index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
	// Where makes the index partial when non-empty.
	Where string
}

// Trigger binds a shared function to a table event.
type Trigger struct {
	Name string
	// Timing is BEFORE or AFTER.
	Timing string
	// Events lists INSERT, UPDATE, DELETE.
	Events []string
	// Function is the name of the shared function to execute, without
	// parentheses.
	Function string
}

// Rename moves a legacy column to its current name, preserving data. It is
// applied only when From exists and To does not.
type Rename struct {
	From string
	To   string
}

// ColumnMigration adds a column to a table that may already exist. When a
// backfill source is set, existing rows are populated before any NOT NULL
// constraint from Column is enforced, and the constraint is only tightened
// once no NULLs remain.
type ColumnMigration struct {
	Column Column

	// CopyFrom backfills the new column from another column of the same
	// table. Mutually exclusive with FillWith.
	CopyFrom string

	// FillWith backfills the new column with a constant SQL expression.
	FillWith string
}

// Validate reports structural defects in the specification itself. These
// are programming errors, caught before any SQL is issued.
func (t Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table with empty name")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s: no columns", t.Name)
	}
	cols := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" || c.Type == "" {
			return fmt.Errorf("table %s: column with empty name or type", t.Name)
		}
		if cols[c.Name] {
			return fmt.Errorf("table %s: duplicate column %s", t.Name, c.Name)
		}
		cols[c.Name] = true
	}
	for _, m := range t.Migrations {
		cols[m.Column.Name] = true
	}
	for _, r := range t.Renames {
		if !cols[r.To] {
			return fmt.Errorf("table %s: rename target %s is not a declared column", t.Name, r.To)
		}
	}
	for _, pk := range t.PrimaryKey {
		if !cols[pk] {
			return fmt.Errorf("table %s: primary key column %s not declared", t.Name, pk)
		}
	}
	for _, fk := range t.ForeignKeys {
		if fk.Name == "" {
			return fmt.Errorf("table %s: foreign key without a name", t.Name)
		}
		if len(fk.Columns) == 0 || len(fk.Columns) != len(fk.RefColumns) {
			return fmt.Errorf("table %s: foreign key %s has mismatched column lists", t.Name, fk.Name)
		}
		for _, c := range fk.Columns {
			if !cols[c] {
				return fmt.Errorf("table %s: foreign key %s uses undeclared column %s", t.Name, fk.Name, c)
			}
		}
	}
	for _, ix := range t.Indexes {
		if ix.Name == "" {
			return fmt.Errorf("table %s: index without a name", t.Name)
		}
		for _, c := range ix.Columns {
			if !cols[c] {
				return fmt.Errorf("table %s: index %s uses undeclared column %s", t.Name, ix.Name, c)
			}
		}
	}
	for _, tr := range t.Triggers {
		if tr.Name == "" || tr.Function == "" {
			return fmt.Errorf("table %s: trigger with empty name or function", t.Name)
		}
		if tr.Timing != "BEFORE" && tr.Timing != "AFTER" {
			return fmt.Errorf("table %s: trigger %s has invalid timing %q", t.Name, tr.Name, tr.Timing)
		}
	}
	for _, m := range t.Migrations {
		if m.CopyFrom != "" && m.FillWith != "" {
			return fmt.Errorf("table %s: migration for %s sets both CopyFrom and FillWith", t.Name, m.Column.Name)
		}
		if m.Column.NotNull && m.Column.Default == "" && m.CopyFrom == "" && m.FillWith == "" {
			return fmt.Errorf("table %s: migration for %s is NOT NULL without a default or backfill", t.Name, m.Column.Name)
		}
	}
	return nil
}

// TenantDiscriminatorColumn is the multi-company discriminator every
// tenant-scoped table must carry. Early releases shipped tables without
// it; the migration rule below retrofits them.
const TenantDiscriminatorColumn = "company_id"

// TenantDiscriminator returns the canonical migration rule for the
// discriminator column. Modules apply it to their tenant-scoped tables and
// the backward-compatibility pass re-applies it across the board, so a
// table created by an older module build still converges.
func TenantDiscriminator() ColumnMigration {
	return ColumnMigration{
		Column: Column{
			Name:    TenantDiscriminatorColumn,
			Type:    "BIGINT",
			NotNull: true,
			Default: "1",
		},
		FillWith: "1",
	}
}

// HasColumn reports whether the specification declares the named column,
// either in the base column set or through a migration.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	for _, m := range t.Migrations {
		if m.Column.Name == name {
			return true
		}
	}
	return false
}

// ReferencedTables returns the distinct target tables of all foreign keys,
// optionally including the deferred ones.
func (t Table) ReferencedTables(includeOptional bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, fk := range t.ForeignKeys {
		if fk.Optional && !includeOptional {
			continue
		}
		if fk.RefTable == t.Name || seen[fk.RefTable] {
			continue
		}
		seen[fk.RefTable] = true
		out = append(out, fk.RefTable)
	}
	return out
}

func (c Column) definition() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" ")
	b.WriteString(c.Type)
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}
