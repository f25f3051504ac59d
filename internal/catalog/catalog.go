// Package catalog reads PostgreSQL system catalogs to answer existence and
// shape questions about a live tenant database. Every migration decision
// the engine makes starts from an introspection here rather than from
// error-code probing.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the slice of database/sql the engine needs. It is satisfied by
// *sql.DB and *sql.Tx; the caller owns the connection's lifecycle.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Column holds the catalog view of one column.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Position int
}

// Catalog answers introspection queries against one database.
type Catalog struct {
	db DBTX
}

// New returns a Catalog reading from db.
func New(db DBTX) *Catalog {
	return &Catalog{db: db}
}

// TableExists reports whether a base table with the given name exists in
// the public schema.
func (c *Catalog) TableExists(ctx context.Context, table string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_type = 'BASE TABLE'
			AND table_name = $1
		)`
	var exists bool
	if err := c.db.QueryRowContext(ctx, query, table).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking table %s: %w", table, err)
	}
	return exists, nil
}

// ColumnExists reports whether the table has a column with the given name.
func (c *Catalog) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)`
	var exists bool
	if err := c.db.QueryRowContext(ctx, query, table, column).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	return exists, nil
}

// Columns returns the table's columns in ordinal position order.
func (c *Catalog) Columns(ctx context.Context, table string) ([]Column, error) {
	const query = `
		SELECT column_name, data_type, is_nullable, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`
	rows, err := c.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("scanning column of %s: %w", table, err)
		}
		col.Nullable = nullable == "YES"
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// IndexExists reports whether an index with the given name exists in the
// public schema.
func (c *Catalog) IndexExists(ctx context.Context, index string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE schemaname = 'public' AND indexname = $1
		)`
	var exists bool
	if err := c.db.QueryRowContext(ctx, query, index).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking index %s: %w", index, err)
	}
	return exists, nil
}

// TriggerExists reports whether the table carries a trigger with the given
// name. Internal constraint triggers are ignored.
func (c *Catalog) TriggerExists(ctx context.Context, table, trigger string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM pg_trigger t
			JOIN pg_class cl ON t.tgrelid = cl.oid
			JOIN pg_namespace n ON cl.relnamespace = n.oid
			WHERE NOT t.tgisinternal
			AND n.nspname = 'public'
			AND cl.relname = $1
			AND t.tgname = $2
		)`
	var exists bool
	if err := c.db.QueryRowContext(ctx, query, table, trigger).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking trigger %s on %s: %w", trigger, table, err)
	}
	return exists, nil
}

// ConstraintExists reports whether the table carries a constraint with the
// given name.
func (c *Catalog) ConstraintExists(ctx context.Context, table, constraint string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM pg_constraint con
			JOIN pg_class cl ON con.conrelid = cl.oid
			JOIN pg_namespace n ON cl.relnamespace = n.oid
			WHERE n.nspname = 'public'
			AND cl.relname = $1
			AND con.conname = $2
		)`
	var exists bool
	if err := c.db.QueryRowContext(ctx, query, table, constraint).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking constraint %s on %s: %w", constraint, table, err)
	}
	return exists, nil
}

// TypeExists reports whether an enum type with the given name exists in
// the public schema.
func (c *Catalog) TypeExists(ctx context.Context, name string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM pg_type t
			JOIN pg_namespace n ON n.oid = t.typnamespace
			WHERE n.nspname = 'public'
			AND t.typtype = 'e'
			AND t.typname = $1
		)`
	var exists bool
	if err := c.db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking type %s: %w", name, err)
	}
	return exists, nil
}

// EnumValues returns the labels of an enum type in sort order. A missing
// type yields an empty slice, not an error.
func (c *Catalog) EnumValues(ctx context.Context, name string) ([]string, error) {
	const query = `
		SELECT e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = 'public' AND t.typname = $1
		ORDER BY e.enumsortorder`
	rows, err := c.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("listing values of enum %s: %w", name, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning enum value of %s: %w", name, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// FunctionExists reports whether a function with the given name exists
// outside the system schemas.
func (c *Catalog) FunctionExists(ctx context.Context, name string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM pg_proc p
			JOIN pg_namespace n ON p.pronamespace = n.oid
			WHERE n.nspname NOT IN ('pg_catalog', 'information_schema')
			AND p.proname = $1
		)`
	var exists bool
	if err := c.db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking function %s: %w", name, err)
	}
	return exists, nil
}

// ExtensionExists reports whether the extension is installed.
func (c *Catalog) ExtensionExists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = $1)`
	var exists bool
	if err := c.db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking extension %s: %w", name, err)
	}
	return exists, nil
}

// CountNulls returns how many rows of the table still hold NULL in the
// given column. Backfills are confirmed complete only when it reaches zero.
func (c *Catalog) CountNulls(ctx context.Context, table, column string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", table, column)
	var n int64
	if err := c.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting nulls in %s.%s: %w", table, column, err)
	}
	return n, nil
}
