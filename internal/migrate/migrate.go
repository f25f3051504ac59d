// Package migrate applies one table specification to a live database:
// creation, legacy renames, column additions with backfill, constraint
// tightening, deferred foreign keys, indexes and trigger bindings, in that
// order. All existence decisions go through catalog introspection; error
// codes are consulted only to classify genuine create races.
package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loomworks/tenantdb/internal/catalog"
	"github.com/loomworks/tenantdb/internal/schema"
	"github.com/loomworks/tenantdb/pkg/core"
)

// Migrator converges tables toward their specification.
type Migrator struct {
	db     catalog.DBTX
	cat    *catalog.Catalog
	logger *slog.Logger
	guard  guard
}

// New returns a Migrator over db. A nil logger discards.
func New(db catalog.DBTX, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Migrator{
		db:     db,
		cat:    catalog.New(db),
		logger: logger,
		guard:  defaultGuard(),
	}
}

// Catalog exposes the migrator's introspection handle.
func (m *Migrator) Catalog() *catalog.Catalog {
	return m.cat
}

// Apply converges one table. It returns the warnings produced by degraded
// steps (skipped optional foreign keys, incomplete backfills); any returned
// error is fatal for the module. The step order is load-bearing: each step
// assumes the previous one succeeded or was confirmed already satisfied.
func (m *Migrator) Apply(ctx context.Context, module string, t schema.Table) ([]string, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table spec: %w", err)
	}

	if err := m.ensureTable(ctx, module, t); err != nil {
		return nil, err
	}
	if err := m.EnsureRenames(ctx, t); err != nil {
		return nil, err
	}

	var warnings []string
	for _, mig := range t.Migrations {
		warning, err := m.EnsureColumn(ctx, t.Name, mig)
		if err != nil {
			return warnings, err
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
	}

	fkWarnings, err := m.ensureOptionalForeignKeys(ctx, t)
	if err != nil {
		return warnings, err
	}
	warnings = append(warnings, fkWarnings...)

	if err := m.ensureIndexes(ctx, t); err != nil {
		return warnings, err
	}
	if err := m.bindTriggers(ctx, t); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// ensureTable creates the table with its full column set, primary key and
// required foreign keys, treating a concurrent creation as success. A
// required referenced table that is absent surfaces as MissingDependency.
func (m *Migrator) ensureTable(ctx context.Context, module string, t schema.Table) error {
	created, err := m.guard.create(ctx,
		func() error {
			_, err := m.db.ExecContext(ctx, t.CreateTableSQL())
			return err
		},
		func() (bool, error) {
			return m.cat.TableExists(ctx, t.Name)
		},
	)
	if err != nil {
		if IsUndefinedTable(err) {
			return core.NewSchemaError(core.MissingDependency, module, t.Name, err)
		}
		return fmt.Errorf("creating table %s: %w", t.Name, err)
	}
	if created {
		m.logger.Info("created table", "table", t.Name)
	} else {
		m.logger.Debug("table already present", "table", t.Name)
	}
	return nil
}

// EnsureRenames moves legacy columns to their current names. A rename fires
// only when the old name exists and the new one does not; data is carried
// over by RENAME, never by drop and recreate.
func (m *Migrator) EnsureRenames(ctx context.Context, t schema.Table) error {
	for _, r := range t.Renames {
		oldExists, err := m.cat.ColumnExists(ctx, t.Name, r.From)
		if err != nil {
			return err
		}
		if !oldExists {
			continue
		}
		newExists, err := m.cat.ColumnExists(ctx, t.Name, r.To)
		if err != nil {
			return err
		}
		if newExists {
			continue
		}
		if _, err := m.db.ExecContext(ctx, schema.RenameColumnSQL(t.Name, r)); err != nil {
			return fmt.Errorf("renaming %s.%s to %s: %w", t.Name, r.From, r.To, err)
		}
		m.logger.Info("renamed column", "table", t.Name, "from", r.From, "to", r.To)
	}
	return nil
}

// EnsureColumn adds a migrated column to an existing table, backfills it,
// and only then tightens NOT NULL. Addition and backfill are separate
// idempotent steps so a crash between them resumes cleanly on the next
// run. A failed or incomplete backfill returns a warning and leaves the
// column nullable rather than failing the module.
func (m *Migrator) EnsureColumn(ctx context.Context, table string, mig schema.ColumnMigration) (warning string, err error) {
	col := mig.Column
	_, err = m.guard.create(ctx,
		func() error {
			_, err := m.db.ExecContext(ctx, schema.AddColumnSQL(table, col))
			return err
		},
		func() (bool, error) {
			return m.cat.ColumnExists(ctx, table, col.Name)
		},
	)
	if err != nil {
		return "", fmt.Errorf("adding column %s.%s: %w", table, col.Name, err)
	}

	if backfill := schema.BackfillSQL(table, mig); backfill != "" {
		if _, err := m.db.ExecContext(ctx, backfill); err != nil {
			m.logger.Warn("backfill failed", "table", table, "column", col.Name, "error", err)
			return fmt.Sprintf("backfill of %s.%s failed: %v", table, col.Name, err), nil
		}
	}

	if !col.NotNull {
		return "", nil
	}

	// Catalog may already show NOT NULL from a previous completed run.
	cols, err := m.cat.Columns(ctx, table)
	if err != nil {
		return "", err
	}
	for _, c := range cols {
		if c.Name == col.Name && !c.Nullable {
			return "", nil
		}
	}

	nulls, err := m.cat.CountNulls(ctx, table, col.Name)
	if err != nil {
		return "", err
	}
	if nulls > 0 {
		m.logger.Warn("skipping NOT NULL, rows unpopulated",
			"table", table, "column", col.Name, "nulls", nulls)
		return fmt.Sprintf("%s.%s left nullable: %d rows unpopulated", table, col.Name, nulls), nil
	}
	if _, err := m.db.ExecContext(ctx, schema.SetNotNullSQL(table, col.Name)); err != nil {
		return "", fmt.Errorf("tightening %s.%s to NOT NULL: %w", table, col.Name, err)
	}
	m.logger.Info("added column", "table", table, "column", col.Name, "not_null", true)
	return "", nil
}

// ensureOptionalForeignKeys retries the deferred cross-module foreign
// keys. A key whose target table has not appeared yet is skipped with a
// warning; the next run picks it up once the owning module has run.
func (m *Migrator) ensureOptionalForeignKeys(ctx context.Context, t schema.Table) ([]string, error) {
	var warnings []string
	for _, fk := range t.ForeignKeys {
		if !fk.Optional {
			continue
		}
		present, err := m.cat.ConstraintExists(ctx, t.Name, fk.Name)
		if err != nil {
			return warnings, err
		}
		if present {
			continue
		}
		targetExists, err := m.cat.TableExists(ctx, fk.RefTable)
		if err != nil {
			return warnings, err
		}
		if !targetExists {
			m.logger.Warn("deferring foreign key, target table absent",
				"table", t.Name, "constraint", fk.Name, "target", fk.RefTable)
			warnings = append(warnings, fmt.Sprintf("foreign key %s deferred: table %s absent", fk.Name, fk.RefTable))
			continue
		}
		_, err = m.guard.create(ctx,
			func() error {
				_, err := m.db.ExecContext(ctx, t.AddForeignKeySQL(fk))
				return err
			},
			func() (bool, error) {
				return m.cat.ConstraintExists(ctx, t.Name, fk.Name)
			},
		)
		if err != nil {
			return warnings, fmt.Errorf("adding foreign key %s on %s: %w", fk.Name, t.Name, err)
		}
		m.logger.Info("added foreign key", "table", t.Name, "constraint", fk.Name)
	}
	return warnings, nil
}

// ensureIndexes creates the declared indexes. Index failures are fatal: an
// index referencing a missing column means the column migration above it
// did not converge, which is an ordering bug, not an optional extra.
func (m *Migrator) ensureIndexes(ctx context.Context, t schema.Table) error {
	for _, ix := range t.Indexes {
		created, err := m.guard.create(ctx,
			func() error {
				_, err := m.db.ExecContext(ctx, t.CreateIndexSQL(ix))
				return err
			},
			func() (bool, error) {
				return m.cat.IndexExists(ctx, ix.Name)
			},
		)
		if err != nil {
			return fmt.Errorf("creating index %s on %s: %w", ix.Name, t.Name, err)
		}
		if created {
			m.logger.Info("created index", "table", t.Name, "index", ix.Name)
		}
	}
	return nil
}

// bindTriggers drops and recreates the declared trigger bindings, plus the
// audit trigger for audited tables. Trigger definitions carry no version,
// so recreate is the only way to pick up a changed shared function binding.
func (m *Migrator) bindTriggers(ctx context.Context, t schema.Table) error {
	triggers := t.Triggers
	if t.Audited {
		triggers = append(triggers, t.AuditTrigger())
	}
	for _, tr := range triggers {
		if _, err := m.db.ExecContext(ctx, t.DropTriggerSQL(tr)); err != nil {
			return fmt.Errorf("dropping trigger %s on %s: %w", tr.Name, t.Name, err)
		}
		if _, err := m.db.ExecContext(ctx, t.CreateTriggerSQL(tr)); err != nil {
			// A concurrent run may recreate the trigger between our drop
			// and create. The binding it installed is identical to ours.
			if IsDuplicate(err) {
				m.logger.Debug("trigger recreated by concurrent run", "table", t.Name, "trigger", tr.Name)
				continue
			}
			return fmt.Errorf("creating trigger %s on %s: %w", tr.Name, t.Name, err)
		}
		m.logger.Debug("bound trigger", "table", t.Name, "trigger", tr.Name)
	}
	return nil
}

// Exec runs one raw statement. Modules use it for bulk backfills that go
// beyond the column migration rules, such as windowed ordinal assignment.
func (m *Migrator) Exec(ctx context.Context, query string) error {
	_, err := m.db.ExecContext(ctx, query)
	return err
}
