// Package modules holds the domain schema modules: self-contained,
// individually idempotent units that each own a cohesive slice of the
// tenant data model. Modules declare their tables and their dependencies
// on other modules; the engine decides the execution order.
package modules

import (
	"context"

	"github.com/loomworks/tenantdb/internal/migrate"
	"github.com/loomworks/tenantdb/internal/schema"
)

// Module is one unit of the tenant schema. Ensure must be safe to call
// any number of times against any pre-existing database state.
type Module interface {
	// Name identifies the module in dependency declarations and errors.
	Name() string

	// DependsOn lists modules whose tables must exist before Ensure runs.
	DependsOn() []string

	// Tables returns the specifications the module owns. The engine uses
	// them for ownership validation, the compatibility pass and the final
	// verification.
	Tables() []schema.Table

	// Ensure converges every owned table. Returned warnings are degraded
	// optional steps; a non-nil error aborts the run.
	Ensure(ctx context.Context, mig *migrate.Migrator) ([]string, error)
}

// tableModule is the declarative module implementation almost every domain
// area uses. post runs after all tables converged, for bulk work that the
// per-column rules cannot express.
type tableModule struct {
	name   string
	deps   []string
	tables []schema.Table
	post   func(ctx context.Context, mig *migrate.Migrator) ([]string, error)
}

func (m *tableModule) Name() string { return m.name }

func (m *tableModule) DependsOn() []string { return m.deps }

func (m *tableModule) Tables() []schema.Table { return m.tables }

func (m *tableModule) Ensure(ctx context.Context, mig *migrate.Migrator) ([]string, error) {
	var warnings []string
	for _, t := range m.tables {
		w, err := mig.Apply(ctx, m.name, t)
		warnings = append(warnings, w...)
		if err != nil {
			return warnings, err
		}
		if t.TenantScoped {
			w, err := mig.EnsureColumn(ctx, t.Name, schema.TenantDiscriminator())
			if err != nil {
				return warnings, err
			}
			if w != "" {
				warnings = append(warnings, w)
			}
		}
	}
	if m.post != nil {
		w, err := m.post(ctx, mig)
		warnings = append(warnings, w...)
		if err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}

// Column shorthands shared by the module declarations.

func pkID() schema.Column {
	return schema.Column{Name: "id", Type: "BIGSERIAL", NotNull: true}
}

func col(name, typ string) schema.Column {
	return schema.Column{Name: name, Type: typ}
}

func notNull(name, typ string) schema.Column {
	return schema.Column{Name: name, Type: typ, NotNull: true}
}

func withDefault(name, typ, def string) schema.Column {
	return schema.Column{Name: name, Type: typ, NotNull: true, Default: def}
}

func timestamps() []schema.Column {
	return []schema.Column{
		withDefault("created_at", "TIMESTAMPTZ", "now()"),
		withDefault("updated_at", "TIMESTAMPTZ", "now()"),
	}
}

func companyCol() schema.Column {
	return withDefault(schema.TenantDiscriminatorColumn, "BIGINT", "1")
}

// updatedAtTrigger binds the shared timestamp-refresh function.
func updatedAtTrigger(table string) schema.Trigger {
	return schema.Trigger{
		Name:     "trg_" + table + "_updated_at",
		Timing:   "BEFORE",
		Events:   []string{"UPDATE"},
		Function: "set_updated_at",
	}
}

func fk(name string, columns []string, refTable string, refColumns []string, onDelete string) schema.ForeignKey {
	return schema.ForeignKey{
		Name:       name,
		Columns:    columns,
		RefTable:   refTable,
		RefColumns: refColumns,
		OnDelete:   onDelete,
	}
}

func optionalFK(name string, columns []string, refTable string, refColumns []string, onDelete string) schema.ForeignKey {
	f := fk(name, columns, refTable, refColumns, onDelete)
	f.Optional = true
	return f
}

func index(table string, columns ...string) schema.Index {
	name := "idx_" + table
	for _, c := range columns {
		name += "_" + c
	}
	return schema.Index{Name: name, Columns: columns}
}

func uniqueIndex(table string, columns ...string) schema.Index {
	ix := index(table, columns...)
	ix.Name = "uq_" + table
	for _, c := range columns {
		ix.Name += "_" + c
	}
	ix.Unique = true
	return ix
}
