// Package engine orchestrates a full schema reconciliation run: capability
// bootstrap, domain modules in dependency order, the backward-compatibility
// pass, and a final catalog verification. One invocation converges one
// tenant database.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/loomworks/tenantdb/internal/bootstrap"
	"github.com/loomworks/tenantdb/internal/catalog"
	"github.com/loomworks/tenantdb/internal/dag"
	"github.com/loomworks/tenantdb/internal/migrate"
	"github.com/loomworks/tenantdb/internal/modules"
	"github.com/loomworks/tenantdb/pkg/core"
)

// Engine reconciles one tenant database against the registered modules.
// The connection is borrowed: the engine neither opens nor closes it.
type Engine struct {
	db      catalog.DBTX
	cat     *catalog.Catalog
	logger  *slog.Logger
	modules []modules.Module

	// boundaryHook, when set, runs after each module's ensure completes.
	// Tests use it to snapshot catalog state at module boundaries.
	boundaryHook func(module string)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger injects the structured logger. Callers capture module
// lifecycle events (module started, column added, backfill warnings)
// through it.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithModules replaces the default registry. The extension point for
// adding domain areas.
func WithModules(mods []modules.Module) Option {
	return func(e *Engine) { e.modules = mods }
}

// WithModuleBoundaryHook registers a callback invoked after every module.
func WithModuleBoundaryHook(hook func(module string)) Option {
	return func(e *Engine) { e.boundaryHook = hook }
}

// New returns an Engine over db using the default module registry.
func New(db catalog.DBTX, opts ...Option) *Engine {
	e := &Engine{
		db:      db,
		cat:     catalog.New(db),
		logger:  slog.New(slog.DiscardHandler),
		modules: modules.Registry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run performs one reconciliation. Safe to call on every startup and on
// every freshly provisioned tenant; concurrent invocations against the
// same database converge to the same schema.
func (e *Engine) Run(ctx context.Context) (*core.Report, error) {
	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)
	started := time.Now()

	report := &core.Report{RunID: runID}

	order, byName, err := e.sortModules()
	if err != nil {
		return report, err
	}
	if err := e.validateOwnership(byName); err != nil {
		return report, err
	}

	logger.Info("starting reconciliation", "modules", len(order))

	mig := migrate.New(e.db, logger)

	if err := bootstrap.New(e.db, logger).Run(ctx); err != nil {
		logger.Error("capability bootstrap failed", "error", err)
		return report, err
	}

	ownership := e.tableOwnership()
	for _, name := range order {
		mod := byName[name]
		modStart := time.Now()
		logger.Info("module started", "module", name)

		if err := e.checkRequiredDependencies(ctx, mod, ownership); err != nil {
			return report, err
		}

		warnings, err := mod.Ensure(ctx, mig)
		result := core.ModuleResult{
			Module:   name,
			Tables:   len(mod.Tables()),
			Warnings: warnings,
			Duration: time.Since(modStart),
		}
		report.Modules = append(report.Modules, result)
		if err != nil {
			logger.Error("module failed", "module", name, "error", err)
			return report, wrapModuleError(name, err)
		}
		for _, w := range warnings {
			logger.Warn("module warning", "module", name, "warning", w)
		}
		if e.boundaryHook != nil {
			e.boundaryHook(name)
		}
	}

	compatWarnings, err := e.compatPass(ctx, mig)
	if err != nil {
		return report, err
	}
	if len(compatWarnings) > 0 {
		report.Modules = append(report.Modules, core.ModuleResult{
			Module:   "compat",
			Warnings: compatWarnings,
		})
		for _, w := range compatWarnings {
			logger.Warn("module warning", "module", "compat", "warning", w)
		}
	}

	if err := e.verify(ctx); err != nil {
		logger.Error("verification failed", "error", err)
		return report, err
	}

	report.Duration = time.Since(started)
	logger.Info("reconciliation complete", "duration", report.Duration)
	return report, nil
}

// sortModules builds the dependency graph and returns the execution order.
// A cycle or a dependency on an unregistered module is fatal.
func (e *Engine) sortModules() ([]string, map[string]modules.Module, error) {
	byName := make(map[string]modules.Module, len(e.modules))
	graph := dag.NewGraph()
	for _, mod := range e.modules {
		if _, dup := byName[mod.Name()]; dup {
			return nil, nil, fmt.Errorf("module %s registered twice", mod.Name())
		}
		byName[mod.Name()] = mod
		graph.AddNode(mod.Name())
	}
	for _, mod := range e.modules {
		for _, dep := range mod.DependsOn() {
			if err := graph.AddEdge(dep, mod.Name()); err != nil {
				return nil, nil, core.NewSchemaError(core.MissingDependency, mod.Name(), dep, err)
			}
		}
	}
	order, err := graph.TopologicalSort()
	if err != nil {
		return nil, nil, err
	}
	return order, byName, nil
}

// tableOwnership maps every declared table to its owning module.
func (e *Engine) tableOwnership() map[string]string {
	owners := make(map[string]string)
	for _, mod := range e.modules {
		for _, t := range mod.Tables() {
			owners[t.Name] = mod.Name()
		}
	}
	return owners
}

// validateOwnership enforces the design-time invariant that no table
// declares a required foreign key into a module it does not (transitively)
// depend on. Violations are defects in the module declarations, caught
// before any statement runs.
func (e *Engine) validateOwnership(byName map[string]modules.Module) error {
	graph := dag.NewGraph()
	for name := range byName {
		graph.AddNode(name)
	}
	for name, mod := range byName {
		for _, dep := range mod.DependsOn() {
			if err := graph.AddEdge(dep, name); err != nil {
				return err
			}
		}
	}
	owners := e.tableOwnership()

	for name, mod := range byName {
		allowed := map[string]bool{name: true}
		for _, dep := range graph.TransitiveDependencies(name) {
			allowed[dep] = true
		}
		for _, t := range mod.Tables() {
			for _, ref := range t.ReferencedTables(false) {
				owner, known := owners[ref]
				if !known {
					return fmt.Errorf("module %s: table %s references unowned table %s", name, t.Name, ref)
				}
				if !allowed[owner] {
					return fmt.Errorf("module %s: table %s references %s owned by %s, which is not a declared dependency",
						name, t.Name, ref, owner)
				}
			}
		}
	}
	return nil
}

// checkRequiredDependencies confirms that every table a module requires
// from its prerequisites actually exists before the module runs. A miss at
// this point means an upstream module swallowed a failure.
func (e *Engine) checkRequiredDependencies(ctx context.Context, mod modules.Module, owners map[string]string) error {
	own := make(map[string]bool)
	for _, t := range mod.Tables() {
		own[t.Name] = true
	}
	for _, t := range mod.Tables() {
		for _, ref := range t.ReferencedTables(false) {
			if own[ref] {
				continue
			}
			exists, err := e.cat.TableExists(ctx, ref)
			if err != nil {
				return err
			}
			if !exists {
				return core.NewSchemaError(core.MissingDependency, mod.Name(), ref,
					fmt.Errorf("table %s owned by module %s does not exist", ref, owners[ref]))
			}
		}
	}
	return nil
}

func wrapModuleError(module string, err error) error {
	if _, ok := core.KindOf(err); ok {
		return err
	}
	return fmt.Errorf("module %s: %w", module, err)
}
