package engine

// compat.go - backward-compatibility pass.
//
// Individual modules already apply these invariants to their own tables.
// The pass re-states them across every table after all modules have run,
// on purpose: in a mixed-version deployment an older module build may have
// created its tables before an invariant existed, and this sweep is what
// closes that gap. The redundancy is a defense, not an oversight.

import (
	"context"

	"github.com/loomworks/tenantdb/internal/migrate"
	"github.com/loomworks/tenantdb/internal/schema"
)

// Invariant is one cross-cutting schema rule checked both inside modules
// and again by the final pass.
type Invariant struct {
	// Name identifies the invariant in log events.
	Name string
	// Applies reports whether the invariant concerns the given table.
	Applies func(t schema.Table) bool
	// Apply converges the table toward the invariant, returning a warning
	// for degraded outcomes.
	Apply func(ctx context.Context, mig *migrate.Migrator, t schema.Table) (string, error)
}

// compatInvariants returns the invariants the final pass re-checks.
func compatInvariants() []Invariant {
	return []Invariant{
		{
			Name:    "tenant_discriminator",
			Applies: func(t schema.Table) bool { return t.TenantScoped },
			Apply: func(ctx context.Context, mig *migrate.Migrator, t schema.Table) (string, error) {
				return mig.EnsureColumn(ctx, t.Name, schema.TenantDiscriminator())
			},
		},
		{
			Name:    "completed_renames",
			Applies: func(t schema.Table) bool { return len(t.Renames) > 0 },
			Apply: func(ctx context.Context, mig *migrate.Migrator, t schema.Table) (string, error) {
				return "", mig.EnsureRenames(ctx, t)
			},
		},
	}
}

// compatPass sweeps every declared table that exists in the catalog and
// re-applies the cross-cutting invariants. Tables that are still absent
// are left to the verification step to flag.
func (e *Engine) compatPass(ctx context.Context, mig *migrate.Migrator) ([]string, error) {
	invariants := compatInvariants()
	var warnings []string

	for _, mod := range e.modules {
		for _, t := range mod.Tables() {
			relevant := false
			for _, inv := range invariants {
				if inv.Applies(t) {
					relevant = true
					break
				}
			}
			if !relevant {
				continue
			}
			exists, err := mig.Catalog().TableExists(ctx, t.Name)
			if err != nil {
				return warnings, err
			}
			if !exists {
				continue
			}
			for _, inv := range invariants {
				if !inv.Applies(t) {
					continue
				}
				warning, err := inv.Apply(ctx, mig, t)
				if err != nil {
					return warnings, err
				}
				if warning != "" {
					warnings = append(warnings, warning)
				}
			}
		}
	}
	return warnings, nil
}
