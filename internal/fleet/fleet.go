// Package fleet reconciles many tenant databases in one sweep. Each tenant
// is fully independent, so tenants run in parallel up to a bounded limit;
// one tenant's failure never stops the others.
//
// Unlike the engine, the fleet owns connection lifecycles: it opens a
// connection per tenant, lends it to the engine, and closes it afterwards.
package fleet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"golang.org/x/sync/errgroup"

	"github.com/loomworks/tenantdb/pkg/core"
	"github.com/loomworks/tenantdb/pkg/reconcile"
)

// Tenant identifies one tenant database.
type Tenant struct {
	Name string
	DSN  string
}

// Result is the outcome of one tenant's reconciliation.
type Result struct {
	Tenant string
	Report *core.Report
	Err    error
}

// Reconciler runs reconciliations across a tenant fleet.
type Reconciler struct {
	logger      *slog.Logger
	parallelism int
}

// New returns a Reconciler. parallelism caps concurrent tenants; values
// below 1 mean sequential.
func New(logger *slog.Logger, parallelism int) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if parallelism < 1 {
		parallelism = 1
	}
	return &Reconciler{logger: logger, parallelism: parallelism}
}

// Run reconciles every tenant. All tenants are attempted regardless of
// individual failures; the returned error joins the per-tenant failures,
// and results are sorted by tenant name.
func (r *Reconciler) Run(ctx context.Context, tenants []Tenant) ([]Result, error) {
	var (
		mu      sync.Mutex
		results []Result
	)

	g := &errgroup.Group{}
	g.SetLimit(r.parallelism)

	for _, tenant := range tenants {
		g.Go(func() error {
			report, err := r.runOne(ctx, tenant)
			mu.Lock()
			results = append(results, Result{Tenant: tenant.Name, Report: report, Err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Tenant < results[j].Tenant })

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", res.Tenant, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (r *Reconciler) runOne(ctx context.Context, tenant Tenant) (*core.Report, error) {
	logger := r.logger.With("tenant", tenant.Name)
	logger.Info("reconciling tenant")

	db, err := sql.Open("pgx", tenant.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	report, err := reconcile.Run(ctx, db, reconcile.WithLogger(logger))
	if err != nil {
		logger.Error("tenant reconciliation failed", "error", err)
		return report, err
	}
	logger.Info("tenant reconciled", "duration", report.Duration, "warnings", len(report.Warnings()))
	return report, nil
}
