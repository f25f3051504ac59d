// Package reconcile is the public entry point of the schema reconciliation
// engine. A provisioning or bootstrap caller hands in a live connection to
// one tenant database and gets back a converged schema; the call is
// idempotent and safe on every application startup.
package reconcile

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/loomworks/tenantdb/internal/engine"
	"github.com/loomworks/tenantdb/pkg/core"
)

// Option configures a reconciliation run.
type Option func(*settings)

type settings struct {
	logger *slog.Logger
}

// WithLogger injects the structured logger the engine emits lifecycle
// events through. Defaults to discard.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// Run reconciles the database behind db against the compiled-in schema
// modules. The connection is borrowed for the duration of the run; opening,
// pooling and closing it stay with the caller.
//
// Fatal conditions (missing capability, dependency violation, missing
// critical table after the run) return a *core.SchemaError. Degraded
// optional steps are reported as warnings on the returned report.
func Run(ctx context.Context, db *sql.DB, opts ...Option) (*core.Report, error) {
	s := settings{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&s)
	}
	e := engine.New(db, engine.WithLogger(s.logger))
	return e.Run(ctx)
}

// Verify re-reads catalog metadata and confirms the critical-table set and
// shared capabilities exist, without changing anything. It returns a
// *core.SchemaError of kind VerificationFailure when objects are missing.
func Verify(ctx context.Context, db *sql.DB, opts ...Option) error {
	s := settings{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&s)
	}
	e := engine.New(db, engine.WithLogger(s.logger))
	return e.Verify(ctx)
}
