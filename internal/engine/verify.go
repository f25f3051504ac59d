package engine

// verify.go - post-run catalog verification.

import (
	"context"
	"fmt"
	"strings"

	"github.com/loomworks/tenantdb/internal/bootstrap"
	"github.com/loomworks/tenantdb/internal/modules"
	"github.com/loomworks/tenantdb/pkg/core"
)

// Verify runs the post-run verification on its own, without reconciling.
// The CLI uses it for read-only health checks.
func (e *Engine) Verify(ctx context.Context) error {
	return e.verify(ctx)
}

// verify re-reads catalog metadata after the full run and confirms the
// critical-table set and the shared capabilities exist. Anything missing
// at this point is a defect in the engine itself: some step swallowed an
// error it should have propagated, and that must surface loudly rather
// than be retried into silence.
func (e *Engine) verify(ctx context.Context) error {
	var missing []string

	for _, table := range modules.CriticalTables {
		exists, err := e.cat.TableExists(ctx, table)
		if err != nil {
			return err
		}
		if !exists {
			missing = append(missing, "table "+table)
		}
	}

	roleExists, err := e.cat.TypeExists(ctx, bootstrap.RoleType)
	if err != nil {
		return err
	}
	if !roleExists {
		missing = append(missing, "type "+bootstrap.RoleType)
	}

	for _, fn := range bootstrap.SharedFunctionNames() {
		exists, err := e.cat.FunctionExists(ctx, fn)
		if err != nil {
			return err
		}
		if !exists {
			missing = append(missing, "function "+fn)
		}
	}

	if len(missing) > 0 {
		return core.NewSchemaError(core.VerificationFailure, "", strings.Join(missing, ", "),
			fmt.Errorf("%d critical objects absent after full reconciliation", len(missing)))
	}
	return nil
}
