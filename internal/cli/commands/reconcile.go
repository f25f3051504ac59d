package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loomworks/tenantdb/internal/fleet"
)

// ReconcileOptions holds options for the reconcile command.
type ReconcileOptions struct {
	All bool
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand() *cobra.Command {
	opts := &ReconcileOptions{}

	cmd := &cobra.Command{
		Use:   "reconcile [tenant...]",
		Short: "Converge tenant schemas to the declared target",
		Long: `Reconcile the named tenant databases against the compiled-in schema
modules. Every run is idempotent: objects that already match the target are
left untouched, missing ones are created, and optional steps that cannot
complete degrade to warnings instead of failing the run.`,
		Example: `  # Reconcile two tenants
  tenantdb reconcile acme globex

  # Reconcile the whole fleet
  tenantdb reconcile --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Reconcile every configured tenant")

	return cmd
}

func runReconcile(cmd *cobra.Command, args []string, opts *ReconcileOptions) error {
	tenants, err := selectTenants(args, opts.All)
	if err != nil {
		return err
	}

	r := fleet.New(logger, cfg.Parallelism)
	results, runErr := r.Run(cmd.Context(), tenants)

	out := cmd.OutOrStdout()
	for _, res := range results {
		switch {
		case res.Err != nil:
			fmt.Fprintf(out, "✗ %s: %v\n", res.Tenant, res.Err)
		default:
			warnings := res.Report.Warnings()
			fmt.Fprintf(out, "✓ %s: %d modules converged in %s", res.Tenant, len(res.Report.Modules), res.Report.Duration.Round(time.Millisecond))
			if len(warnings) > 0 {
				fmt.Fprintf(out, " (%d warnings)", len(warnings))
			}
			fmt.Fprintln(out)
			for _, w := range warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
		}
	}

	if runErr != nil {
		return fmt.Errorf("%d of %d tenants failed", failureCount(results), len(results))
	}
	return nil
}

func failureCount(results []fleet.Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
