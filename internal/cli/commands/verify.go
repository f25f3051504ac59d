package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loomworks/tenantdb/internal/fleet"
	"github.com/loomworks/tenantdb/pkg/reconcile"
)

// VerifyOptions holds options for the verify command.
type VerifyOptions struct {
	All bool
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand() *cobra.Command {
	opts := &VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [tenant...]",
		Short: "Check tenant schemas without changing anything",
		Long: `Verify re-reads catalog metadata for each tenant and confirms the
critical tables, shared functions and the role type exist. Nothing is
created or altered; a missing object fails the check.`,
		Example: `  # Verify one tenant
  tenantdb verify acme

  # Verify the whole fleet
  tenantdb verify --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Verify every configured tenant")

	return cmd
}

func runVerify(cmd *cobra.Command, args []string, opts *VerifyOptions) error {
	tenants, err := selectTenants(args, opts.All)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, tenant := range tenants {
		if err := verifyTenant(cmd.Context(), tenant); err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", tenant.Name, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "✓ %s: schema verified\n", tenant.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tenants failed verification", failed, len(tenants))
	}
	return nil
}

func verifyTenant(ctx context.Context, tenant fleet.Tenant) error {
	db, err := sql.Open("pgx", tenant.DSN)
	if err != nil {
		return fmt.Errorf("opening connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return reconcile.Verify(ctx, db, reconcile.WithLogger(logger.With("tenant", tenant.Name)))
}
