// Package commands implements the tenantdb subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/loomworks/tenantdb/internal/cli/config"
	"github.com/loomworks/tenantdb/internal/fleet"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

// SetContext hands the loaded configuration and logger to the commands.
// Called by the root command after config resolution.
func SetContext(c *config.Config, l *slog.Logger) {
	cfg = c
	logger = l
}

// selectTenants resolves command arguments to tenant entries: explicit
// names, or the whole fleet with --all.
func selectTenants(args []string, all bool) ([]fleet.Tenant, error) {
	if all {
		if len(args) > 0 {
			return nil, fmt.Errorf("--all cannot be combined with tenant names")
		}
		if len(cfg.Tenants) == 0 {
			return nil, fmt.Errorf("no tenants configured")
		}
		tenants := make([]fleet.Tenant, 0, len(cfg.Tenants))
		for _, t := range cfg.Tenants {
			tenants = append(tenants, fleet.Tenant{Name: t.Name, DSN: t.DSN})
		}
		return tenants, nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("specify tenant names or --all")
	}
	tenants := make([]fleet.Tenant, 0, len(args))
	for _, name := range args {
		t, ok := cfg.Tenant(name)
		if !ok {
			return nil, fmt.Errorf("tenant %q is not configured", name)
		}
		tenants = append(tenants, fleet.Tenant{Name: t.Name, DSN: t.DSN})
	}
	return tenants, nil
}
