package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/loomworks/tenantdb/internal/bootstrap"
	"github.com/loomworks/tenantdb/internal/catalog"
	"github.com/loomworks/tenantdb/internal/fleet"
	"github.com/loomworks/tenantdb/internal/modules"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show schema state across the tenant fleet",
		Long: `Status connects to every configured tenant and reports how much of the
target schema is in place: critical table coverage, the role type and the
shared trigger functions. Read-only; nothing is changed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd)
		},
	}
}

type tenantStatus struct {
	tenant    string
	reachable bool
	detail    string
	tables    string
	roleType  string
	functions string
}

func runStatus(cmd *cobra.Command) error {
	if len(cfg.Tenants) == 0 {
		return fmt.Errorf("no tenants configured")
	}

	statuses := make([]tenantStatus, 0, len(cfg.Tenants))
	for _, t := range cfg.Tenants {
		statuses = append(statuses, inspectTenant(cmd.Context(), fleet.Tenant{Name: t.Name, DSN: t.DSN}))
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.AppendHeader(table.Row{"Tenant", "Reachable", "Critical Tables", "Role Type", "Functions"})
	for _, s := range statuses {
		if !s.reachable {
			tw.AppendRow(table.Row{s.tenant, "no (" + s.detail + ")", "-", "-", "-"})
			continue
		}
		tw.AppendRow(table.Row{s.tenant, "yes", s.tables, s.roleType, s.functions})
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
	return nil
}

func inspectTenant(ctx context.Context, tenant fleet.Tenant) tenantStatus {
	s := tenantStatus{tenant: tenant.Name}

	db, err := sql.Open("pgx", tenant.DSN)
	if err != nil {
		s.detail = err.Error()
		return s
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		s.detail = "unreachable"
		return s
	}
	s.reachable = true

	cat := catalog.New(db)

	present := 0
	for _, name := range modules.CriticalTables {
		ok, err := cat.TableExists(ctx, name)
		if err != nil {
			s.detail = err.Error()
			s.reachable = false
			return s
		}
		if ok {
			present++
		}
	}
	s.tables = fmt.Sprintf("%d/%d", present, len(modules.CriticalTables))

	hasType, err := cat.TypeExists(ctx, bootstrap.RoleType)
	if err != nil {
		s.detail = err.Error()
		s.reachable = false
		return s
	}
	s.roleType = "missing"
	if hasType {
		s.roleType = "present"
	}

	fns := bootstrap.SharedFunctionNames()
	haveFns := 0
	for _, fn := range fns {
		ok, err := cat.FunctionExists(ctx, fn)
		if err != nil {
			s.detail = err.Error()
			s.reachable = false
			return s
		}
		if ok {
			haveFns++
		}
	}
	s.functions = fmt.Sprintf("%d/%d", haveFns, len(fns))

	return s
}
