// Package bootstrap installs the foundational capabilities every domain
// module assumes: ID-generation and crypto extensions, the user role enum,
// and the shared trigger functions. It runs before any module and its
// failure is fatal for the whole reconciliation.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loomworks/tenantdb/internal/catalog"
	"github.com/loomworks/tenantdb/internal/migrate"
	"github.com/loomworks/tenantdb/pkg/core"
)

// RoleType is the name of the enumerated role type.
const RoleType = "user_role"

// roleValues is the full, versioned value set of the role enum. The first
// three shipped with the original release; the rest were added one release
// at a time and must be appended individually on databases created before
// they existed. Order matters: enum comparison follows it.
var roleValues = []string{
	"super_admin",
	"admin",
	"employee",
	"hr_manager",
	"project_manager",
	"team_lead",
	"accountant",
	"sales_rep",
	"client",
	"vendor",
}

// baseRoleCount is how many of roleValues are part of the initial
// CREATE TYPE; the remainder are ALTER TYPE additions.
const baseRoleCount = 3

// extensions the engine depends on: gen_random_uuid and digest come from
// pgcrypto, uuid_generate_v4 from uuid-ossp (kept for rows created by
// older releases).
var extensions = []string{"pgcrypto", "uuid-ossp"}

// RoleValues returns a copy of the full role enum value set.
func RoleValues() []string {
	out := make([]string, len(roleValues))
	copy(out, roleValues)
	return out
}

// Bootstrapper installs database capabilities.
type Bootstrapper struct {
	db     catalog.DBTX
	cat    *catalog.Catalog
	logger *slog.Logger
}

// New returns a Bootstrapper over db. A nil logger discards.
func New(db catalog.DBTX, logger *slog.Logger) *Bootstrapper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bootstrapper{db: db, cat: catalog.New(db), logger: logger}
}

// Run installs all capabilities. Any failure is CapabilityMissing: nothing
// downstream can run without them.
func (b *Bootstrapper) Run(ctx context.Context) error {
	if err := b.ensureExtensions(ctx); err != nil {
		return core.NewSchemaError(core.CapabilityMissing, "bootstrap", "extensions", err)
	}
	if err := b.ensureRoleType(ctx); err != nil {
		return core.NewSchemaError(core.CapabilityMissing, "bootstrap", RoleType, err)
	}
	if err := b.ensureFunctions(ctx); err != nil {
		return err
	}
	return nil
}

func (b *Bootstrapper) ensureExtensions(ctx context.Context) error {
	for _, ext := range extensions {
		installed, err := b.cat.ExtensionExists(ctx, ext)
		if err != nil {
			return err
		}
		if installed {
			b.logger.Debug("extension already installed", "extension", ext)
			continue
		}
		stmt := fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS "%s"`, ext)
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			// A concurrent bootstrap can install it between check and
			// create; that is success.
			if migrate.IsDuplicate(err) {
				continue
			}
			return fmt.Errorf("installing extension %s: %w", ext, err)
		}
		b.logger.Info("installed extension", "extension", ext)
	}
	return nil
}

// ensureRoleType creates the role enum, then appends any values a newer
// release introduced. Each append is its own statement, deliberately
// outside any transaction: ALTER TYPE ... ADD VALUE cannot run in a
// transaction block that carries other DDL, and one value failing must
// not block the rest.
func (b *Bootstrapper) ensureRoleType(ctx context.Context) error {
	exists, err := b.cat.TypeExists(ctx, RoleType)
	if err != nil {
		return err
	}
	if !exists {
		stmt := fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", RoleType, quoteList(roleValues[:baseRoleCount]))
		if _, err := b.db.ExecContext(ctx, stmt); err != nil && !migrate.IsDuplicate(err) {
			return fmt.Errorf("creating type %s: %w", RoleType, err)
		}
		b.logger.Info("created role type", "type", RoleType)
	}

	current, err := b.cat.EnumValues(ctx, RoleType)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(current))
	for _, v := range current {
		have[v] = true
	}

	for _, v := range roleValues {
		if have[v] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TYPE %s ADD VALUE IF NOT EXISTS '%s'", RoleType, v)
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			if migrate.IsDuplicate(err) {
				continue
			}
			// Keep adding the remaining values; the final re-check below
			// decides whether the run can proceed.
			b.logger.Warn("failed to add enum value", "type", RoleType, "value", v, "error", err)
			continue
		}
		b.logger.Info("added enum value", "type", RoleType, "value", v)
	}

	final, err := b.cat.EnumValues(ctx, RoleType)
	if err != nil {
		return err
	}
	have = make(map[string]bool, len(final))
	for _, v := range final {
		have[v] = true
	}
	for _, v := range roleValues {
		if !have[v] {
			return fmt.Errorf("enum value %s.%s still missing after bootstrap", RoleType, v)
		}
	}
	return nil
}

func (b *Bootstrapper) ensureFunctions(ctx context.Context) error {
	for _, fn := range sharedFunctions {
		if _, err := b.db.ExecContext(ctx, fn.body); err != nil {
			return core.NewSchemaError(core.CapabilityMissing, "bootstrap", fn.name, err)
		}
		b.logger.Debug("installed function", "function", fn.name)
	}
	return nil
}

func quoteList(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += "'" + v + "'"
	}
	return out
}
