package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/tenantdb/internal/bootstrap"
	"github.com/loomworks/tenantdb/internal/migrate"
	"github.com/loomworks/tenantdb/internal/modules"
	"github.com/loomworks/tenantdb/internal/schema"
	"github.com/loomworks/tenantdb/internal/testutil"
	"github.com/loomworks/tenantdb/pkg/core"
)

type fakeModule struct {
	name   string
	deps   []string
	tables []schema.Table
	ensure func(ctx context.Context, mig *migrate.Migrator) ([]string, error)
}

func (f *fakeModule) Name() string { return f.name }

func (f *fakeModule) DependsOn() []string { return f.deps }

func (f *fakeModule) Tables() []schema.Table { return f.tables }

func (f *fakeModule) Ensure(ctx context.Context, mig *migrate.Migrator) ([]string, error) {
	if f.ensure == nil {
		return nil, nil
	}
	return f.ensure(ctx, mig)
}

func newMockDB(t *testing.T) (sqlmock.Sqlmock, func(opts ...Option) *Engine) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	build := func(opts ...Option) *Engine {
		opts = append([]Option{WithLogger(testutil.NewTestLogger(t))}, opts...)
		return New(db, opts...)
	}
	return mock, build
}

func existsRow(exists bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(exists)
}

// expectBootstrap satisfies the capability bootstrap against an already
// converged database.
func expectBootstrap(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`pg_extension`).WithArgs("pgcrypto").WillReturnRows(existsRow(true))
	mock.ExpectQuery(`pg_extension`).WithArgs("uuid-ossp").WillReturnRows(existsRow(true))
	mock.ExpectQuery(`pg_type`).WithArgs(bootstrap.RoleType).WillReturnRows(existsRow(true))
	for i := 0; i < 2; i++ {
		rows := sqlmock.NewRows([]string{"enumlabel"})
		for _, v := range bootstrap.RoleValues() {
			rows.AddRow(v)
		}
		mock.ExpectQuery(`pg_enum`).WithArgs(bootstrap.RoleType).WillReturnRows(rows)
	}
	for range bootstrap.SharedFunctionNames() {
		mock.ExpectExec(`CREATE OR REPLACE FUNCTION`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

// expectVerify satisfies the post-run verification with every critical
// object present.
func expectVerify(mock sqlmock.Sqlmock) {
	for _, table := range modules.CriticalTables {
		mock.ExpectQuery(`information_schema\.tables`).WithArgs(table).WillReturnRows(existsRow(true))
	}
	mock.ExpectQuery(`pg_type`).WithArgs(bootstrap.RoleType).WillReturnRows(existsRow(true))
	for _, fn := range bootstrap.SharedFunctionNames() {
		mock.ExpectQuery(`pg_proc`).WithArgs(fn).WillReturnRows(existsRow(true))
	}
}

func simpleTable(name string) schema.Table {
	return schema.Table{
		Name:    name,
		Columns: []schema.Column{{Name: "id", Type: "BIGSERIAL"}},
	}
}

func TestEngine_Run_DependencyOrder(t *testing.T) {
	mock, build := newMockDB(t)

	var order []string
	e := build(
		WithModules([]modules.Module{
			&fakeModule{name: "sales", deps: []string{"crm"}},
			&fakeModule{name: "crm", deps: []string{"identity"}},
			&fakeModule{name: "identity"},
		}),
		WithModuleBoundaryHook(func(module string) {
			order = append(order, module)
		}),
	)

	expectBootstrap(mock)
	expectVerify(mock)

	report, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"identity", "crm", "sales"}, order)
	require.Len(t, report.Modules, 3)
	assert.Equal(t, "identity", report.Modules[0].Module)
	assert.NotEmpty(t, report.RunID)
}

func TestEngine_Run_UnknownDependency(t *testing.T) {
	_, build := newMockDB(t)
	e := build(WithModules([]modules.Module{
		&fakeModule{name: "sales", deps: []string{"crm"}},
	}))

	_, err := e.Run(context.Background())
	require.Error(t, err)

	kind, ok := core.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, core.MissingDependency, kind)
}

func TestEngine_Run_DuplicateModule(t *testing.T) {
	_, build := newMockDB(t)
	e := build(WithModules([]modules.Module{
		&fakeModule{name: "crm"},
		&fakeModule{name: "crm"},
	}))

	_, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registered twice")
}

func TestEngine_Run_DependencyCycle(t *testing.T) {
	_, build := newMockDB(t)
	e := build(WithModules([]modules.Module{
		&fakeModule{name: "a", deps: []string{"b"}},
		&fakeModule{name: "b", deps: []string{"a"}},
	}))

	_, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestEngine_Run_OwnershipViolation(t *testing.T) {
	_, build := newMockDB(t)

	// projects requires clients but does not declare crm as a dependency.
	projects := simpleTable("projects")
	projects.Columns = append(projects.Columns, schema.Column{Name: "client_id", Type: "BIGINT", NotNull: true})
	projects.ForeignKeys = []schema.ForeignKey{
		{Name: "fk_projects_client", Columns: []string{"client_id"}, RefTable: "clients", RefColumns: []string{"id"}},
	}

	e := build(WithModules([]modules.Module{
		&fakeModule{name: "crm", tables: []schema.Table{simpleTable("clients")}},
		&fakeModule{name: "projects_mod", tables: []schema.Table{projects}},
	}))

	_, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a declared dependency")
}

func TestEngine_Run_MissingDependencyAtRuntime(t *testing.T) {
	mock, build := newMockDB(t)

	deals := simpleTable("deals")
	deals.Columns = append(deals.Columns, schema.Column{Name: "client_id", Type: "BIGINT", NotNull: true})
	deals.ForeignKeys = []schema.ForeignKey{
		{Name: "fk_deals_client", Columns: []string{"client_id"}, RefTable: "clients", RefColumns: []string{"id"}},
	}

	e := build(WithModules([]modules.Module{
		// crm swallows its work: clients never gets created.
		&fakeModule{name: "crm", tables: []schema.Table{simpleTable("clients")}},
		&fakeModule{name: "sales", deps: []string{"crm"}, tables: []schema.Table{deals}},
	}))

	expectBootstrap(mock)
	mock.ExpectQuery(`information_schema\.tables`).WithArgs("clients").WillReturnRows(existsRow(false))

	_, err := e.Run(context.Background())
	require.Error(t, err)

	kind, ok := core.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, core.MissingDependency, kind)
	assert.Contains(t, err.Error(), "clients")
}

func TestEngine_Run_UntypedModuleErrorIsWrapped(t *testing.T) {
	mock, build := newMockDB(t)

	e := build(WithModules([]modules.Module{
		&fakeModule{
			name: "inventory",
			ensure: func(context.Context, *migrate.Migrator) ([]string, error) {
				return nil, errors.New("disk full")
			},
		},
	}))

	expectBootstrap(mock)

	report, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module inventory")
	assert.Contains(t, err.Error(), "disk full")

	// The failed module's result is still recorded.
	require.Len(t, report.Modules, 1)
	assert.Equal(t, "inventory", report.Modules[0].Module)
}

func TestEngine_Run_ModuleWarningsReachReport(t *testing.T) {
	mock, build := newMockDB(t)

	e := build(WithModules([]modules.Module{
		&fakeModule{
			name: "crm",
			ensure: func(context.Context, *migrate.Migrator) ([]string, error) {
				return []string{"foreign key fk_clients_account_manager deferred: table employees absent"}, nil
			},
		},
	}))

	expectBootstrap(mock)
	expectVerify(mock)

	report, err := e.Run(context.Background())
	require.NoError(t, err)

	warnings := report.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "crm: foreign key")
}

func TestEngine_Run_CompatPassRetrofitsDiscriminator(t *testing.T) {
	mock, build := newMockDB(t)

	scoped := simpleTable("legacy_projects")
	scoped.TenantScoped = true

	e := build(WithModules([]modules.Module{
		&fakeModule{name: "projects_mod", tables: []schema.Table{scoped}},
	}))

	expectBootstrap(mock)

	// Compat pass: the table exists but predates the discriminator column.
	mock.ExpectQuery(`information_schema\.tables`).WithArgs("legacy_projects").WillReturnRows(existsRow(true))
	mock.ExpectQuery(`information_schema\.columns`).WithArgs("legacy_projects", "company_id").WillReturnRows(existsRow(false))
	mock.ExpectExec(`ALTER TABLE legacy_projects ADD COLUMN company_id BIGINT DEFAULT 1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE legacy_projects SET company_id = 1 WHERE company_id IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`ORDER BY ordinal_position`).WithArgs("legacy_projects").WillReturnRows(
		sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("id", "bigint", "NO", 1).
			AddRow("company_id", "bigint", "YES", 2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM legacy_projects WHERE company_id IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`ALTER TABLE legacy_projects ALTER COLUMN company_id SET NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	expectVerify(mock)

	_, err := e.Run(context.Background())
	require.NoError(t, err)
}

func TestEngine_Run_CompatWarningsAreLogged(t *testing.T) {
	mock, build := newMockDB(t)

	scoped := simpleTable("legacy_projects")
	scoped.TenantScoped = true

	logger, capture := testutil.CaptureLogger()
	e := build(
		WithModules([]modules.Module{
			&fakeModule{name: "projects_mod", tables: []schema.Table{scoped}},
		}),
		WithLogger(logger),
	)

	expectBootstrap(mock)

	// Compat pass degrades when the discriminator backfill fails.
	mock.ExpectQuery(`information_schema\.tables`).WithArgs("legacy_projects").WillReturnRows(existsRow(true))
	mock.ExpectQuery(`information_schema\.columns`).WithArgs("legacy_projects", "company_id").WillReturnRows(existsRow(false))
	mock.ExpectExec(`ALTER TABLE legacy_projects ADD COLUMN company_id BIGINT DEFAULT 1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE legacy_projects SET company_id = 1 WHERE company_id IS NULL`).
		WillReturnError(errors.New("lock timeout"))

	expectVerify(mock)

	report, err := e.Run(context.Background())
	require.NoError(t, err)

	warnings := report.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "compat: backfill of legacy_projects.company_id failed")
	assert.True(t, capture.Contains("module warning"))
	assert.True(t, capture.Contains("module=compat"))
}

func TestEngine_Run_VerificationFailure(t *testing.T) {
	mock, build := newMockDB(t)

	e := build(WithModules([]modules.Module{}))

	expectBootstrap(mock)

	// First critical table is absent, everything else checks out.
	for i, table := range modules.CriticalTables {
		mock.ExpectQuery(`information_schema\.tables`).WithArgs(table).WillReturnRows(existsRow(i != 0))
	}
	mock.ExpectQuery(`pg_type`).WithArgs(bootstrap.RoleType).WillReturnRows(existsRow(true))
	for _, fn := range bootstrap.SharedFunctionNames() {
		mock.ExpectQuery(`pg_proc`).WithArgs(fn).WillReturnRows(existsRow(true))
	}

	_, err := e.Run(context.Background())
	require.Error(t, err)

	kind, ok := core.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, core.VerificationFailure, kind)
	assert.Contains(t, err.Error(), modules.CriticalTables[0])
}
