package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/tenantdb/internal/cli/config"
	"github.com/loomworks/tenantdb/internal/testutil"
)

func setTestContext(t *testing.T) {
	t.Helper()
	SetContext(&config.Config{
		Tenants: []config.Tenant{
			{Name: "acme", DSN: "postgres://app@db1/acme"},
			{Name: "globex", DSN: "postgres://app@db2/globex"},
		},
		Parallelism: 2,
		LogLevel:    "info",
		LogFormat:   "text",
	}, testutil.NewTestLogger(t))
}

func TestSelectTenants_ByName(t *testing.T) {
	setTestContext(t)

	tenants, err := selectTenants([]string{"globex"}, false)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, "globex", tenants[0].Name)
	assert.Equal(t, "postgres://app@db2/globex", tenants[0].DSN)
}

func TestSelectTenants_All(t *testing.T) {
	setTestContext(t)

	tenants, err := selectTenants(nil, true)
	require.NoError(t, err)
	assert.Len(t, tenants, 2)
}

func TestSelectTenants_AllWithNamesRejected(t *testing.T) {
	setTestContext(t)

	_, err := selectTenants([]string{"acme"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all cannot be combined")
}

func TestSelectTenants_UnknownTenant(t *testing.T) {
	setTestContext(t)

	_, err := selectTenants([]string{"initech"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tenant "initech" is not configured`)
}

func TestSelectTenants_NoArguments(t *testing.T) {
	setTestContext(t)

	_, err := selectTenants(nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "specify tenant names or --all")
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "2026-08-31", "abc1234")
	var out bytes.Buffer
	cmd.SetOut(&out)

	cmd.Run(cmd, nil)

	assert.Contains(t, out.String(), "tenantdb v1.2.3")
	assert.Contains(t, out.String(), "abc1234")
}

func TestNewReconcileCommand_Flags(t *testing.T) {
	cmd := NewReconcileCommand()
	assert.NotNil(t, cmd.Flags().Lookup("all"))
	assert.Equal(t, "reconcile [tenant...]", cmd.Use)
}
