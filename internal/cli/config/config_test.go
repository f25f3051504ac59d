package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenantdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultParallelism, cfg.Parallelism)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Empty(t, cfg.Tenants)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
parallelism: 8
tenants:
  - name: acme
    dsn: postgres://app@db1/acme
  - name: globex
    dsn: postgres://app@db2/globex
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Parallelism)
	require.Len(t, cfg.Tenants, 2)
	assert.Equal(t, "acme", cfg.Tenants[0].Name)
	assert.Equal(t, "postgres://app@db2/globex", cfg.Tenants[1].DSN)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log_level: debug\n")
	t.Setenv("TENANTDB_LOG_LEVEL", "error")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("TENANTDB_LOG_FORMAT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-format", DefaultLogFormat, "")
	require.NoError(t, flags.Set("log-format", "text"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_UnchangedFlagDoesNotOverride(t *testing.T) {
	path := writeConfig(t, "parallelism: 16\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("parallelism", DefaultParallelism, "")

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Parallelism, "default flag value must not shadow the file")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	path := writeConfig(t, `
tenants:
  - name: acme
    dsn: ""
`)

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn is required")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Tenants: []Tenant{
				{Name: "acme", DSN: "postgres://app@db/acme"},
			},
			Parallelism: 4,
			LogLevel:    "info",
			LogFormat:   "text",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:      "empty tenant name",
			mutate:    func(c *Config) { c.Tenants[0].Name = "" },
			errSubstr: "name is required",
		},
		{
			name: "duplicate tenant name",
			mutate: func(c *Config) {
				c.Tenants = append(c.Tenants, Tenant{Name: "acme", DSN: "postgres://app@db2/acme"})
			},
			errSubstr: "duplicate name",
		},
		{
			name:      "zero parallelism",
			mutate:    func(c *Config) { c.Parallelism = 0 },
			errSubstr: "parallelism",
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.LogLevel = "trace" },
			errSubstr: "log_level",
		},
		{
			name:      "bad log format",
			mutate:    func(c *Config) { c.LogFormat = "xml" },
			errSubstr: "log_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_Tenant(t *testing.T) {
	cfg := Config{Tenants: []Tenant{
		{Name: "acme", DSN: "postgres://app@db/acme"},
		{Name: "globex", DSN: "postgres://app@db/globex"},
	}}

	tenant, ok := cfg.Tenant("globex")
	require.True(t, ok)
	assert.Equal(t, "postgres://app@db/globex", tenant.DSN)

	_, ok = cfg.Tenant("initech")
	assert.False(t, ok)
}
