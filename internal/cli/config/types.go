package config

// Config is the CLI configuration loaded from tenantdb.yaml, environment
// variables and flags.
type Config struct {
	// Tenants lists the tenant databases the CLI operates on.
	Tenants []Tenant `koanf:"tenants"`

	// Parallelism caps how many tenants reconcile concurrently.
	Parallelism int `koanf:"parallelism"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`
}

// Tenant is one tenant database entry.
type Tenant struct {
	Name string `koanf:"name"`
	DSN  string `koanf:"dsn"`
}

// Tenant returns the named tenant entry, if present.
func (c *Config) Tenant(name string) (Tenant, bool) {
	for _, t := range c.Tenants {
		if t.Name == name {
			return t, true
		}
	}
	return Tenant{}, false
}
