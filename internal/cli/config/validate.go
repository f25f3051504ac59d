package config

import "fmt"

// Validate reports configuration defects that would only surface later as
// confusing runtime errors.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Tenants))
	for i, t := range c.Tenants {
		if t.Name == "" {
			return fmt.Errorf("tenants[%d]: name is required", i)
		}
		if t.DSN == "" {
			return fmt.Errorf("tenant %s: dsn is required", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("tenant %s: duplicate name", t.Name)
		}
		seen[t.Name] = true
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}
