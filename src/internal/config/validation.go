// FILE: src/internal/config/validation.go
package config

import (
	"fmt"

	"logfunnel/src/internal/core"
)

func (c *Config) validate() error {
	if _, err := core.ParseLevel(c.Pipeline.Level); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if c.Pipeline.MaxDelayMs <= 0 {
		return fmt.Errorf("pipeline: max_delay_ms must be positive, got %d", c.Pipeline.MaxDelayMs)
	}

	if c.Console.Enabled {
		if _, err := core.ParseLevel(c.Console.Level); err != nil {
			return fmt.Errorf("console: %w", err)
		}
		if c.Console.Target != "stdout" && c.Console.Target != "stderr" {
			return fmt.Errorf("console: invalid target %q", c.Console.Target)
		}
	}

	if c.File.Enabled {
		if _, err := core.ParseLevel(c.File.Level); err != nil {
			return fmt.Errorf("file: %w", err)
		}
		if c.File.MaxSizeBytes < 0 {
			return fmt.Errorf("file: max_size_bytes must not be negative, got %d", c.File.MaxSizeBytes)
		}
		if c.File.MaxAgeDays < 0 {
			return fmt.Errorf("file: max_age_days must not be negative, got %d", c.File.MaxAgeDays)
		}
	}

	if !c.Console.Enabled && !c.File.Enabled {
		return fmt.Errorf("at least one delegate (console or file) must be enabled")
	}

	if c.Ingest.HTTP.Enabled {
		if c.Ingest.HTTP.Port < 1 || c.Ingest.HTTP.Port > 65535 {
			return fmt.Errorf("ingest.http: invalid port %d", c.Ingest.HTTP.Port)
		}
	}
	if c.Ingest.TCP.Enabled {
		if c.Ingest.TCP.Port < 1 || c.Ingest.TCP.Port > 65535 {
			return fmt.Errorf("ingest.tcp: invalid port %d", c.Ingest.TCP.Port)
		}
	}
	if c.Ingest.HTTP.Enabled && c.Ingest.TCP.Enabled &&
		c.Ingest.HTTP.Port == c.Ingest.TCP.Port && c.Ingest.HTTP.Host == c.Ingest.TCP.Host {
		return fmt.Errorf("ingest: http and tcp sources cannot share %s:%d",
			c.Ingest.HTTP.Host, c.Ingest.HTTP.Port)
	}

	if c.Ingest.Limit.Enabled {
		if c.Ingest.Limit.RequestsPerSecond <= 0 {
			return fmt.Errorf("ingest.limit: requests_per_second must be positive")
		}
		if c.Ingest.Limit.BurstSize < 1 {
			return fmt.Errorf("ingest.limit: burst_size must be at least 1")
		}
	}

	if c.Ingest.Auth.Enabled && c.Ingest.Auth.JWTSecret == "" {
		return fmt.Errorf("ingest.auth: jwt_secret is required when auth is enabled")
	}

	return validateLogConfig(&c.Logging)
}
