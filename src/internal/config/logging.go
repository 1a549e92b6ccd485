// FILE: src/internal/config/logging.go
package config

import "fmt"

// LogConfig configures the internal diagnostic logger, not the log
// event data path
type LogConfig struct {
	// Output mode: "stdout", "stderr", "none"
	Output string `toml:"output"`

	// Log level: "debug", "info", "warn", "error"
	Level string `toml:"level"`
}

func validateLogConfig(cfg *LogConfig) error {
	validOutputs := map[string]bool{
		"stdout": true, "stderr": true, "none": true,
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	return nil
}
