// FILE: src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lconfig "github.com/lixenwraith/config"
)

func defaults() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Level:      "debug",
			MaxDelayMs: 100,
		},
		Console: ConsoleConfig{
			Enabled: true,
			Level:   "debug",
			Target:  "stdout",
		},
		File: FileConfig{
			Enabled:      true,
			Level:        "debug",
			Directory:    "./log",
			Name:         "logfunnel",
			Extension:    "log",
			MaxSizeBytes: 5 * 1024 * 1024,
			MaxAgeDays:   30,
		},
		Ingest: IngestConfig{
			HTTP: HTTPIngestConfig{
				Enabled:    false,
				Host:       "127.0.0.1",
				Port:       8080,
				IngestPath: "/ingest",
			},
			TCP: TCPIngestConfig{
				Enabled: false,
				Host:    "127.0.0.1",
				Port:    9090,
			},
			Limit: LimitConfig{
				Enabled:           false,
				RequestsPerSecond: 100.0,
				BurstSize:         200,
			},
			Auth: AuthConfig{
				Enabled: false,
			},
		},
		Logging: LogConfig{
			Output: "stderr",
			Level:  "info",
		},
	}
}

// LoadWithCLI layers defaults, the config file, LOGFUNNEL_* environment
// variables, and CLI arguments, highest last
func LoadWithCLI(cliArgs []string) (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix("LOGFUNNEL_").
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig, ""); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}

	return finalConfig, finalConfig.validate()
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	env = "LOGFUNNEL_" + env
	return env
}

// GetConfigPath resolves the config file location from the
// environment, falling back to the user config directory
func GetConfigPath() string {
	if configFile := os.Getenv("LOGFUNNEL_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGFUNNEL_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGFUNNEL_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logfunnel.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "logfunnel.toml")
	}

	return "logfunnel.toml"
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
