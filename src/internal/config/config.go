// FILE: src/internal/config/config.go
package config

import (
	"logfunnel/src/internal/core"
	"logfunnel/src/internal/pipeline"
	"logfunnel/src/internal/sink"
)

type Config struct {
	Pipeline PipelineConfig `toml:"pipeline"`
	Console  ConsoleConfig  `toml:"console"`
	File     FileConfig     `toml:"file"`
	Ingest   IngestConfig   `toml:"ingest"`
	Logging  LogConfig      `toml:"logging"`
}

// PipelineConfig configures the reorder pipeline
type PipelineConfig struct {
	// Minimum level accepted into the buffer
	Level string `toml:"level"`

	// Maximum time a buffered event waits for a watermark before the
	// flush timer delivers it
	MaxDelayMs int64 `toml:"max_delay_ms"`

	// Base path stripped from backend call-site paths for display
	BackendBasePath string `toml:"backend_base_path"`
}

// ConsoleConfig configures the console delegate
type ConsoleConfig struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	Target  string `toml:"target"` // "stdout" or "stderr"
}

// FileConfig configures the rotating file delegate
type FileConfig struct {
	Enabled      bool   `toml:"enabled"`
	Level        string `toml:"level"`
	Directory    string `toml:"directory"`
	Name         string `toml:"name"`
	Extension    string `toml:"extension"`
	MaxSizeBytes int64  `toml:"max_size_bytes"`
	MaxAgeDays   int    `toml:"max_age_days"`
}

// IngestConfig configures the frontend transport adapters
type IngestConfig struct {
	HTTP  HTTPIngestConfig `toml:"http"`
	TCP   TCPIngestConfig  `toml:"tcp"`
	Limit LimitConfig      `toml:"limit"`
	Auth  AuthConfig       `toml:"auth"`
}

type HTTPIngestConfig struct {
	Enabled    bool   `toml:"enabled"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	IngestPath string `toml:"ingest_path"`
}

type TCPIngestConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

type LimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	BurstSize         int     `toml:"burst_size"`
}

type AuthConfig struct {
	Enabled   bool   `toml:"enabled"`
	JWTSecret string `toml:"jwt_secret"`
}

// ParsedLevel returns the pipeline's minimum level
func (c *PipelineConfig) ParsedLevel() (core.Level, error) {
	return core.ParseLevel(c.Level)
}

// FileOptions maps the file delegate config onto sink options
func (c *FileConfig) FileOptions() (sink.FileOptions, error) {
	level, err := core.ParseLevel(c.Level)
	if err != nil {
		return sink.FileOptions{}, err
	}
	return sink.FileOptions{
		Directory:    c.Directory,
		Name:         c.Name,
		Extension:    c.Extension,
		MaxSizeBytes: c.MaxSizeBytes,
		MaxAgeDays:   c.MaxAgeDays,
		Level:        level,
	}, nil
}

// PipelineOptions maps the pipeline config onto pipeline options
func (c *PipelineConfig) PipelineOptions() (pipeline.Options, error) {
	level, err := c.ParsedLevel()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Level:           level,
		MaxDelay:        millis(c.MaxDelayMs),
		BackendBasePath: c.BackendBasePath,
	}, nil
}
