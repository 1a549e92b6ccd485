// FILE: src/cmd/logfunnel/bootstrap.go
package main

import (
	"fmt"
	"strings"

	"logfunnel/src/internal/auth"
	"logfunnel/src/internal/config"
	"logfunnel/src/internal/core"
	"logfunnel/src/internal/format"
	"logfunnel/src/internal/limit"
	"logfunnel/src/internal/pipeline"
	"logfunnel/src/internal/sink"
	"logfunnel/src/internal/source"

	"github.com/lixenwraith/log"
)

// bootstrap builds the pipeline, its delegates, and the ingest sources
// from configuration
func bootstrap(cfg *config.Config) (*pipeline.Pipeline, []source.Source, *limit.Limiter, error) {
	pipeOpts, err := cfg.Pipeline.PipelineOptions()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("pipeline config: %w", err)
	}

	p := pipeline.New(pipeOpts, logger)
	formatter := format.NewLineFormatter("", logger)

	if cfg.Console.Enabled {
		level, err := core.ParseLevel(cfg.Console.Level)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("console config: %w", err)
		}
		console, err := sink.NewConsoleSink(cfg.Console.Target, level, formatter, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create console sink: %w", err)
		}
		if err := p.Register("console", console); err != nil {
			return nil, nil, nil, err
		}
	}

	if cfg.File.Enabled {
		fileOpts, err := cfg.File.FileOptions()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("file config: %w", err)
		}
		file, err := sink.NewFileSink(fileOpts, formatter, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create file sink: %w", err)
		}
		if err := p.Register("file", file); err != nil {
			return nil, nil, nil, err
		}
	}

	var limiter *limit.Limiter
	if cfg.Ingest.Limit.Enabled {
		limiter = limit.New(cfg.Ingest.Limit.RequestsPerSecond, cfg.Ingest.Limit.BurstSize)
	}

	var verifier *auth.TokenVerifier
	if cfg.Ingest.Auth.Enabled {
		verifier, err = auth.NewTokenVerifier(cfg.Ingest.Auth.JWTSecret, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("ingest auth config: %w", err)
		}
	}

	var sources []source.Source

	stdin, err := source.NewStdinSource(p, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create stdin source: %w", err)
	}
	sources = append(sources, stdin)

	if cfg.Ingest.HTTP.Enabled {
		httpSrc, err := source.NewHTTPSource(source.HTTPOptions{
			Host:       cfg.Ingest.HTTP.Host,
			Port:       cfg.Ingest.HTTP.Port,
			IngestPath: cfg.Ingest.HTTP.IngestPath,
			Limiter:    limiter,
			Verifier:   verifier,
		}, p, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create http source: %w", err)
		}
		sources = append(sources, httpSrc)
	}

	if cfg.Ingest.TCP.Enabled {
		tcpSrc, err := source.NewTCPSource(source.TCPOptions{
			Host:    cfg.Ingest.TCP.Host,
			Port:    cfg.Ingest.TCP.Port,
			Limiter: limiter,
		}, p, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create tcp source: %w", err)
		}
		sources = append(sources, tcpSrc)
	}

	return p, sources, limiter, nil
}

// initializeLogger sets up the diagnostic logger based on
// configuration
func initializeLogger(cfg *config.Config) error {
	logger = log.NewLogger()

	if *quiet {
		return logger.ApplyConfigString(
			"disable_file=true",
			"enable_console=false",
			"level=255")
	}

	levelValue, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	configArgs := []string{fmt.Sprintf("level=%d", levelValue)}

	switch cfg.Logging.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_console=true",
			"console_target=stdout")

	case "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_console=true",
			"console_target=stderr")

	default:
		return fmt.Errorf("invalid log output mode: %s", cfg.Logging.Output)
	}

	return logger.ApplyConfigString(configArgs...)
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
