// FILE: src/cmd/logfunnel/main.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logfunnel/src/internal/config"
	"logfunnel/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

func main() {
	if err := parseFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if *configFile != "" {
		os.Setenv("LOGFUNNEL_CONFIG_FILE", *configFile)
	}

	cfg, err := config.LoadWithCLI(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := initializeLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer shutdownLogger()

	logger.Info("msg", "logfunnel starting",
		"version", version.String(),
		"config_file", *configFile)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p, sources, limiter, err := bootstrap(cfg)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap", "error", err)
		shutdownLogger()
		os.Exit(1)
	}

	for _, src := range sources {
		if err := src.Start(); err != nil {
			logger.Error("msg", "Failed to start source", "error", err)
			shutdownLogger()
			os.Exit(1)
		}
	}

	logger.Info("msg", "logfunnel started",
		"version", version.Short(),
		"sources", len(sources))

	sig := <-sigChan
	logger.Info("msg", "Shutdown signal received, starting graceful shutdown",
		"signal", sig.String())

	// Stop producers first, then drain the pipeline
	for _, src := range sources {
		src.Stop()
	}
	p.Close()
	if limiter != nil {
		limiter.Stop()
	}

	logger.Info("msg", "Shutdown complete")
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
		}
	}
}
