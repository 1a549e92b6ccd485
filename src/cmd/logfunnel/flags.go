// FILE: src/cmd/logfunnel/flags.go
package main

import (
	"flag"
	"fmt"
	"os"
)

// Command-line flags
var (
	configFile  = flag.String("config", "", "Config file path")
	showVersion = flag.Bool("version", false, "Show version information")
	quiet       = flag.Bool("quiet", false, "Suppress diagnostic output")
)

func init() {
	flag.Usage = customUsage
}

func customUsage() {
	fmt.Fprintf(os.Stderr, "logfunnel - ordered, rotating log event funnel\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  -config string\n\tConfig file path\n")
	fmt.Fprintf(os.Stderr, "  -version\n\tShow version information\n")
	fmt.Fprintf(os.Stderr, "  -quiet\n\tSuppress diagnostic output\n")

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  # Run with defaults: stdin backend feed, console and file delegates\n")
	fmt.Fprintf(os.Stderr, "  %s\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  # Run with a config file enabling the HTTP ingest source\n")
	fmt.Fprintf(os.Stderr, "  %s --config /etc/logfunnel.toml\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "Environment Variables:\n")
	fmt.Fprintf(os.Stderr, "  LOGFUNNEL_CONFIG_FILE  Config file path\n")
	fmt.Fprintf(os.Stderr, "  LOGFUNNEL_CONFIG_DIR   Config directory\n")
}

func parseFlags() error {
	flag.Parse()
	return nil
}
