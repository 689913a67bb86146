// Package main provides the semrdf binary entry point.
// semrdf renders Wikibase entity JSON as RDF in Turtle, N-Triples or
// JSON-LD.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semrdf"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every subcommand. Empty
// values leave the loaded configuration untouched.
type globalFlags struct {
	configPath      string
	logLevel        string
	format          string
	flavor          string
	output          string
	storeBackend    string
	storePath       string
	natsURL         string
	metricsTextfile string
	languages       []string
	noResolve       bool
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Wikibase entity RDF exporter",
		Long: `semrdf renders Wikibase entities as RDF.

Entity JSON records (one per line, or a Wikidata JSON dump) are imported
into an entity store. Documents are then rendered in Turtle, N-Triples or
JSON-LD, including stubs for the entities they mention and owl:sameAs
triples for redirects.

Stores:
- memory: records live for a single run
- sqlite: records persist in a local database file
- nats:   records live in a JetStream key-value bucket`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVarP(&flags.format, "format", "f", "", "Output format (turtle, ntriples, jsonld)")
	pf.StringVar(&flags.flavor, "flavor", "", "Output flavor (full, dump, truthy)")
	pf.StringVarP(&flags.output, "output", "o", "", "Output file (default stdout)")
	pf.StringVar(&flags.storeBackend, "store", "", "Entity store backend (memory, sqlite, nats)")
	pf.StringVar(&flags.storePath, "store-path", "", "SQLite database path")
	pf.StringVar(&flags.natsURL, "nats-url", "", "NATS server URL")
	pf.StringVar(&flags.metricsTextfile, "metrics-textfile", "", "Write a Prometheus text snapshot to this file")
	pf.StringSliceVar(&flags.languages, "languages", nil, "Restrict terms to these language codes")
	pf.BoolVar(&flags.noResolve, "no-resolve", false, "Do not add stubs for mentioned entities")

	cmd.AddCommand(dumpCmd(flags))
	cmd.AddCommand(entityCmd(flags))
	cmd.AddCommand(importCmd(flags))
	cmd.AddCommand(serveCmd(flags))

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// newLogger returns a text logger on w at the named level.
func newLogger(logLevel string, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
