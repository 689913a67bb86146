package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/c360studio/semrdf/entity"
	rdfexport "github.com/c360studio/semrdf/processor/rdf-export"
	"github.com/c360studio/semstreams/component"
	"github.com/spf13/cobra"
)

func dumpCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [files or globs...]",
		Short: "Render every stored entity as one RDF document",
		Long: `Imports the given entity JSON files (if any), then renders every entity
in the store as a single RDF document with a dump header. Use "-" to read
records from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *App) error {
				if len(args) > 0 {
					files, err := ResolveInputs(args)
					if err != nil {
						return err
					}
					if _, err := app.ImportFiles(ctx, files, cmd.InOrStdin()); err != nil {
						return err
					}
				}

				ids, err := app.store.IDs(ctx)
				if err != nil {
					return err
				}
				return renderTo(ctx, cmd, app, flags.output, ids, true)
			})
		},
	}
}

func entityCmd(flags *globalFlags) *cobra.Command {
	var inputs []string

	cmd := &cobra.Command{
		Use:   "entity <id>...",
		Short: "Render the named entities as one RDF document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]entity.ID, 0, len(args))
			for _, arg := range args {
				id, err := entity.ParseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			return withApp(cmd, flags, func(ctx context.Context, app *App) error {
				if len(inputs) > 0 {
					files, err := ResolveInputs(inputs)
					if err != nil {
						return err
					}
					if _, err := app.ImportFiles(ctx, files, cmd.InOrStdin()); err != nil {
						return err
					}
				}
				return renderTo(ctx, cmd, app, flags.output, ids, false)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "Entity JSON files or globs to import first")
	return cmd
}

func importCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <files or globs>...",
		Short: "Import entity JSON records into the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := ResolveInputs(args)
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, app *App) error {
				stats, err := app.ImportFiles(ctx, files, cmd.InOrStdin())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d records from %d files (%d skipped)\n",
					stats.Imported, stats.Files, stats.Skipped)
				return nil
			})
		},
	}
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var processorConfig string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the rdf-export processor on NATS JetStream",
		Long: `Consumes entity JSON records from a JetStream stream and publishes one RDF
document per record until interrupted. Mentioned entities are resolved
against the configured store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *App) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				rawConfig, err := app.processorConfig(processorConfig)
				if err != nil {
					return err
				}
				natsClient, err := app.connectNATS(ctx)
				if err != nil {
					return err
				}

				componentRegistry := component.NewRegistry()
				if err := rdfexport.Register(componentRegistry, app.processorDeps()); err != nil {
					return fmt.Errorf("register rdf-export: %w", err)
				}
				factories := componentRegistry.ListFactories()
				app.logger.Debug("Component factories registered", "count", len(factories))

				d, err := rdfexport.NewFactory(app.processorDeps())(rawConfig, component.Dependencies{
					NATSClient: natsClient,
					Logger:     app.logger,
				})
				if err != nil {
					return fmt.Errorf("create rdf-export: %w", err)
				}
				comp, ok := d.(lifecycleComponent)
				if !ok {
					return fmt.Errorf("rdf-export has no lifecycle")
				}
				if err := comp.Initialize(); err != nil {
					return fmt.Errorf("initialize rdf-export: %w", err)
				}
				if err := comp.Start(ctx); err != nil {
					return err
				}

				app.logger.Info("semrdf ready", "version", Version, "component", comp.Meta().Name)
				<-ctx.Done()
				return comp.Stop(30 * time.Second)
			})
		},
	}

	cmd.Flags().StringVar(&processorConfig, "processor-config", "", "rdf-export processor config (JSON)")
	return cmd
}

type lifecycleComponent interface {
	component.Discoverable
	Initialize() error
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

// processorDeps returns the domain collaborators of the rdf-export processor.
func (a *App) processorDeps() rdfexport.Dependencies {
	deps := rdfexport.Dependencies{
		Vocabulary: a.vocab,
		Registry:   a.registry,
		Metrics:    a.metrics,
		Logger:     a.logger,
	}
	if !a.cfg.Resolve.Disabled {
		deps.Lookup = a.lookup
	}
	return deps
}

// processorConfig returns the raw rdf-export config: defaults, then the
// output settings of the app config, then the JSON file at path if given.
func (a *App) processorConfig(path string) (json.RawMessage, error) {
	cfg := rdfexport.DefaultConfig()
	cfg.Format = a.cfg.Output.Format
	cfg.Flavor = a.cfg.Output.Flavor
	cfg.MaxResolvePasses = a.cfg.Resolve.MaxPasses

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read processor config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse processor config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid processor config: %w", err)
	}
	return json.Marshal(cfg)
}

func renderTo(ctx context.Context, cmd *cobra.Command, app *App, path string, ids []entity.ID, header bool) error {
	out, closeOut, err := openOutput(cmd, path)
	if err != nil {
		return err
	}
	if err := app.Render(ctx, out, ids, header); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}
