package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/c360studio/semrdf/config"
	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/export"
	"github.com/c360studio/semrdf/mapping"
	"github.com/c360studio/semrdf/metrics"
	"github.com/c360studio/semrdf/rdfbuilder"
	"github.com/c360studio/semrdf/storage"
	"github.com/c360studio/semrdf/vocabulary"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"
)

// App holds the collaborators of one command run.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *storage.Store
	lookup   rdfbuilder.RevisionLookup
	vocab    *vocabulary.Vocabulary
	registry *rdfbuilder.Registry
	metrics  *metrics.Collector

	natsClient *natsclient.Client
}

// loadConfig loads the layered configuration and applies flag overrides.
func loadConfig(flags *globalFlags, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.NewLoader(logger).Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if flags.format != "" {
		cfg.Output.Format = flags.format
	}
	if flags.flavor != "" {
		cfg.Output.Flavor = flags.flavor
	}
	if len(flags.languages) > 0 {
		cfg.Output.Languages = flags.languages
	}
	if flags.storeBackend != "" {
		cfg.Store.Backend = flags.storeBackend
	}
	if flags.storePath != "" {
		cfg.Store.Path = flags.storePath
	}
	if flags.natsURL != "" {
		cfg.NATS.URL = flags.natsURL
	}
	if flags.metricsTextfile != "" {
		cfg.Metrics.Textfile = flags.metricsTextfile
	}
	if flags.noResolve {
		cfg.Resolve.Disabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewApp opens the configured store and builds the vocabulary and mapper
// registry.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	vocab, err := vocabulary.New(cfg.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("create vocabulary: %w", err)
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		vocab:   vocab,
		metrics: metrics.NewCollector(),
	}
	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.lookup = a.store
	if cfg.Store.CacheTTL > 0 {
		a.lookup = storage.NewCachingLookup(a.store, cfg.Store.CacheTTL)
	}
	a.registry = mapping.NewRegistry(mapping.Options{
		Terms:     a.store,
		DataTypes: a.store,
		Languages: cfg.Output.Languages,
	})
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	opts := []storage.Option{storage.WithLogger(a.logger)}

	switch a.cfg.Store.Backend {
	case config.BackendMemory:
		a.store = storage.NewMemory(opts...)
	case config.BackendSQLite:
		s, err := storage.NewSQLite(a.cfg.Store.Path, opts...)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		a.store = s
	case config.BackendNATS:
		js, err := a.jetStream(ctx)
		if err != nil {
			return err
		}
		backend, err := storage.NewKVBackend(ctx, js, a.cfg.Store.Bucket)
		if err != nil {
			return fmt.Errorf("open kv store: %w", err)
		}
		a.store = storage.New(backend, opts...)
	default:
		return fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}

	a.logger.Debug("Opened entity store", "backend", a.cfg.Store.Backend)
	return nil
}

// connectNATS connects to NATS on first use. NATS_URL overrides the
// configured URL.
func (a *App) connectNATS(ctx context.Context) (*natsclient.Client, error) {
	if a.natsClient != nil {
		return a.natsClient, nil
	}

	natsURL := a.cfg.NATS.URL
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		natsURL = envURL
	}
	a.logger.Info("Connecting to NATS", "url", natsURL)

	client, err := natsclient.NewClient(natsURL,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", natsURL, err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.WaitForConnection(connCtx); err != nil {
		client.Close(ctx)
		return nil, fmt.Errorf("connect to NATS at %s: %w", natsURL, err)
	}

	a.natsClient = client
	a.logger.Info("Connected to NATS", "url", natsURL)
	return client, nil
}

func (a *App) jetStream(ctx context.Context) (jetstream.JetStream, error) {
	client, err := a.connectNATS(ctx)
	if err != nil {
		return nil, err
	}
	js, err := client.JetStream()
	if err != nil {
		return nil, fmt.Errorf("get jetstream: %w", err)
	}
	return js, nil
}

// Close releases the store and the NATS connection.
func (a *App) Close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
	}
	if a.natsClient != nil {
		a.natsClient.Close(context.Background())
	}
	return err
}

func (a *App) newBuilder(w export.Writer) *rdfbuilder.Builder {
	return rdfbuilder.New(a.vocab, w, a.lookup, a.registry,
		rdfbuilder.WithFlavor(a.cfg.Flavor()),
		rdfbuilder.WithLogger(a.logger),
		rdfbuilder.WithObserver(a.metrics),
		rdfbuilder.WithMaxResolvePasses(a.cfg.Resolve.MaxPasses),
		rdfbuilder.WithDedupeBag(mapping.NewHashDedupeBag(16)),
		rdfbuilder.WithPagePropsProvider(mapping.EntityPageProps{}),
	)
}

// Render writes one RDF document holding ids to out. The dump header is
// included when header is set.
func (a *App) Render(ctx context.Context, out io.Writer, ids []entity.ID, header bool) (err error) {
	defer func() { a.metrics.DocumentDone(err) }()

	w, err := export.NewWriter(a.cfg.Format(), export.WithOutput(out, a.cfg.Output.FlushThreshold))
	if err != nil {
		return err
	}
	b := a.newBuilder(w)

	if err := b.StartDocument(); err != nil {
		return err
	}
	if header {
		if err := b.AddDumpHeader(time.Now().UTC()); err != nil {
			return err
		}
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.addEntity(ctx, b, id); err != nil {
			return err
		}
	}
	if !a.cfg.Resolve.Disabled {
		if err := b.ResolveMentionedEntities(ctx); err != nil {
			return fmt.Errorf("resolve mentioned entities: %w", err)
		}
	}
	if err := b.FinishDocument(); err != nil {
		return err
	}

	rest, err := b.RDF()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, rest); err != nil {
		return fmt.Errorf("write rdf: %w", err)
	}

	a.logger.Info("Rendered RDF document",
		"entities", len(ids),
		"mentioned", b.Mentions().Len(),
		"format", a.cfg.Output.Format,
		"flavor", a.cfg.Output.Flavor)
	return nil
}

func (a *App) addEntity(ctx context.Context, b *rdfbuilder.Builder, id entity.ID) error {
	rec, err := a.store.Record(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("entity %s: %w", id.Serialization(), err)
	}
	if err != nil {
		return err
	}
	if rec.IsRedirect() {
		return b.AddEntityRedirect(id, rec.Redirect)
	}

	doc, err := a.store.Document(ctx, id)
	if err != nil {
		return err
	}
	if err := b.AddEntity(doc); err != nil {
		return err
	}
	if err := b.AddEntityRevisionInfo(id, rec.Revision, rec.Modified); err != nil {
		return err
	}
	return b.AddEntityPageProps(doc)
}

// writeMetrics writes the metrics textfile when one is configured.
func (a *App) writeMetrics() error {
	if a.cfg.Metrics.Textfile == "" {
		return nil
	}
	return a.metrics.WriteTextfile(a.cfg.Metrics.Textfile)
}

// withApp runs fn with an App built from the flags. The logger is tagged
// with a run id.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, app *App) error) error {
	logger := newLogger(flags.logLevel, cmd.ErrOrStderr()).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	cfg, err := loadConfig(flags, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Failed to close entity store", "error", err)
		}
	}()

	if err := fn(ctx, app); err != nil {
		return err
	}
	return app.writeMetrics()
}

// openOutput returns the destination for rendered RDF: the named file, or
// stdout when path is empty or "-".
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
