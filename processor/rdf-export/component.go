// Package rdfexport provides a streaming component that consumes entity
// JSON records from JetStream and publishes one RDF document per record.
package rdfexport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/export"
	"github.com/c360studio/semrdf/mapping"
	"github.com/c360studio/semrdf/metrics"
	"github.com/c360studio/semrdf/rdfbuilder"
	"github.com/c360studio/semrdf/vocabulary"
	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Message is the part of jetstream.Msg the component uses.
type Message interface {
	Data() []byte
	Subject() string
	Ack() error
	Nak() error
	Term() error
}

// Publisher publishes output messages. jetstream.JetStream implements it.
type Publisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Dependencies are the collaborators of the component.
type Dependencies struct {
	// NATSClient is required by Start.
	NATSClient *natsclient.Client
	// Publisher receives the output. Start falls back to the JetStream
	// context of NATSClient when it is nil.
	Publisher  Publisher
	Vocabulary *vocabulary.Vocabulary
	// Lookup resolves mentioned entities. Nil disables resolution.
	Lookup   rdfbuilder.RevisionLookup
	Registry *rdfbuilder.Registry
	Metrics  *metrics.Collector
	Logger   *slog.Logger
}

// Component implements the rdf-export processor.
type Component struct {
	name   string
	config Config
	deps   Dependencies
	logger *slog.Logger

	format export.Format
	flavor rdfbuilder.Flavor

	// Resolved subjects from port config
	inputStream   string
	inputSubject  string
	outputSubject string

	// Lifecycle
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Metrics
	messagesProcessed atomic.Int64
	renderErrors      atomic.Int64
	publishErrors     atomic.Int64
	lastActivityMu    sync.RWMutex
	lastActivity      time.Time
}

// NewComponent creates a new rdf-export component.
func NewComponent(config Config, deps Dependencies) (*Component, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Vocabulary == nil {
		return nil, fmt.Errorf("vocabulary required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	inputStream, inputSubject, outputSubject := config.subjects()
	return &Component{
		name:          "rdf-export",
		config:        config,
		deps:          deps,
		logger:        deps.Logger,
		format:        config.GetFormat(),
		flavor:        config.GetFlavor(),
		inputStream:   inputStream,
		inputSubject:  inputSubject,
		outputSubject: outputSubject,
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start begins consuming entity records and producing RDF output.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.deps.NATSClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}
	if c.deps.Publisher == nil {
		js, err := c.deps.NATSClient.JetStream()
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("get jetstream: %w", err)
		}
		c.deps.Publisher = js
	}

	c.running = true
	c.startTime = time.Now()

	consumeCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	consumerCfg := natsclient.StreamConsumerConfig{
		StreamName:    c.inputStream,
		ConsumerName:  c.config.GetConsumerName(),
		FilterSubject: c.inputSubject,
		DeliverPolicy: "new",
		AckPolicy:     "explicit",
		MaxDeliver:    c.config.GetMaxDeliver(),
		AckWait:       c.config.GetAckWait(),
	}

	err := c.deps.NATSClient.ConsumeStreamWithConfig(consumeCtx, consumerCfg, func(ctx context.Context, msg jetstream.Msg) {
		c.HandleMessage(ctx, msg)
	})
	if err != nil {
		// Rollback running state on failure
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("start consumer: %w", err)
	}

	c.logger.Info("rdf-export started",
		"format", c.format,
		"flavor", c.config.Flavor,
		"input", c.inputSubject,
		"output", c.outputSubject)

	return nil
}

// HandleMessage renders one entity record and publishes the result.
// Undecodable records are terminated; render and publish failures are
// negatively acknowledged for redelivery.
func (c *Component) HandleMessage(ctx context.Context, msg Message) {
	payload, err := c.Render(ctx, msg.Data())
	if err != nil {
		c.observe(err)
		c.renderErrors.Add(1)
		c.logger.Warn("Failed to render RDF",
			"subject", msg.Subject(),
			"error", err)
		if errors.Is(err, errBadRecord) {
			_ = msg.Term()
		} else {
			_ = msg.Nak()
		}
		return
	}

	if err := c.publish(ctx, payload); err != nil {
		c.observe(err)
		c.publishErrors.Add(1)
		c.logger.Warn("Failed to publish RDF output",
			"entity_id", payload.EntityID,
			"subject", c.outputSubject,
			"error", err)
		_ = msg.Nak()
		return
	}

	c.observe(nil)
	_ = msg.Ack()
	c.messagesProcessed.Add(1)
	c.updateLastActivity()

	c.logger.Debug("Exported entity to RDF",
		"entity_id", payload.EntityID,
		"format", c.format,
		"output_bytes", len(payload.Content))
}

var errBadRecord = errors.New("bad entity record")

// Render builds the RDF document for one JSON record.
func (c *Component) Render(ctx context.Context, data []byte) (*Payload, error) {
	rec, err := entity.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRecord, err)
	}

	w, err := export.NewWriter(c.format)
	if err != nil {
		return nil, err
	}
	opts := []rdfbuilder.Option{
		rdfbuilder.WithFlavor(c.flavor),
		rdfbuilder.WithLogger(c.logger),
		rdfbuilder.WithMaxResolvePasses(c.config.MaxResolvePasses),
		rdfbuilder.WithDedupeBag(mapping.NewHashDedupeBag(16)),
		rdfbuilder.WithPagePropsProvider(mapping.EntityPageProps{}),
	}
	if c.deps.Metrics != nil {
		opts = append(opts, rdfbuilder.WithObserver(c.deps.Metrics))
	}
	b := rdfbuilder.New(c.deps.Vocabulary, w, c.deps.Lookup, c.deps.Registry, opts...)

	if err := b.StartDocument(); err != nil {
		return nil, err
	}

	payload := &Payload{
		Format:   string(c.format),
		MIMEType: mimeType(c.format),
		Flavor:   c.config.Flavor,
	}
	if rec.Redirect != nil {
		payload.EntityID = rec.Redirect.From.Serialization()
		payload.Redirect = true
		err = b.AddEntityRedirect(rec.Redirect.From, rec.Redirect.To)
	} else {
		payload.EntityID = rec.Document.ID().Serialization()
		err = b.AddEntity(rec.Document)
		if err == nil {
			err = b.AddEntityPageProps(rec.Document)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := b.ResolveMentionedEntities(ctx); err != nil {
		return nil, err
	}
	if err := b.FinishDocument(); err != nil {
		return nil, err
	}
	if payload.Content, err = b.RDF(); err != nil {
		return nil, err
	}
	payload.ExportedAt = time.Now().UTC()
	return payload, nil
}

func (c *Component) publish(ctx context.Context, payload *Payload) error {
	if c.deps.Publisher == nil {
		return fmt.Errorf("no publisher")
	}
	if err := payload.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	msg := nats.NewMsg(c.outputSubject)
	msg.Data = data
	msg.Header.Set("Entity-Id", payload.EntityID)
	msg.Header.Set("Content-Type", "application/json")
	_, err = c.deps.Publisher.PublishMsg(ctx, msg)
	return err
}

func (c *Component) observe(err error) {
	if c.deps.Metrics != nil {
		c.deps.Metrics.DocumentDone(err)
	}
}

func mimeType(f export.Format) string {
	if info, ok := export.GetFormatInfo(f); ok {
		return info.MIMEType
	}
	return ""
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	c.running = false
	c.logger.Info("rdf-export stopped",
		"messages_processed", c.messagesProcessed.Load(),
		"render_errors", c.renderErrors.Load(),
		"publish_errors", c.publishErrors.Load())

	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        c.name,
		Type:        "processor",
		Description: "Renders Wikibase entity records as RDF documents (Turtle, N-Triples, JSON-LD)",
		Version:     "1.0.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, portDef := range c.config.Ports.Inputs {
		ports[i] = buildPort(portDef, component.DirectionInput)
	}
	return ports
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = buildPort(portDef, component.DirectionOutput)
	}
	return ports
}

// buildPort uses JetStreamPort for jetstream ports and NATSPort otherwise.
func buildPort(portDef component.PortDefinition, direction component.Direction) component.Port {
	port := component.Port{
		Name:        portDef.Name,
		Direction:   direction,
		Required:    portDef.Required,
		Description: portDef.Description,
	}
	if portDef.Type == "jetstream" {
		port.Config = component.JetStreamPort{
			StreamName: portDef.StreamName,
			Subjects:   []string{portDef.Subject},
		}
	} else {
		port.Config = component.NATSPort{
			Subject: portDef.Subject,
		}
	}
	return port
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return rdfExportSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	s := c.Stats()

	status := "stopped"
	if s.Running {
		status = "running"
	}
	return component.HealthStatus{
		Healthy:    s.Running,
		LastCheck:  time.Now(),
		ErrorCount: int(s.RenderErrors + s.PublishErrors),
		Uptime:     s.Uptime,
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	s := c.Stats()

	var rate float64
	if total := s.MessagesProcessed + s.RenderErrors + s.PublishErrors; total > 0 {
		rate = float64(s.RenderErrors+s.PublishErrors) / float64(total)
	}
	return component.FlowMetrics{
		ErrorRate:    rate,
		LastActivity: s.LastActivity,
	}
}

// Stats is a snapshot of the component counters.
type Stats struct {
	Running           bool
	Uptime            time.Duration
	MessagesProcessed int64
	RenderErrors      int64
	PublishErrors     int64
	LastActivity      time.Time
}

// Stats returns the current counters.
func (c *Component) Stats() Stats {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	s := Stats{
		Running:           running,
		MessagesProcessed: c.messagesProcessed.Load(),
		RenderErrors:      c.renderErrors.Load(),
		PublishErrors:     c.publishErrors.Load(),
		LastActivity:      c.getLastActivity(),
	}
	if running {
		s.Uptime = time.Since(startTime)
	}
	return s
}

func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
