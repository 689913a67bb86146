// Package rdfbuilder emits the RDF of entities and of every entity they
// reference into a single streaming writer.
//
// A Builder is used once per document:
//
//	b.StartDocument()
//	b.AddEntity(doc)            // any number of times
//	b.ResolveMentionedEntities(ctx)
//	b.FinishDocument()
//	text, err := b.RDF()
//
// AddEntity writes the full entity and every sub-entity it reports.
// ResolveMentionedEntities then writes a stub or an owl:sameAs redirect for
// each referenced entity that was not written in full. A Builder is not
// safe for concurrent use.
package rdfbuilder

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/export"
	"github.com/c360studio/semrdf/vocabulary"
)

// Lifecycle errors.
var (
	ErrAlreadyStarted      = errors.New("document already started")
	ErrNotStarted          = errors.New("document not started")
	ErrDocumentFinished    = errors.New("document already finished")
	ErrDocumentNotFinished = errors.New("document not finished")
)

// DefaultMaxResolvePasses bounds ResolveMentionedEntities.
const DefaultMaxResolvePasses = 64

// timestampLayout is ISO 8601 in UTC, as xsd:dateTime.
const timestampLayout = "2006-01-02T15:04:05Z"

type docState int

const (
	stateNew docState = iota
	stateStarted
	stateFinished
)

// Option configures a Builder.
type Option func(*Builder)

// WithFlavor sets the facets to produce. The default is FlavorFull.
func WithFlavor(f Flavor) Option {
	return func(b *Builder) { b.flavor = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(b *Builder) {
		if o != nil {
			b.observer = o
		}
	}
}

// WithMaxResolvePasses caps the number of resolve passes. A value <= 0
// removes the cap.
func WithMaxResolvePasses(n int) Option {
	return func(b *Builder) { b.maxPasses = n }
}

// WithDedupeBag sets the bag shared by the mappers. By default nothing is
// deduplicated.
func WithDedupeBag(bag DedupeBag) Option {
	return func(b *Builder) {
		if bag != nil {
			b.dedupe = bag
		}
	}
}

// WithPagePropsProvider sets the source of page properties for
// AddEntityPageProps.
func WithPagePropsProvider(p PagePropsProvider) Option {
	return func(b *Builder) { b.pageProps = p }
}

// Builder writes the RDF document for a set of entities.
type Builder struct {
	vocab  *vocabulary.Vocabulary
	writer export.Writer
	lookup RevisionLookup

	flavor    Flavor
	logger    *slog.Logger
	observer  Observer
	maxPasses int
	dedupe    DedupeBag
	pageProps PagePropsProvider

	mentions *MentionTracker
	queue    *pendingQueue
	listener *mentionSink
	full     map[entity.Type]EntityMapper
	stubs    map[entity.Type]StubMapper

	state docState
	rdf   string
}

// New creates a Builder writing to w. Mappers are created from registry;
// a nil registry emits metadata only.
func New(vocab *vocabulary.Vocabulary, w export.Writer, lookup RevisionLookup, registry *Registry, opts ...Option) *Builder {
	b := &Builder{
		vocab:     vocab,
		writer:    w,
		lookup:    lookup,
		flavor:    FlavorFull,
		logger:    slog.Default(),
		observer:  nopObserver{},
		maxPasses: DefaultMaxResolvePasses,
		dedupe:    nullDedupeBag{},
		mentions:  NewMentionTracker(),
		queue:     &pendingQueue{},
	}
	for _, opt := range opts {
		opt(b)
	}

	b.listener = &mentionSink{flavor: b.flavor, mentions: b.mentions, queue: b.queue}
	b.full, b.stubs = registry.build(MapperDeps{
		Vocabulary: vocab,
		Writer:     w,
		Mentions:   b.listener,
		Flavor:     b.flavor,
		Dedupe:     b.dedupe,
		Logger:     b.logger,
	})
	return b
}

// Flavor returns the facets this builder produces.
func (b *Builder) Flavor() Flavor { return b.flavor }

// Mentions returns the tracker of referenced entities.
func (b *Builder) Mentions() *MentionTracker { return b.mentions }

// Namespaces returns the namespace name to IRI map of the vocabulary.
func (b *Builder) Namespaces() map[string]string {
	return b.vocab.Namespaces()
}

// PagePropertyDefs returns the page properties this builder can emit.
func (b *Builder) PagePropertyDefs() map[string]vocabulary.PagePropertyDef {
	return b.vocab.PagePropertyDefs()
}

// StartDocument declares the namespaces and starts the writer.
func (b *Builder) StartDocument() error {
	switch b.state {
	case stateStarted:
		return ErrAlreadyStarted
	case stateFinished:
		return ErrDocumentFinished
	}

	ns := b.Namespaces()
	names := make([]string, 0, len(ns))
	for name := range ns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.writer.Prefix(name, ns[name])
	}
	b.writer.Start()
	b.state = stateStarted
	return b.sinkErr("start document")
}

// FinishDocument finishes the writer. Nothing can be added afterwards.
func (b *Builder) FinishDocument() error {
	if err := b.checkStarted(); err != nil {
		return err
	}
	b.writer.Finish()
	b.state = stateFinished
	return b.sinkErr("finish document")
}

// RDF returns the serialized document. It may be called repeatedly after
// FinishDocument. When the writer streams to an io.Writer only the
// unflushed remainder is returned.
func (b *Builder) RDF() (string, error) {
	if b.state != stateFinished {
		return "", ErrDocumentNotFinished
	}
	rest, err := b.writer.Drain()
	b.rdf += rest
	if err != nil {
		return b.rdf, fmt.Errorf("drain rdf: %w", err)
	}
	return b.rdf, nil
}

func (b *Builder) checkStarted() error {
	switch b.state {
	case stateNew:
		return ErrNotStarted
	case stateFinished:
		return ErrDocumentFinished
	}
	return nil
}

func (b *Builder) sinkErr(op string) error {
	if err := b.writer.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// addEntityMetaData writes the type triple of id.
func (b *Builder) addEntityMetaData(id entity.ID) {
	b.writer.About(b.vocab.EntityNamespaceName(id), b.vocab.EntityLName(id)).
		A(vocabulary.NSOntology, b.vocab.EntityTypeName(id.Type()))
}

// AddEntity writes doc and every sub-entity reported while writing it.
// Afterwards doc is resolved and the pending queue is empty.
func (b *Builder) AddEntity(doc entity.Document) error {
	if err := b.checkStarted(); err != nil {
		return err
	}

	err := b.addSingleEntity(doc)
	b.queue.drainAll(func(sub entity.Document) {
		if err == nil {
			err = b.addSingleEntity(sub)
		}
	})
	if err != nil {
		return fmt.Errorf("add entity %s: %w", doc.ID(), err)
	}
	return b.sinkErr("add entity " + doc.ID().Serialization())
}

func (b *Builder) addSingleEntity(doc entity.Document) error {
	id := doc.ID()
	b.addEntityMetaData(id)

	if m, ok := b.full[doc.Type()]; ok {
		if err := m.AddEntity(doc); err != nil {
			return err
		}
	} else {
		b.logger.Debug("No entity mapper, writing metadata only", "entity_id", id.Serialization(), "type", doc.Type())
	}

	b.mentions.MarkResolved(id)
	b.observer.EntityAdded(doc.Type())
	return nil
}

// AddEntityRevisionInfo describes the data set of an entity revision.
// License and format version are added with ProduceVersionInfo.
func (b *Builder) AddEntityRevisionInfo(id entity.ID, revision int64, modified time.Time) error {
	if err := b.checkStarted(); err != nil {
		return err
	}

	lname := b.vocab.EntityLName(id)
	b.writer.About(b.vocab.DataNamespaceName(id), lname).
		A(vocabulary.NSSchemaOrg, "Dataset").
		Say(vocabulary.NSSchemaOrg, "about").Is(b.vocab.EntityNamespaceName(id), lname)

	if b.flavor.Has(ProduceVersionInfo) {
		b.writer.
			Say(vocabulary.NSCC, "license").Is(b.vocab.LicenseURL(), "").
			Say(vocabulary.NSSchemaOrg, "softwareVersion").Value(vocabulary.FormatVersion, "", "")
	}

	b.writer.
		Say(vocabulary.NSSchemaOrg, "version").Value(strconv.FormatInt(revision, 10), vocabulary.NSXSD, "integer").
		Say(vocabulary.NSSchemaOrg, "dateModified").Value(modified.UTC().Format(timestampLayout), vocabulary.NSXSD, "dateTime")
	return b.sinkErr("add revision info " + id.Serialization())
}

// AddEntityPageProps writes the page properties of doc on its data node.
// It does nothing unless ProducePageProps is set and a provider is
// configured. Properties without a definition are skipped.
func (b *Builder) AddEntityPageProps(doc entity.Document) error {
	if err := b.checkStarted(); err != nil {
		return err
	}
	if !b.flavor.Has(ProducePageProps) || b.pageProps == nil {
		return nil
	}
	defs := b.PagePropertyDefs()
	if len(defs) == 0 {
		return nil
	}
	props := b.pageProps.PageProperties(doc)
	if len(props) == 0 {
		return nil
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	id := doc.ID()
	lname := b.vocab.EntityLName(id)
	for _, name := range names {
		def, ok := defs[name]
		if !ok || def.Name == "" {
			continue
		}
		b.writer.About(b.vocab.DataNamespaceName(id), lname).Say(vocabulary.NSOntology, def.Name)
		writePagePropValue(b.writer, def.Type, props[name])
	}
	return b.sinkErr("add page props " + id.Serialization())
}

func writePagePropValue(w export.Writer, typ string, v any) {
	switch typ {
	case "integer":
		var n int64
		switch x := v.(type) {
		case int:
			n = int64(x)
		case int64:
			n = x
		case float64:
			n = int64(x)
		case string:
			n, _ = strconv.ParseInt(x, 10, 64)
		}
		w.Value(strconv.FormatInt(n, 10), vocabulary.NSXSD, "integer")
	default:
		w.Value(fmt.Sprint(v), "", "")
	}
}

// AddDumpHeader writes the header of a full dump, including license and
// format version.
func (b *Builder) AddDumpHeader(modified time.Time) error {
	if err := b.checkStarted(); err != nil {
		return err
	}
	b.writer.About(vocabulary.NSOntology, vocabulary.ClassDump).
		A(vocabulary.NSSchemaOrg, "Dataset").
		A(vocabulary.NSOWL, "Ontology").
		Say(vocabulary.NSCC, "license").Is(b.vocab.LicenseURL(), "").
		Say(vocabulary.NSSchemaOrg, "softwareVersion").Value(vocabulary.FormatVersion, "", "").
		Say(vocabulary.NSSchemaOrg, "dateModified").Value(modified.UTC().Format(timestampLayout), vocabulary.NSXSD, "dateTime").
		Say(vocabulary.NSOWL, "imports").Is(vocabulary.OntologyURI, "")
	return b.sinkErr("add dump header")
}
