package rdfbuilder

import (
	"context"
	"log/slog"
	"slices"

	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/export"
	"github.com/c360studio/semrdf/vocabulary"
)

// EntityMapper emits the full RDF of documents of one entity type.
type EntityMapper interface {
	AddEntity(doc entity.Document) error
}

// StubMapper emits the labels-only RDF of an entity known by id.
type StubMapper interface {
	AddEntityStub(ctx context.Context, id entity.ID) error
}

// DedupeBag remembers value and reference nodes already written to a
// document. AlreadySeen records hash and reports whether it was recorded
// before. Implementations may forget entries, which only causes repeated
// triples.
type DedupeBag interface {
	AlreadySeen(hash, namespace string) bool
}

type nullDedupeBag struct{}

func (nullDedupeBag) AlreadySeen(string, string) bool { return false }

// MapperDeps is what a mapper needs to write into a builder's document.
type MapperDeps struct {
	Vocabulary *vocabulary.Vocabulary
	Writer     export.Writer
	Mentions   MentionListener
	Flavor     Flavor
	Dedupe     DedupeBag
	Logger     *slog.Logger
}

// EntityMapperFactory creates the full mapper for one builder.
type EntityMapperFactory func(deps MapperDeps) EntityMapper

// StubMapperFactory creates the stub mapper for one builder.
type StubMapperFactory func(deps MapperDeps) StubMapper

// Registry holds mapper factories keyed by entity type. Types without a
// registration are emitted as metadata only.
type Registry struct {
	entities map[entity.Type]EntityMapperFactory
	stubs    map[entity.Type]StubMapperFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[entity.Type]EntityMapperFactory),
		stubs:    make(map[entity.Type]StubMapperFactory),
	}
}

// RegisterEntityMapper sets the full mapper factory for t.
func (r *Registry) RegisterEntityMapper(t entity.Type, f EntityMapperFactory) {
	r.entities[t] = f
}

// RegisterStubMapper sets the stub mapper factory for t.
func (r *Registry) RegisterStubMapper(t entity.Type, f StubMapperFactory) {
	r.stubs[t] = f
}

// Types returns the entity types with a full or stub mapper, sorted.
func (r *Registry) Types() []entity.Type {
	var out []entity.Type
	for t := range r.entities {
		out = append(out, t)
	}
	for t := range r.stubs {
		if _, ok := r.entities[t]; !ok {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}

func (r *Registry) build(deps MapperDeps) (map[entity.Type]EntityMapper, map[entity.Type]StubMapper) {
	full := make(map[entity.Type]EntityMapper)
	stubs := make(map[entity.Type]StubMapper)
	if r == nil {
		return full, stubs
	}
	for t, f := range r.entities {
		if m := f(deps); m != nil {
			full[t] = m
		}
	}
	for t, f := range r.stubs {
		if m := f(deps); m != nil {
			stubs[t] = m
		}
	}
	return full, stubs
}
