// Package mapping holds the per-type RDF mappers for items and properties
// and their stub variants.
//
// NewRegistry wires them into an rdfbuilder.Registry:
//
//	reg := mapping.NewRegistry(mapping.Options{Terms: store, DataTypes: store})
//	b := rdfbuilder.New(vocab, writer, store, reg)
package mapping

import (
	"context"

	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/rdfbuilder"
)

// TermLookup returns the terms of an entity for stubs.
type TermLookup interface {
	Terms(ctx context.Context, id entity.ID) (*entity.Fingerprint, error)
}

// DataTypeLookup returns the data type of a property for stubs.
type DataTypeLookup interface {
	DataType(ctx context.Context, id entity.ID) (string, error)
}

// Options configures the mappers created by NewRegistry.
type Options struct {
	// Terms provides labels for stubs. Without it item stubs are metadata
	// only.
	Terms TermLookup
	// DataTypes provides property data types for property stubs.
	DataTypes DataTypeLookup
	// Languages restricts the written terms. Empty means all languages.
	Languages []string
}

// NewRegistry returns a registry with the item and property mappers.
func NewRegistry(opts Options) *rdfbuilder.Registry {
	r := rdfbuilder.NewRegistry()

	r.RegisterEntityMapper(entity.TypeItem, func(deps rdfbuilder.MapperDeps) rdfbuilder.EntityMapper {
		return NewItemMapper(deps, opts.Languages)
	})
	r.RegisterEntityMapper(entity.TypeProperty, func(deps rdfbuilder.MapperDeps) rdfbuilder.EntityMapper {
		return NewPropertyMapper(deps, opts.Languages)
	})

	if opts.Terms != nil {
		r.RegisterStubMapper(entity.TypeItem, func(deps rdfbuilder.MapperDeps) rdfbuilder.StubMapper {
			return NewItemStubMapper(deps, opts.Terms, opts.Languages)
		})
	}
	r.RegisterStubMapper(entity.TypeProperty, func(deps rdfbuilder.MapperDeps) rdfbuilder.StubMapper {
		return NewPropertyStubMapper(deps, opts.Terms, opts.DataTypes, opts.Languages)
	})
	return r
}
