package mapping

import (
	"context"
	"log/slog"

	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/export"
	"github.com/c360studio/semrdf/rdfbuilder"
	"github.com/c360studio/semrdf/vocabulary"
)

// PropertyMapper writes the full RDF of properties: terms, data type,
// predicate declarations and statements.
type PropertyMapper struct {
	statementWriter
	terms *TermsMapper
}

// NewPropertyMapper creates a PropertyMapper writing to deps.Writer.
func NewPropertyMapper(deps rdfbuilder.MapperDeps, languages []string) *PropertyMapper {
	return &PropertyMapper{
		statementWriter: statementWriter{newSnakWriter(deps)},
		terms:           NewTermsMapper(deps.Vocabulary, deps.Writer, languages),
	}
}

// AddEntity implements rdfbuilder.EntityMapper.
func (m *PropertyMapper) AddEntity(doc entity.Document) error {
	prop, ok := doc.(*entity.Property)
	if !ok {
		if fh, ok := doc.(entity.FingerprintHolder); ok {
			m.terms.AddTerms(doc.ID(), fh.Fingerprint())
		}
		return nil
	}
	m.terms.AddTerms(prop.ID(), &prop.Terms)
	writePropertyDeclarations(m.vocab, m.w, prop.ID(), prop.DataType)
	m.addStatements(prop.ID(), prop.Claims)
	return nil
}

// writePropertyDeclarations writes wikibase:propertyType and the links
// from the property to each of its predicates.
func writePropertyDeclarations(v *vocabulary.Vocabulary, w export.Writer, id entity.ID, dataType string) {
	lname := v.EntityLName(id)
	w.About(v.EntityNamespaceName(id), lname)
	if dataType != "" {
		w.Say(vocabulary.NSOntology, vocabulary.PredicatePropertyType).Is(vocabulary.NSOntology, vocabulary.DataTypeName(dataType))
	}
	for _, decl := range vocabulary.PropertyDeclarations() {
		w.Say(vocabulary.NSOntology, decl.Predicate).Is(v.PropertyNamespaceName(id, decl.Kind), lname)
	}
}

// PropertyStubMapper writes labels, data type and predicate declarations
// of a property known only by id.
type PropertyStubMapper struct {
	vocab     *vocabulary.Vocabulary
	w         export.Writer
	terms     *TermsMapper
	termsLkp  TermLookup
	dataTypes DataTypeLookup
	logger    *slog.Logger
}

// NewPropertyStubMapper creates a PropertyStubMapper. Either lookup may be
// nil, in which case that part of the stub is left out.
func NewPropertyStubMapper(deps rdfbuilder.MapperDeps, terms TermLookup, dataTypes DataTypeLookup, languages []string) *PropertyStubMapper {
	return &PropertyStubMapper{
		vocab:     deps.Vocabulary,
		w:         deps.Writer,
		terms:     NewTermsMapper(deps.Vocabulary, deps.Writer, languages),
		termsLkp:  terms,
		dataTypes: dataTypes,
		logger:    loggerOrDefault(deps.Logger),
	}
}

// AddEntityStub implements rdfbuilder.StubMapper.
func (m *PropertyStubMapper) AddEntityStub(ctx context.Context, id entity.ID) error {
	if m.termsLkp != nil {
		fp, err := m.termsLkp.Terms(ctx, id)
		if err != nil {
			m.logger.Debug("Term lookup failed for stub", "entity_id", id.Serialization(), "error", err)
		} else {
			m.terms.AddLabels(id, fp.Labels)
			m.terms.AddDescriptions(id, fp.Descriptions)
		}
	}

	var dataType string
	if m.dataTypes != nil {
		dt, err := m.dataTypes.DataType(ctx, id)
		if err != nil {
			m.logger.Debug("Data type lookup failed for stub", "entity_id", id.Serialization(), "error", err)
		}
		dataType = dt
	}
	writePropertyDeclarations(m.vocab, m.w, id, dataType)
	return nil
}
