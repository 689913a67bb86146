package mapping

import (
	"context"
	"log/slog"
	"strings"

	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/rdfbuilder"
	"github.com/c360studio/semrdf/vocabulary"
)

// ItemMapper writes the full RDF of items: terms, site links and
// statements.
type ItemMapper struct {
	statementWriter
	terms *TermsMapper
}

// NewItemMapper creates an ItemMapper writing to deps.Writer.
func NewItemMapper(deps rdfbuilder.MapperDeps, languages []string) *ItemMapper {
	return &ItemMapper{
		statementWriter: statementWriter{newSnakWriter(deps)},
		terms:           NewTermsMapper(deps.Vocabulary, deps.Writer, languages),
	}
}

// AddEntity implements rdfbuilder.EntityMapper. Documents that are not
// items only get their terms written.
func (m *ItemMapper) AddEntity(doc entity.Document) error {
	if fh, ok := doc.(entity.FingerprintHolder); ok {
		m.terms.AddTerms(doc.ID(), fh.Fingerprint())
	}
	item, ok := doc.(*entity.Item)
	if !ok {
		return nil
	}
	if m.flavor.Has(rdfbuilder.ProduceSitelinks) {
		m.addSiteLinks(item)
	}
	m.addStatements(item.ID(), item.Claims)
	return nil
}

func (m *ItemMapper) addSiteLinks(item *entity.Item) {
	subject := m.entityNode(item.ID())
	for _, link := range item.SortedSiteLinks() {
		article := m.vocab.SiteLinkURL(link.Site, link.Title)
		if article == "" {
			continue
		}
		lang := siteLanguage(link.Site)
		m.w.About(article, "").
			A(vocabulary.NSSchemaOrg, "Article").
			Say(vocabulary.NSSchemaOrg, "about").Is(subject.ns, subject.local).
			Say(vocabulary.NSSchemaOrg, "name").Text(link.Title, lang)
		if lang != "" {
			m.w.Say(vocabulary.NSSchemaOrg, "inLanguage").Text(lang, "")
		}
		for _, badge := range link.Badges {
			b := m.entityNode(badge)
			m.w.Say(vocabulary.NSOntology, vocabulary.PredicateBadge).Is(b.ns, b.local)
			m.mentions.EntityReferenceMentioned(badge)
		}
	}
}

// siteLanguage guesses the content language of a site from its id, so
// "enwiki" is "en" and "dewikivoyage" is "de".
func siteLanguage(site string) string {
	i := strings.Index(site, "wiki")
	if i <= 0 {
		return ""
	}
	return strings.ReplaceAll(site[:i], "_", "-")
}

// ItemStubMapper writes the labels and descriptions of an item known only
// by id.
type ItemStubMapper struct {
	lookup TermLookup
	terms  *TermsMapper
	logger *slog.Logger
}

// NewItemStubMapper creates an ItemStubMapper reading terms from lookup.
func NewItemStubMapper(deps rdfbuilder.MapperDeps, lookup TermLookup, languages []string) *ItemStubMapper {
	return &ItemStubMapper{
		lookup: lookup,
		terms:  NewTermsMapper(deps.Vocabulary, deps.Writer, languages),
		logger: loggerOrDefault(deps.Logger),
	}
}

// AddEntityStub implements rdfbuilder.StubMapper. Lookup failures leave
// the stub without terms.
func (m *ItemStubMapper) AddEntityStub(ctx context.Context, id entity.ID) error {
	fp, err := m.lookup.Terms(ctx, id)
	if err != nil {
		m.logger.Debug("Term lookup failed for stub", "entity_id", id.Serialization(), "error", err)
		return nil
	}
	m.terms.AddLabels(id, fp.Labels)
	m.terms.AddDescriptions(id, fp.Descriptions)
	return nil
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
