package mapping_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/export"
	"github.com/c360studio/semrdf/mapping"
	"github.com/c360studio/semrdf/rdfbuilder"
	"github.com/c360studio/semrdf/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wd    = "http://www.wikidata.org/entity/"
	wds   = "http://www.wikidata.org/entity/statement/"
	wdt   = "http://www.wikidata.org/prop/direct/"
	pClm  = "http://www.wikidata.org/prop/"
	ps    = "http://www.wikidata.org/prop/statement/"
	psv   = "http://www.wikidata.org/prop/statement/value/"
	pq    = "http://www.wikidata.org/prop/qualifier/"
	pr    = "http://www.wikidata.org/prop/reference/"
	wdno  = "http://www.wikidata.org/prop/novalue/"
	wdref = "http://www.wikidata.org/reference/"
	wdv   = "http://www.wikidata.org/value/"
	wb    = "http://wikiba.se/ontology#"
)

func iri(base, local string) string { return "<" + base + local + ">" }

type fakeStore struct {
	revisions map[string]entity.LookupResult
	terms     map[string]*entity.Fingerprint
	dataTypes map[string]string
}

func (s *fakeStore) LatestRevision(_ context.Context, id entity.ID) (entity.LookupResult, error) {
	if r, ok := s.revisions[id.Serialization()]; ok {
		return r, nil
	}
	return entity.Nonexistent(), nil
}

func (s *fakeStore) Terms(_ context.Context, id entity.ID) (*entity.Fingerprint, error) {
	if fp, ok := s.terms[id.Serialization()]; ok {
		return fp, nil
	}
	return nil, errors.New("no terms")
}

func (s *fakeStore) DataType(_ context.Context, id entity.ID) (string, error) {
	if dt, ok := s.dataTypes[id.Serialization()]; ok {
		return dt, nil
	}
	return "", errors.New("no data type")
}

func render(t *testing.T, flavor rdfbuilder.Flavor, store *fakeStore, opts mapping.Options, docs ...entity.Document) (string, *rdfbuilder.Builder) {
	t.Helper()
	if store == nil {
		store = &fakeStore{}
	}
	b := rdfbuilder.New(
		vocabulary.MustNew(vocabulary.DefaultConfig()),
		export.NewNTriplesWriter(),
		store,
		mapping.NewRegistry(opts),
		rdfbuilder.WithFlavor(flavor),
		rdfbuilder.WithDedupeBag(mapping.NewHashDedupeBag(10)),
	)
	require.NoError(t, b.StartDocument())
	for _, doc := range docs {
		require.NoError(t, b.AddEntity(doc))
	}
	require.NoError(t, b.ResolveMentionedEntities(context.Background()))
	require.NoError(t, b.FinishDocument())
	out, err := b.RDF()
	require.NoError(t, err)
	return out, b
}

func valueSnak(p string, v entity.DataValue) entity.Snak {
	return entity.Snak{Type: entity.SnakValue, Property: entity.MustParseID(p), Value: v}
}

func sampleItem() *entity.Item {
	return &entity.Item{
		EntityID: entity.MustParseID("Q1"),
		Terms: entity.Fingerprint{
			Labels:       entity.TermList{"en": "universe", "de": "Universum"},
			Descriptions: entity.TermList{"en": "totality of space"},
			Aliases:      entity.AliasGroupList{"en": {"cosmos", "everything"}},
		},
		Claims: []entity.Statement{
			{
				GUID:     "Q1$aaa",
				Rank:     entity.RankPreferred,
				MainSnak: valueSnak("P31", entity.EntityIDValue{ID: entity.MustParseID("Q5")}),
				Qualifiers: []entity.Snak{
					valueSnak("P580", entity.TimeValue{Time: "+2001-01-01T00:00:00Z", Precision: 11, CalendarModel: "http://www.wikidata.org/entity/Q1985727"}),
				},
				References: []entity.Reference{
					{Hash: "r1", Snaks: []entity.Snak{valueSnak("P854", entity.StringValue{Value: "http://example.org"})}},
				},
			},
			{
				GUID:     "Q1$bbb",
				Rank:     entity.RankNormal,
				MainSnak: valueSnak("P31", entity.EntityIDValue{ID: entity.MustParseID("Q6")}),
				References: []entity.Reference{
					{Hash: "r1", Snaks: []entity.Snak{valueSnak("P854", entity.StringValue{Value: "http://example.org"})}},
				},
			},
		},
	}
}

func TestItemMapperFull(t *testing.T) {
	out, b := render(t, rdfbuilder.FlavorFull&^rdfbuilder.ProduceResolvedEntities&^rdfbuilder.ProduceProperties, nil, mapping.Options{}, sampleItem())

	expected := []string{
		iri(wd, "Q1") + ` <http://www.w3.org/2000/01/rdf-schema#label> "universe"@en .`,
		iri(wd, "Q1") + ` <http://www.w3.org/2004/02/skos/core#prefLabel> "Universum"@de .`,
		iri(wd, "Q1") + ` <http://schema.org/name> "universe"@en .`,
		iri(wd, "Q1") + ` <http://schema.org/description> "totality of space"@en .`,
		iri(wd, "Q1") + ` <http://www.w3.org/2004/02/skos/core#altLabel> "everything"@en .`,
		iri(wd, "Q1") + " " + iri(wdt, "P31") + " " + iri(wd, "Q5") + " .",
		iri(wd, "Q1") + " " + iri(pClm, "P31") + " " + iri(wds, "Q1-aaa") + " .",
		iri(wds, "Q1-aaa") + " <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> " + iri(wb, "BestRank") + " .",
		iri(wds, "Q1-aaa") + " " + iri(wb, "rank") + " " + iri(wb, "PreferredRank") + " .",
		iri(wds, "Q1-bbb") + " " + iri(wb, "rank") + " " + iri(wb, "NormalRank") + " .",
		iri(wds, "Q1-aaa") + " " + iri(ps, "P31") + " " + iri(wd, "Q5") + " .",
		iri(wds, "Q1-aaa") + " " + iri(pq, "P580") + ` "2001-01-01T00:00:00Z"^^<http://www.w3.org/2001/XMLSchema#dateTime> .`,
		iri(wds, "Q1-aaa") + " <http://www.w3.org/ns/prov#wasDerivedFrom> " + iri(wdref, "r1") + " .",
		iri(wds, "Q1-bbb") + " <http://www.w3.org/ns/prov#wasDerivedFrom> " + iri(wdref, "r1") + " .",
		iri(wdref, "r1") + " " + iri(pr, "P854") + ` "http://example.org" .`,
	}
	for _, line := range expected {
		assert.Contains(t, out, line)
	}

	assert.NotContains(t, out, iri(wdt, "P31")+" "+iri(wd, "Q6"), "normal rank is not truthy next to a preferred one")
	assert.NotContains(t, out, iri(wds, "Q1-bbb")+" <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> "+iri(wb, "BestRank"))
	assert.Equal(t, 1, strings.Count(out, iri(wdref, "r1")+" <http://www.w3.org/1999/02/22-rdf-syntax-ns#type>"), "shared reference is written once")
	assert.Equal(t, 1, strings.Count(out, "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type> "+iri(wb, "TimeValue")))
	assert.Contains(t, out, iri(wds, "Q1-aaa")+" "+iri(pq+"value/", "P580")+" <"+wdv)

	assert.False(t, b.Mentions().IsMentioned(entity.MustParseID("P31")), "properties are off")
}

func TestItemMapperMentions(t *testing.T) {
	store := &fakeStore{
		revisions: map[string]entity.LookupResult{
			"P31": entity.ConcreteRevision(1),
			"Q5":  entity.ConcreteRevision(1),
		},
		terms: map[string]*entity.Fingerprint{
			"Q5":  {Labels: entity.TermList{"en": "human"}},
			"P31": {Labels: entity.TermList{"en": "instance of"}},
		},
		dataTypes: map[string]string{"P31": "wikibase-item"},
	}
	out, b := render(t, rdfbuilder.FlavorFull, store, mapping.Options{Terms: store, DataTypes: store}, sampleItem())

	for _, id := range []string{"P31", "P580", "P854", "Q5", "Q6"} {
		assert.True(t, b.Mentions().IsMentioned(entity.MustParseID(id)), id)
	}
	assert.True(t, b.Mentions().IsResolved(entity.MustParseID("Q5")))
	assert.False(t, b.Mentions().IsResolved(entity.MustParseID("Q6")), "Q6 does not exist")

	assert.Contains(t, out, iri(wd, "Q5")+` <http://www.w3.org/2000/01/rdf-schema#label> "human"@en .`)
	assert.Contains(t, out, iri(wd, "P31")+" "+iri(wb, "propertyType")+" "+iri(wb, "WikibaseItem")+" .")
	assert.Contains(t, out, iri(wd, "P31")+" "+iri(wb, "directClaim")+" "+iri(wdt, "P31")+" .")
	assert.Contains(t, out, iri(wd, "P31")+` <http://www.w3.org/2000/01/rdf-schema#label> "instance of"@en .`)
}

func TestTruthyFlavor(t *testing.T) {
	out, _ := render(t, rdfbuilder.FlavorTruthy, nil, mapping.Options{}, sampleItem())

	assert.Contains(t, out, iri(wd, "Q1")+" "+iri(wdt, "P31")+" "+iri(wd, "Q5")+" .")
	assert.NotContains(t, out, wds)
	assert.NotContains(t, out, wdref)
}

func TestSomeValueAndNoValue(t *testing.T) {
	item := &entity.Item{
		EntityID: entity.MustParseID("Q2"),
		Claims: []entity.Statement{
			{GUID: "Q2$nv", Rank: entity.RankNormal, MainSnak: entity.Snak{Type: entity.SnakNoValue, Property: entity.MustParseID("P40")}},
			{GUID: "Q2$sv", Rank: entity.RankNormal, MainSnak: entity.Snak{Type: entity.SnakSomeValue, Property: entity.MustParseID("P22")}},
		},
	}
	out, _ := render(t, rdfbuilder.FlavorDump, nil, mapping.Options{}, item)

	typ := " <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> "
	assert.Contains(t, out, iri(wd, "Q2")+typ+iri(wdno, "P40")+" .")
	assert.Contains(t, out, iri(wds, "Q2-nv")+typ+iri(wdno, "P40")+" .")
	assert.Contains(t, out, iri(wd, "Q2")+" "+iri(wdt, "P22")+" _:sv")
	assert.Contains(t, out, iri(wds, "Q2-sv")+" "+iri(ps, "P22")+" _:sv")
}

func TestFullValues(t *testing.T) {
	qty := entity.QuantityValue{Amount: "+42", Unit: "http://www.wikidata.org/entity/Q11573", UpperBound: "+43", LowerBound: "+41"}
	geo := entity.GlobeCoordinateValue{Latitude: 52.5, Longitude: 13.4, Precision: 0.1, Globe: "http://www.wikidata.org/entity/Q2"}
	item := &entity.Item{
		EntityID: entity.MustParseID("Q3"),
		Claims: []entity.Statement{
			{GUID: "Q3$q", Rank: entity.RankNormal, MainSnak: valueSnak("P2048", qty)},
			{GUID: "Q3$g", Rank: entity.RankNormal, MainSnak: valueSnak("P625", geo)},
			{GUID: "Q3$m", Rank: entity.RankNormal, MainSnak: valueSnak("P1448", entity.MonolingualTextValue{Text: "Berlin", Language: "de"})},
		},
	}
	out, _ := render(t, rdfbuilder.FlavorDump, nil, mapping.Options{}, item)

	assert.Contains(t, out, iri(wds, "Q3-q")+" "+iri(ps, "P2048")+` "42"^^<http://www.w3.org/2001/XMLSchema#decimal> .`)
	assert.Contains(t, out, iri(wb, "quantityUpperBound")+` "43"^^<http://www.w3.org/2001/XMLSchema#decimal> .`)
	assert.Contains(t, out, iri(wb, "quantityUnit")+" "+iri(wd, "Q11573")+" .")
	assert.Contains(t, out, iri(wds, "Q3-q")+" "+iri(psv, "P2048")+" <"+wdv)
	assert.Contains(t, out, `"Point(13.4 52.5)"^^<http://www.opengis.net/ont/geosparql#wktLiteral>`)
	assert.Contains(t, out, iri(wb, "geoLatitude")+` "52.5"^^<http://www.w3.org/2001/XMLSchema#double> .`)
	assert.Contains(t, out, iri(wds, "Q3-m")+" "+iri(ps, "P1448")+` "Berlin"@de .`)

	noFull, _ := render(t, rdfbuilder.FlavorDump&^rdfbuilder.ProduceFullValues, nil, mapping.Options{}, item)
	assert.NotContains(t, noFull, wdv)
}

func TestSiteLinks(t *testing.T) {
	item := &entity.Item{
		EntityID: entity.MustParseID("Q64"),
		SiteLinks: map[string]entity.SiteLink{
			"enwiki":   {Site: "enwiki", Title: "Berlin City", Badges: []entity.ID{entity.MustParseID("Q17437796")}},
			"unknown0": {Site: "unknown0", Title: "Nope"},
		},
	}
	out, b := render(t, rdfbuilder.ProduceSitelinks|rdfbuilder.ProduceResolvedEntities, nil, mapping.Options{}, item)

	article := "<https://en.wikipedia.org/wiki/Berlin_City>"
	assert.Contains(t, out, article+" <http://schema.org/about> "+iri(wd, "Q64")+" .")
	assert.Contains(t, out, article+` <http://schema.org/name> "Berlin City"@en .`)
	assert.Contains(t, out, article+` <http://schema.org/inLanguage> "en" .`)
	assert.Contains(t, out, article+" "+iri(wb, "badge")+" "+iri(wd, "Q17437796")+" .")
	assert.NotContains(t, out, "Nope")
	assert.True(t, b.Mentions().IsMentioned(entity.MustParseID("Q17437796")))
}

func TestPropertyMapper(t *testing.T) {
	prop := &entity.Property{
		EntityID: entity.MustParseID("P31"),
		DataType: "wikibase-item",
		Terms:    entity.Fingerprint{Labels: entity.TermList{"en": "instance of"}},
	}
	out, _ := render(t, rdfbuilder.FlavorDump, nil, mapping.Options{}, prop)

	assert.Contains(t, out, iri(wd, "P31")+" <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> "+iri(wb, "Property")+" .")
	assert.Contains(t, out, iri(wd, "P31")+" "+iri(wb, "propertyType")+" "+iri(wb, "WikibaseItem")+" .")
	for _, decl := range vocabulary.PropertyDeclarations() {
		assert.Contains(t, out, iri(wd, "P31")+" "+iri(wb, decl.Predicate)+" ")
	}
	assert.Contains(t, out, iri(wd, "P31")+" "+iri(wb, "novalue")+" "+iri(wdno, "P31")+" .")
}

func TestPropertyStubWithoutLookups(t *testing.T) {
	store := &fakeStore{revisions: map[string]entity.LookupResult{"P17": entity.ConcreteRevision(2)}}
	item := &entity.Item{
		EntityID: entity.MustParseID("Q1"),
		Claims:   []entity.Statement{{Rank: entity.RankNormal, MainSnak: valueSnak("P17", entity.StringValue{Value: "x"})}},
	}
	out, b := render(t, rdfbuilder.ProduceTruthyStatements|rdfbuilder.ProduceProperties, store, mapping.Options{Terms: store, DataTypes: store}, item)

	assert.True(t, b.Mentions().IsResolved(entity.MustParseID("P17")))
	assert.NotContains(t, out, iri(wb, "propertyType"), "data type lookup failed")
	assert.Contains(t, out, iri(wd, "P17")+" "+iri(wb, "directClaim")+" "+iri(wdt, "P17")+" .")
}

func TestLanguageFilter(t *testing.T) {
	out, _ := render(t, 0, nil, mapping.Options{Languages: []string{"de"}}, sampleItem())
	assert.Contains(t, out, `"Universum"@de`)
	assert.NotContains(t, out, `"universe"@en`)
}

func TestEmptyAliasGroupTurtle(t *testing.T) {
	item := &entity.Item{
		EntityID: entity.MustParseID("Q1"),
		Terms: entity.Fingerprint{
			Labels:  entity.TermList{"en": "universe"},
			Aliases: entity.AliasGroupList{"en": nil},
		},
		Claims: []entity.Statement{
			{GUID: "Q1$aaa", Rank: entity.RankNormal, MainSnak: valueSnak("P31", entity.EntityIDValue{ID: entity.MustParseID("Q5")})},
		},
	}

	b := rdfbuilder.New(
		vocabulary.MustNew(vocabulary.DefaultConfig()),
		export.NewTurtleWriter(),
		nil,
		mapping.NewRegistry(mapping.Options{}),
		rdfbuilder.WithFlavor(rdfbuilder.FlavorTruthy),
	)
	require.NoError(t, b.StartDocument())
	require.NoError(t, b.AddEntity(item))
	require.NoError(t, b.FinishDocument())
	out, err := b.RDF()
	require.NoError(t, err)

	assert.NotContains(t, out, "skos:altLabel", "no predicate without objects")
	assert.Contains(t, out, `rdfs:label "universe"@en`)
	assert.Contains(t, out, "wdt:P31 wd:Q5")
}

func TestHashDedupeBag(t *testing.T) {
	bag := mapping.NewHashDedupeBag(8)

	assert.False(t, bag.AlreadySeen("abc", "V"))
	assert.True(t, bag.AlreadySeen("abc", "V"))
	assert.False(t, bag.AlreadySeen("abc", "R"), "namespaces are separate")
	assert.LessOrEqual(t, bag.Len(), 256)

	small := mapping.NewHashDedupeBag(0)
	for i := 0; i < 100; i++ {
		small.AlreadySeen(strings.Repeat("x", i), "V")
	}
	assert.LessOrEqual(t, small.Len(), 2, "bits are clamped to at least one")
}

func TestEntityPageProps(t *testing.T) {
	item := sampleItem()
	item.SiteLinks = map[string]entity.SiteLink{"enwiki": {Site: "enwiki", Title: "Universe"}}
	item.Claims = append(item.Claims, entity.Statement{
		Rank:     entity.RankNormal,
		MainSnak: entity.Snak{Type: entity.SnakValue, Property: entity.MustParseID("P646"), DataType: "external-id", Value: entity.StringValue{Value: "/m/07x"}},
	})

	props := mapping.EntityPageProps{}.PageProperties(item)
	assert.Equal(t, 3, props[mapping.PagePropClaims])
	assert.Equal(t, 1, props[mapping.PagePropIdentifiers])
	assert.Equal(t, 1, props[mapping.PagePropSitelinks])

	prop := mapping.EntityPageProps{}.PageProperties(&entity.Property{EntityID: entity.MustParseID("P1")})
	assert.NotContains(t, prop, mapping.PagePropSitelinks)
	assert.Equal(t, 0, prop[mapping.PagePropClaims])
}
