package rdfbuilder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/export"
	"github.com/c360studio/semrdf/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wd       = "http://www.wikidata.org/entity/"
	wdt      = "http://www.wikidata.org/prop/direct/"
	rdfType  = "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type>"
	owlSame  = "<http://www.w3.org/2002/07/owl#sameAs>"
	rdfsLbl  = "<http://www.w3.org/2000/01/rdf-schema#label>"
	wbItem   = "<http://wikiba.se/ontology#Item>"
	wbProp   = "<http://wikiba.se/ontology#Property>"
	xsdInt   = "<http://www.w3.org/2001/XMLSchema#integer>"
	wdataIRI = "https://www.wikidata.org/wiki/Special:EntityData/"
)

type fakeLookup map[string]entity.LookupResult

func (f fakeLookup) LatestRevision(_ context.Context, id entity.ID) (entity.LookupResult, error) {
	if r, ok := f[id.Serialization()]; ok {
		return r, nil
	}
	return entity.Nonexistent(), nil
}

type errLookup struct{}

func (errLookup) LatestRevision(context.Context, entity.ID) (entity.LookupResult, error) {
	return entity.LookupResult{}, errors.New("store unavailable")
}

type mapperFunc func(doc entity.Document) error

func (f mapperFunc) AddEntity(doc entity.Document) error { return f(doc) }

type stubFunc func(ctx context.Context, id entity.ID) error

func (f stubFunc) AddEntityStub(ctx context.Context, id entity.ID) error { return f(ctx, id) }

type countingObserver struct {
	entities, stubs, redirects, skipped, passes int
}

func (o *countingObserver) EntityAdded(entity.Type) { o.entities++ }
func (o *countingObserver) StubAdded(entity.Type)   { o.stubs++ }
func (o *countingObserver) RedirectAdded()          { o.redirects++ }
func (o *countingObserver) MentionSkipped()         { o.skipped++ }
func (o *countingObserver) ResolvePass()            { o.passes++ }

// testRegistry writes one direct triple per statement with an entity value
// and a label for every stub.
func testRegistry() *Registry {
	r := NewRegistry()
	r.RegisterEntityMapper(entity.TypeItem, func(deps MapperDeps) EntityMapper {
		return mapperFunc(func(doc entity.Document) error {
			item := doc.(*entity.Item)
			v := deps.Vocabulary
			for _, st := range item.Claims {
				p := st.MainSnak.Property
				deps.Mentions.PropertyMentioned(p)
				val, ok := st.MainSnak.Value.(entity.EntityIDValue)
				if !ok {
					continue
				}
				deps.Writer.About(v.EntityNamespaceName(item.ID()), v.EntityLName(item.ID())).
					Say(v.PropertyNamespaceName(p, vocabulary.PropertyDirect), v.EntityLName(p)).
					Is(v.EntityNamespaceName(val.ID), v.EntityLName(val.ID))
				deps.Mentions.EntityReferenceMentioned(val.ID)
			}
			for _, link := range item.SortedSiteLinks() {
				if link.Site == "sub" {
					deps.Mentions.SubEntityMentioned(&entity.Generic{EntityID: entity.MustParseID(link.Title)})
				}
			}
			return nil
		})
	})
	stub := func(deps MapperDeps) StubMapper {
		return stubFunc(func(_ context.Context, id entity.ID) error {
			deps.Writer.About(deps.Vocabulary.EntityNamespaceName(id), deps.Vocabulary.EntityLName(id)).
				Say(vocabulary.NSRDFS, "label").Text("label "+id.Serialization(), "en")
			return nil
		})
	}
	r.RegisterStubMapper(entity.TypeItem, stub)
	r.RegisterStubMapper(entity.TypeProperty, stub)
	return r
}

func newTestBuilder(t *testing.T, lookup RevisionLookup, opts ...Option) *Builder {
	t.Helper()
	b := New(vocabulary.MustNew(vocabulary.DefaultConfig()), export.NewNTriplesWriter(), lookup, testRegistry(), opts...)
	require.NoError(t, b.StartDocument())
	return b
}

func itemWith(id string, values map[string]string) *entity.Item {
	item := &entity.Item{EntityID: entity.MustParseID(id)}
	for p, target := range values {
		item.Claims = append(item.Claims, entity.Statement{
			Rank: entity.RankNormal,
			MainSnak: entity.Snak{
				Type:     entity.SnakValue,
				Property: entity.MustParseID(p),
				Value:    entity.EntityIDValue{ID: entity.MustParseID(target)},
			},
		})
	}
	return item
}

func finish(t *testing.T, b *Builder) []string {
	t.Helper()
	require.NoError(t, b.FinishDocument())
	out, err := b.RDF()
	require.NoError(t, err)
	out = strings.TrimSpace(out)
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func iri(base, local string) string { return "<" + base + local + ">" }

func TestAddEntityMarksResolved(t *testing.T) {
	obs := &countingObserver{}
	b := newTestBuilder(t, fakeLookup{}, WithObserver(obs))

	require.NoError(t, b.AddEntity(itemWith("Q1", nil)))
	assert.True(t, b.Mentions().IsResolved(entity.MustParseID("Q1")))
	assert.Equal(t, 1, obs.entities)

	// A resolved entity is never stubbed.
	b.Mentions().MarkMentioned(entity.MustParseID("Q1"))
	require.NoError(t, b.ResolveMentionedEntities(context.Background()))
	assert.Equal(t, 0, obs.stubs)

	lines := finish(t, b)
	assert.Equal(t, []string{iri(wd, "Q1") + " " + rdfType + " " + wbItem + " ."}, lines)
}

func TestPropertyStubScenario(t *testing.T) {
	lookup := fakeLookup{"P2": entity.ConcreteRevision(7)}
	b := newTestBuilder(t, lookup, WithFlavor(ProduceProperties))

	require.NoError(t, b.AddEntity(itemWith("Q1", map[string]string{"P2": "Q5"})))
	require.NoError(t, b.ResolveMentionedEntities(context.Background()))

	assert.True(t, b.Mentions().IsResolved(entity.MustParseID("P2")))
	assert.False(t, b.Mentions().IsMentioned(entity.MustParseID("Q5")), "entity references are off")

	lines := finish(t, b)
	assert.Equal(t, []string{
		iri(wd, "Q1") + " " + rdfType + " " + wbItem + " .",
		iri(wd, "Q1") + " " + iri(wdt, "P2") + " " + iri(wd, "Q5") + " .",
		iri(wd, "P2") + " " + rdfType + " " + wbProp + " .",
		iri(wd, "P2") + " " + rdfsLbl + ` "label P2"@en .`,
	}, lines)
}

func TestRedirectScenario(t *testing.T) {
	lookup := fakeLookup{
		"Q2": entity.RedirectRevision(3, entity.MustParseID("Q3")),
		"Q3": entity.ConcreteRevision(9),
	}
	obs := &countingObserver{}
	b := newTestBuilder(t, lookup, WithFlavor(ProduceResolvedEntities), WithObserver(obs))

	require.NoError(t, b.AddEntity(itemWith("Q1", map[string]string{"P2": "Q2"})))
	require.NoError(t, b.ResolveMentionedEntities(context.Background()))

	assert.False(t, b.Mentions().IsMentioned(entity.MustParseID("P2")), "properties are off")
	assert.True(t, b.Mentions().IsResolved(entity.MustParseID("Q2")))
	assert.True(t, b.Mentions().IsResolved(entity.MustParseID("Q3")))
	assert.Equal(t, "Q3", b.Mentions().Canonical(entity.MustParseID("Q2")).Serialization())
	assert.Equal(t, 1, obs.redirects)
	assert.Equal(t, 1, obs.stubs)
	assert.Equal(t, 2, obs.passes)

	lines := finish(t, b)
	require.Len(t, lines, 5)
	assert.Equal(t, iri(wd, "Q2")+" "+owlSame+" "+iri(wd, "Q3")+" .", lines[2])
	assert.Equal(t, iri(wd, "Q3")+" "+rdfType+" "+wbItem+" .", lines[3])
	assert.Equal(t, iri(wd, "Q3")+" "+rdfsLbl+` "label Q3"@en .`, lines[4])
}

func TestRedirectCycleTerminates(t *testing.T) {
	lookup := fakeLookup{
		"Q10": entity.RedirectRevision(1, entity.MustParseID("Q11")),
		"Q11": entity.RedirectRevision(1, entity.MustParseID("Q10")),
	}
	b := newTestBuilder(t, lookup, WithFlavor(ProduceResolvedEntities))

	require.NoError(t, b.AddEntity(itemWith("Q1", map[string]string{"P2": "Q10"})))
	require.NoError(t, b.ResolveMentionedEntities(context.Background()))

	assert.True(t, b.Mentions().IsResolved(entity.MustParseID("Q10")))
	assert.True(t, b.Mentions().IsResolved(entity.MustParseID("Q11")))
	assert.Equal(t, 0, b.Mentions().UnresolvedCount())

	lines := finish(t, b)
	var sameAs []string
	for _, l := range lines {
		if strings.Contains(l, owlSame) {
			sameAs = append(sameAs, l)
		}
	}
	assert.Equal(t, []string{
		iri(wd, "Q10") + " " + owlSame + " " + iri(wd, "Q11") + " .",
		iri(wd, "Q11") + " " + owlSame + " " + iri(wd, "Q10") + " .",
	}, sameAs)
}

func TestRedirectChain(t *testing.T) {
	lookup := fakeLookup{
		"Q20": entity.RedirectRevision(1, entity.MustParseID("Q21")),
		"Q21": entity.RedirectRevision(1, entity.MustParseID("Q22")),
		"Q22": entity.RedirectRevision(1, entity.MustParseID("Q23")),
		"Q23": entity.ConcreteRevision(4),
	}
	b := newTestBuilder(t, lookup, WithFlavor(ProduceResolvedEntities))
	b.Mentions().MarkMentioned(entity.MustParseID("Q20"))

	require.NoError(t, b.ResolveMentionedEntities(context.Background()))
	assert.Equal(t, "Q23", b.Mentions().Canonical(entity.MustParseID("Q20")).Serialization())

	lines := finish(t, b)
	assert.Len(t, lines, 5, "three redirects and one stub")
}

func TestNonexistentMentionIsDropped(t *testing.T) {
	obs := &countingObserver{}
	b := newTestBuilder(t, fakeLookup{}, WithFlavor(ProduceResolvedEntities), WithObserver(obs))

	require.NoError(t, b.AddEntity(itemWith("Q1", map[string]string{"P2": "Q404"})))
	require.NoError(t, b.ResolveMentionedEntities(context.Background()))

	missing := entity.MustParseID("Q404")
	assert.True(t, b.Mentions().IsMentioned(missing))
	assert.False(t, b.Mentions().IsResolved(missing))
	assert.Equal(t, 1, obs.skipped)

	for _, l := range finish(t, b) {
		assert.False(t, strings.HasPrefix(l, iri(wd, "Q404")), "no triple about Q404: %s", l)
	}
}

func TestLookupFailureIsNotSurfaced(t *testing.T) {
	obs := &countingObserver{}
	b := newTestBuilder(t, errLookup{}, WithFlavor(ProduceResolvedEntities), WithObserver(obs))
	b.Mentions().MarkMentioned(entity.MustParseID("Q7"))

	require.NoError(t, b.ResolveMentionedEntities(context.Background()))
	assert.False(t, b.Mentions().IsResolved(entity.MustParseID("Q7")))
	assert.Equal(t, 1, obs.skipped)
	assert.Empty(t, finish(t, b))
}

func TestResolveIsIdempotent(t *testing.T) {
	lookup := fakeLookup{
		"P2": entity.ConcreteRevision(1),
		"Q2": entity.RedirectRevision(3, entity.MustParseID("Q3")),
		"Q3": entity.ConcreteRevision(9),
	}
	w := export.NewNTriplesWriter()
	b := New(vocabulary.MustNew(vocabulary.DefaultConfig()), w, lookup, testRegistry())
	require.NoError(t, b.StartDocument())

	require.NoError(t, b.AddEntity(itemWith("Q1", map[string]string{"P2": "Q2", "P3": "Q404"})))
	require.NoError(t, b.ResolveMentionedEntities(context.Background()))
	first, err := w.Drain()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	require.NoError(t, b.ResolveMentionedEntities(context.Background()))
	second, err := w.Drain()
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestMentionsGatedByFlavor(t *testing.T) {
	tests := []struct {
		name       string
		flavor     Flavor
		property   bool
		references bool
	}{
		{"none", 0, false, false},
		{"properties", ProduceProperties, true, false},
		{"resolved entities", ProduceResolvedEntities, false, true},
		{"both", ProduceProperties | ProduceResolvedEntities, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t, fakeLookup{}, WithFlavor(tt.flavor))
			require.NoError(t, b.AddEntity(itemWith("Q1", map[string]string{"P2": "Q5"})))

			assert.Equal(t, tt.property, b.Mentions().IsMentioned(entity.MustParseID("P2")))
			assert.Equal(t, tt.references, b.Mentions().IsMentioned(entity.MustParseID("Q5")))
		})
	}
}

func TestSubEntitiesAreDrained(t *testing.T) {
	b := newTestBuilder(t, fakeLookup{})

	item := itemWith("Q1", nil)
	item.SiteLinks = map[string]entity.SiteLink{"sub": {Site: "sub", Title: "L5"}}
	require.NoError(t, b.AddEntity(item))

	assert.Zero(t, b.queue.len())
	assert.True(t, b.Mentions().IsResolved(entity.MustParseID("L5")))

	lines := finish(t, b)
	require.Len(t, lines, 2)
	assert.Equal(t, iri(wd, "L5")+" "+rdfType+" <http://wikiba.se/ontology#Other> .", lines[1])
}

func TestMissingMapperWritesMetadataOnly(t *testing.T) {
	b := New(vocabulary.MustNew(vocabulary.DefaultConfig()), export.NewNTriplesWriter(), fakeLookup{"Q2": entity.ConcreteRevision(1)}, nil)
	require.NoError(t, b.StartDocument())

	require.NoError(t, b.AddEntity(itemWith("Q1", map[string]string{"P2": "Q2"})))
	b.Mentions().MarkMentioned(entity.MustParseID("Q2"))
	require.NoError(t, b.ResolveMentionedEntities(context.Background()))

	lines := finish(t, b)
	assert.Equal(t, []string{
		iri(wd, "Q1") + " " + rdfType + " " + wbItem + " .",
		iri(wd, "Q2") + " " + rdfType + " " + wbItem + " .",
	}, lines)
}

func TestMapperErrorPropagates(t *testing.T) {
	r := NewRegistry()
	r.RegisterEntityMapper(entity.TypeItem, func(MapperDeps) EntityMapper {
		return mapperFunc(func(entity.Document) error { return errors.New("bad statement") })
	})
	b := New(vocabulary.MustNew(vocabulary.DefaultConfig()), export.NewNTriplesWriter(), nil, r)
	require.NoError(t, b.StartDocument())

	err := b.AddEntity(itemWith("Q1", nil))
	assert.ErrorContains(t, err, "bad statement")
	assert.Zero(t, b.queue.len())
}

func TestLifecycleErrors(t *testing.T) {
	b := New(vocabulary.MustNew(vocabulary.DefaultConfig()), export.NewTurtleWriter(), fakeLookup{}, testRegistry())

	assert.ErrorIs(t, b.AddEntity(itemWith("Q1", nil)), ErrNotStarted)
	assert.ErrorIs(t, b.ResolveMentionedEntities(context.Background()), ErrNotStarted)
	assert.ErrorIs(t, b.FinishDocument(), ErrNotStarted)
	_, err := b.RDF()
	assert.ErrorIs(t, err, ErrDocumentNotFinished)

	require.NoError(t, b.StartDocument())
	assert.ErrorIs(t, b.StartDocument(), ErrAlreadyStarted)
	_, err = b.RDF()
	assert.ErrorIs(t, err, ErrDocumentNotFinished)

	require.NoError(t, b.AddEntity(itemWith("Q1", nil)))
	require.NoError(t, b.FinishDocument())

	assert.ErrorIs(t, b.AddEntity(itemWith("Q2", nil)), ErrDocumentFinished)
	assert.ErrorIs(t, b.AddDumpHeader(time.Now()), ErrDocumentFinished)
	assert.ErrorIs(t, b.StartDocument(), ErrDocumentFinished)

	first, err := b.RDF()
	require.NoError(t, err)
	second, err := b.RDF()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "@prefix wd: <http://www.wikidata.org/entity/> .")
	assert.Contains(t, first, "wd:Q1\n\ta wikibase:Item .")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSinkFailurePropagates(t *testing.T) {
	w := export.NewNTriplesWriter(export.WithOutput(failingWriter{}, 0))
	b := New(vocabulary.MustNew(vocabulary.DefaultConfig()), w, fakeLookup{}, testRegistry())

	require.NoError(t, b.StartDocument(), "n-triples writes nothing on start")
	err := b.AddEntity(itemWith("Q1", nil))
	assert.ErrorContains(t, err, "disk full")
	assert.ErrorContains(t, b.AddEntity(itemWith("Q2", nil)), "disk full")
}

func TestMaxResolvePasses(t *testing.T) {
	lookup := fakeLookup{
		"Q2": entity.RedirectRevision(3, entity.MustParseID("Q3")),
		"Q3": entity.ConcreteRevision(9),
	}

	obs := &countingObserver{}
	b := newTestBuilder(t, lookup, WithFlavor(ProduceResolvedEntities), WithObserver(obs), WithMaxResolvePasses(1))
	b.Mentions().MarkMentioned(entity.MustParseID("Q2"))
	require.NoError(t, b.ResolveMentionedEntities(context.Background()))
	assert.Equal(t, 1, obs.passes)
	assert.True(t, b.Mentions().IsResolved(entity.MustParseID("Q3")), "targets reached in the same pass are resolved")
}

func TestResolveHonoursContext(t *testing.T) {
	b := newTestBuilder(t, fakeLookup{"Q2": entity.ConcreteRevision(1)}, WithFlavor(ProduceResolvedEntities))
	b.Mentions().MarkMentioned(entity.MustParseID("Q2"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.ResolveMentionedEntities(ctx), context.Canceled)
	assert.False(t, b.Mentions().IsResolved(entity.MustParseID("Q2")))
}

func TestAddEntityRevisionInfo(t *testing.T) {
	modified := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		flavor      Flavor
		wantLicense bool
	}{
		{"with version info", ProduceVersionInfo, true},
		{"without version info", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t, nil, WithFlavor(tt.flavor))
			require.NoError(t, b.AddEntityRevisionInfo(entity.MustParseID("Q1"), 42, modified))
			out := strings.Join(finish(t, b), "\n")

			assert.Contains(t, out, iri(wdataIRI, "Q1")+" <http://schema.org/about> "+iri(wd, "Q1")+" .")
			assert.Contains(t, out, `<http://schema.org/version> "42"^^`+xsdInt)
			assert.Contains(t, out, `"2024-03-01T12:30:00Z"^^<http://www.w3.org/2001/XMLSchema#dateTime>`)
			assert.Equal(t, tt.wantLicense, strings.Contains(out, "<http://creativecommons.org/ns#license>"))
		})
	}
}

type staticPageProps map[string]any

func (p staticPageProps) PageProperties(entity.Document) map[string]any { return p }

func TestAddEntityPageProps(t *testing.T) {
	props := staticPageProps{"wb-claims": 2, "wb-sitelinks": int64(1), "not-defined": 5}

	b := newTestBuilder(t, nil, WithFlavor(FlavorDump), WithPagePropsProvider(props))
	require.NoError(t, b.AddEntityPageProps(itemWith("Q1", nil)))
	lines := finish(t, b)
	assert.Equal(t, []string{
		iri(wdataIRI, "Q1") + ` <http://wikiba.se/ontology#statements> "2"^^` + xsdInt + " .",
		iri(wdataIRI, "Q1") + ` <http://wikiba.se/ontology#sitelinks> "1"^^` + xsdInt + " .",
	}, lines)

	off := newTestBuilder(t, nil, WithFlavor(FlavorFull), WithPagePropsProvider(props))
	require.NoError(t, off.AddEntityPageProps(itemWith("Q1", nil)))
	assert.Empty(t, finish(t, off))
}

func TestAddDumpHeader(t *testing.T) {
	b := newTestBuilder(t, nil)
	require.NoError(t, b.AddDumpHeader(time.Unix(0, 0)))
	out := strings.Join(finish(t, b), "\n")

	dump := "<http://wikiba.se/ontology#Dump>"
	assert.Contains(t, out, dump+" "+rdfType+" <http://schema.org/Dataset> .")
	assert.Contains(t, out, dump+" "+rdfType+" <http://www.w3.org/2002/07/owl#Ontology> .")
	assert.Contains(t, out, dump+` <http://schema.org/softwareVersion> "1.0.0" .`)
	assert.Contains(t, out, `"1970-01-01T00:00:00Z"^^<http://www.w3.org/2001/XMLSchema#dateTime>`)
	assert.Contains(t, out, dump+" <http://www.w3.org/2002/07/owl#imports> <http://wikiba.se/ontology-1.0.owl> .")
}

func TestNamespacesAndPageDefs(t *testing.T) {
	b := New(vocabulary.MustNew(vocabulary.DefaultConfig()), export.NewTurtleWriter(), nil, nil)
	assert.Equal(t, wd, b.Namespaces()["wd"])
	assert.Equal(t, "statements", b.PagePropertyDefs()["wb-claims"].Name)
}
