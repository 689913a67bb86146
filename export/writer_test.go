package export_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/c360studio/semrdf/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(w export.Writer) {
	w.Prefix("wd", "http://www.wikidata.org/entity/")
	w.Prefix("wikibase", "http://wikiba.se/ontology#")
	w.Prefix("rdfs", "http://www.w3.org/2000/01/rdf-schema#")
	w.Prefix("xsd", "http://www.w3.org/2001/XMLSchema#")
	w.Start()
	w.About("wd", "Q1").
		A("wikibase", "Item").
		Say("rdfs", "label").Text("Universe", "en").Text("Univers", "fr")
	w.About("wd", "Q1").
		Say("wikibase", "sitelinks").Value("3", "xsd", "integer")
	w.About("wd", "Q2").
		Say("rdfs", "seeAlso").Is("http://example.org/a \"b\"", "")
	w.Finish()
}

func TestTurtleWriter(t *testing.T) {
	w := export.NewTurtleWriter()
	writeSample(w)

	out, err := w.Drain()
	require.NoError(t, err)

	assert.Contains(t, out, "@prefix wd: <http://www.wikidata.org/entity/> .\n")
	assert.Contains(t, out, "wd:Q1\n\ta wikibase:Item ;\n\trdfs:label \"Universe\"@en ,\n\t\t\"Univers\"@fr ;\n\twikibase:sitelinks \"3\"^^xsd:integer .\n")
	assert.Contains(t, out, "wd:Q2\n\trdfs:seeAlso <http://example.org/a%20%22b%22> .\n")

	// Prefixes are sorted.
	assert.Less(t, strings.Index(out, "@prefix rdfs:"), strings.Index(out, "@prefix wd:"))

	again, err := w.Drain()
	require.NoError(t, err)
	assert.Empty(t, again, "Drain clears the buffer")
}

func TestTurtleWriterEscapesLocalNames(t *testing.T) {
	w := export.NewTurtleWriter()
	w.Prefix("wds", "http://www.wikidata.org/entity/statement/")
	w.Prefix("rdfs", "http://www.w3.org/2000/01/rdf-schema#")
	w.Start()
	w.About("wds", "Q1$abc").Say("rdfs", "comment").Value("line\nbreak", "", "")
	w.Finish()

	out, err := w.Drain()
	require.NoError(t, err)
	assert.Contains(t, out, "<http://www.wikidata.org/entity/statement/Q1$abc>")
	assert.Contains(t, out, `"line\nbreak"`)
}

func TestNTriplesWriter(t *testing.T) {
	w := export.NewNTriplesWriter()
	writeSample(w)

	out, err := w.Drain()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, " ."), "line should end with ' .': %s", line)
	}
	assert.Equal(t, "<http://www.wikidata.org/entity/Q1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://wikiba.se/ontology#Item> .", lines[0])
	assert.Contains(t, out, `"3"^^<http://www.w3.org/2001/XMLSchema#integer>`)
	assert.Contains(t, out, `"Univers"@fr`)
}

func TestJSONLDWriter(t *testing.T) {
	w := export.NewJSONLDWriter()
	writeSample(w)

	out, err := w.Drain()
	require.NoError(t, err)

	var doc struct {
		Context map[string]string `json:"@context"`
		Graph   []map[string]any  `json:"@graph"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "http://www.wikidata.org/entity/", doc.Context["wd"])
	require.Len(t, doc.Graph, 2)
	assert.Equal(t, "wd:Q1", doc.Graph[0]["@id"])
	assert.Equal(t, []any{"wikibase:Item"}, doc.Graph[0]["@type"])

	labels, ok := doc.Graph[0]["rdfs:label"].([]any)
	require.True(t, ok)
	assert.Len(t, labels, 2)
}

func TestWriterErrors(t *testing.T) {
	formats := []export.Format{export.FormatTurtle, export.FormatNTriples, export.FormatJSONLD}

	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			w, err := export.NewWriter(format)
			require.NoError(t, err)
			w.About("wd", "Q1")
			assert.ErrorIs(t, w.Err(), export.ErrNotStarted)

			w, _ = export.NewWriter(format)
			w.Start()
			w.About("nope", "Q1")
			assert.ErrorIs(t, w.Err(), export.ErrUnknownPrefix)

			w, _ = export.NewWriter(format)
			w.Prefix("wd", "http://www.wikidata.org/entity/")
			w.Start()
			w.Say("wd", "P1")
			assert.ErrorIs(t, w.Err(), export.ErrNoSubject)

			w, _ = export.NewWriter(format)
			w.Prefix("wd", "http://www.wikidata.org/entity/")
			w.Start()
			w.About("wd", "Q1").Is("wd", "Q2")
			assert.ErrorIs(t, w.Err(), export.ErrNoPredicate)

			w, _ = export.NewWriter(format)
			w.Prefix("wd", "http://www.wikidata.org/entity/")
			w.Start()
			w.Finish()
			w.About("wd", "Q1")
			assert.ErrorIs(t, w.Err(), export.ErrWriterFinished)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWithOutput(t *testing.T) {
	var sb strings.Builder
	w := export.NewNTriplesWriter(export.WithOutput(&sb, 0))
	writeSample(w)

	require.NoError(t, w.Err())
	rest, err := w.Drain()
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, 5, strings.Count(sb.String(), "\n"))

	failing := export.NewTurtleWriter(export.WithOutput(failingWriter{}, 0))
	writeSample(failing)
	assert.ErrorContains(t, failing.Err(), "disk full")
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("Turtle")
	require.NoError(t, err)
	assert.Equal(t, export.FormatTurtle, f)

	_, err = export.ParseFormat("rdfxml")
	assert.Error(t, err)

	info, ok := export.GetFormatInfo(export.FormatNTriples)
	require.True(t, ok)
	assert.Equal(t, ".nt", info.Extension)
}
