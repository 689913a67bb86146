package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemJSON = `{
  "type": "item",
  "id": "Q1",
  "labels": {"en": {"language": "en", "value": "Universe"}},
  "descriptions": {"en": {"language": "en", "value": "all of space and time"}},
  "aliases": {"en": [{"language": "en", "value": "cosmos"}, {"language": "en", "value": "everything"}]},
  "claims": {
    "P10": [{
      "id": "Q1$b", "rank": "normal", "type": "statement",
      "mainsnak": {"snaktype": "value", "property": "P10", "datatype": "string",
        "datavalue": {"type": "string", "value": "x"}}
    }],
    "P2": [{
      "id": "Q1$a", "rank": "preferred", "type": "statement",
      "mainsnak": {"snaktype": "value", "property": "P2", "datatype": "wikibase-item",
        "datavalue": {"type": "wikibase-entityid", "value": {"entity-type": "item", "numeric-id": 5}}},
      "qualifiers": {"P3": [{"snaktype": "novalue", "property": "P3"}]},
      "qualifiers-order": ["P3"],
      "references": [{"hash": "abc", "snaks": {"P4": [{"snaktype": "value", "property": "P4",
        "datavalue": {"type": "time", "value": {"time": "+2001-01-01T00:00:00Z", "precision": 11}}}]}}]
    }]
  },
  "sitelinks": {"enwiki": {"site": "enwiki", "title": "Universe", "badges": ["Q17437796"]}}
}`

func TestDecodeItem(t *testing.T) {
	doc, err := DecodeDocument([]byte(itemJSON))
	require.NoError(t, err)

	item, ok := doc.(*Item)
	require.True(t, ok, "expected *Item, got %T", doc)
	assert.Equal(t, "Q1", item.ID().Serialization())
	assert.Equal(t, TypeItem, item.Type())
	assert.Equal(t, "Universe", item.Terms.Labels["en"])
	assert.Equal(t, []string{"cosmos", "everything"}, item.Terms.Aliases["en"])

	require.Len(t, item.Claims, 2)
	// P2 sorts before P10.
	first := item.Claims[0]
	assert.Equal(t, "Q1$a", first.GUID)
	assert.Equal(t, RankPreferred, first.Rank)
	assert.Equal(t, EntityIDValue{ID: MustParseID("Q5")}, first.MainSnak.Value)
	require.Len(t, first.Qualifiers, 1)
	assert.Equal(t, SnakNoValue, first.Qualifiers[0].Type)
	require.Len(t, first.References, 1)
	assert.Equal(t, "abc", first.References[0].Hash)
	assert.Equal(t, TimeValue{Time: "+2001-01-01T00:00:00Z", Precision: 11}, first.References[0].Snaks[0].Value)

	require.Contains(t, item.SiteLinks, "enwiki")
	assert.Equal(t, "Universe", item.SiteLinks["enwiki"].Title)
}

func TestDecodeProperty(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"type":"property","id":"P2","datatype":"wikibase-item",
		"labels":{"de":{"language":"de","value":"ist ein"}}}`))
	require.NoError(t, err)

	prop, ok := doc.(*Property)
	require.True(t, ok)
	assert.Equal(t, "wikibase-item", prop.DataType)
	assert.Equal(t, "ist ein", prop.Terms.Labels["de"])
}

func TestDecodeRedirect(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"id":"Q2","redirect":"Q3"}`))
	require.NoError(t, err)
	require.NotNil(t, rec.Redirect)
	assert.Nil(t, rec.Document)
	assert.Equal(t, "Q2", rec.Redirect.From.Serialization())
	assert.Equal(t, "Q3", rec.Redirect.To.Serialization())

	_, err = DecodeDocument([]byte(`{"id":"Q2","redirect":"Q3"}`))
	assert.Error(t, err)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad json", `{`},
		{"missing type", `{"id":"Q1"}`},
		{"bad id", `{"type":"item","id":"X"}`},
		{"unknown snak type", `{"type":"item","id":"Q1","claims":{"P1":[{"mainsnak":{"snaktype":"odd","property":"P1"}}]}}`},
		{"unknown value type", `{"type":"item","id":"Q1","claims":{"P1":[{"mainsnak":{"snaktype":"value","property":"P1","datavalue":{"type":"blob","value":1}}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDecodeGenericType(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"type":"lexeme","id":"L1"}`))
	require.NoError(t, err)
	assert.Equal(t, Type("lexeme"), doc.Type())
}

func TestDecodeRevisionInfo(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"type":"item","id":"Q7","lastrevid":1234,"modified":"2024-05-01T10:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1234), rec.Revision)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), rec.Modified)

	_, err = DecodeRecord([]byte(`{"type":"item","id":"Q7","modified":"yesterday"}`))
	assert.Error(t, err)
}
