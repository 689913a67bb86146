package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ErrUnknownEntityType is returned when decoding a document whose type has
// no model.
var ErrUnknownEntityType = errors.New("unknown entity type")

// Redirect records that one entity id has been merged into another.
type Redirect struct {
	From ID
	To   ID
}

// Record is one decoded input record: either a document or a redirect.
// Revision and Modified are zero when the record does not carry them.
type Record struct {
	Document Document
	Redirect *Redirect
	Revision int64
	Modified time.Time
}

type jsonTerm struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type jsonSiteLink struct {
	Site   string   `json:"site"`
	Title  string   `json:"title"`
	Badges []string `json:"badges"`
}

type jsonDataValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type jsonSnak struct {
	SnakType  string         `json:"snaktype"`
	Property  string         `json:"property"`
	DataType  string         `json:"datatype"`
	DataValue *jsonDataValue `json:"datavalue"`
}

type jsonReference struct {
	Hash       string                `json:"hash"`
	Snaks      map[string][]jsonSnak `json:"snaks"`
	SnaksOrder []string              `json:"snaks-order"`
}

type jsonStatement struct {
	ID              string                `json:"id"`
	Rank            string                `json:"rank"`
	MainSnak        jsonSnak              `json:"mainsnak"`
	Qualifiers      map[string][]jsonSnak `json:"qualifiers"`
	QualifiersOrder []string              `json:"qualifiers-order"`
	References      []jsonReference       `json:"references"`
}

type jsonDocument struct {
	Type         string                     `json:"type"`
	ID           string                     `json:"id"`
	DataType     string                     `json:"datatype"`
	Labels       map[string]jsonTerm        `json:"labels"`
	Descriptions map[string]jsonTerm        `json:"descriptions"`
	Aliases      map[string][]jsonTerm      `json:"aliases"`
	Claims       map[string][]jsonStatement `json:"claims"`
	SiteLinks    map[string]jsonSiteLink    `json:"sitelinks"`
	Redirect     string                     `json:"redirect"`
	LastRevID    int64                      `json:"lastrevid"`
	Modified     string                     `json:"modified"`
}

// DecodeRecord decodes a single JSON record. Objects carrying a "redirect"
// member decode to a Redirect; everything else must be an entity document.
func DecodeRecord(data []byte) (Record, error) {
	var raw jsonDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("unmarshal entity record: %w", err)
	}

	rec := Record{Revision: raw.LastRevID}
	if raw.Modified != "" {
		modified, err := time.Parse(time.RFC3339, raw.Modified)
		if err != nil {
			return Record{}, fmt.Errorf("modified: %w", err)
		}
		rec.Modified = modified.UTC()
	}

	if raw.Redirect != "" {
		from, err := ParseID(raw.ID)
		if err != nil {
			return Record{}, fmt.Errorf("redirect source: %w", err)
		}
		to, err := ParseID(raw.Redirect)
		if err != nil {
			return Record{}, fmt.Errorf("redirect target: %w", err)
		}
		rec.Redirect = &Redirect{From: from, To: to}
		return rec, nil
	}

	doc, err := raw.document()
	if err != nil {
		return Record{}, err
	}
	rec.Document = doc
	return rec, nil
}

// DecodeDocument decodes an entity document in the canonical JSON format.
func DecodeDocument(data []byte) (Document, error) {
	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	if rec.Document == nil {
		return nil, fmt.Errorf("record for %s is a redirect, not a document", rec.Redirect.From)
	}
	return rec.Document, nil
}

func (d *jsonDocument) document() (Document, error) {
	id, err := ParseID(d.ID)
	if err != nil {
		return nil, err
	}

	terms := Fingerprint{
		Labels:       decodeTerms(d.Labels),
		Descriptions: decodeTerms(d.Descriptions),
		Aliases:      decodeAliases(d.Aliases),
	}

	switch Type(d.Type) {
	case TypeItem:
		claims, err := decodeClaims(d.Claims)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", id, err)
		}
		item := &Item{EntityID: id, Terms: terms, Claims: claims}
		if len(d.SiteLinks) > 0 {
			item.SiteLinks = make(map[string]SiteLink, len(d.SiteLinks))
			for site, link := range d.SiteLinks {
				badges := make([]ID, 0, len(link.Badges))
				for _, b := range link.Badges {
					badge, err := ParseID(b)
					if err != nil {
						return nil, fmt.Errorf("item %s badge: %w", id, err)
					}
					badges = append(badges, badge)
				}
				item.SiteLinks[site] = SiteLink{Site: site, Title: link.Title, Badges: badges}
			}
		}
		return item, nil
	case TypeProperty:
		claims, err := decodeClaims(d.Claims)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", id, err)
		}
		return &Property{EntityID: id, DataType: d.DataType, Terms: terms, Claims: claims}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type for %s", ErrUnknownEntityType, id)
	default:
		return &Generic{EntityID: id, Kind: Type(d.Type), Terms: terms}, nil
	}
}

func decodeTerms(in map[string]jsonTerm) TermList {
	if len(in) == 0 {
		return nil
	}
	out := make(TermList, len(in))
	for lang, t := range in {
		out[lang] = t.Value
	}
	return out
}

func decodeAliases(in map[string][]jsonTerm) AliasGroupList {
	if len(in) == 0 {
		return nil
	}
	out := make(AliasGroupList, len(in))
	for lang, group := range in {
		for _, t := range group {
			out[lang] = append(out[lang], t.Value)
		}
	}
	return out
}

func decodeClaims(claims map[string][]jsonStatement) ([]Statement, error) {
	var out []Statement
	for _, pid := range sortedIDKeys(claims) {
		for _, js := range claims[pid] {
			s, err := js.statement()
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}

func (js *jsonStatement) statement() (Statement, error) {
	main, err := js.MainSnak.snak()
	if err != nil {
		return Statement{}, fmt.Errorf("statement %s: %w", js.ID, err)
	}
	qualifiers, err := decodeSnakGroups(js.Qualifiers, js.QualifiersOrder)
	if err != nil {
		return Statement{}, fmt.Errorf("statement %s qualifiers: %w", js.ID, err)
	}

	s := Statement{
		GUID:       js.ID,
		Rank:       ParseRank(js.Rank),
		MainSnak:   main,
		Qualifiers: qualifiers,
	}
	for _, jr := range js.References {
		snaks, err := decodeSnakGroups(jr.Snaks, jr.SnaksOrder)
		if err != nil {
			return Statement{}, fmt.Errorf("statement %s reference %s: %w", js.ID, jr.Hash, err)
		}
		s.References = append(s.References, Reference{Hash: jr.Hash, Snaks: snaks})
	}
	return s, nil
}

func decodeSnakGroups(groups map[string][]jsonSnak, order []string) ([]Snak, error) {
	if len(order) == 0 {
		order = sortedIDKeys(groups)
	}
	var out []Snak
	for _, pid := range order {
		for _, js := range groups[pid] {
			sn, err := js.snak()
			if err != nil {
				return nil, err
			}
			out = append(out, sn)
		}
	}
	return out, nil
}

func (js *jsonSnak) snak() (Snak, error) {
	pid, err := ParseID(js.Property)
	if err != nil {
		return Snak{}, fmt.Errorf("snak property: %w", err)
	}
	sn := Snak{Type: SnakType(js.SnakType), Property: pid, DataType: js.DataType}
	switch sn.Type {
	case SnakValue:
		if js.DataValue == nil {
			return Snak{}, fmt.Errorf("value snak for %s has no datavalue", pid)
		}
		v, err := decodeDataValue(js.DataValue)
		if err != nil {
			return Snak{}, fmt.Errorf("snak %s: %w", pid, err)
		}
		sn.Value = v
	case SnakSomeValue, SnakNoValue:
	default:
		return Snak{}, fmt.Errorf("unknown snak type %q", js.SnakType)
	}
	return sn, nil
}

func decodeDataValue(dv *jsonDataValue) (DataValue, error) {
	switch dv.Type {
	case "string":
		var s string
		if err := json.Unmarshal(dv.Value, &s); err != nil {
			return nil, fmt.Errorf("string value: %w", err)
		}
		return StringValue{Value: s}, nil
	case "wikibase-entityid":
		var v struct {
			EntityType string `json:"entity-type"`
			NumericID  uint64 `json:"numeric-id"`
			ID         string `json:"id"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil {
			return nil, fmt.Errorf("entity id value: %w", err)
		}
		serialization := v.ID
		if serialization == "" {
			serialization = numericSerialization(Type(v.EntityType), v.NumericID)
		}
		id, err := ParseID(serialization)
		if err != nil {
			return nil, err
		}
		return EntityIDValue{ID: id}, nil
	case "monolingualtext":
		var v struct {
			Text     string `json:"text"`
			Language string `json:"language"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil {
			return nil, fmt.Errorf("monolingual text value: %w", err)
		}
		return MonolingualTextValue{Text: v.Text, Language: v.Language}, nil
	case "time":
		var v struct {
			Time          string `json:"time"`
			Timezone      int    `json:"timezone"`
			Precision     int    `json:"precision"`
			CalendarModel string `json:"calendarmodel"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil {
			return nil, fmt.Errorf("time value: %w", err)
		}
		return TimeValue{Time: v.Time, Precision: v.Precision, CalendarModel: v.CalendarModel, Timezone: v.Timezone}, nil
	case "quantity":
		var v struct {
			Amount     string `json:"amount"`
			Unit       string `json:"unit"`
			UpperBound string `json:"upperBound"`
			LowerBound string `json:"lowerBound"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil {
			return nil, fmt.Errorf("quantity value: %w", err)
		}
		return QuantityValue(v), nil
	case "globecoordinate":
		var v struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Precision float64 `json:"precision"`
			Globe     string  `json:"globe"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil {
			return nil, fmt.Errorf("globe coordinate value: %w", err)
		}
		return GlobeCoordinateValue(v), nil
	default:
		return nil, fmt.Errorf("unsupported data value type %q", dv.Type)
	}
}

func numericSerialization(t Type, n uint64) string {
	letter := "Q"
	if t == TypeProperty {
		letter = "P"
	}
	return letter + strconv.FormatUint(n, 10)
}

// sortedIDKeys orders id-keyed maps so that P2 sorts before P10.
func sortedIDKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
