package mapping

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/export"
	"github.com/c360studio/semrdf/rdfbuilder"
	"github.com/c360studio/semrdf/vocabulary"
	"github.com/cespare/xxhash/v2"
)

const commonsFilePath = "http://commons.wikimedia.org/wiki/Special:FilePath/"

// Dedupe namespaces.
const (
	dedupeValues     = "V"
	dedupeReferences = "R"
)

// node is an RDF subject given as namespace name and local name.
type node struct {
	ns, local string
}

// snakKinds selects the predicate families used for a snak.
type snakKinds struct {
	simple  vocabulary.PropertyKind
	full    vocabulary.PropertyKind
	hasFull bool
}

var (
	truthyKinds    = snakKinds{simple: vocabulary.PropertyDirect}
	statementKinds = snakKinds{simple: vocabulary.PropertyStatement, full: vocabulary.PropertyStatementValue, hasFull: true}
	qualifierKinds = snakKinds{simple: vocabulary.PropertyQualifier, full: vocabulary.PropertyQualifierValue, hasFull: true}
	referenceKinds = snakKinds{simple: vocabulary.PropertyReference, full: vocabulary.PropertyReferenceValue, hasFull: true}
)

// snakWriter writes snaks and their values.
type snakWriter struct {
	vocab    *vocabulary.Vocabulary
	w        export.Writer
	mentions rdfbuilder.MentionListener
	flavor   rdfbuilder.Flavor
	dedupe   rdfbuilder.DedupeBag
}

func newSnakWriter(deps rdfbuilder.MapperDeps) snakWriter {
	return snakWriter{
		vocab:    deps.Vocabulary,
		w:        deps.Writer,
		mentions: deps.Mentions,
		flavor:   deps.Flavor,
		dedupe:   deps.Dedupe,
	}
}

func (s *snakWriter) about(n node) export.Writer {
	return s.w.About(n.ns, n.local)
}

func (s *snakWriter) entityNode(id entity.ID) node {
	return node{s.vocab.EntityNamespaceName(id), s.vocab.EntityLName(id)}
}

// addSnak writes snak on subject. The property is always reported as
// mentioned.
func (s *snakWriter) addSnak(subject node, snak entity.Snak, kinds snakKinds) {
	p := snak.Property
	if p.IsZero() {
		return
	}
	s.mentions.PropertyMentioned(p)
	lname := s.vocab.EntityLName(p)

	switch snak.Type {
	case entity.SnakNoValue:
		s.about(subject).A(s.vocab.PropertyNamespaceName(p, vocabulary.PropertyNoValue), lname)
	case entity.SnakSomeValue:
		s.about(subject).
			Say(s.vocab.PropertyNamespaceName(p, kinds.simple), lname).
			IsBlank(blankLabel(subject, p))
	default:
		if snak.Value == nil {
			return
		}
		s.about(subject).Say(s.vocab.PropertyNamespaceName(p, kinds.simple), lname)
		s.writeSimpleValue(snak)
		if kinds.hasFull && s.flavor.Has(rdfbuilder.ProduceFullValues) {
			s.addFullValue(subject, snak, kinds.full)
		}
	}
}

// writeSimpleValue writes the object of the current predicate.
func (s *snakWriter) writeSimpleValue(snak entity.Snak) {
	switch v := snak.Value.(type) {
	case entity.StringValue:
		switch snak.DataType {
		case "url":
			s.w.Is(v.Value, "")
		case "commonsMedia":
			s.w.Is(commonsFilePath+url.PathEscape(strings.ReplaceAll(v.Value, " ", "_")), "")
		default:
			s.w.Value(v.Value, "", "")
		}
	case entity.EntityIDValue:
		n := s.entityNode(v.ID)
		s.w.Is(n.ns, n.local)
		s.mentions.EntityReferenceMentioned(v.ID)
	case entity.MonolingualTextValue:
		s.w.Text(v.Text, v.Language)
	case entity.TimeValue:
		s.w.Value(trimPlus(v.Time), vocabulary.NSXSD, "dateTime")
	case entity.QuantityValue:
		s.w.Value(trimPlus(v.Amount), vocabulary.NSXSD, "decimal")
	case entity.GlobeCoordinateValue:
		s.w.Value(pointLiteral(v), vocabulary.NSGeo, "wktLiteral")
	}
}

// addFullValue links subject to a deduplicated value node for time,
// quantity and globe coordinate values.
func (s *snakWriter) addFullValue(subject node, snak entity.Snak, kind vocabulary.PropertyKind) {
	hash := valueHash(snak.Value)
	if hash == "" {
		return
	}
	p := snak.Property
	valueNS := s.vocab.ValueNamespaceName(p)
	s.about(subject).Say(s.vocab.PropertyNamespaceName(p, kind), s.vocab.EntityLName(p)).Is(valueNS, hash)

	if s.dedupe.AlreadySeen(hash, dedupeValues) {
		return
	}

	w := s.w.About(valueNS, hash)
	switch v := snak.Value.(type) {
	case entity.TimeValue:
		w.A(vocabulary.NSOntology, vocabulary.ClassTimeValue).
			Say(vocabulary.NSOntology, "timeValue").Value(trimPlus(v.Time), vocabulary.NSXSD, "dateTime").
			Say(vocabulary.NSOntology, "timePrecision").Value(strconv.Itoa(v.Precision), vocabulary.NSXSD, "integer").
			Say(vocabulary.NSOntology, "timeTimezone").Value(strconv.Itoa(v.Timezone), vocabulary.NSXSD, "integer")
		if v.CalendarModel != "" {
			w.Say(vocabulary.NSOntology, "timeCalendarModel").Is(v.CalendarModel, "")
		}
	case entity.QuantityValue:
		w.A(vocabulary.NSOntology, vocabulary.ClassQuantityValue).
			Say(vocabulary.NSOntology, "quantityAmount").Value(trimPlus(v.Amount), vocabulary.NSXSD, "decimal")
		if v.UpperBound != "" {
			w.Say(vocabulary.NSOntology, "quantityUpperBound").Value(trimPlus(v.UpperBound), vocabulary.NSXSD, "decimal")
		}
		if v.LowerBound != "" {
			w.Say(vocabulary.NSOntology, "quantityLowerBound").Value(trimPlus(v.LowerBound), vocabulary.NSXSD, "decimal")
		}
		if v.Unit != "" && v.Unit != "1" {
			w.Say(vocabulary.NSOntology, "quantityUnit").Is(v.Unit, "")
		}
	case entity.GlobeCoordinateValue:
		w.A(vocabulary.NSOntology, "GlobecoordinateValue").
			Say(vocabulary.NSOntology, "geoLatitude").Value(formatFloat(v.Latitude), vocabulary.NSXSD, "double").
			Say(vocabulary.NSOntology, "geoLongitude").Value(formatFloat(v.Longitude), vocabulary.NSXSD, "double").
			Say(vocabulary.NSOntology, "geoPrecision").Value(formatFloat(v.Precision), vocabulary.NSXSD, "double")
		if v.Globe != "" {
			w.Say(vocabulary.NSOntology, "geoGlobe").Is(v.Globe, "")
		}
	}
}

// valueHash returns the local name of the value node for v, or "" when v
// has no value node.
func valueHash(v entity.DataValue) string {
	var key string
	switch v := v.(type) {
	case entity.TimeValue:
		key = fmt.Sprintf("time|%s|%d|%d|%s", v.Time, v.Precision, v.Timezone, v.CalendarModel)
	case entity.QuantityValue:
		key = fmt.Sprintf("quantity|%s|%s|%s|%s", v.Amount, v.UpperBound, v.LowerBound, v.Unit)
	case entity.GlobeCoordinateValue:
		key = fmt.Sprintf("globe|%g|%g|%g|%s", v.Latitude, v.Longitude, v.Precision, v.Globe)
	default:
		return ""
	}
	return hashKey(key)
}

func hashKey(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}

// blankLabel returns a document-unique blank node label for a "some value"
// snak.
func blankLabel(subject node, property entity.ID) string {
	return "sv" + hashKey(subject.ns+":"+subject.local+"|"+property.Serialization())
}

func trimPlus(s string) string {
	return strings.TrimPrefix(s, "+")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func pointLiteral(v entity.GlobeCoordinateValue) string {
	return "Point(" + formatFloat(v.Longitude) + " " + formatFloat(v.Latitude) + ")"
}
