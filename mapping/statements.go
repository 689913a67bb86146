package mapping

import (
	"strconv"
	"strings"

	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/rdfbuilder"
	"github.com/c360studio/semrdf/vocabulary"
)

var rankNames = map[entity.Rank]string{
	entity.RankDeprecated: vocabulary.RankDeprecated,
	entity.RankNormal:     vocabulary.RankNormal,
	entity.RankPreferred:  vocabulary.RankPreferred,
}

// statementWriter writes truthy triples and full statement nodes.
type statementWriter struct {
	snakWriter
}

// addStatements writes the statements of the entity id according to the
// flavor.
func (s *statementWriter) addStatements(id entity.ID, statements []entity.Statement) {
	if len(statements) == 0 {
		return
	}
	subject := s.entityNode(id)

	if s.flavor.Has(rdfbuilder.ProduceTruthyStatements) {
		for _, st := range entity.BestStatements(statements) {
			s.addSnak(subject, st.MainSnak, truthyKinds)
		}
	}

	if s.flavor.Has(rdfbuilder.ProduceAllStatements) {
		best := bestRanks(statements)
		for i, st := range statements {
			r, ok := best[st.MainSnak.Property.Serialization()]
			s.addFullStatement(id, i, st, ok && st.Rank == r)
		}
	}
}

func bestRanks(statements []entity.Statement) map[string]entity.Rank {
	best := make(map[string]entity.Rank)
	for _, st := range statements {
		if st.Rank == entity.RankDeprecated {
			continue
		}
		key := st.MainSnak.Property.Serialization()
		if r, ok := best[key]; !ok || st.Rank > r {
			best[key] = st.Rank
		}
	}
	return best
}

func (s *statementWriter) addFullStatement(id entity.ID, index int, st entity.Statement, isBest bool) {
	p := st.MainSnak.Property
	if p.IsZero() {
		return
	}
	stmt := node{s.vocab.StatementNamespaceName(id), statementLName(id, index, st)}

	s.about(s.entityNode(id)).
		Say(s.vocab.PropertyNamespaceName(p, vocabulary.PropertyClaim), s.vocab.EntityLName(p)).
		Is(stmt.ns, stmt.local)

	s.about(stmt).A(vocabulary.NSOntology, vocabulary.ClassStatement)
	if isBest {
		s.w.A(vocabulary.NSOntology, vocabulary.ClassBestRank)
	}
	s.w.Say(vocabulary.NSOntology, vocabulary.PredicateRank).Is(vocabulary.NSOntology, rankNames[st.Rank])

	s.addSnak(stmt, st.MainSnak, statementKinds)

	if s.flavor.Has(rdfbuilder.ProduceQualifiers) {
		for _, q := range st.Qualifiers {
			s.addSnak(stmt, q, qualifierKinds)
		}
	}

	if s.flavor.Has(rdfbuilder.ProduceReferences) {
		for _, ref := range st.References {
			s.addReference(id, stmt, ref)
		}
	}
}

func (s *statementWriter) addReference(id entity.ID, stmt node, ref entity.Reference) {
	if len(ref.Snaks) == 0 {
		return
	}
	refNode := node{s.vocab.ReferenceNamespaceName(id), referenceHash(ref)}
	s.about(stmt).Say(vocabulary.NSProv, "wasDerivedFrom").Is(refNode.ns, refNode.local)

	if s.dedupe.AlreadySeen(refNode.local, dedupeReferences) {
		// The snaks were written before, but their properties still count
		// as mentions in this entity.
		for _, sn := range ref.Snaks {
			s.mentions.PropertyMentioned(sn.Property)
		}
		return
	}
	s.about(refNode).A(vocabulary.NSOntology, vocabulary.ClassReference)
	for _, sn := range ref.Snaks {
		s.addSnak(refNode, sn, referenceKinds)
	}
}

// statementLName derives the statement node name from the GUID, or from
// the entity and position when the statement has none.
func statementLName(id entity.ID, index int, st entity.Statement) string {
	if st.GUID != "" {
		return strings.ReplaceAll(st.GUID, "$", "-")
	}
	return id.LocalPart() + "-" + hashKey(id.Serialization()+"|"+strconv.Itoa(index)+"|"+st.MainSnak.Property.Serialization())
}

func referenceHash(ref entity.Reference) string {
	if ref.Hash != "" {
		return ref.Hash
	}
	var sb strings.Builder
	for _, sn := range ref.Snaks {
		sb.WriteString(sn.Property.Serialization())
		sb.WriteByte('|')
		sb.WriteString(string(sn.Type))
		sb.WriteByte('|')
		if sn.Value != nil {
			sb.WriteString(sn.Value.ValueType())
			sb.WriteByte('=')
			sb.WriteString(valueKey(sn.Value))
		}
		sb.WriteByte(';')
	}
	return hashKey(sb.String())
}

func valueKey(v entity.DataValue) string {
	switch v := v.(type) {
	case entity.StringValue:
		return v.Value
	case entity.EntityIDValue:
		return v.ID.Serialization()
	case entity.MonolingualTextValue:
		return v.Language + ":" + v.Text
	default:
		return valueHash(v)
	}
}
