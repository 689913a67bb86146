package entity

// Rank orders statements for the same property.
type Rank int

const (
	RankDeprecated Rank = iota
	RankNormal
	RankPreferred
)

var rankNames = map[Rank]string{
	RankDeprecated: "deprecated",
	RankNormal:     "normal",
	RankPreferred:  "preferred",
}

// String returns the JSON name of the rank.
func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return "normal"
}

// ParseRank parses a rank name, defaulting to RankNormal.
func ParseRank(s string) Rank {
	for r, name := range rankNames {
		if name == s {
			return r
		}
	}
	return RankNormal
}

// SnakType distinguishes concrete values from "some value" and "no value".
type SnakType string

const (
	SnakValue     SnakType = "value"
	SnakSomeValue SnakType = "somevalue"
	SnakNoValue   SnakType = "novalue"
)

// Snak is a property with an optional value.
type Snak struct {
	Type     SnakType
	Property ID
	DataType string
	Value    DataValue
}

// Reference is a group of snaks supporting a statement.
type Reference struct {
	Hash  string
	Snaks []Snak
}

// Statement is a claim with rank, qualifiers and references.
type Statement struct {
	GUID       string
	Rank       Rank
	MainSnak   Snak
	Qualifiers []Snak
	References []Reference
}

// Properties returns every property used in the statement, main snak first,
// without duplicates.
func (s Statement) Properties() []ID {
	seen := make(map[string]bool)
	var out []ID
	add := func(id ID) {
		if id.IsZero() || seen[id.Serialization()] {
			return
		}
		seen[id.Serialization()] = true
		out = append(out, id)
	}
	add(s.MainSnak.Property)
	for _, q := range s.Qualifiers {
		add(q.Property)
	}
	for _, ref := range s.References {
		for _, sn := range ref.Snaks {
			add(sn.Property)
		}
	}
	return out
}

// BestStatements returns, per property, the statements with the highest
// non-deprecated rank. Input order is preserved.
func BestStatements(statements []Statement) []Statement {
	best := make(map[string]Rank)
	for _, s := range statements {
		if s.Rank == RankDeprecated {
			continue
		}
		key := s.MainSnak.Property.Serialization()
		if r, ok := best[key]; !ok || s.Rank > r {
			best[key] = s.Rank
		}
	}

	out := make([]Statement, 0, len(statements))
	for _, s := range statements {
		if r, ok := best[s.MainSnak.Property.Serialization()]; ok && s.Rank == r {
			out = append(out, s)
		}
	}
	return out
}
