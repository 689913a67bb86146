package rdfbuilder

import (
	"fmt"
	"strings"
)

// Flavor is a bitmask of the optional facets a builder produces.
type Flavor uint32

const (
	// ProduceTruthyStatements emits best-rank values as direct triples.
	ProduceTruthyStatements Flavor = 1 << iota
	// ProduceAllStatements emits statement nodes with rank.
	ProduceAllStatements
	// ProduceQualifiers emits qualifiers on statement nodes.
	ProduceQualifiers
	// ProduceReferences emits reference nodes.
	ProduceReferences
	// ProduceSitelinks emits site link articles.
	ProduceSitelinks
	// ProduceProperties adds stubs for the properties that were used.
	ProduceProperties
	// ProduceFullValues emits value nodes for complex data values.
	ProduceFullValues
	// ProduceVersionInfo adds license and format version to revision info.
	ProduceVersionInfo
	// ProduceResolvedEntities adds stubs for referenced entities and
	// follows redirects.
	ProduceResolvedEntities
	// ProduceNormalized emits normalized values where available.
	ProduceNormalized
	// ProducePageProps emits page properties such as statement counts.
	ProducePageProps
)

// ProduceAll enables every facet.
const ProduceAll Flavor = 1<<11 - 1

// Flavor presets.
const (
	// FlavorFull is the single-entity export: everything except page props.
	FlavorFull = ProduceAll &^ ProducePageProps

	// FlavorDump is the full dump: statements, values and page props, no
	// stubs for referenced entities.
	FlavorDump = ProduceAllStatements | ProduceTruthyStatements | ProduceQualifiers |
		ProduceReferences | ProduceSitelinks | ProduceFullValues | ProducePageProps | ProduceNormalized

	// FlavorTruthy emits only best-rank direct triples and site links.
	FlavorTruthy = ProduceTruthyStatements | ProduceSitelinks
)

var flavorPresets = map[string]Flavor{
	"full":   FlavorFull,
	"dump":   FlavorDump,
	"truthy": FlavorTruthy,
}

// Has reports whether every facet in f2 is enabled.
func (f Flavor) Has(f2 Flavor) bool {
	return f&f2 == f2
}

// ParseFlavor parses a preset name: full, dump or truthy.
func ParseFlavor(name string) (Flavor, error) {
	f, ok := flavorPresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown flavor %q (valid: full, dump, truthy)", name)
	}
	return f, nil
}
