package vocabulary

// Fixed namespace names shared by every repository.
const (
	NSRDF       = "rdf"
	NSRDFS      = "rdfs"
	NSXSD       = "xsd"
	NSOWL       = "owl"
	NSSKOS      = "skos"
	NSSchemaOrg = "schema"
	NSCC        = "cc"
	NSGeo       = "geo"
	NSProv      = "prov"
	NSOntology  = "wikibase"
)

// Fixed namespace IRIs.
const (
	RDFNamespace       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace      = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace       = "http://www.w3.org/2001/XMLSchema#"
	OWLNamespace       = "http://www.w3.org/2002/07/owl#"
	SKOSNamespace      = "http://www.w3.org/2004/02/skos/core#"
	SchemaOrgNamespace = "http://schema.org/"
	CCNamespace        = "http://creativecommons.org/ns#"
	GeoNamespace       = "http://www.opengis.net/ont/geosparql#"
	ProvNamespace      = "http://www.w3.org/ns/prov#"
	OntologyNamespace  = "http://wikiba.se/ontology#"
)

const (
	// FormatVersion is the version of the RDF mapping emitted by this module.
	FormatVersion = "1.0.0"

	// OntologyURI is imported by dump headers.
	OntologyURI = "http://wikiba.se/ontology-1.0.owl"

	// DefaultLicenseURL is CC0.
	DefaultLicenseURL = "http://creativecommons.org/publicdomain/zero/1.0/"
)

// Ontology terms used by the builder and the mappers.
const (
	ClassItem             = "Item"
	ClassProperty         = "Property"
	ClassStatement        = "Statement"
	ClassReference        = "Reference"
	ClassDump             = "Dump"
	ClassTimeValue        = "TimeValue"
	ClassQuantityValue    = "QuantityValue"
	ClassBestRank         = "BestRank"
	RankNormal            = "NormalRank"
	RankPreferred         = "PreferredRank"
	RankDeprecated        = "DeprecatedRank"
	PredicateRank         = "rank"
	PredicatePropertyType = "propertyType"
	PredicateBadge        = "badge"
)

// PropertyKind selects one of the per-property predicate namespaces.
type PropertyKind int

const (
	// PropertyDirect is the truthy predicate (wdt).
	PropertyDirect PropertyKind = iota
	// PropertyClaim links an entity to a statement node (p).
	PropertyClaim
	// PropertyStatement links a statement node to its simple value (ps).
	PropertyStatement
	// PropertyStatementValue links a statement node to a full value node (psv).
	PropertyStatementValue
	// PropertyQualifier is a qualifier with a simple value (pq).
	PropertyQualifier
	// PropertyQualifierValue is a qualifier with a full value node (pqv).
	PropertyQualifierValue
	// PropertyReference is a reference snak with a simple value (pr).
	PropertyReference
	// PropertyReferenceValue is a reference snak with a full value node (prv).
	PropertyReferenceValue
	// PropertyNoValue is the class of entities with a "no value" snak (wdno).
	PropertyNoValue
)

// propertyKinds lists the per-property namespaces with the ontology
// predicate that declares each of them on a property entity.
var propertyKinds = []struct {
	kind      PropertyKind
	path      string
	predicate string
}{
	{PropertyDirect, "direct/", "directClaim"},
	{PropertyClaim, "", "claim"},
	{PropertyStatement, "statement/", "statementProperty"},
	{PropertyStatementValue, "statement/value/", "statementValue"},
	{PropertyQualifier, "qualifier/", "qualifier"},
	{PropertyQualifierValue, "qualifier/value/", "qualifierValue"},
	{PropertyReference, "reference/", "reference"},
	{PropertyReferenceValue, "reference/value/", "referenceValue"},
	{PropertyNoValue, "novalue/", "novalue"},
}
