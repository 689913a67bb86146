// Package vocabulary maps entity ids and entity types to RDF namespaces and
// local names.
//
// Every repository (the local one, named "", and any number of foreign ones)
// owns a family of namespaces derived from its entity prefix:
//
//	wd      http://www.wikidata.org/entity/
//	wdata   https://www.wikidata.org/wiki/Special:EntityData/
//	wds     http://www.wikidata.org/entity/statement/
//	wdref   http://www.wikidata.org/reference/
//	wdv     http://www.wikidata.org/value/
//	wdt     http://www.wikidata.org/prop/direct/
//	p, ps, psv, pq, pqv, pr, prv   http://www.wikidata.org/prop/...
//	wdno    http://www.wikidata.org/prop/novalue/
//
// Foreign repositories prefix the property families as well ("foop",
// "foops", ...), the local repository does not.
package vocabulary

import (
	"fmt"
	"strings"

	"github.com/c360studio/semrdf/entity"
)

// RepositoryConfig configures the namespaces of one repository.
type RepositoryConfig struct {
	// EntityPrefix is the namespace name for entity IRIs (e.g. "wd").
	EntityPrefix string `yaml:"entity_prefix"`
	// PropertyPrefix prefixes the property namespace names. Empty for the
	// local repository.
	PropertyPrefix string `yaml:"property_prefix"`
	// ConceptBaseURI is the base IRI for entities, ending in "entity/".
	ConceptBaseURI string `yaml:"concept_base_uri"`
	// DataURI is the base IRI for entity data documents.
	DataURI string `yaml:"data_uri"`
}

// PagePropertyDef describes how a page property is exposed in RDF.
type PagePropertyDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Config configures a Vocabulary.
type Config struct {
	// Repositories maps repository names to namespaces. The local repository
	// uses the empty name.
	Repositories     map[string]RepositoryConfig `yaml:"repositories"`
	LicenseURL       string                      `yaml:"license_url"`
	PagePropertyDefs map[string]PagePropertyDef  `yaml:"page_properties"`
	// SiteLinkBases maps site ids (e.g. "enwiki") to the article base URL.
	SiteLinkBases map[string]string `yaml:"sites"`
}

// DefaultConfig returns a configuration modelled on Wikidata.
func DefaultConfig() Config {
	return Config{
		Repositories: map[string]RepositoryConfig{
			"": {
				EntityPrefix:   "wd",
				ConceptBaseURI: "http://www.wikidata.org/entity/",
				DataURI:        "https://www.wikidata.org/wiki/Special:EntityData/",
			},
		},
		LicenseURL: DefaultLicenseURL,
		PagePropertyDefs: map[string]PagePropertyDef{
			"wb-claims":      {Name: "statements", Type: "integer"},
			"wb-sitelinks":   {Name: "sitelinks", Type: "integer"},
			"wb-identifiers": {Name: "identifiers", Type: "integer"},
		},
		SiteLinkBases: map[string]string{
			"enwiki": "https://en.wikipedia.org/wiki/",
			"dewiki": "https://de.wikipedia.org/wiki/",
		},
	}
}

// Validate checks that the local repository is configured and every
// repository has a prefix and base URIs.
func (c *Config) Validate() error {
	if _, ok := c.Repositories[""]; !ok {
		return fmt.Errorf("vocabulary: local repository (\"\") is required")
	}
	for name, repo := range c.Repositories {
		if repo.EntityPrefix == "" {
			return fmt.Errorf("vocabulary: repository %q: entity_prefix is required", name)
		}
		if !strings.HasSuffix(repo.ConceptBaseURI, "/") {
			return fmt.Errorf("vocabulary: repository %q: concept_base_uri must end in '/'", name)
		}
		if repo.DataURI == "" {
			return fmt.Errorf("vocabulary: repository %q: data_uri is required", name)
		}
		if name != "" && repo.PropertyPrefix == "" {
			return fmt.Errorf("vocabulary: foreign repository %q: property_prefix is required", name)
		}
	}
	return nil
}

type repository struct {
	RepositoryConfig
	propertyNames map[PropertyKind]string
}

// Vocabulary resolves namespace names and local names for entities.
type Vocabulary struct {
	repos      map[string]*repository
	namespaces map[string]string
	licenseURL string
	pageProps  map[string]PagePropertyDef
	sites      map[string]string
}

// New builds a Vocabulary from a validated configuration.
func New(cfg Config) (*Vocabulary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &Vocabulary{
		repos:      make(map[string]*repository, len(cfg.Repositories)),
		namespaces: defaultNamespaces(),
		licenseURL: cfg.LicenseURL,
		pageProps:  cfg.PagePropertyDefs,
		sites:      cfg.SiteLinkBases,
	}
	if v.licenseURL == "" {
		v.licenseURL = DefaultLicenseURL
	}

	for name, rc := range cfg.Repositories {
		repo := &repository{RepositoryConfig: rc, propertyNames: make(map[PropertyKind]string)}
		base := strings.TrimSuffix(rc.ConceptBaseURI, "entity/")

		v.namespaces[rc.EntityPrefix] = rc.ConceptBaseURI
		v.namespaces[rc.EntityPrefix+"data"] = rc.DataURI
		v.namespaces[rc.EntityPrefix+"s"] = rc.ConceptBaseURI + "statement/"
		v.namespaces[rc.EntityPrefix+"ref"] = base + "reference/"
		v.namespaces[rc.EntityPrefix+"v"] = base + "value/"

		for _, pk := range propertyKinds {
			nsName := propertyNamespaceName(rc, pk.kind)
			repo.propertyNames[pk.kind] = nsName
			v.namespaces[nsName] = base + "prop/" + pk.path
		}
		v.repos[name] = repo
	}
	return v, nil
}

// MustNew is New for tests and defaults. It panics on an invalid config.
func MustNew(cfg Config) *Vocabulary {
	v, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return v
}

func propertyNamespaceName(rc RepositoryConfig, kind PropertyKind) string {
	switch kind {
	case PropertyDirect:
		return rc.EntityPrefix + "t"
	case PropertyNoValue:
		return rc.EntityPrefix + "no"
	case PropertyClaim:
		return rc.PropertyPrefix + "p"
	case PropertyStatement:
		return rc.PropertyPrefix + "ps"
	case PropertyStatementValue:
		return rc.PropertyPrefix + "psv"
	case PropertyQualifier:
		return rc.PropertyPrefix + "pq"
	case PropertyQualifierValue:
		return rc.PropertyPrefix + "pqv"
	case PropertyReference:
		return rc.PropertyPrefix + "pr"
	case PropertyReferenceValue:
		return rc.PropertyPrefix + "prv"
	default:
		panic(fmt.Sprintf("vocabulary: unknown property kind %d", kind))
	}
}

func defaultNamespaces() map[string]string {
	return map[string]string{
		NSRDF:       RDFNamespace,
		NSRDFS:      RDFSNamespace,
		NSXSD:       XSDNamespace,
		NSOWL:       OWLNamespace,
		NSSKOS:      SKOSNamespace,
		NSSchemaOrg: SchemaOrgNamespace,
		NSCC:        CCNamespace,
		NSGeo:       GeoNamespace,
		NSProv:      ProvNamespace,
		NSOntology:  OntologyNamespace,
	}
}

// Namespaces returns a copy of the namespace name to IRI map.
func (v *Vocabulary) Namespaces() map[string]string {
	out := make(map[string]string, len(v.namespaces))
	for k, val := range v.namespaces {
		out[k] = val
	}
	return out
}

// EntityRepositoryName returns the repository an id belongs to. Ids of
// unconfigured repositories resolve to the local repository.
func (v *Vocabulary) EntityRepositoryName(id entity.ID) string {
	if _, ok := v.repos[id.Repository()]; ok {
		return id.Repository()
	}
	return ""
}

func (v *Vocabulary) repo(id entity.ID) *repository {
	return v.repos[v.EntityRepositoryName(id)]
}

// EntityLName returns the local name of an entity within its namespaces.
func (v *Vocabulary) EntityLName(id entity.ID) string {
	return id.LocalPart()
}

// EntityNamespaceName returns the entity namespace name for id ("wd").
func (v *Vocabulary) EntityNamespaceName(id entity.ID) string {
	return v.repo(id).EntityPrefix
}

// DataNamespaceName returns the data namespace name for id ("wdata").
func (v *Vocabulary) DataNamespaceName(id entity.ID) string {
	return v.repo(id).EntityPrefix + "data"
}

// StatementNamespaceName returns the statement namespace name for id ("wds").
func (v *Vocabulary) StatementNamespaceName(id entity.ID) string {
	return v.repo(id).EntityPrefix + "s"
}

// ReferenceNamespaceName returns the reference namespace name ("wdref").
func (v *Vocabulary) ReferenceNamespaceName(id entity.ID) string {
	return v.repo(id).EntityPrefix + "ref"
}

// ValueNamespaceName returns the value node namespace name ("wdv").
func (v *Vocabulary) ValueNamespaceName(id entity.ID) string {
	return v.repo(id).EntityPrefix + "v"
}

// PropertyNamespaceName returns the namespace name of kind for a property.
func (v *Vocabulary) PropertyNamespaceName(property entity.ID, kind PropertyKind) string {
	return v.repo(property).propertyNames[kind]
}

// PropertyDeclaration pairs an ontology predicate with the property
// namespace it declares.
type PropertyDeclaration struct {
	Predicate string
	Kind      PropertyKind
}

// PropertyDeclarations lists the predicates that tie a property entity to
// its per-kind predicates, in a stable order.
func PropertyDeclarations() []PropertyDeclaration {
	out := make([]PropertyDeclaration, len(propertyKinds))
	for i, pk := range propertyKinds {
		out[i] = PropertyDeclaration{Predicate: pk.predicate, Kind: pk.kind}
	}
	return out
}

// EntityTypeName returns the ontology class name for an entity type.
func (v *Vocabulary) EntityTypeName(t entity.Type) string {
	switch t {
	case entity.TypeItem:
		return ClassItem
	case entity.TypeProperty:
		return ClassProperty
	}
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// DataTypeName returns the ontology name for a property data type, e.g.
// "wikibase-item" becomes "WikibaseItem".
func DataTypeName(dataType string) string {
	var sb strings.Builder
	for _, part := range strings.Split(dataType, "-") {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}

// LicenseURL returns the license of the emitted data.
func (v *Vocabulary) LicenseURL() string { return v.licenseURL }

// PagePropertyDefs returns the page properties exposed in RDF.
func (v *Vocabulary) PagePropertyDefs() map[string]PagePropertyDef {
	return v.pageProps
}

// SiteLinkURL returns the article IRI for a site link, or "" when the site
// is not configured.
func (v *Vocabulary) SiteLinkURL(site, title string) string {
	base, ok := v.sites[site]
	if !ok {
		return ""
	}
	return base + strings.ReplaceAll(title, " ", "_")
}
