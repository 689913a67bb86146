package entity

import "sort"

// Document is a full entity with an id and a type.
type Document interface {
	ID() ID
	Type() Type
}

// StatementHolder is implemented by documents that carry statements.
type StatementHolder interface {
	Document
	Statements() []Statement
}

// FingerprintHolder is implemented by documents that carry terms.
type FingerprintHolder interface {
	Document
	Fingerprint() *Fingerprint
}

// Fingerprint groups the labels, descriptions and aliases of an entity.
type Fingerprint struct {
	Labels       TermList
	Descriptions TermList
	Aliases      AliasGroupList
}

// TermList maps language codes to a single text.
type TermList map[string]string

// Languages returns the language codes in sorted order.
func (l TermList) Languages() []string {
	return sortedKeys(l)
}

// AliasGroupList maps language codes to alias texts.
type AliasGroupList map[string][]string

// Languages returns the language codes in sorted order.
func (l AliasGroupList) Languages() []string {
	return sortedKeys(l)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SiteLink links an item to a page on a client site.
type SiteLink struct {
	Site   string
	Title  string
	Badges []ID
}

// Item is an entity of type item.
type Item struct {
	EntityID  ID
	Terms     Fingerprint
	Claims    []Statement
	SiteLinks map[string]SiteLink
}

// ID implements Document.
func (i *Item) ID() ID { return i.EntityID }

// Type implements Document.
func (i *Item) Type() Type { return TypeItem }

// Statements implements StatementHolder.
func (i *Item) Statements() []Statement { return i.Claims }

// Fingerprint implements FingerprintHolder.
func (i *Item) Fingerprint() *Fingerprint { return &i.Terms }

// SortedSiteLinks returns the site links ordered by site id.
func (i *Item) SortedSiteLinks() []SiteLink {
	links := make([]SiteLink, 0, len(i.SiteLinks))
	for _, site := range sortedKeys(i.SiteLinks) {
		links = append(links, i.SiteLinks[site])
	}
	return links
}

// Property is an entity of type property.
type Property struct {
	EntityID ID
	DataType string
	Terms    Fingerprint
	Claims   []Statement
}

// ID implements Document.
func (p *Property) ID() ID { return p.EntityID }

// Type implements Document.
func (p *Property) Type() Type { return TypeProperty }

// Statements implements StatementHolder.
func (p *Property) Statements() []Statement { return p.Claims }

// Fingerprint implements FingerprintHolder.
func (p *Property) Fingerprint() *Fingerprint { return &p.Terms }

// Generic is a document of a type without a dedicated model, such as a
// sub-entity discovered inside another entity.
type Generic struct {
	EntityID ID
	Kind     Type
	Terms    Fingerprint
}

// ID implements Document.
func (g *Generic) ID() ID { return g.EntityID }

// Type implements Document.
func (g *Generic) Type() Type {
	if g.Kind == "" {
		return g.EntityID.Type()
	}
	return g.Kind
}

// Fingerprint implements FingerprintHolder.
func (g *Generic) Fingerprint() *Fingerprint { return &g.Terms }
