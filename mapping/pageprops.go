package mapping

import "github.com/c360studio/semrdf/entity"

// Page property names.
const (
	PagePropClaims      = "wb-claims"
	PagePropSitelinks   = "wb-sitelinks"
	PagePropIdentifiers = "wb-identifiers"
)

// EntityPageProps computes page properties from entity content.
type EntityPageProps struct{}

// PageProperties implements rdfbuilder.PagePropsProvider. Statement
// holders get statement and identifier counts, items also a site link
// count.
func (EntityPageProps) PageProperties(doc entity.Document) map[string]any {
	props := make(map[string]any)
	if sh, ok := doc.(entity.StatementHolder); ok {
		statements := sh.Statements()
		props[PagePropClaims] = len(statements)

		identifiers := 0
		for _, st := range statements {
			if st.MainSnak.DataType == "external-id" {
				identifiers++
			}
		}
		props[PagePropIdentifiers] = identifiers
	}
	if item, ok := doc.(*entity.Item); ok {
		props[PagePropSitelinks] = len(item.SiteLinks)
	}
	return props
}
