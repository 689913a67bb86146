package entity

import "fmt"

// LookupKind is the state of an entity in its store.
type LookupKind int

const (
	// LookupNonexistent means the entity does not exist or was deleted.
	LookupNonexistent LookupKind = iota
	// LookupConcrete means the entity has a revision with content.
	LookupConcrete
	// LookupRedirect means the entity was merged into another entity.
	LookupRedirect
)

// String returns a short name for the kind.
func (k LookupKind) String() string {
	switch k {
	case LookupConcrete:
		return "concrete"
	case LookupRedirect:
		return "redirect"
	default:
		return "nonexistent"
	}
}

// LookupResult is the latest revision state of an entity. The zero value
// is a nonexistent result.
type LookupResult struct {
	kind     LookupKind
	revision int64
	target   ID
}

// Nonexistent returns a result for an entity that does not exist.
func Nonexistent() LookupResult {
	return LookupResult{kind: LookupNonexistent}
}

// ConcreteRevision returns a result for an entity with content at revision.
func ConcreteRevision(revision int64) LookupResult {
	return LookupResult{kind: LookupConcrete, revision: revision}
}

// RedirectRevision returns a result for an entity that redirects to target.
func RedirectRevision(revision int64, target ID) LookupResult {
	return LookupResult{kind: LookupRedirect, revision: revision, target: target}
}

// Kind returns the state of the entity.
func (r LookupResult) Kind() LookupKind { return r.kind }

// Revision returns the latest revision id, 0 for nonexistent entities.
func (r LookupResult) Revision() int64 { return r.revision }

// Target returns the redirect target. It is the zero ID unless Kind is
// LookupRedirect.
func (r LookupResult) Target() ID { return r.target }

func (r LookupResult) String() string {
	switch r.kind {
	case LookupConcrete:
		return fmt.Sprintf("concrete@%d", r.revision)
	case LookupRedirect:
		return fmt.Sprintf("redirect@%d->%s", r.revision, r.target)
	default:
		return "nonexistent"
	}
}
