package rdfbuilder

import "github.com/c360studio/semrdf/entity"

// Observer is notified of builder progress. Implementations must be cheap;
// they run inline with emission.
type Observer interface {
	EntityAdded(t entity.Type)
	StubAdded(t entity.Type)
	RedirectAdded()
	MentionSkipped()
	ResolvePass()
}

type nopObserver struct{}

func (nopObserver) EntityAdded(entity.Type) {}
func (nopObserver) StubAdded(entity.Type)   {}
func (nopObserver) RedirectAdded()          {}
func (nopObserver) MentionSkipped()         {}
func (nopObserver) ResolvePass()            {}

// PagePropsProvider computes the page properties of a document, keyed by
// page property name such as "wb-claims".
type PagePropsProvider interface {
	PageProperties(doc entity.Document) map[string]any
}
