package rdfbuilder

import (
	"iter"

	"github.com/c360studio/semrdf/entity"
)

type mention struct {
	id       entity.ID
	resolved bool
}

// MentionTracker records every entity referenced in a document and whether
// it has been emitted. Records are kept in insertion order and a resolved
// record never becomes unresolved again.
//
// Redirects are kept in a separate source to target table so that a
// redirected id and its target each own their record.
type MentionTracker struct {
	index     map[string]int
	entries   []mention
	redirects map[string]entity.ID
}

// NewMentionTracker creates an empty tracker.
func NewMentionTracker() *MentionTracker {
	return &MentionTracker{
		index:     make(map[string]int),
		redirects: make(map[string]entity.ID),
	}
}

// MarkMentioned records id as unresolved unless it is already known.
func (t *MentionTracker) MarkMentioned(id entity.ID) {
	key := id.Serialization()
	if _, ok := t.index[key]; ok {
		return
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, mention{id: id})
}

// MarkResolved records id as resolved, inserting it when absent.
func (t *MentionTracker) MarkResolved(id entity.ID) {
	key := id.Serialization()
	if i, ok := t.index[key]; ok {
		t.entries[i].resolved = true
		return
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, mention{id: id, resolved: true})
}

// IsMentioned reports whether id has a record in either state.
func (t *MentionTracker) IsMentioned(id entity.ID) bool {
	_, ok := t.index[id.Serialization()]
	return ok
}

// IsResolved reports whether id has been emitted.
func (t *MentionTracker) IsResolved(id entity.ID) bool {
	i, ok := t.index[id.Serialization()]
	return ok && t.entries[i].resolved
}

// Len returns the number of records.
func (t *MentionTracker) Len() int {
	return len(t.entries)
}

// Unresolved yields the unresolved ids in insertion order. The sequence is
// live: records appended while iterating are visited when reached, and
// records resolved before they are reached are skipped.
func (t *MentionTracker) Unresolved() iter.Seq[entity.ID] {
	return func(yield func(entity.ID) bool) {
		for i := 0; i < len(t.entries); i++ {
			if t.entries[i].resolved {
				continue
			}
			if !yield(t.entries[i].id) {
				return
			}
		}
	}
}

// UnresolvedCount returns the number of unresolved records.
func (t *MentionTracker) UnresolvedCount() int {
	n := 0
	for _, m := range t.entries {
		if !m.resolved {
			n++
		}
	}
	return n
}

// RecordRedirect stores that from was merged into to. Both ids get a
// record; from is not marked resolved here.
func (t *MentionTracker) RecordRedirect(from, to entity.ID) {
	t.redirects[from.Serialization()] = to
}

// RedirectTarget returns the direct redirect target of id.
func (t *MentionTracker) RedirectTarget(id entity.ID) (entity.ID, bool) {
	to, ok := t.redirects[id.Serialization()]
	return to, ok
}

// Canonical follows recorded redirects from id and returns the last id of
// the chain. A cycle stops at the id that would be visited twice.
func (t *MentionTracker) Canonical(id entity.ID) entity.ID {
	seen := map[string]bool{id.Serialization(): true}
	for {
		to, ok := t.redirects[id.Serialization()]
		if !ok || seen[to.Serialization()] {
			return id
		}
		seen[to.Serialization()] = true
		id = to
	}
}
