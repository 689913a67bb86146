package rdfbuilder

import "github.com/c360studio/semrdf/entity"

// MentionListener is handed to mappers so they can report the entities
// they reference while emitting another entity.
type MentionListener interface {
	// EntityReferenceMentioned reports an entity used as a value.
	EntityReferenceMentioned(id entity.ID)
	// PropertyMentioned reports a property used in a statement.
	PropertyMentioned(id entity.ID)
	// SubEntityMentioned reports a full document nested in another entity.
	// It is emitted before the current AddEntity call returns.
	SubEntityMentioned(doc entity.Document)
}

// mentionSink applies the flavor gates and forwards mentions to the
// tracker and the pending queue.
type mentionSink struct {
	flavor   Flavor
	mentions *MentionTracker
	queue    *pendingQueue
}

func (s *mentionSink) EntityReferenceMentioned(id entity.ID) {
	if s.flavor.Has(ProduceResolvedEntities) {
		s.mentions.MarkMentioned(id)
	}
}

func (s *mentionSink) PropertyMentioned(id entity.ID) {
	if s.flavor.Has(ProduceProperties) {
		s.mentions.MarkMentioned(id)
	}
}

func (s *mentionSink) SubEntityMentioned(doc entity.Document) {
	s.queue.enqueue(doc)
}
