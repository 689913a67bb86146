package rdfbuilder

import "github.com/c360studio/semrdf/entity"

// pendingQueue holds sub-entities discovered while emitting another entity.
type pendingQueue struct {
	docs []entity.Document
}

func (q *pendingQueue) enqueue(doc entity.Document) {
	q.docs = append(q.docs, doc)
}

// drainAll removes and visits the front document until the queue is empty,
// including documents enqueued by visit.
func (q *pendingQueue) drainAll(visit func(entity.Document)) {
	for len(q.docs) > 0 {
		doc := q.docs[0]
		q.docs[0] = nil
		q.docs = q.docs[1:]
		visit(doc)
	}
	q.docs = nil
}

func (q *pendingQueue) len() int {
	return len(q.docs)
}
