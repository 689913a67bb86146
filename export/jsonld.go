package export

import (
	"encoding/json"
	"fmt"
)

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]any `json:"@context"`
	Graph   []*JSONLDNode  `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string
	Type       []string
	Properties map[string][]any
}

// MarshalJSON implements custom JSON marshaling for JSONLDNode.
func (n *JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+2)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

// JSONLDWriter writes RDF in JSON-LD format. Nodes are collected in memory
// and the document is rendered on Finish, so Drain returns nothing before
// then.
type JSONLDWriter struct {
	base

	doc       JSONLDDocument
	index     map[string]*JSONLDNode
	current   *JSONLDNode
	predicate string
}

// NewJSONLDWriter creates a new JSON-LD writer.
func NewJSONLDWriter(opts ...Option) *JSONLDWriter {
	return &JSONLDWriter{
		base:  newBase(opts),
		doc:   JSONLDDocument{Context: make(map[string]any), Graph: make([]*JSONLDNode, 0)},
		index: make(map[string]*JSONLDNode),
	}
}

// Prefix adds a prefix to the @context.
func (w *JSONLDWriter) Prefix(name, iri string) {
	if w.declare(name, iri) {
		w.doc.Context[name] = iri
	}
}

// Start begins the document.
func (w *JSONLDWriter) Start() {
	if w.err != nil || w.started {
		return
	}
	if w.finished {
		w.fail(ErrWriterFinished)
		return
	}
	w.started = true
}

// Finish renders the collected graph.
func (w *JSONLDWriter) Finish() {
	if w.err != nil {
		return
	}
	if w.finished {
		w.fail(ErrWriterFinished)
		return
	}
	w.finished = true

	data, err := json.MarshalIndent(w.doc, "", "  ")
	if err != nil {
		w.fail(fmt.Errorf("marshal json-ld: %w", err))
		return
	}
	w.write(string(data) + "\n")
	w.flush()
}

// term returns a compact IRI when the local name allows it.
func (w *JSONLDWriter) term(ns, local string) (string, bool) {
	if local == "" {
		return ns, true
	}
	iri, ok := w.expand(ns, local)
	if !ok {
		return "", false
	}
	if isPlainLocalName(local) {
		return ns + ":" + local, true
	}
	return iri, true
}

// About selects or creates the node for a subject.
func (w *JSONLDWriter) About(ns, local string) Writer {
	if !w.writable() {
		return w
	}
	id, ok := w.term(ns, local)
	if !ok {
		return w
	}
	node, exists := w.index[id]
	if !exists {
		node = &JSONLDNode{ID: id, Properties: make(map[string][]any)}
		w.index[id] = node
		w.doc.Graph = append(w.doc.Graph, node)
	}
	w.current = node
	w.predicate = ""
	return w
}

// Say sets the property key for the following values.
func (w *JSONLDWriter) Say(ns, local string) Writer {
	if !w.writable() {
		return w
	}
	if w.current == nil {
		w.fail(ErrNoSubject)
		return w
	}
	if p, ok := w.term(ns, local); ok {
		w.predicate = p
	}
	return w
}

// A adds a type to the current node.
func (w *JSONLDWriter) A(ns, local string) Writer {
	if !w.writable() {
		return w
	}
	if w.current == nil {
		w.fail(ErrNoSubject)
		return w
	}
	if t, ok := w.term(ns, local); ok {
		w.current.Type = append(w.current.Type, t)
	}
	return w
}

func (w *JSONLDWriter) add(v any) {
	w.current.Properties[w.predicate] = append(w.current.Properties[w.predicate], v)
}

func (w *JSONLDWriter) objectReady() bool {
	if !w.writable() {
		return false
	}
	if w.current == nil || w.predicate == "" {
		w.fail(ErrNoPredicate)
		return false
	}
	return true
}

// Is adds a node reference.
func (w *JSONLDWriter) Is(ns, local string) Writer {
	if !w.objectReady() {
		return w
	}
	if o, ok := w.term(ns, local); ok {
		w.add(map[string]any{"@id": o})
	}
	return w
}

// IsBlank adds a blank node reference.
func (w *JSONLDWriter) IsBlank(label string) Writer {
	if w.objectReady() {
		w.add(map[string]any{"@id": "_:" + label})
	}
	return w
}

// Value adds a literal value.
func (w *JSONLDWriter) Value(lexical, typeNS, typeLocal string) Writer {
	if !w.objectReady() {
		return w
	}
	if typeNS == "" {
		w.add(lexical)
		return w
	}
	if t, ok := w.term(typeNS, typeLocal); ok {
		w.add(map[string]any{"@value": lexical, "@type": t})
	}
	return w
}

// Text adds a language-tagged string.
func (w *JSONLDWriter) Text(text, lang string) Writer {
	if !w.objectReady() {
		return w
	}
	if lang == "" {
		w.add(text)
		return w
	}
	w.add(map[string]any{"@value": text, "@language": lang})
	return w
}
