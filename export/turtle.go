package export

import "fmt"

// TurtleWriter writes RDF in Turtle format. Consecutive triples about the
// same subject are grouped with ";" and repeated predicates with ",".
type TurtleWriter struct {
	base

	subject    string
	predicate  string
	predicates int
	objects    int
	open       bool
}

// NewTurtleWriter creates a new Turtle writer.
func NewTurtleWriter(opts ...Option) *TurtleWriter {
	return &TurtleWriter{base: newBase(opts)}
}

// Prefix declares a namespace. Prefixes declared after Start are written
// immediately.
func (w *TurtleWriter) Prefix(name, iri string) {
	if !w.declare(name, iri) {
		return
	}
	if w.started {
		w.closeStatement()
		w.write(fmt.Sprintf("@prefix %s: <%s> .\n", name, escapeIRI(iri)))
	}
}

// Start writes the prefix declarations.
func (w *TurtleWriter) Start() {
	if w.err != nil || w.started {
		return
	}
	if w.finished {
		w.fail(ErrWriterFinished)
		return
	}
	w.started = true
	for _, prefix := range w.sortedPrefixes() {
		w.write(fmt.Sprintf("@prefix %s: <%s> .\n", prefix, escapeIRI(w.prefixes[prefix])))
	}
}

// Finish terminates the last statement and flushes pending output.
func (w *TurtleWriter) Finish() {
	if w.err != nil {
		return
	}
	if w.finished {
		w.fail(ErrWriterFinished)
		return
	}
	w.closeStatement()
	w.finished = true
	w.flush()
}

func (w *TurtleWriter) term(ns, local string) (string, bool) {
	if local == "" {
		return "<" + escapeIRI(ns) + ">", true
	}
	iri, ok := w.expand(ns, local)
	if !ok {
		return "", false
	}
	if isPlainLocalName(local) {
		return ns + ":" + local, true
	}
	return "<" + escapeIRI(iri) + ">", true
}

func (w *TurtleWriter) closeStatement() {
	if w.open {
		w.write(" .\n")
		w.open = false
	}
}

// About starts a statement about a subject. Repeating the current subject
// continues its statement.
func (w *TurtleWriter) About(ns, local string) Writer {
	if !w.writable() {
		return w
	}
	s, ok := w.term(ns, local)
	if !ok {
		return w
	}
	if w.open && s == w.subject {
		w.predicate = ""
		return w
	}
	w.closeStatement()
	w.write("\n" + s)
	w.subject = s
	w.predicate = ""
	w.predicates = 0
	w.open = true
	return w
}

func (w *TurtleWriter) setPredicate(p string) {
	if w.predicate == p {
		return
	}
	if w.predicates > 0 {
		w.write(" ;\n\t")
	} else {
		w.write("\n\t")
	}
	w.write(p)
	w.predicate = p
	w.predicates++
	w.objects = 0
}

func (w *TurtleWriter) object(o string) {
	if w.objects > 0 {
		w.write(" ,\n\t\t")
	} else {
		w.write(" ")
	}
	w.write(o)
	w.objects++
}

// Say sets the predicate for the following objects.
func (w *TurtleWriter) Say(ns, local string) Writer {
	if !w.writable() {
		return w
	}
	if !w.open {
		w.fail(ErrNoSubject)
		return w
	}
	if p, ok := w.term(ns, local); ok {
		w.setPredicate(p)
	}
	return w
}

// A writes a type assertion.
func (w *TurtleWriter) A(ns, local string) Writer {
	if !w.writable() {
		return w
	}
	if !w.open {
		w.fail(ErrNoSubject)
		return w
	}
	if t, ok := w.term(ns, local); ok {
		w.setPredicate("a")
		w.object(t)
	}
	return w
}

func (w *TurtleWriter) objectReady() bool {
	if !w.writable() {
		return false
	}
	if !w.open || w.predicate == "" {
		w.fail(ErrNoPredicate)
		return false
	}
	return true
}

// Is writes an IRI object.
func (w *TurtleWriter) Is(ns, local string) Writer {
	if !w.objectReady() {
		return w
	}
	if o, ok := w.term(ns, local); ok {
		w.object(o)
	}
	return w
}

// IsBlank writes a blank node object.
func (w *TurtleWriter) IsBlank(label string) Writer {
	if w.objectReady() {
		w.object("_:" + label)
	}
	return w
}

// Value writes a literal, typed when typeNS is set.
func (w *TurtleWriter) Value(lexical, typeNS, typeLocal string) Writer {
	if !w.objectReady() {
		return w
	}
	lit := `"` + escapeString(lexical) + `"`
	if typeNS != "" {
		t, ok := w.term(typeNS, typeLocal)
		if !ok {
			return w
		}
		lit += "^^" + t
	}
	w.object(lit)
	return w
}

// Text writes a language-tagged string.
func (w *TurtleWriter) Text(text, lang string) Writer {
	if !w.objectReady() {
		return w
	}
	lit := `"` + escapeString(text) + `"`
	if lang != "" {
		lit += "@" + lang
	}
	w.object(lit)
	return w
}
