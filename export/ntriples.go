package export

// NTriplesWriter writes RDF in N-Triples format, one triple per line with
// every IRI expanded.
type NTriplesWriter struct {
	base

	subject   string
	predicate string
}

const rdfType = "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type>"

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter(opts ...Option) *NTriplesWriter {
	return &NTriplesWriter{base: newBase(opts)}
}

// Prefix declares a namespace used to expand prefixed names.
func (w *NTriplesWriter) Prefix(name, iri string) {
	w.declare(name, iri)
}

// Start begins the document.
func (w *NTriplesWriter) Start() {
	if w.err != nil || w.started {
		return
	}
	if w.finished {
		w.fail(ErrWriterFinished)
		return
	}
	w.started = true
}

// Finish flushes pending output.
func (w *NTriplesWriter) Finish() {
	if w.err != nil {
		return
	}
	if w.finished {
		w.fail(ErrWriterFinished)
		return
	}
	w.finished = true
	w.flush()
}

func (w *NTriplesWriter) term(ns, local string) (string, bool) {
	iri, ok := w.expand(ns, local)
	if !ok {
		return "", false
	}
	return "<" + escapeIRI(iri) + ">", true
}

// writeTriple writes one line using the current subject and predicate.
func (w *NTriplesWriter) writeTriple(object string) {
	w.write(w.subject + " " + w.predicate + " " + object + " .\n")
}

// About sets the current subject.
func (w *NTriplesWriter) About(ns, local string) Writer {
	if !w.writable() {
		return w
	}
	if s, ok := w.term(ns, local); ok {
		w.subject = s
		w.predicate = ""
	}
	return w
}

// Say sets the current predicate.
func (w *NTriplesWriter) Say(ns, local string) Writer {
	if !w.writable() {
		return w
	}
	if w.subject == "" {
		w.fail(ErrNoSubject)
		return w
	}
	if p, ok := w.term(ns, local); ok {
		w.predicate = p
	}
	return w
}

// A writes a type triple.
func (w *NTriplesWriter) A(ns, local string) Writer {
	if !w.writable() {
		return w
	}
	if w.subject == "" {
		w.fail(ErrNoSubject)
		return w
	}
	if t, ok := w.term(ns, local); ok {
		w.predicate = rdfType
		w.writeTriple(t)
	}
	return w
}

func (w *NTriplesWriter) objectReady() bool {
	if !w.writable() {
		return false
	}
	if w.subject == "" || w.predicate == "" {
		w.fail(ErrNoPredicate)
		return false
	}
	return true
}

// Is writes a triple with an IRI object.
func (w *NTriplesWriter) Is(ns, local string) Writer {
	if !w.objectReady() {
		return w
	}
	if o, ok := w.term(ns, local); ok {
		w.writeTriple(o)
	}
	return w
}

// IsBlank writes a triple with a blank node object.
func (w *NTriplesWriter) IsBlank(label string) Writer {
	if w.objectReady() {
		w.writeTriple("_:" + label)
	}
	return w
}

// Value writes a triple with a literal object.
func (w *NTriplesWriter) Value(lexical, typeNS, typeLocal string) Writer {
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
	w.writeTriple(lit)
	return w
}

// Text writes a triple with a language-tagged literal.
func (w *NTriplesWriter) Text(text, lang string) Writer {
	if !w.objectReady() {
		return w
	}
	lit := `"` + escapeString(text) + `"`
	if lang != "" {
		lit += "@" + lang
	}
	w.writeTriple(lit)
	return w
}
