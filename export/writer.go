// Package export provides streaming RDF writers with a fluent
// subject -> predicate -> object API.
//
// A Writer is used in three phases: Prefix declarations, Start, any number
// of About/Say/Is calls, then Finish. Output accumulates in an internal
// buffer that Drain returns and clears. With WithOutput the buffer is
// flushed to an io.Writer as it grows and on Finish.
//
// Writers never return errors from the fluent calls. The first failure
// (unknown prefix, out-of-order call, failed flush) is kept and reported by
// Err and Drain; every later call is a no-op.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Writer errors.
var (
	ErrUnknownPrefix  = errors.New("unknown namespace prefix")
	ErrNoSubject      = errors.New("predicate written without a subject")
	ErrNoPredicate    = errors.New("object written without a predicate")
	ErrNotStarted     = errors.New("writer not started")
	ErrWriterFinished = errors.New("writer already finished")
)

// Writer is a stateful RDF triple sink.
//
// Terms are given as a namespace name and a local name. An empty local name
// means ns is a complete IRI.
type Writer interface {
	// Prefix declares a namespace name.
	Prefix(name, iri string)
	// Start begins the document. Triples may only be written after Start.
	Start()
	// Finish ends the document. Nothing may be written afterwards.
	Finish()

	// About sets the current subject.
	About(ns, local string) Writer
	// Say sets the current predicate.
	Say(ns, local string) Writer
	// A writes an rdf:type triple for the current subject.
	A(ns, local string) Writer
	// Is writes an IRI object.
	Is(ns, local string) Writer
	// IsBlank writes a blank node object.
	IsBlank(label string) Writer
	// Value writes a literal, typed when typeNS is not empty.
	Value(lexical, typeNS, typeLocal string) Writer
	// Text writes a language-tagged string, plain when lang is empty.
	Text(text, lang string) Writer

	// Drain returns and clears the buffered output.
	Drain() (string, error)
	// Err returns the first error recorded by the writer.
	Err() error
}

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if _, ok := FormatRegistry[f]; !ok {
		return "", fmt.Errorf("unsupported format: %s (valid: turtle, ntriples, jsonld)", s)
	}
	return f, nil
}

// Option configures a writer.
type Option func(*base)

// WithOutput streams output to w. The buffer is flushed once it holds more
// than threshold bytes and again on Finish. A threshold <= 0 flushes after
// every write.
func WithOutput(w io.Writer, threshold int) Option {
	return func(b *base) {
		b.out = w
		b.threshold = threshold
	}
}

// NewWriter creates a writer for format.
func NewWriter(format Format, opts ...Option) (Writer, error) {
	switch format {
	case FormatTurtle:
		return NewTurtleWriter(opts...), nil
	case FormatNTriples:
		return NewNTriplesWriter(opts...), nil
	case FormatJSONLD:
		return NewJSONLDWriter(opts...), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
