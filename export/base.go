package export

import (
	"bytes"
	"fmt"
	"io"
	"sort"
)

// base holds the state shared by all writers: declared prefixes, the output
// buffer and the sticky error.
type base struct {
	prefixes map[string]string

	buf       bytes.Buffer
	out       io.Writer
	threshold int

	err      error
	started  bool
	finished bool
}

func newBase(opts []Option) base {
	b := base{prefixes: make(map[string]string)}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// writable reports whether a triple may be written now, recording an error
// when it may not.
func (b *base) writable() bool {
	if b.err != nil {
		return false
	}
	if b.finished {
		b.fail(ErrWriterFinished)
		return false
	}
	if !b.started {
		b.fail(ErrNotStarted)
		return false
	}
	return true
}

func (b *base) declare(name, iri string) bool {
	if b.err != nil {
		return false
	}
	if b.finished {
		b.fail(ErrWriterFinished)
		return false
	}
	b.prefixes[name] = iri
	return true
}

// expand returns the full IRI for a namespace name and local name.
func (b *base) expand(ns, local string) (string, bool) {
	if local == "" {
		return ns, true
	}
	iri, ok := b.prefixes[ns]
	if !ok {
		b.fail(fmt.Errorf("%w: %s", ErrUnknownPrefix, ns))
		return "", false
	}
	return iri + local, true
}

// sortedPrefixes returns the declared prefix names in sorted order.
func (b *base) sortedPrefixes() []string {
	keys := make([]string, 0, len(b.prefixes))
	for k := range b.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *base) write(s string) {
	b.buf.WriteString(s)
	if b.out != nil && b.buf.Len() > b.threshold {
		b.flush()
	}
}

func (b *base) flush() {
	if b.out == nil || b.buf.Len() == 0 || b.err != nil {
		return
	}
	if _, err := b.out.Write(b.buf.Bytes()); err != nil {
		b.fail(fmt.Errorf("flush rdf output: %w", err))
	}
	b.buf.Reset()
}

// Drain returns and clears the buffered output.
func (b *base) Drain() (string, error) {
	s := b.buf.String()
	b.buf.Reset()
	return s, b.err
}

// Err returns the first recorded error.
func (b *base) Err() error {
	return b.err
}
