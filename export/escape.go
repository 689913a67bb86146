package export

import (
	"fmt"
	"strings"
)

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// escapeIRI percent-encodes the characters that may not appear inside an
// IRIREF.
func escapeIRI(iri string) string {
	if !strings.ContainsAny(iri, "<>\"{}|^`\\ \t\n\r") {
		return iri
	}
	var sb strings.Builder
	for i := 0; i < len(iri); i++ {
		c := iri[i]
		switch c {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\', ' ', '\t', '\n', '\r':
			fmt.Fprintf(&sb, "%%%02X", c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// isPlainLocalName reports whether local can be written as the local part
// of a prefixed name without escaping.
func isPlainLocalName(local string) bool {
	if local == "" {
		return true
	}
	for i := 0; i < len(local); i++ {
		c := local[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		case (c == '-' || c == '.') && i > 0 && i < len(local)-1:
		default:
			return false
		}
	}
	return true
}
