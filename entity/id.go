// Package entity provides the in-memory data model for items, properties and
// the statements that link them.
package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the type tag of an entity.
type Type string

const (
	TypeItem     Type = "item"
	TypeProperty Type = "property"
	TypeOther    Type = "other"
)

// ID identifies an entity. Two IDs are equal when their serializations are
// equal. The zero value is not a valid ID.
type ID struct {
	serialization string
	repository    string
	local         string
	typ           Type
}

// typePrefixes maps the leading letter of a local id to its entity type.
var typePrefixes = map[byte]Type{
	'Q': TypeItem,
	'P': TypeProperty,
}

// ParseID parses a serialized entity id such as "Q42", "P31" or
// "foreign:Q42". Ids with an unknown leading letter are accepted as
// TypeOther as long as the remainder is numeric.
func ParseID(s string) (ID, error) {
	repo, local := "", s
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		repo, local = s[:i], s[i+1:]
		if repo == "" {
			return ID{}, fmt.Errorf("invalid entity ID %q: empty repository prefix", s)
		}
	}
	if len(local) < 2 {
		return ID{}, fmt.Errorf("invalid entity ID %q", s)
	}

	letter := local[0]
	if letter < 'A' || letter > 'Z' {
		return ID{}, fmt.Errorf("invalid entity ID %q: must start with an upper-case letter", s)
	}
	n, err := strconv.ParseUint(local[1:], 10, 64)
	if err != nil || n == 0 || local[1] == '0' {
		return ID{}, fmt.Errorf("invalid entity ID %q: bad numeric part", s)
	}

	typ, ok := typePrefixes[letter]
	if !ok {
		typ = TypeOther
	}
	return ID{serialization: s, repository: repo, local: local, typ: typ}, nil
}

// MustParseID is ParseID for constants and tests. It panics on error.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Serialization returns the canonical string form.
func (id ID) Serialization() string { return id.serialization }

// String implements fmt.Stringer.
func (id ID) String() string { return id.serialization }

// Type returns the entity type tag.
func (id ID) Type() Type { return id.typ }

// Repository returns the repository prefix, or "" for the local repository.
func (id ID) Repository() string { return id.repository }

// LocalPart returns the id without its repository prefix.
func (id ID) LocalPart() string { return id.local }

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id.serialization == "" }

// Equal reports whether both ids have the same serialization.
func (id ID) Equal(other ID) bool { return id.serialization == other.serialization }

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.serialization), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
