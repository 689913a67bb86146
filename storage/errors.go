package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when no record exists for an entity id.
	ErrNotFound = errors.New("entity not found")

	// ErrRedirect is returned when content is requested for an id that is
	// a redirect.
	ErrRedirect = errors.New("entity is a redirect")

	// ErrInvalidRecord is returned by Import for input that does not
	// decode as an entity or redirect record.
	ErrInvalidRecord = errors.New("invalid entity record")
)
