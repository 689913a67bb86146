// Package storage keeps entity records and answers the lookups the RDF
// builder needs to resolve mentioned entities: latest revision, terms and
// property data types.
//
// A Store delegates persistence to a Backend. Three backends exist:
// in-memory, NATS JetStream KV and SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/c360studio/semrdf/entity"
)

// Record is the stored state of one entity id. Redirect is zero for
// concrete entities; Data holds the entity JSON and is empty for
// redirects.
type Record struct {
	ID       entity.ID
	Revision int64
	Modified time.Time
	Redirect entity.ID
	Data     []byte
}

// IsRedirect reports whether the record is a redirect.
func (r Record) IsRedirect() bool {
	return !r.Redirect.IsZero()
}

// Backend persists records keyed by entity id serialization.
type Backend interface {
	// Get returns the record for id or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)
	// Put inserts or replaces a record.
	Put(ctx context.Context, rec Record) error
	// IDs returns the ids of all stored records.
	IDs(ctx context.Context) ([]string, error)
	Close() error
}

// Store reads and writes entity records through a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Import decodes one JSON record (an entity document or a redirect) and
// stores it with the given revision and modification time. A zero
// revision or time falls back to the lastrevid and modified fields of the
// record, and a missing time to the current time.
func (s *Store) Import(ctx context.Context, data []byte, revision int64, modified time.Time) (entity.Record, error) {
	rec, err := entity.DecodeRecord(data)
	if err != nil {
		return entity.Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if revision <= 0 {
		revision = rec.Revision
	}
	if modified.IsZero() {
		modified = rec.Modified
	}
	if modified.IsZero() {
		modified = time.Now()
	}

	stored := Record{Revision: revision, Modified: modified.UTC()}
	if rec.Redirect != nil {
		stored.ID = rec.Redirect.From
		stored.Redirect = rec.Redirect.To
	} else {
		stored.ID = rec.Document.ID()
		stored.Data = data
	}

	if err := s.backend.Put(ctx, stored); err != nil {
		return entity.Record{}, fmt.Errorf("store %s: %w", stored.ID, err)
	}
	s.logger.Debug("Stored entity record", "entity_id", stored.ID.Serialization(), "revision", revision, "redirect", stored.IsRedirect())
	return rec, nil
}

// Record returns the stored record for id.
func (s *Store) Record(ctx context.Context, id entity.ID) (Record, error) {
	rec, err := s.backend.Get(ctx, id.Serialization())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

// Document returns the decoded entity for id. Redirects yield ErrRedirect.
func (s *Store) Document(ctx context.Context, id entity.ID) (entity.Document, error) {
	rec, err := s.Record(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.IsRedirect() {
		return nil, fmt.Errorf("%w: %s to %s", ErrRedirect, id, rec.Redirect)
	}
	doc, err := entity.DecodeDocument(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return doc, nil
}

// LatestRevision reports the revision state of id. A missing id is
// Nonexistent, not an error.
func (s *Store) LatestRevision(ctx context.Context, id entity.ID) (entity.LookupResult, error) {
	rec, err := s.Record(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return entity.Nonexistent(), nil
	}
	if err != nil {
		return entity.LookupResult{}, err
	}
	if rec.IsRedirect() {
		return entity.RedirectRevision(rec.Revision, rec.Redirect), nil
	}
	return entity.ConcreteRevision(rec.Revision), nil
}

// Terms returns the labels, descriptions and aliases of id.
func (s *Store) Terms(ctx context.Context, id entity.ID) (*entity.Fingerprint, error) {
	doc, err := s.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	fh, ok := doc.(entity.FingerprintHolder)
	if !ok {
		return &entity.Fingerprint{}, nil
	}
	return fh.Fingerprint(), nil
}

// DataType returns the data type of property id.
func (s *Store) DataType(ctx context.Context, id entity.ID) (string, error) {
	doc, err := s.Document(ctx, id)
	if err != nil {
		return "", err
	}
	prop, ok := doc.(*entity.Property)
	if !ok {
		return "", fmt.Errorf("%s is a %s, not a property", id, doc.Type())
	}
	return prop.DataType, nil
}

// IDs returns every stored id in sorted order. Unparseable keys are
// skipped.
func (s *Store) IDs(ctx context.Context) ([]entity.ID, error) {
	keys, err := s.backend.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	sort.Strings(keys)

	ids := make([]entity.ID, 0, len(keys))
	for _, key := range keys {
		id, err := entity.ParseID(key)
		if err != nil {
			s.logger.Warn("Skipping stored record with invalid id", "key", key, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
