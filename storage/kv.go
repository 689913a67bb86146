package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/c360studio/semrdf/entity"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the KV bucket used when none is configured.
const DefaultBucket = "SEMRDF_ENTITIES"

// kvBucket is the subset of jetstream.KeyValue used by KVBackend.
type kvBucket interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
}

// kvRecord is the JSON value stored per key.
type kvRecord struct {
	Revision int64           `json:"revision"`
	Modified time.Time       `json:"modified"`
	Redirect string          `json:"redirect,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// KVBackend stores records in a NATS JetStream KV bucket, one key per
// entity id.
type KVBackend struct {
	kv kvBucket
}

// NewKVBackend opens bucket, creating it if it does not exist.
func NewKVBackend(ctx context.Context, js jetstream.JetStream, bucket string) (*KVBackend, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("open entities bucket: %w", err)
	}
	return &KVBackend{kv: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("semrdf %s storage", strings.ToLower(name)),
		History:     5,
	})
}

// KV keys may not contain ':', which foreign ids use.
func kvKey(id string) string { return strings.ReplaceAll(id, ":", ".") }
func kvID(key string) string { return strings.ReplaceAll(key, ".", ":") }

// Get implements Backend.
func (b *KVBackend) Get(ctx context.Context, id string) (Record, error) {
	entry, err := b.kv.Get(ctx, kvKey(id))
	if err != nil {
		if isNotFound(err) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get record: %w", err)
	}

	var raw kvRecord
	if err := json.Unmarshal(entry.Value(), &raw); err != nil {
		return Record{}, fmt.Errorf("unmarshal record: %w", err)
	}

	parsed, err := entity.ParseID(id)
	if err != nil {
		return Record{}, err
	}
	rec := Record{ID: parsed, Revision: raw.Revision, Modified: raw.Modified, Data: raw.Data}
	if raw.Redirect != "" {
		if rec.Redirect, err = entity.ParseID(raw.Redirect); err != nil {
			return Record{}, fmt.Errorf("redirect target: %w", err)
		}
	}
	return rec, nil
}

// Put implements Backend.
func (b *KVBackend) Put(ctx context.Context, rec Record) error {
	raw := kvRecord{Revision: rec.Revision, Modified: rec.Modified, Data: rec.Data}
	if rec.IsRedirect() {
		raw.Redirect = rec.Redirect.Serialization()
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := b.kv.Put(ctx, kvKey(rec.ID.Serialization()), data); err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

// IDs implements Backend.
func (b *KVBackend) IDs(ctx context.Context) ([]string, error) {
	keys, err := b.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list keys: %w", err)
	}
	ids := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = kvID(key)
	}
	return ids, nil
}

// Close implements Backend. The NATS connection is owned by the caller.
func (b *KVBackend) Close() error { return nil }

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}
