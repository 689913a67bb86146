package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/c360studio/semrdf/entity"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteBackend stores records in a SQLite database.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// NewSQLiteBackend opens or creates the database at path and applies
// pending migrations.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	b := &SQLiteBackend{db: db, path: path}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return b, nil
}

// NewSQLite returns a Store over a SQLiteBackend at path.
func NewSQLite(path string, opts ...Option) (*Store, error) {
	b, err := NewSQLiteBackend(path)
	if err != nil {
		return nil, err
	}
	return New(b, opts...), nil
}

// Path returns the database file path.
func (b *SQLiteBackend) Path() string {
	return b.path
}

func (b *SQLiteBackend) migrate() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := b.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, "migrations/"+name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		tx, err := b.db.Begin()
		if err != nil {
			return fmt.Errorf("starting transaction: %w", err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}
	return nil
}

// Get implements Backend.
func (b *SQLiteBackend) Get(ctx context.Context, id string) (Record, error) {
	var (
		revision int64
		modified string
		redirect sql.NullString
		data     []byte
	)
	err := b.db.QueryRowContext(ctx,
		"SELECT revision, modified, redirect, data FROM entities WHERE id = ?", id,
	).Scan(&revision, &modified, &redirect, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("querying entity: %w", err)
	}

	parsed, err := entity.ParseID(id)
	if err != nil {
		return Record{}, err
	}
	rec := Record{ID: parsed, Revision: revision, Data: data}
	if rec.Modified, err = time.Parse(time.RFC3339Nano, modified); err != nil {
		return Record{}, fmt.Errorf("parsing modified time: %w", err)
	}
	if redirect.Valid && redirect.String != "" {
		if rec.Redirect, err = entity.ParseID(redirect.String); err != nil {
			return Record{}, fmt.Errorf("redirect target: %w", err)
		}
	}
	return rec, nil
}

// Put implements Backend.
func (b *SQLiteBackend) Put(ctx context.Context, rec Record) error {
	var redirect sql.NullString
	if rec.IsRedirect() {
		redirect = sql.NullString{String: rec.Redirect.Serialization(), Valid: true}
	}
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO entities (id, revision, modified, redirect, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			revision = excluded.revision,
			modified = excluded.modified,
			redirect = excluded.redirect,
			data = excluded.data
	`, rec.ID.Serialization(), rec.Revision, rec.Modified.UTC().Format(time.RFC3339Nano), redirect, rec.Data)
	if err != nil {
		return fmt.Errorf("saving entity: %w", err)
	}
	return nil
}

// IDs implements Backend.
func (b *SQLiteBackend) IDs(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT id FROM entities ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning entity id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
