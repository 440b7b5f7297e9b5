// Package store persists journal entries and Bible readings in SQLite.
//
// Every query is scoped by user id: a record owned by another user is
// indistinguishable from a missing one.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
	"github.com/FocuswithJustin/JuniperJournal/core/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store is a SQLite-backed repository. It is safe for concurrent use.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the database at path and applies
// pending migrations. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx, db, migrationFS, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	s := &Store{db: db, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) stamp() int64 {
	return s.now().UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func encodeRefs(refs []scripture.Reference) (string, error) {
	if refs == nil {
		refs = []scripture.Reference{}
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("encode scripture: %w", err)
	}
	return string(b), nil
}

func decodeRefs(raw string) ([]scripture.Reference, error) {
	refs := []scripture.Reference{}
	if err := json.Unmarshal([]byte(raw), &refs); err != nil {
		return nil, &errors.ParseError{Format: "scripture column", Message: err.Error(), Err: err}
	}
	return refs, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	tags := []string{}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, &errors.ParseError{Format: "tags column", Message: err.Error(), Err: err}
	}
	return tags, nil
}

// ImportResult reports what ImportEntries or ImportReadings did.
type ImportResult struct {
	Written int
	// Conflicts lists records skipped because their id belongs to another
	// user.
	Conflicts []*errors.ConflictError
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func requireUser(userID string) error {
	if userID == "" {
		return errors.NewPermission("access", "journal data", "missing user id")
	}
	return nil
}
