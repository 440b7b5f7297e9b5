package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/internal/journal"
	"github.com/FocuswithJustin/JuniperJournal/internal/validation"
)

const entryColumns = `id, user_id, title, content, type, scripture, tags, created_at, updated_at`

func scanEntry(row rowScanner) (journal.Entry, error) {
	var (
		e                journal.Entry
		typ, refs, tags  string
		created, updated int64
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &typ, &refs, &tags, &created, &updated); err != nil {
		return journal.Entry{}, err
	}
	e.Type = journal.EntryType(typ)
	var err error
	if e.Scripture, err = decodeRefs(refs); err != nil {
		return journal.Entry{}, err
	}
	if e.Tags, err = decodeTags(tags); err != nil {
		return journal.Entry{}, err
	}
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)
	return e, nil
}

// ListEntries returns the user's entries, newest first.
func (s *Store) ListEntries(ctx context.Context, userID string) ([]journal.Entry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE user_id = ? ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []journal.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	return entries, nil
}

// GetEntry returns one of the user's entries.
func (s *Store) GetEntry(ctx context.Context, userID, id string) (journal.Entry, error) {
	if err := requireUser(userID); err != nil {
		return journal.Entry{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.Entry{}, errors.NewNotFound("journal entry", id)
	}
	if err != nil {
		return journal.Entry{}, fmt.Errorf("get journal entry %s: %w", id, err)
	}
	return e, nil
}

// CreateEntry validates d and stores it as a new entry.
func (s *Store) CreateEntry(ctx context.Context, userID string, d journal.Draft) (journal.Entry, error) {
	if err := requireUser(userID); err != nil {
		return journal.Entry{}, err
	}
	d, err := d.Normalize()
	if err != nil {
		return journal.Entry{}, err
	}
	now := s.stamp()
	e := journal.Entry{
		ID:        s.newID(),
		UserID:    userID,
		Title:     d.Title,
		Content:   d.Content,
		Type:      d.Type,
		Scripture: d.Scripture,
		Tags:      d.Tags,
		CreatedAt: fromMillis(now),
		UpdatedAt: fromMillis(now),
	}
	if err := s.insertEntry(ctx, e); err != nil {
		return journal.Entry{}, err
	}
	return e, nil
}

func (s *Store) insertEntry(ctx context.Context, e journal.Entry) error {
	refs, err := encodeRefs(e.Scripture)
	if err != nil {
		return err
	}
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, e.Content, string(e.Type), refs, tags,
		e.CreatedAt.UnixMilli(), e.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// UpdateEntry replaces the editable fields of an existing entry.
func (s *Store) UpdateEntry(ctx context.Context, userID, id string, d journal.Draft) (journal.Entry, error) {
	if err := requireUser(userID); err != nil {
		return journal.Entry{}, err
	}
	d, err := d.Normalize()
	if err != nil {
		return journal.Entry{}, err
	}
	refs, err := encodeRefs(d.Scripture)
	if err != nil {
		return journal.Entry{}, err
	}
	tags, err := encodeTags(d.Tags)
	if err != nil {
		return journal.Entry{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE journal_entries
		    SET title = ?, content = ?, type = ?, scripture = ?, tags = ?, updated_at = ?
		  WHERE id = ? AND user_id = ?`,
		d.Title, d.Content, string(d.Type), refs, tags, s.stamp(), id, userID,
	)
	if err != nil {
		return journal.Entry{}, fmt.Errorf("update journal entry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return journal.Entry{}, errors.NewNotFound("journal entry", id)
	}
	return s.GetEntry(ctx, userID, id)
}

// DeleteEntry removes one of the user's entries.
func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete journal entry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFound("journal entry", id)
	}
	return nil
}

// ImportEntries restores entries from a backup into the user's journal.
// Entries keep their ids and timestamps; an id already present for the
// same user is overwritten, an id owned by someone else is skipped and
// reported as a conflict, and a missing or non-UUID id gets a fresh one.
func (s *Store) ImportEntries(ctx context.Context, userID string, entries []journal.Entry) (ImportResult, error) {
	if err := requireUser(userID); err != nil {
		return ImportResult{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var out ImportResult
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return ImportResult{}, err
		}
		d, err := journal.Draft{Title: e.Title, Content: e.Content, Type: e.Type, Scripture: e.Scripture, Tags: e.Tags}.Normalize()
		if err != nil {
			return ImportResult{}, errors.Wrapf(err, "entry %s", e.ID)
		}
		if validation.ID(e.ID) != nil {
			e.ID = s.newID()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = s.now()
		}
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = e.CreatedAt
		}
		refs, err := encodeRefs(d.Scripture)
		if err != nil {
			return ImportResult{}, err
		}
		tags, err := encodeTags(d.Tags)
		if err != nil {
			return ImportResult{}, err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO journal_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			    title = excluded.title, content = excluded.content, type = excluded.type,
			    scripture = excluded.scripture, tags = excluded.tags,
			    created_at = excluded.created_at, updated_at = excluded.updated_at
			  WHERE journal_entries.user_id = excluded.user_id`,
			e.ID, userID, d.Title, d.Content, string(d.Type), refs, tags,
			e.CreatedAt.UnixMilli(), e.UpdatedAt.UnixMilli(),
		)
		if err != nil {
			return ImportResult{}, fmt.Errorf("import journal entry %s: %w", e.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			out.Conflicts = append(out.Conflicts, errors.NewConflict("journal entry", e.ID))
			continue
		}
		out.Written++
	}
	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit import: %w", err)
	}
	return out, nil
}
