package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/internal/reading"
	"github.com/FocuswithJustin/JuniperJournal/internal/validation"
)

const readingColumns = `id, user_id, reading_date, scripture, created_at, updated_at`

func scanReading(row rowScanner) (reading.Reading, error) {
	var (
		r                reading.Reading
		refs             string
		created, updated int64
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Date, &refs, &created, &updated); err != nil {
		return reading.Reading{}, err
	}
	var err error
	if r.Scripture, err = decodeRefs(refs); err != nil {
		return reading.Reading{}, err
	}
	r.CreatedAt = fromMillis(created)
	r.UpdatedAt = fromMillis(updated)
	return r, nil
}

func (s *Store) queryReadings(ctx context.Context, query string, args ...any) ([]reading.Reading, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	out := []reading.Reading{}
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	return out, nil
}

// ListReadings returns all of the user's readings, most recent date first.
func (s *Store) ListReadings(ctx context.Context, userID string) ([]reading.Reading, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.queryReadings(ctx,
		`SELECT `+readingColumns+` FROM bible_readings WHERE user_id = ?
		  ORDER BY reading_date DESC, created_at DESC, id`,
		userID,
	)
}

// ListReadingsBetween returns readings dated from..to inclusive
// (YYYY-MM-DD), most recent first.
func (s *Store) ListReadingsBetween(ctx context.Context, userID, from, to string) ([]reading.Reading, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := validation.Date("from", from); err != nil {
		return nil, err
	}
	if _, err := validation.Date("to", to); err != nil {
		return nil, err
	}
	if from > to {
		return nil, errors.NewValidation("from", "must not be after to")
	}
	return s.queryReadings(ctx,
		`SELECT `+readingColumns+` FROM bible_readings
		  WHERE user_id = ? AND reading_date >= ? AND reading_date <= ?
		  ORDER BY reading_date DESC, created_at DESC, id`,
		userID, from, to,
	)
}

// GetReading returns one of the user's readings.
func (s *Store) GetReading(ctx context.Context, userID, id string) (reading.Reading, error) {
	if err := requireUser(userID); err != nil {
		return reading.Reading{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+readingColumns+` FROM bible_readings WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	r, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return reading.Reading{}, errors.NewNotFound("reading", id)
	}
	if err != nil {
		return reading.Reading{}, fmt.Errorf("get reading %s: %w", id, err)
	}
	return r, nil
}

// CreateReading validates d and logs it as a new reading.
func (s *Store) CreateReading(ctx context.Context, userID string, d reading.Draft) (reading.Reading, error) {
	if err := requireUser(userID); err != nil {
		return reading.Reading{}, err
	}
	d, err := d.Normalize()
	if err != nil {
		return reading.Reading{}, err
	}
	refs, err := encodeRefs(d.Scripture)
	if err != nil {
		return reading.Reading{}, err
	}
	now := s.stamp()
	r := reading.Reading{
		ID:        s.newID(),
		UserID:    userID,
		Date:      d.Date,
		Scripture: d.Scripture,
		CreatedAt: fromMillis(now),
		UpdatedAt: fromMillis(now),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO bible_readings (`+readingColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, userID, r.Date, refs, now, now,
	); err != nil {
		return reading.Reading{}, fmt.Errorf("insert reading: %w", err)
	}
	return r, nil
}

// UpdateReading replaces the date and passages of an existing reading.
func (s *Store) UpdateReading(ctx context.Context, userID, id string, d reading.Draft) (reading.Reading, error) {
	if err := requireUser(userID); err != nil {
		return reading.Reading{}, err
	}
	d, err := d.Normalize()
	if err != nil {
		return reading.Reading{}, err
	}
	refs, err := encodeRefs(d.Scripture)
	if err != nil {
		return reading.Reading{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE bible_readings SET reading_date = ?, scripture = ?, updated_at = ?
		  WHERE id = ? AND user_id = ?`,
		d.Date, refs, s.stamp(), id, userID,
	)
	if err != nil {
		return reading.Reading{}, fmt.Errorf("update reading %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return reading.Reading{}, errors.NewNotFound("reading", id)
	}
	return s.GetReading(ctx, userID, id)
}

// DeleteReading removes one of the user's readings.
func (s *Store) DeleteReading(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM bible_readings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete reading %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFound("reading", id)
	}
	return nil
}

// ImportReadings restores readings from a backup, with the same id
// semantics as ImportEntries.
func (s *Store) ImportReadings(ctx context.Context, userID string, readings []reading.Reading) (ImportResult, error) {
	if err := requireUser(userID); err != nil {
		return ImportResult{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var out ImportResult
	for _, r := range readings {
		if err := ctx.Err(); err != nil {
			return ImportResult{}, err
		}
		d, err := reading.Draft{Date: r.Date, Scripture: r.Scripture}.Normalize()
		if err != nil {
			return ImportResult{}, errors.Wrapf(err, "reading %s", r.ID)
		}
		if validation.ID(r.ID) != nil {
			r.ID = s.newID()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = s.now()
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = r.CreatedAt
		}
		refs, err := encodeRefs(d.Scripture)
		if err != nil {
			return ImportResult{}, err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO bible_readings (`+readingColumns+`) VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			    reading_date = excluded.reading_date, scripture = excluded.scripture,
			    created_at = excluded.created_at, updated_at = excluded.updated_at
			  WHERE bible_readings.user_id = excluded.user_id`,
			r.ID, userID, d.Date, refs, r.CreatedAt.UnixMilli(), r.UpdatedAt.UnixMilli(),
		)
		if err != nil {
			return ImportResult{}, fmt.Errorf("import reading %s: %w", r.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			out.Conflicts = append(out.Conflicts, errors.NewConflict("reading", r.ID))
			continue
		}
		out.Written++
	}
	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit import: %w", err)
	}
	return out, nil
}
