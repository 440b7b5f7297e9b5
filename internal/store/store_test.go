package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	coreerrors "github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
	"github.com/FocuswithJustin/JuniperJournal/internal/journal"
	"github.com/FocuswithJustin/JuniperJournal/internal/reading"
)

// tickClock returns a clock that advances one minute per call.
func tickClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", WithClock(tickClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func refs(t *testing.T, text string) []scripture.Reference {
	t.Helper()
	r, ok := scripture.ParseList(text)
	if !ok {
		t.Fatalf("ParseList(%q) failed", text)
	}
	return r
}

func TestEntryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateEntry(ctx, "alice", journal.Draft{
		Title:     "Sermon on the Mount",
		Content:   "Blessed are the poor in spirit",
		Type:      journal.TypeScripture,
		Scripture: refs(t, "Matthew 5:1-7:29, Luke 6:20-49"),
		Tags:      []string{"beatitudes", "beatitudes"},
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	if created.ID == "" || created.UserID != "alice" {
		t.Fatalf("CreateEntry() = %+v", created)
	}

	got, err := s.GetEntry(ctx, "alice", created.ID)
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if got.ScriptureDisplay() != "Matthew 5:1-7:29, Luke 6:20-49" {
		t.Errorf("scripture round trip = %q", got.ScriptureDisplay())
	}
	if len(got.Tags) != 1 || got.Type != journal.TypeScripture {
		t.Errorf("GetEntry() = %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}

	updated, err := s.UpdateEntry(ctx, "alice", created.ID, journal.Draft{Title: "Renamed", Scripture: refs(t, "Matthew 5")})
	if err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	if updated.Title != "Renamed" || updated.Type != journal.TypeLife || updated.ScriptureDisplay() != "Matthew 5" {
		t.Errorf("UpdateEntry() = %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("UpdatedAt %v should be after CreatedAt %v", updated.UpdatedAt, updated.CreatedAt)
	}

	if err := s.DeleteEntry(ctx, "alice", created.ID); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if _, err := s.GetEntry(ctx, "alice", created.ID); !errors.Is(err, coreerrors.ErrNotFound) {
		t.Errorf("GetEntry after delete error = %v", err)
	}
}

func TestEntriesAreScopedByUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, err := s.CreateEntry(ctx, "alice", journal.Draft{Title: "Private"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetEntry(ctx, "bob", e.ID); !errors.Is(err, coreerrors.ErrNotFound) {
		t.Errorf("bob GetEntry error = %v", err)
	}
	if _, err := s.UpdateEntry(ctx, "bob", e.ID, journal.Draft{Title: "Hijacked"}); !errors.Is(err, coreerrors.ErrNotFound) {
		t.Errorf("bob UpdateEntry error = %v", err)
	}
	if err := s.DeleteEntry(ctx, "bob", e.ID); !errors.Is(err, coreerrors.ErrNotFound) {
		t.Errorf("bob DeleteEntry error = %v", err)
	}
	list, err := s.ListEntries(ctx, "bob")
	if err != nil || len(list) != 0 {
		t.Errorf("bob ListEntries = %v, %v", list, err)
	}
	if _, err := s.ListEntries(ctx, ""); !errors.Is(err, coreerrors.ErrUnauthorized) {
		t.Errorf("empty user error = %v", err)
	}
}

func TestListEntriesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.CreateEntry(ctx, "alice", journal.Draft{Title: title}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListEntries(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].Title != "third" || list[2].Title != "first" {
		t.Errorf("ListEntries order = %v", []string{list[0].Title, list[1].Title, list[2].Title})
	}
}

func TestCreateEntryValidation(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateEntry(context.Background(), "alice", journal.Draft{Title: ""})
	if !errors.Is(err, coreerrors.ErrInvalidInput) {
		t.Errorf("CreateEntry(empty title) error = %v", err)
	}
}

func TestReadingLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, d := range []reading.Draft{
		{Date: "2024-03-01", Scripture: refs(t, "Genesis 1-3")},
		{Date: "2024-03-03", Scripture: refs(t, "Genesis 4-6")},
		{Date: "2024-03-02", Scripture: refs(t, "Psalm 1")},
	} {
		if _, err := s.CreateReading(ctx, "alice", d); err != nil {
			t.Fatalf("CreateReading(%+v) error = %v", d, err)
		}
	}
	if _, err := s.CreateReading(ctx, "bob", reading.Draft{Date: "2024-03-02", Scripture: refs(t, "John 1")}); err != nil {
		t.Fatal(err)
	}

	all, err := s.ListReadings(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Date != "2024-03-03" || all[2].Date != "2024-03-01" {
		t.Fatalf("ListReadings = %+v", all)
	}

	between, err := s.ListReadingsBetween(ctx, "alice", "2024-03-02", "2024-03-03")
	if err != nil {
		t.Fatal(err)
	}
	if len(between) != 2 {
		t.Errorf("ListReadingsBetween = %d readings", len(between))
	}
	if _, err := s.ListReadingsBetween(ctx, "alice", "2024-03-05", "2024-03-01"); !errors.Is(err, coreerrors.ErrInvalidInput) {
		t.Errorf("inverted range error = %v", err)
	}
	if _, err := s.ListReadingsBetween(ctx, "alice", "March", "2024-03-01"); !errors.Is(err, coreerrors.ErrInvalidInput) {
		t.Errorf("bad date error = %v", err)
	}

	target := all[1]
	up, err := s.UpdateReading(ctx, "alice", target.ID, reading.Draft{Date: "2024-03-04", Scripture: refs(t, "Psalm 2; Psalm 3")})
	if err != nil {
		t.Fatal(err)
	}
	if up.Date != "2024-03-04" || scripture.FormatMany(up.Scripture) != "Psalms 2, Psalms 3" {
		t.Errorf("UpdateReading() = %+v", up)
	}
	if _, err := s.UpdateReading(ctx, "bob", target.ID, reading.Draft{Date: "2024-03-04", Scripture: refs(t, "Psalm 2")}); !errors.Is(err, coreerrors.ErrNotFound) {
		t.Errorf("cross-user update error = %v", err)
	}

	if err := s.DeleteReading(ctx, "alice", target.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteReading(ctx, "alice", target.ID); !errors.Is(err, coreerrors.ErrNotFound) {
		t.Errorf("second delete error = %v", err)
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	bobs, err := s.CreateEntry(ctx, "bob", journal.Draft{Title: "bob's"})
	if err != nil {
		t.Fatal(err)
	}
	created := time.Date(2023, 5, 1, 7, 0, 0, 0, time.UTC)
	entries := []journal.Entry{
		{ID: "11111111-1111-1111-1111-111111111111", Title: "restored", Scripture: refs(t, "John 1:1"), CreatedAt: created},
		{ID: bobs.ID, Title: "stolen"},
		{Title: "no id"},
	}
	res, err := s.ImportEntries(ctx, "alice", entries)
	if err != nil {
		t.Fatalf("ImportEntries() error = %v", err)
	}
	if res.Written != 2 {
		t.Errorf("ImportEntries() wrote %d, want 2", res.Written)
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0].ID != bobs.ID || !errors.Is(res.Conflicts[0], coreerrors.ErrAlreadyExists) {
		t.Errorf("conflicts = %v, want bob's entry", res.Conflicts)
	}
	got, err := s.GetEntry(ctx, "alice", "11111111-1111-1111-1111-111111111111")
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	still, _ := s.GetEntry(ctx, "bob", bobs.ID)
	if still.Title != "bob's" {
		t.Errorf("import overwrote another user's entry: %+v", still)
	}

	// Re-importing the same backup updates in place.
	if res, err := s.ImportEntries(ctx, "alice", entries[:1]); err != nil || res.Written != 1 || len(res.Conflicts) != 0 {
		t.Errorf("re-import = %+v, %v", res, err)
	}
	list, _ := s.ListEntries(ctx, "alice")
	if len(list) != 2 {
		t.Errorf("alice has %d entries, want 2", len(list))
	}

	rn, err := s.ImportReadings(ctx, "alice", []reading.Reading{
		{ID: "22222222-2222-2222-2222-222222222222", Date: "2024-01-01", Scripture: refs(t, "Genesis 1")},
	})
	if err != nil || rn.Written != 1 {
		t.Fatalf("ImportReadings() = %+v, %v", rn, err)
	}
	if rn, err := s.ImportReadings(ctx, "bob", []reading.Reading{
		{ID: "22222222-2222-2222-2222-222222222222", Date: "2024-01-02", Scripture: refs(t, "Genesis 2")},
	}); err != nil || rn.Written != 0 || len(rn.Conflicts) != 1 || rn.Conflicts[0].Resource != "reading" {
		t.Errorf("cross-user reading import = %+v, %v", rn, err)
	}

	if _, err := s.ImportReadings(ctx, "alice", []reading.Reading{{Date: "bad"}}); !errors.Is(err, coreerrors.ErrInvalidInput) {
		t.Errorf("invalid reading import error = %v", err)
	}
}

func TestOpenFileReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	e, err := s.CreateEntry(ctx, "alice", journal.Draft{Title: "persisted"})
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetEntry(ctx, "alice", e.ID); err != nil {
		t.Errorf("entry lost after reopen: %v", err)
	}
}
