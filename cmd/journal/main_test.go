package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
	"github.com/FocuswithJustin/JuniperJournal/internal/api"
	"github.com/FocuswithJustin/JuniperJournal/internal/journal"
	"github.com/FocuswithJustin/JuniperJournal/internal/reading"
	"github.com/FocuswithJustin/JuniperJournal/internal/store"
)

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	var out, errOut bytes.Buffer
	parser, err := newParser(&cli, kong.Writers(&out, &errOut), kong.Exit(func(int) {}))
	if err != nil {
		t.Fatalf("newParser() error = %v", err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return out.String(), err
	}
	err = ctx.Run(ctx)
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"verse", []string{"parse", "John", "3:16"}, "John 3:16\tverse\n"},
		{"quoted", []string{"parse", "1 cor 13"}, "1 Corinthians 13\tchapter\n"},
		{"list", []string{"parse", "--list", "John 3:16; Rom 8:28-39"}, "John 3:16\tverse\nRomans 8:28-39\tverse-range\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCommandJSON(t *testing.T) {
	got, err := run(t, "parse", "--json", "Rom", "8")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `"book": "Romans"`) || !strings.Contains(got, `"chapter": 8`) {
		t.Errorf("output = %s", got)
	}
}

func TestParseCommandRejects(t *testing.T) {
	_, err := run(t, "parse", "Hezekiah", "1")
	if err == nil || !strings.Contains(err.Error(), "Book Chapter:Verse") {
		t.Errorf("error = %v", err)
	}
}

func TestFormatCommand(t *testing.T) {
	got, err := run(t, "format", `{"book":"John","chapter":3,"startVerse":16,"endVerse":18}`)
	if err != nil {
		t.Fatal(err)
	}
	if got != "John 3:16-18\n" {
		t.Errorf("output = %q", got)
	}

	got, err = run(t, "format", `[{"book":"Matthew","chapter":5,"startVerse":1,"endChapter":7,"endVerse":29},{"book":"Psalms","chapter":23}]`)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Matthew 5:1-7:29, Psalms 23\n" {
		t.Errorf("output = %q", got)
	}

	if _, err := run(t, "format", `{"book":"John","chapter":0}`); err == nil {
		t.Error("expected invalid reference to fail")
	}
}

func TestResolveAndBooks(t *testing.T) {
	got, err := run(t, "resolve", "song", "of", "songs")
	if err != nil || got != "Song of Solomon\n" {
		t.Errorf("resolve = %q, %v", got, err)
	}
	if _, err := run(t, "resolve", "xyz"); err == nil {
		t.Error("expected unknown book to fail")
	}

	got, err = run(t, "books", "--testament", "nt")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 28 { // header + 27 books
		t.Errorf("got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "Matthew") {
		t.Errorf("first NT book line = %q", lines[1])
	}
	if _, err := run(t, "books", "--testament", "apocrypha"); err == nil {
		t.Error("expected bad testament to fail")
	}
}

func TestVersionCommand(t *testing.T) {
	got, err := run(t, "version")
	if err != nil || !strings.HasPrefix(got, "journal version "+api.Version+"\n") || !strings.Contains(got, "sqlite driver:") {
		t.Errorf("version = %q, %v", got, err)
	}
}

func TestExportImportCommands(t *testing.T) {
	dir := t.TempDir()
	srcDB := filepath.Join(dir, "src.db")
	dstDB := filepath.Join(dir, "dst.db")
	backup := filepath.Join(dir, "out", "alice.tar.xz")
	ctx := context.Background()

	st, err := store.Open(ctx, srcDB)
	if err != nil {
		t.Fatal(err)
	}
	ref, _ := scripture.Parse("Ps 23")
	if _, err := st.CreateEntry(ctx, "alice", journal.Draft{Title: "Shepherd", Scripture: []scripture.Reference{ref}}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.CreateReading(ctx, "alice", reading.Draft{Date: "2026-03-10", Scripture: []scripture.Reference{ref}}); err != nil {
		t.Fatal(err)
	}
	st.Close()

	got, err := run(t, "export", "--db", srcDB, "--user", "alice", backup)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(got, "exported 1 entries and 1 readings") {
		t.Errorf("export output = %q", got)
	}

	got, err = run(t, "import", "--db", dstDB, "--user", "bob", backup)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(got, "imported 1 entries and 1 readings for bob") {
		t.Errorf("import output = %q", got)
	}

	// The same ids now belong to bob, so carol's import skips them.
	got, err = run(t, "import", "--db", dstDB, "--user", "carol", backup)
	if err != nil {
		t.Fatalf("second import error = %v", err)
	}
	if strings.Count(got, "skipped: ") != 2 || !strings.Contains(got, "already exists") ||
		!strings.Contains(got, "imported 0 entries and 0 readings for carol") {
		t.Errorf("second import output = %q", got)
	}

	dst, err := store.Open(ctx, dstDB)
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()
	entries, err := dst.ListEntries(ctx, "bob")
	if err != nil || len(entries) != 1 || entries[0].ScriptureDisplay() != "Psalms 23" {
		t.Errorf("bob's entries = %+v, %v", entries, err)
	}

	if _, err := run(t, "export", "--db", srcDB, "--user", "alice", filepath.Join(dir, "alice.zip")); err == nil {
		t.Error("expected unsupported extension to fail")
	}
}

func TestTokenCommand(t *testing.T) {
	secret := strings.Repeat("k", api.MinSecretLength)
	t.Setenv("JOURNAL_AUTH_SECRET", secret)

	got, err := run(t, "token", "--ttl", "1h", "alice")
	if err != nil {
		t.Fatal(err)
	}
	sub, err := api.VerifyToken(api.AuthConfig{Secret: secret, Issuer: "juniper-journal"}, strings.TrimSpace(got), time.Now())
	if err != nil || sub != "alice" {
		t.Errorf("VerifyToken() = %q, %v", sub, err)
	}

	t.Setenv("JOURNAL_AUTH_SECRET", "short")
	if _, err := run(t, "token", "alice"); err == nil {
		t.Error("expected short secret to fail")
	}
}
