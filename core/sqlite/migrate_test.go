package sqlite

import (
	"context"
	"testing"
	"testing/fstest"
)

func TestUpSection(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"no markers", "CREATE TABLE a (x);", "CREATE TABLE a (x);"},
		{"up only", "-- +migrate Up\nCREATE TABLE a (x);", "\nCREATE TABLE a (x);"},
		{"up and down", "-- +migrate Up\nCREATE TABLE a (x);\n-- +migrate Down\nDROP TABLE a;", "\nCREATE TABLE a (x);\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpSection(tt.in); got != tt.want {
				t.Errorf("UpSection() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	fsys := fstest.MapFS{
		"m/0002_b.sql": {Data: []byte("-- +migrate Up\nALTER TABLE a ADD COLUMN y TEXT;\n-- +migrate Down\nSELECT 1;")},
		"m/0001_a.sql": {Data: []byte("CREATE TABLE a (x INTEGER);")},
		"m/README.txt": {Data: []byte("ignored")},
	}
	if err := Migrate(ctx, db, fsys, "m"); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	// Second run must be a no-op; re-running ALTER TABLE would fail.
	if err := Migrate(ctx, db, fsys, "m"); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO a (x, y) VALUES (1, 'ok')"); err != nil {
		t.Errorf("migrated schema unusable: %v", err)
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("applied migrations = %d, want 2", n)
	}

	if err := Migrate(ctx, nil, fsys, "m"); err == nil {
		t.Error("Migrate(nil db) should fail")
	}
}
