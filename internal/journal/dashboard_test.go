package journal

import (
	"testing"
	"time"

	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
)

func TestVerseOfTheDay(t *testing.T) {
	seen := map[string]bool{}
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < len(dailyVerses); i++ {
		v := VerseOfTheDay(start.AddDate(0, 0, i))
		if v.Text == "" || v.Reference.IsZero() {
			t.Fatalf("empty verse for day %d", i)
		}
		seen[v.Display] = true
	}
	if len(seen) != len(dailyVerses) {
		t.Errorf("rotation covered %d of %d verses", len(seen), len(dailyVerses))
	}
	if !seen["Psalms 46:10"] {
		t.Errorf("expected canonical display Psalms 46:10 in %v", seen)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC)
	ref, _ := scripture.Parse("John 1:1")
	at := func(daysAgo int) time.Time { return now.AddDate(0, 0, -daysAgo).Add(-time.Hour) }

	tests := []struct {
		name    string
		entries []Entry
		want    Stats
	}{
		{"empty", nil, Stats{}},
		{
			"streak through today",
			[]Entry{{CreatedAt: at(0), Scripture: []scripture.Reference{ref}}, {CreatedAt: at(1)}, {CreatedAt: at(2)}, {CreatedAt: at(4)}},
			Stats{TotalEntries: 4, ThisWeek: 4, Streak: 3, ScriptureCount: 1},
		},
		{
			"today missing keeps yesterday's streak",
			[]Entry{{CreatedAt: at(1)}, {CreatedAt: at(2)}, {CreatedAt: at(10)}},
			Stats{TotalEntries: 3, ThisWeek: 2, Streak: 2},
		},
		{
			"gap yesterday breaks streak",
			[]Entry{{CreatedAt: at(2)}, {CreatedAt: at(3)}},
			Stats{TotalEntries: 2, ThisWeek: 2, Streak: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.entries, now); got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
