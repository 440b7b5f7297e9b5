package reading

import (
	"errors"
	"testing"
	"time"

	coreerrors "github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
)

func refs(t *testing.T, texts ...string) []scripture.Reference {
	t.Helper()
	out := make([]scripture.Reference, len(texts))
	for i, s := range texts {
		r, ok := scripture.Parse(s)
		if !ok {
			t.Fatalf("Parse(%q) failed", s)
		}
		out[i] = r
	}
	return out
}

func TestDraftNormalize(t *testing.T) {
	d := Draft{Date: "2024-03-01", Scripture: refs(t, "Genesis 1-3", "Matthew 1")}
	got, err := d.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got.Date != "2024-03-01" || len(got.Scripture) != 2 {
		t.Errorf("Normalize() = %+v", got)
	}

	bad := []Draft{
		{Date: "2024-13-01", Scripture: refs(t, "John 1")},
		{Date: "", Scripture: refs(t, "John 1")},
		{Date: "2024-03-01"},
		{Date: "2024-03-01", Scripture: []scripture.Reference{{}}},
	}
	for _, d := range bad {
		if _, err := d.Normalize(); !errors.Is(err, coreerrors.ErrInvalidInput) {
			t.Errorf("Normalize(%+v) error = %v", d, err)
		}
	}
}

func TestHeatmap(t *testing.T) {
	today := time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC)
	readings := []Reading{
		{ID: "a", Date: "2024-03-01"},
		{ID: "b", Date: "2024-03-01"},
		{ID: "c", Date: "2024-02-29"},
		{ID: "d", Date: "2023-01-01"},
	}

	days := Heatmap(readings, today, 7)
	if len(days) != 7 {
		t.Fatalf("len = %d", len(days))
	}
	if days[0].Date != "2024-02-24" || days[6].Date != "2024-03-01" {
		t.Errorf("window = %s..%s", days[0].Date, days[6].Date)
	}
	if days[6].Count != 2 || days[5].Count != 1 || days[4].Count != 0 {
		t.Errorf("counts = %d %d %d", days[4].Count, days[5].Count, days[6].Count)
	}
	if days[4].Readings == nil {
		t.Error("empty days should carry an empty slice")
	}

	if got := len(Heatmap(nil, today, 0)); got != DefaultDays {
		t.Errorf("default window = %d", got)
	}
}

func TestStreak(t *testing.T) {
	mk := func(counts ...int) []Day {
		d := make([]Day, len(counts))
		for i, c := range counts {
			d[i].Count = c
		}
		return d
	}
	tests := []struct {
		name string
		days []Day
		want int
	}{
		{"empty", nil, 0},
		{"none", mk(0, 0, 0), 0},
		{"ends today", mk(0, 1, 2, 1), 3},
		{"today missing", mk(1, 1, 0, 1, 1, 0), 2},
		{"several empty trailing days", mk(1, 1, 1, 0, 0, 0), 3},
		{"all", mk(1, 1, 1), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Streak(tt.days); got != tt.want {
				t.Errorf("Streak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	today := time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC)
	readings := []Reading{
		{Date: "2024-03-31"},
		{Date: "2024-03-30"},
		{Date: "2024-03-30"},
		{Date: "2024-03-01"},
		{Date: "2024-02-01"},
	}
	got := Summarize(readings, today)
	want := Summary{TotalReadings: 5, UniqueDays: 4, CurrentStreak: 2, Last30Days: 4}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestComputeCoverage(t *testing.T) {
	readings := []Reading{
		{Scripture: refs(t, "Genesis 1-3", "Genesis 2:4-3:24")},
		{Scripture: refs(t, "Jude 5", "Jude 1:3", "Obadiah 1")},
		{Scripture: refs(t, "Matthew 5:1-7:29")},
	}
	c := ComputeCoverage(readings)
	if c.Chapters != 1189 {
		t.Errorf("Chapters = %d", c.Chapters)
	}
	want := map[string]int{"Genesis": 3, "Obadiah": 1, "Matthew": 3, "Jude": 1}
	if len(c.Books) != len(want) {
		t.Fatalf("Books = %+v", c.Books)
	}
	total := 0
	for _, b := range c.Books {
		if want[b.Book] != b.ChaptersRead {
			t.Errorf("%s read = %d, want %d", b.Book, b.ChaptersRead, want[b.Book])
		}
		total += b.ChaptersRead
	}
	if c.ChaptersRead != total || c.ChaptersRead != 8 {
		t.Errorf("ChaptersRead = %d", c.ChaptersRead)
	}
	if c.Books[0].Book != "Genesis" || c.Books[len(c.Books)-1].Book != "Jude" {
		t.Errorf("books not in canon order: %+v", c.Books)
	}
	if p := c.Percent(); p <= 0 || p >= 1 {
		t.Errorf("Percent() = %f", p)
	}
	if (Coverage{}).Percent() != 0 {
		t.Error("empty coverage percent should be 0")
	}
}
