package journal

import (
	"time"

	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
)

// DailyVerse is a short passage shown on the dashboard.
type DailyVerse struct {
	Text      string              `json:"text"`
	Reference scripture.Reference `json:"reference"`
	Display   string              `json:"display"`
}

var dailyVerses = []struct{ text, ref string }{
	{"Be still, and know that I am God.", "Psalm 46:10"},
	{"Your word is a lamp to my feet and a light to my path.", "Psalm 119:105"},
	{"Draw near to God, and he will draw near to you.", "James 4:8"},
	{"Trust in the Lord with all your heart.", "Proverbs 3:5"},
	{"The Lord is my shepherd; I shall not want.", "Psalm 23:1"},
}

// VerseOfTheDay rotates through the daily verses by day of year.
func VerseOfTheDay(now time.Time) DailyVerse {
	v := dailyVerses[now.YearDay()%len(dailyVerses)]
	ref, ok := scripture.Parse(v.ref)
	if !ok {
		panic("journal: bad daily verse reference " + v.ref)
	}
	return DailyVerse{Text: v.text, Reference: ref, Display: ref.String()}
}

// Stats summarizes a user's journal for the dashboard.
type Stats struct {
	TotalEntries   int `json:"total_entries"`
	ThisWeek       int `json:"this_week"`
	Streak         int `json:"streak"`
	ScriptureCount int `json:"scripture_count"`
}

// Summarize computes dashboard stats as of now. The streak counts
// consecutive days with at least one entry ending today; a day without an
// entry today does not break it, yesterday's gap does.
func Summarize(entries []Entry, now time.Time) Stats {
	s := Stats{TotalEntries: len(entries)}
	weekAgo := now.Add(-7 * 24 * time.Hour)
	days := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.CreatedAt.Before(weekAgo) {
			s.ThisWeek++
		}
		if len(e.Scripture) > 0 {
			s.ScriptureCount++
		}
		days[e.CreatedAt.In(now.Location()).Format(time.DateOnly)] = true
	}

	for i := 0; i < 365; i++ {
		day := now.AddDate(0, 0, -i).Format(time.DateOnly)
		if days[day] {
			s.Streak++
		} else if i > 0 {
			break
		}
	}
	return s
}
