package reading

import "time"

// DefaultDays is the heatmap window: one year ending today.
const DefaultDays = 365

// Day is one heatmap cell.
type Day struct {
	Date     string    `json:"date"`
	Count    int       `json:"count"`
	Readings []Reading `json:"readings"`
}

// Heatmap buckets readings into one Day per calendar day, oldest first,
// for the days-long window ending on today's date in today's location.
// Readings outside the window are ignored.
func Heatmap(readings []Reading, today time.Time, days int) []Day {
	if days <= 0 {
		days = DefaultDays
	}
	byDate := make(map[string][]Reading, len(readings))
	for _, r := range readings {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	out := make([]Day, days)
	for i := range out {
		date := today.AddDate(0, 0, i-days+1).Format(time.DateOnly)
		rs := byDate[date]
		if rs == nil {
			rs = []Reading{}
		}
		out[i] = Day{Date: date, Count: len(rs), Readings: rs}
	}
	return out
}

// Streak counts consecutive days with readings, walking back from the
// last day. Empty days before the most recent reading are skipped; once
// counting starts the first empty day ends the streak.
func Streak(days []Day) int {
	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		if days[i].Count > 0 {
			streak++
		} else if streak > 0 {
			break
		}
	}
	return streak
}

// Summary holds the headline numbers of the reading page.
type Summary struct {
	TotalReadings int `json:"total_readings"`
	UniqueDays    int `json:"unique_days"`
	CurrentStreak int `json:"current_streak"`
	Last30Days    int `json:"last_30_days"`
}

// Summarize computes the reading page numbers as of today.
func Summarize(readings []Reading, today time.Time) Summary {
	days := make(map[string]bool, len(readings))
	cutoff := today.AddDate(0, 0, -30).Format(time.DateOnly)
	s := Summary{TotalReadings: len(readings)}
	for _, r := range readings {
		days[r.Date] = true
		if r.Date >= cutoff {
			s.Last30Days++
		}
	}
	s.UniqueDays = len(days)
	s.CurrentStreak = Streak(Heatmap(readings, today, DefaultDays))
	return s
}
