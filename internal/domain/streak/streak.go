// Package streak computes contribution streaks from per-day calendars.
package streak

import (
	"sort"
	"time"

	"github.com/encryptedtouhid/github-readme-stats/internal/domain/model"
)

// DateOnly truncates t to its UTC calendar date. All streak arithmetic is
// timezone-naive: a day is a day regardless of where the user lives.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Dedupe collapses duplicate dates, keeping the maximum count per date,
// and returns the days sorted ascending by date. Duplicates only arise
// from provider quirks at batch boundaries, never from legitimate
// double-counting.
func Dedupe(days []model.ContributionDay) []model.ContributionDay {
	byDate := make(map[time.Time]int, len(days))
	for _, d := range days {
		date := DateOnly(d.Date)
		if count, ok := byDate[date]; !ok || d.Count > count {
			byDate[date] = d.Count
		}
	}

	out := make([]model.ContributionDay, 0, len(byDate))
	for date, count := range byDate {
		out = append(out, model.ContributionDay{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Calculate scans a user's contribution days and produces streak stats.
// days may contain duplicates in any order; today anchors the validity
// window for the current streak and is truncated to a UTC date.
//
// A zero-count entry for today does not break an in-progress run (the day
// is still open), and a run ending yesterday still counts as current.
func Calculate(username string, days []model.ContributionDay, today time.Time) model.StreakStats {
	today = DateOnly(today)
	days = Dedupe(days)

	stats := model.StreakStats{Username: username}

	var (
		length int
		start  time.Time
		end    time.Time
		total  int
		first  *time.Time
	)

	for _, day := range days {
		total += day.Count

		switch {
		case day.Count > 0:
			if first == nil {
				d := day.Date
				first = &d
			}
			length++
			end = day.Date
			if length == 1 {
				start = day.Date
			}
			if length > stats.LongestStreak.Length {
				s, e := start, end
				stats.LongestStreak = model.StreakInfo{Length: length, Start: &s, End: &e}
			}
		case !day.Date.Equal(today):
			// A zero day in the past breaks the run. The today sentinel on
			// start/end mirrors the upstream scan; it never reaches the
			// result because the next contribution day overwrites it and
			// the validity check below zeroes a dead run.
			length = 0
			start = today
			end = today
		default:
			// Zero contributions so far today; the run stays open.
		}
	}

	stats.TotalContributions = total
	stats.FirstContribution = first

	// The run is only current if it reaches at least yesterday.
	if length > 0 && !end.Before(today.AddDate(0, 0, -1)) {
		s, e := start, end
		stats.CurrentStreak = model.StreakInfo{Length: length, Start: &s, End: &e}
	}

	return stats
}
