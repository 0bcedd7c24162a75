package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
	"time"

	"github.com/encryptedtouhid/github-readme-stats/internal/domain/model"
	"github.com/encryptedtouhid/github-readme-stats/pkg/metrics"
)

// Card dimensions.
const (
	streakCardWidth  = 495
	streakCardHeight = 195
	statsCardWidth   = 495
	statsCardHeight  = 195
	statsRowHeight   = 25
)

const dateFormat = "Jan 2, 2006"

//go:embed templates/streak.svg.tmpl
var streakTemplate string

//go:embed templates/stats.svg.tmpl
var statsTemplate string

//go:embed templates/error.svg.tmpl
var errorTemplate string

var (
	streakTmpl = template.Must(template.New("streak").Parse(streakTemplate))
	statsTmpl  = template.Must(template.New("stats").Parse(statsTemplate))
	errorTmpl  = template.Must(template.New("error").Parse(errorTemplate))
)

type streakViewModel struct {
	Width  int
	Height int
	Theme  Theme

	Total        int
	TotalRange   string
	Current      int
	CurrentRange string
	Longest      int
	LongestRange string
}

// StreakCard renders the contribution streak card.
func StreakCard(stats model.StreakStats, theme Theme) ([]byte, error) {
	vm := streakViewModel{
		Width:        streakCardWidth,
		Height:       streakCardHeight,
		Theme:        theme,
		Total:        stats.TotalContributions,
		TotalRange:   totalRange(stats.FirstContribution),
		Current:      stats.CurrentStreak.Length,
		CurrentRange: streakRange(stats.CurrentStreak),
		Longest:      stats.LongestStreak.Length,
		LongestRange: streakRange(stats.LongestStreak),
	}

	var buf bytes.Buffer
	if err := streakTmpl.Execute(&buf, vm); err != nil {
		return nil, fmt.Errorf("render streak card: %w", err)
	}
	metrics.RecordCardRendered("streak")
	return buf.Bytes(), nil
}

func totalRange(first *time.Time) string {
	if first == nil {
		return ""
	}
	return first.Format(dateFormat) + " - Present"
}

func streakRange(info model.StreakInfo) string {
	if info.Length == 0 || info.Start == nil || info.End == nil {
		return ""
	}
	return info.Start.Format(dateFormat) + " - " + info.End.Format(dateFormat)
}

type statsRow struct {
	Label string
	Value string
	Y     int
}

type statsViewModel struct {
	Width  int
	Height int
	Theme  Theme

	Title          string
	Rows           []statsRow
	RankLevel      string
	RankPercentile string
}

// StatsCard renders the activity summary card with the rank badge.
func StatsCard(stats model.UserStats, theme Theme) ([]byte, error) {
	rows := []statsRow{
		{Label: "Total Stars Earned:", Value: fmt.Sprintf("%d", stats.TotalStars)},
		{Label: "Total Commits:", Value: fmt.Sprintf("%d", stats.TotalCommits)},
		{Label: "Total PRs:", Value: fmt.Sprintf("%d", stats.TotalPRs)},
		{Label: "Total Issues:", Value: fmt.Sprintf("%d", stats.TotalIssues)},
		{Label: "Contributed to:", Value: fmt.Sprintf("%d", stats.ContributedTo)},
	}
	for i := range rows {
		rows[i].Y = 60 + i*statsRowHeight
	}

	vm := statsViewModel{
		Width:          statsCardWidth,
		Height:         statsCardHeight,
		Theme:          theme,
		Title:          stats.Name + "'s GitHub Stats",
		Rows:           rows,
		RankLevel:      stats.Rank.Level,
		RankPercentile: fmt.Sprintf("%.1f", stats.Rank.Percentile),
	}

	var buf bytes.Buffer
	if err := statsTmpl.Execute(&buf, vm); err != nil {
		return nil, fmt.Errorf("render stats card: %w", err)
	}
	metrics.RecordCardRendered("stats")
	return buf.Bytes(), nil
}

type errorViewModel struct {
	Width   int
	Height  int
	Theme   Theme
	Message string
}

// ErrorCard renders a card carrying an error message, so a broken embed
// still shows something readable in a README.
func ErrorCard(message string, theme Theme) []byte {
	vm := errorViewModel{
		Width:   statsCardWidth,
		Height:  120,
		Theme:   theme,
		Message: message,
	}

	var buf bytes.Buffer
	if err := errorTmpl.Execute(&buf, vm); err != nil {
		// The error template only references strings; execution cannot
		// realistically fail, but fall back to bare SVG text anyway.
		return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="495" height="120"><text x="25" y="60">%s</text></svg>`, message))
	}
	return buf.Bytes()
}
