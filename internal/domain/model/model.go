// Package model contains domain models passed between layers.
package model

import "time"

// ContributionDay is a single day of a user's contribution calendar.
// Provider responses may repeat a date across batch boundaries; duplicates
// are collapsed (maximum count wins) before any streak computation.
type ContributionDay struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// StreakInfo describes one maximal run of consecutive contribution days.
// Start and End are nil when Length is zero.
type StreakInfo struct {
	Length int        `json:"length"`
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
}

// StreakStats is the contribution streak summary for a user.
type StreakStats struct {
	Username           string     `json:"username"`
	TotalContributions int        `json:"total_contributions"`
	CurrentStreak      StreakInfo `json:"current_streak"`
	LongestStreak      StreakInfo `json:"longest_streak"`
	FirstContribution  *time.Time `json:"first_contribution,omitempty"`
}

// UserRank is a percentile-based grade derived from activity counters.
type UserRank struct {
	Level      string  `json:"level"`
	Percentile float64 `json:"percentile"`
}

// UserStats aggregates the activity counters shown on a stats card.
type UserStats struct {
	Name                string   `json:"name"`
	Login               string   `json:"login"`
	TotalStars          int      `json:"total_stars"`
	TotalCommits        int      `json:"total_commits"`
	TotalPRs            int      `json:"total_prs"`
	TotalPRsMerged      int      `json:"total_prs_merged"`
	MergedPRsPercentage float64  `json:"merged_prs_percentage"`
	TotalReviews        int      `json:"total_reviews"`
	TotalIssues         int      `json:"total_issues"`
	ContributedTo       int      `json:"contributed_to"`
	TotalFollowers      int      `json:"total_followers"`
	TotalRepos          int      `json:"total_repos"`
	Rank                UserRank `json:"rank"`
}

// LanguageStats is one language's share of a user's repositories.
type LanguageStats struct {
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Size       int64   `json:"size"`
	RepoCount  int     `json:"repo_count"`
	Percentage float64 `json:"percentage"`
}

// TopLanguages is the ordered language breakdown for a user.
type TopLanguages struct {
	Languages []LanguageStats `json:"languages"`
	TotalSize int64           `json:"total_size"`
}
