// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   file and environment values on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Tokens is the GitHub personal access token pool. More tokens mean
	// more rate-limit budget to rotate across.
	Tokens []string `koanf:"tokens"`

	// BatchYears caps how many calendar years one contribution query may
	// cover.
	BatchYears int `koanf:"batch_years"`

	// QuarantineMinutes is how long a rate-limited token sits out.
	QuarantineMinutes int `koanf:"quarantine_minutes"`

	// Card cache TTLs, in seconds.
	StreakTTLSeconds int `koanf:"streak_ttl_seconds"`
	StatsTTLSeconds  int `koanf:"stats_ttl_seconds"`
	LangsTTLSeconds  int `koanf:"langs_ttl_seconds"`

	// Whitelist restricts the service to the listed usernames when set.
	Whitelist []string `koanf:"whitelist"`

	// Blacklist always denies the listed usernames.
	Blacklist []string `koanf:"blacklist"`

	// ExcludeRepos drops the named repositories from star and language
	// aggregation.
	ExcludeRepos []string `koanf:"exclude_repos"`

	// RequestsPerSecond and Burst bound per-client request rates on the
	// HTTP surface.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9090",
		BatchYears:        5,
		QuarantineMinutes: 5,
		StreakTTLSeconds:  3 * 60 * 60,      // 3 hours
		StatsTTLSeconds:   24 * 60 * 60,     // 1 day
		LangsTTLSeconds:   6 * 24 * 60 * 60, // 6 days
		RequestsPerSecond: 5,
		Burst:             10,
	}
}
