// Package app provides the core business service that implements
// the dependencies required by the HTTP API.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/encryptedtouhid/github-readme-stats/internal/adapters/cache"
	"github.com/encryptedtouhid/github-readme-stats/internal/adapters/github"
	"github.com/encryptedtouhid/github-readme-stats/internal/domain/langs"
	"github.com/encryptedtouhid/github-readme-stats/internal/domain/model"
	"github.com/encryptedtouhid/github-readme-stats/internal/domain/streak"
	"github.com/encryptedtouhid/github-readme-stats/pkg/logger"
	"github.com/encryptedtouhid/github-readme-stats/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultStreakTTL = 3 * time.Hour
	defaultStatsTTL  = 24 * time.Hour
	defaultLangsTTL  = 6 * 24 * time.Hour

	defaultLangSizeWeight  = 1.0
	defaultLangCountWeight = 0.0
)

// Service owns the token rotator, GitHub client, contribution fetcher and
// result cache, and exposes the card operations to the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	rotator *github.Rotator
	client  *github.Client
	fetcher *github.Fetcher
	results cache.Cache

	// Configuration
	tokens       []string
	batchYears   int
	quarantine   time.Duration
	streakTTL    time.Duration
	statsTTL     time.Duration
	langsTTL     time.Duration
	whitelist    []string
	blacklist    []string
	excludeRepos []string
	endpoints    [2]string // graphql, rest overrides for tests

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTokens sets the GitHub personal access token pool.
func WithTokens(tokens []string) Option {
	return func(s *Service) {
		s.tokens = tokens
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBatchYears caps how many years one contribution query may cover.
func WithBatchYears(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchYears = n
		}
	}
}

// WithQuarantineCooldown sets how long a rate-limited token sits out.
func WithQuarantineCooldown(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.quarantine = d
		}
	}
}

// WithCacheTTLs sets the per-card cache windows.
func WithCacheTTLs(streakTTL, statsTTL, langsTTL time.Duration) Option {
	return func(s *Service) {
		if streakTTL > 0 {
			s.streakTTL = streakTTL
		}
		if statsTTL > 0 {
			s.statsTTL = statsTTL
		}
		if langsTTL > 0 {
			s.langsTTL = langsTTL
		}
	}
}

// WithAccessControl sets the username whitelist and blacklist.
func WithAccessControl(whitelist, blacklist []string) Option {
	return func(s *Service) {
		s.whitelist = whitelist
		s.blacklist = blacklist
	}
}

// WithExcludedRepos drops the named repositories from star and language
// aggregation.
func WithExcludedRepos(repos []string) Option {
	return func(s *Service) {
		s.excludeRepos = repos
	}
}

// WithEndpoints overrides the GitHub API endpoints, mainly for tests.
func WithEndpoints(graphql, rest string) Option {
	return func(s *Service) {
		s.endpoints = [2]string{graphql, rest}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		batchYears: 5,
		quarantine: 5 * time.Minute,
		streakTTL:  defaultStreakTTL,
		statsTTL:   defaultStatsTTL,
		langsTTL:   defaultLangsTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components. It fails when the token pool
// is empty, since no GitHub call could ever succeed.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	rotator, err := github.NewRotator(s.tokens)
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	s.rotator = rotator

	clientOpts := []github.Option{
		github.WithQuarantineCooldown(s.quarantine),
		github.WithLogger(s.logger.Named("github")),
	}
	if s.endpoints[0] != "" || s.endpoints[1] != "" {
		clientOpts = append(clientOpts, github.WithEndpoints(s.endpoints[0], s.endpoints[1]))
	}
	s.client = github.NewClient(rotator, clientOpts...)

	s.fetcher = github.NewFetcher(s.client, s.client,
		github.WithBatchSize(s.batchYears),
		github.WithFetcherLogger(s.logger.Named("contributions")),
	)
	s.results = cache.NewMemory()

	s.started = true
	s.logger.Info(ctx, "stats card service started",
		logger.Int("tokens", rotator.TokenCount()),
		logger.Int("batchYears", s.batchYears),
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if closer, ok := s.results.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "stats card service stopped")
}

// StreakStats computes the contribution streak summary for a user,
// serving repeat requests from the result cache.
func (s *Service) StreakStats(ctx context.Context, login string, startingYear *int) (model.StreakStats, error) {
	if err := s.checkAccess(login); err != nil {
		return model.StreakStats{}, err
	}

	key := streakCacheKey(login, startingYear)
	v, err := s.results.GetOrCreate(ctx, key, s.streakTTL, func(ctx context.Context) (any, error) {
		days, err := s.fetcher.Fetch(ctx, login, startingYear)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		stats := streak.Calculate(login, days, time.Now().UTC())
		metrics.RecordStreakComputeDuration(float64(time.Since(start).Milliseconds()))
		return stats, nil
	})
	if err != nil {
		return model.StreakStats{}, err
	}

	stats, ok := v.(model.StreakStats)
	if !ok {
		return model.StreakStats{}, fmt.Errorf("unexpected cache entry for %q", key)
	}
	return stats, nil
}

// UserStats fetches the activity counters and rank for a stats card.
func (s *Service) UserStats(ctx context.Context, login string, includeAllCommits bool) (model.UserStats, error) {
	if err := s.checkAccess(login); err != nil {
		return model.UserStats{}, err
	}

	key := fmt.Sprintf("stats:%s:%t", strings.ToLower(login), includeAllCommits)
	v, err := s.results.GetOrCreate(ctx, key, s.statsTTL, func(ctx context.Context) (any, error) {
		return s.client.UserStats(ctx, login, github.StatsOptions{
			IncludeAllCommits: includeAllCommits,
			IncludeMergedPRs:  true,
			ExcludeRepos:      s.excludeRepos,
		})
	})
	if err != nil {
		return model.UserStats{}, err
	}

	stats, ok := v.(model.UserStats)
	if !ok {
		return model.UserStats{}, fmt.Errorf("unexpected cache entry for %q", key)
	}
	return stats, nil
}

// TopLanguages aggregates and ranks a user's languages.
func (s *Service) TopLanguages(ctx context.Context, login string) (model.TopLanguages, error) {
	if err := s.checkAccess(login); err != nil {
		return model.TopLanguages{}, err
	}

	key := "langs:" + strings.ToLower(login)
	v, err := s.results.GetOrCreate(ctx, key, s.langsTTL, func(ctx context.Context) (any, error) {
		usage, err := s.client.LanguageUsage(ctx, login, s.excludeRepos)
		if err != nil {
			return nil, err
		}
		return langs.Weigh(usage, defaultLangSizeWeight, defaultLangCountWeight), nil
	})
	if err != nil {
		return model.TopLanguages{}, err
	}

	top, ok := v.(model.TopLanguages)
	if !ok {
		return model.TopLanguages{}, fmt.Errorf("unexpected cache entry for %q", key)
	}
	return top, nil
}

// CacheTTL reports the configured cache window for a card kind, used by
// the HTTP layer to emit matching Cache-Control headers.
func (s *Service) CacheTTL(card string) time.Duration {
	switch card {
	case "stats":
		return s.statsTTL
	case "langs":
		return s.langsTTL
	default:
		return s.streakTTL
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"batchYears": s.batchYears,
	}
	if s.started {
		stats["tokenCount"] = s.rotator.TokenCount()
		stats["tokensQuarantined"] = s.rotator.RateLimitedCount()
		stats["cacheEntries"] = s.results.Len()
	}
	return stats
}

// checkAccess enforces the configured whitelist and blacklist.
func (s *Service) checkAccess(login string) error {
	if strings.TrimSpace(login) == "" {
		return fmt.Errorf("%w: username", ErrMissingParam)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}

	for _, name := range s.blacklist {
		if strings.EqualFold(name, login) {
			return fmt.Errorf("user %q: %w", login, ErrAccessDenied)
		}
	}
	if len(s.whitelist) > 0 {
		for _, name := range s.whitelist {
			if strings.EqualFold(name, login) {
				return nil
			}
		}
		return fmt.Errorf("user %q: %w", login, ErrAccessDenied)
	}
	return nil
}

func streakCacheKey(login string, startingYear *int) string {
	if startingYear != nil {
		return fmt.Sprintf("streak:%s:%d", strings.ToLower(login), *startingYear)
	}
	return "streak:" + strings.ToLower(login)
}
