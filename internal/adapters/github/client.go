// Package github implements the GitHub API adapter: a GraphQL/REST client
// with token rotation and batched multi-year contribution fetching.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/encryptedtouhid/github-readme-stats/internal/domain/langs"
	"github.com/encryptedtouhid/github-readme-stats/internal/domain/model"
	"github.com/encryptedtouhid/github-readme-stats/internal/domain/rank"
	"github.com/encryptedtouhid/github-readme-stats/pkg/logger"
	"github.com/encryptedtouhid/github-readme-stats/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultGraphQLEndpoint = "https://api.github.com/graphql"
	defaultRESTEndpoint    = "https://api.github.com"
	defaultUserAgent       = "github-readme-stats"
	defaultTimeout         = 30 * time.Second
	defaultQuarantine      = 5 * time.Minute
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEndpoints overrides the GraphQL and REST endpoints, mainly for tests.
func WithEndpoints(graphql, rest string) Option {
	return func(c *Client) {
		if graphql != "" {
			c.graphqlURL = graphql
		}
		if rest != "" {
			c.restURL = rest
		}
	}
}

// WithQuarantineCooldown sets how long a rate-limited token sits out.
func WithQuarantineCooldown(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.quarantine = d
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client talks to the GitHub API, drawing one rotated token per outgoing
// request.
type Client struct {
	httpClient *http.Client
	rotator    *Rotator
	graphqlURL string
	restURL    string
	quarantine time.Duration
	logger     logger.Logger
}

// NewClient creates a client around the given token rotator.
func NewClient(rotator *Rotator, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		rotator:    rotator,
		graphqlURL: defaultGraphQLEndpoint,
		restURL:    defaultRESTEndpoint,
		quarantine: defaultQuarantine,
		logger:     logger.Get().Named("github"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// execute runs one GraphQL query and unmarshals the data payload into out.
// NOT_FOUND errors are left for the caller to detect via a null user, so a
// missing user and a missing repository stay distinguishable. A rate-limit
// signal quarantines the token in use and surfaces ErrRateLimited.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	token := c.rotator.Next()

	payload, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordGitHubRequest("graphql")
	metrics.RecordGitHubRequestDuration("graphql", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordGitHubError("transport")
		return fmt.Errorf("execute query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordGitHubError("transport")
		return fmt.Errorf("read response: %w", err)
	}

	var envelope graphQLEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		metrics.RecordGitHubError("parse")
		return fmt.Errorf("%w: %v", ErrParse, err)
	}

	if len(envelope.Errors) > 0 {
		gqlErr := envelope.Errors[0]
		switch {
		case gqlErr.Type == "NOT_FOUND":
			// Callers detect this through a null user in the data payload.
			c.logger.Debug(ctx, "graphql NOT_FOUND", logger.String("message", gqlErr.Message))
		case gqlErr.Type == "RATE_LIMITED" || strings.Contains(strings.ToLower(gqlErr.Message), "rate limit"):
			c.rotator.MarkRateLimited(token, time.Now().UTC().Add(c.quarantine))
			metrics.RecordRateLimitHit()
			return ErrRateLimited
		default:
			metrics.RecordGitHubError("graphql")
			return fmt.Errorf("%w: %s: %s", ErrGraphQL, gqlErr.Type, gqlErr.Message)
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			metrics.RecordGitHubError("parse")
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
	}
	return nil
}

type countData struct {
	TotalCount int `json:"totalCount"`
}

type userStatsData struct {
	User *struct {
		Name    string `json:"name"`
		Login   string `json:"login"`
		Commits struct {
			TotalCommitContributions int `json:"totalCommitContributions"`
		} `json:"commits"`
		Reviews struct {
			TotalPullRequestReviewContributions int `json:"totalPullRequestReviewContributions"`
		} `json:"reviews"`
		RepositoriesContributedTo countData  `json:"repositoriesContributedTo"`
		PullRequests              countData  `json:"pullRequests"`
		MergedPullRequests        *countData `json:"mergedPullRequests"`
		OpenIssues                countData  `json:"openIssues"`
		ClosedIssues              countData  `json:"closedIssues"`
		Followers                 countData  `json:"followers"`
		Repositories              struct {
			TotalCount int `json:"totalCount"`
			Nodes      []struct {
				Name       string    `json:"name"`
				Stargazers countData `json:"stargazers"`
			} `json:"nodes"`
		} `json:"repositories"`
	} `json:"user"`
}

// StatsOptions tunes the user stats lookup.
type StatsOptions struct {
	IncludeAllCommits bool
	IncludeMergedPRs  bool
	ExcludeRepos      []string
	CommitsYear       int
}

// UserStats fetches the activity counters for a stats card and derives the
// user's rank.
func (c *Client) UserStats(ctx context.Context, login string, opts StatsOptions) (model.UserStats, error) {
	variables := map[string]any{
		"login":                     login,
		"includeMergedPullRequests": opts.IncludeMergedPRs,
	}
	if opts.CommitsYear > 0 {
		variables["startTime"] = fmt.Sprintf("%d-01-01T00:00:00Z", opts.CommitsYear)
	}

	var data userStatsData
	if err := c.execute(ctx, userStatsQuery, variables, &data); err != nil {
		return model.UserStats{}, err
	}
	if data.User == nil {
		return model.UserStats{}, fmt.Errorf("user %q: %w", login, ErrUserNotFound)
	}

	user := data.User
	excluded := make(map[string]struct{}, len(opts.ExcludeRepos))
	for _, name := range opts.ExcludeRepos {
		excluded[strings.ToLower(name)] = struct{}{}
	}

	totalStars := 0
	for _, repo := range user.Repositories.Nodes {
		if _, skip := excluded[strings.ToLower(repo.Name)]; skip {
			continue
		}
		totalStars += repo.Stargazers.TotalCount
	}

	totalCommits := user.Commits.TotalCommitContributions
	if opts.IncludeAllCommits {
		allTime, err := c.totalCommits(ctx, login)
		if err != nil {
			c.logger.Warn(ctx, "all-time commit lookup failed; using contribution window count",
				logger.String("login", login), logger.Error(err))
		} else {
			totalCommits = allTime
		}
	}

	totalIssues := user.OpenIssues.TotalCount + user.ClosedIssues.TotalCount
	totalPRsMerged := 0
	if opts.IncludeMergedPRs && user.MergedPullRequests != nil {
		totalPRsMerged = user.MergedPullRequests.TotalCount
	}
	mergedPct := 0.0
	if user.PullRequests.TotalCount > 0 {
		mergedPct = float64(totalPRsMerged) / float64(user.PullRequests.TotalCount) * 100
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return model.UserStats{
		Name:                name,
		Login:               user.Login,
		TotalStars:          totalStars,
		TotalCommits:        totalCommits,
		TotalPRs:            user.PullRequests.TotalCount,
		TotalPRsMerged:      totalPRsMerged,
		MergedPRsPercentage: mergedPct,
		TotalReviews:        user.Reviews.TotalPullRequestReviewContributions,
		TotalIssues:         totalIssues,
		ContributedTo:       user.RepositoriesContributedTo.TotalCount,
		TotalFollowers:      user.Followers.TotalCount,
		TotalRepos:          user.Repositories.TotalCount,
		Rank: rank.Calculate(
			totalCommits,
			user.PullRequests.TotalCount,
			totalIssues,
			user.Reviews.TotalPullRequestReviewContributions,
			totalStars,
			user.Followers.TotalCount,
			opts.IncludeAllCommits,
		),
	}, nil
}

type creationDateData struct {
	User *struct {
		CreatedAt time.Time `json:"createdAt"`
	} `json:"user"`
}

// CreationYear returns the year the user joined GitHub.
func (c *Client) CreationYear(ctx context.Context, login string) (int, error) {
	var data creationDateData
	if err := c.execute(ctx, creationDateQuery, map[string]any{"login": login}, &data); err != nil {
		return 0, err
	}
	if data.User == nil {
		return 0, fmt.Errorf("user %q: %w", login, ErrUserNotFound)
	}
	return data.User.CreatedAt.UTC().Year(), nil
}

type yearCalendarData struct {
	ContributionCalendar struct {
		TotalContributions int `json:"totalContributions"`
		Weeks              []struct {
			ContributionDays []struct {
				ContributionCount int    `json:"contributionCount"`
				Date              string `json:"date"`
			} `json:"contributionDays"`
		} `json:"weeks"`
	} `json:"contributionCalendar"`
}

type batchedContributionsData struct {
	User map[string]yearCalendarData `json:"user"`
}

// FetchYears retrieves per-day contribution counts for the given year
// ranges in a single round trip.
func (c *Client) FetchYears(ctx context.Context, login string, ranges []YearRange) (map[int]YearCalendar, error) {
	if len(ranges) == 0 {
		return map[int]YearCalendar{}, nil
	}

	var data batchedContributionsData
	if err := c.execute(ctx, batchedContributionsQuery(ranges), map[string]any{"login": login}, &data); err != nil {
		return nil, err
	}
	if data.User == nil {
		return nil, fmt.Errorf("user %q: %w", login, ErrUserNotFound)
	}

	out := make(map[int]YearCalendar, len(ranges))
	for _, r := range ranges {
		yearData, ok := data.User[fmt.Sprintf("y%d", r.Year)]
		if !ok {
			// Absent alias: treat the year as empty rather than failing the
			// whole batch.
			continue
		}
		cal := YearCalendar{TotalContributions: yearData.ContributionCalendar.TotalContributions}
		for _, week := range yearData.ContributionCalendar.Weeks {
			for _, day := range week.ContributionDays {
				date, err := time.ParseInLocation("2006-01-02", day.Date, time.UTC)
				if err != nil {
					return nil, fmt.Errorf("%w: bad date %q", ErrParse, day.Date)
				}
				cal.Days = append(cal.Days, model.ContributionDay{Date: date, Count: day.ContributionCount})
			}
		}
		out[r.Year] = cal
	}
	return out, nil
}

type repoLanguagesData struct {
	User *struct {
		Repositories struct {
			Nodes []struct {
				Name      string `json:"name"`
				Languages struct {
					Edges []struct {
						Size int64 `json:"size"`
						Node struct {
							Name  string `json:"name"`
							Color string `json:"color"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"languages"`
			} `json:"nodes"`
		} `json:"repositories"`
	} `json:"user"`
}

// LanguageUsage aggregates per-language byte size and repository counts
// across the user's owned repositories, skipping excluded ones.
func (c *Client) LanguageUsage(ctx context.Context, login string, excludeRepos []string) ([]langs.Usage, error) {
	var data repoLanguagesData
	if err := c.execute(ctx, topLanguagesQuery, map[string]any{"login": login}, &data); err != nil {
		return nil, err
	}
	if data.User == nil {
		return nil, fmt.Errorf("user %q: %w", login, ErrUserNotFound)
	}

	excluded := make(map[string]struct{}, len(excludeRepos))
	for _, name := range excludeRepos {
		excluded[strings.ToLower(name)] = struct{}{}
	}

	byName := make(map[string]*langs.Usage)
	var order []string
	for _, repo := range data.User.Repositories.Nodes {
		if _, skip := excluded[strings.ToLower(repo.Name)]; skip {
			continue
		}
		for _, edge := range repo.Languages.Edges {
			usage, ok := byName[edge.Node.Name]
			if !ok {
				usage = &langs.Usage{Name: edge.Node.Name, Color: edge.Node.Color}
				byName[edge.Node.Name] = usage
				order = append(order, edge.Node.Name)
			}
			usage.Size += edge.Size
			usage.Count++
		}
	}

	out := make([]langs.Usage, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

type commitSearchData struct {
	TotalCount int `json:"total_count"`
}

// totalCommits counts a user's all-time commits via the REST search API.
func (c *Client) totalCommits(ctx context.Context, login string) (int, error) {
	token := c.rotator.Next()

	endpoint := fmt.Sprintf("%s/search/commits?q=author:%s", c.restURL, url.QueryEscape(login))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.cloak-preview")
	req.Header.Set("User-Agent", defaultUserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordGitHubRequest("rest")
	metrics.RecordGitHubRequestDuration("rest", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordGitHubError("transport")
		return 0, fmt.Errorf("search commits: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		c.rotator.MarkRateLimited(token, time.Now().UTC().Add(c.quarantine))
		metrics.RecordRateLimitHit()
		return 0, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("search commits: unexpected status %d", resp.StatusCode)
	}

	var result commitSearchData
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return result.TotalCount, nil
}
