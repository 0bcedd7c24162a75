package github

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/encryptedtouhid/github-readme-stats/internal/domain/model"
	"github.com/encryptedtouhid/github-readme-stats/pkg/logger"
	"github.com/encryptedtouhid/github-readme-stats/pkg/metrics"
)

// Contribution fetch constants.
const (
	// minContributionYear is GitHub's founding year; no calendar exists
	// before it.
	minContributionYear = 2005

	// defaultYearsPerBatch bounds how many aliased year queries share one
	// round trip.
	defaultYearsPerBatch = 5
)

// YearRange bounds one calendar year of contribution history.
type YearRange struct {
	Year int
	From time.Time
	To   time.Time
}

// YearCalendar is one year's worth of per-day contribution counts.
type YearCalendar struct {
	TotalContributions int
	Days               []model.ContributionDay
}

// CalendarProvider returns per-day contribution counts for a set of years
// in a single round trip. Implementations are called once per batch.
type CalendarProvider interface {
	FetchYears(ctx context.Context, login string, ranges []YearRange) (map[int]YearCalendar, error)
}

// CreationYearLookup resolves the year a user joined the platform.
type CreationYearLookup interface {
	CreationYear(ctx context.Context, login string) (int, error)
}

// FetcherOption applies a configuration option to the Fetcher.
type FetcherOption func(*Fetcher)

// WithBatchSize sets how many years one provider call may cover.
func WithBatchSize(size int) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.batchSize = size
		}
	}
}

// WithFetcherLogger sets a custom logger for the fetcher.
func WithFetcherLogger(l logger.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithFetcherClock overrides the wall clock, mainly for tests.
func WithFetcherClock(now func() time.Time) FetcherOption {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// Fetcher retrieves a user's full contribution history by fanning out
// batched year queries concurrently and merging the results. Batching
// turns O(years) sequential requests into O(years/5) parallel ones, which
// is what bounds end-to-end latency for long histories.
type Fetcher struct {
	provider  CalendarProvider
	lookup    CreationYearLookup
	batchSize int
	logger    logger.Logger
	now       func() time.Time
}

// NewFetcher creates a fetcher over the given provider and creation-year
// lookup.
func NewFetcher(provider CalendarProvider, lookup CreationYearLookup, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		provider:  provider,
		lookup:    lookup,
		batchSize: defaultYearsPerBatch,
		logger:    logger.Get().Named("contributions"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the merged, date-sorted contribution days for login from
// startingYear (or the user's creation year when nil) through the current
// UTC year.
//
// A user-not-found signal from any batch aborts the whole fetch and
// cancels its siblings; any other batch failure degrades to "no data for
// those years". Failure of the creation-year lookup is non-fatal and falls
// back to the full history since 2005.
func (f *Fetcher) Fetch(ctx context.Context, login string, startingYear *int) ([]model.ContributionDay, error) {
	endYear := f.now().UTC().Year()

	startYear := minContributionYear
	switch {
	case startingYear != nil:
		if *startingYear > startYear {
			startYear = *startingYear
		}
	default:
		year, err := f.lookup.CreationYear(ctx, login)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil, err
			}
			f.logger.Warn(ctx, "creation year lookup failed; assuming full history",
				logger.String("login", login), logger.Error(err))
		} else if year > startYear {
			startYear = year
		}
	}
	if startYear > endYear {
		startYear = endYear
	}

	batches := partitionYears(startYear, endYear, f.batchSize)

	// Fan out one goroutine per batch, join, then merge. Results land in a
	// per-batch slot so no ordering between completions is assumed.
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		days []model.ContributionDay
		err  error
	}
	results := make([]batchResult, len(batches))

	var wg sync.WaitGroup
	for i, ranges := range batches {
		wg.Add(1)
		go func(slot int, ranges []YearRange) {
			defer wg.Done()

			metrics.RecordBatchFetch()
			calendars, err := f.provider.FetchYears(batchCtx, login, ranges)
			if err != nil {
				results[slot].err = err
				if errors.Is(err, ErrUserNotFound) {
					// Fatal: stop awaiting sibling batches.
					cancel()
				}
				return
			}
			for _, cal := range calendars {
				results[slot].days = append(results[slot].days, cal.Days...)
			}
		}(i, ranges)
	}
	wg.Wait()

	// Not-found takes precedence over every other outcome, including
	// batches that already succeeded.
	for _, res := range results {
		if res.err != nil && errors.Is(res.err, ErrUserNotFound) {
			return nil, res.err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []model.ContributionDay
	for i, res := range results {
		if res.err != nil {
			metrics.RecordBatchFailure()
			f.logger.Warn(ctx, "batch fetch failed; treating years as empty",
				logger.String("login", login),
				logger.Int("batch", i),
				logger.Error(res.err))
			continue
		}
		merged = append(merged, res.days...)
	}

	// Batch completion order is arbitrary and the provider's within-year
	// ordering is not trusted; only this sort is authoritative.
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})
	return merged, nil
}

// partitionYears splits [start, end] into consecutive runs of at most size
// years, each year carrying its full-day timestamp bounds.
func partitionYears(start, end, size int) [][]YearRange {
	var batches [][]YearRange
	for from := start; from <= end; from += size {
		to := from + size - 1
		if to > end {
			to = end
		}
		ranges := make([]YearRange, 0, to-from+1)
		for year := from; year <= to; year++ {
			ranges = append(ranges, YearRange{
				Year: year,
				From: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC),
			})
		}
		batches = append(batches, ranges)
	}
	return batches
}
