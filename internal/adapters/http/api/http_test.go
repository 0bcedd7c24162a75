package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/encryptedtouhid/github-readme-stats/internal/adapters/github"
	"github.com/encryptedtouhid/github-readme-stats/internal/adapters/http/api"
	"github.com/encryptedtouhid/github-readme-stats/internal/app"
	"github.com/encryptedtouhid/github-readme-stats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeDeps answers handler calls from canned values and errors.
type fakeDeps struct {
	streak model.StreakStats
	stats  model.UserStats
	langs  model.TopLanguages
	err    error

	lastYear *int
}

func (f *fakeDeps) StreakStats(_ context.Context, login string, startingYear *int) (model.StreakStats, error) {
	f.lastYear = startingYear
	if err := f.check(login); err != nil {
		return model.StreakStats{}, err
	}
	return f.streak, nil
}

func (f *fakeDeps) UserStats(_ context.Context, login string, _ bool) (model.UserStats, error) {
	if err := f.check(login); err != nil {
		return model.UserStats{}, err
	}
	return f.stats, nil
}

func (f *fakeDeps) TopLanguages(_ context.Context, login string) (model.TopLanguages, error) {
	if err := f.check(login); err != nil {
		return model.TopLanguages{}, err
	}
	return f.langs, nil
}

func (f *fakeDeps) CacheTTL(string) time.Duration { return 3 * time.Hour }

func (f *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func (f *fakeDeps) check(login string) error {
	if login == "" {
		return fmt.Errorf("%w: username", app.ErrMissingParam)
	}
	return f.err
}

func newTestMux(deps *fakeDeps, limiter *api.ClientLimiter) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps).Register(context.Background(), mux, limiter)
	return mux
}

func get(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestStreakEndpoint(t *testing.T) {
	Convey("Given the streak endpoint", t, func() {
		start := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)
		deps := &fakeDeps{streak: model.StreakStats{
			Username:           "octocat",
			TotalContributions: 8,
			CurrentStreak:      model.StreakInfo{Length: 4, Start: &start, End: &end},
			LongestStreak:      model.StreakInfo{Length: 4, Start: &start, End: &end},
		}}
		mux := newTestMux(deps, nil)

		Convey("When requesting the default card", func() {
			rec := get(mux, "/api/streak?user=octocat")

			Convey("Then an SVG card is served with cache headers", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "image/svg+xml")
				So(rec.Header().Get("Cache-Control"), ShouldContainSubstring, "max-age=10800")
				So(rec.Body.String(), ShouldContainSubstring, "<svg")
			})
		})

		Convey("When requesting JSON", func() {
			rec := get(mux, "/api/streak?user=octocat&format=json")

			Convey("Then the raw summary is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "application/json")

				var got model.StreakStats
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.Username, ShouldEqual, "octocat")
				So(got.CurrentStreak.Length, ShouldEqual, 4)
			})
		})

		Convey("When passing a starting year", func() {
			rec := get(mux, "/api/streak?user=octocat&starting_year=2020")

			Convey("Then it reaches the service", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastYear, ShouldNotBeNil)
				So(*deps.lastYear, ShouldEqual, 2020)
			})
		})

		Convey("When the starting year is not a number", func() {
			rec := get(mux, "/api/streak?user=octocat&starting_year=abc&format=json")

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the user parameter is missing", func() {
			rec := get(mux, "/api/streak?format=json")

			Convey("Then the response is a 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the user does not exist", func() {
			deps.err = fmt.Errorf("user %q: %w", "ghost", github.ErrUserNotFound)

			Convey("And the card form is requested", func() {
				rec := get(mux, "/api/streak?user=ghost")

				Convey("Then a 404 error card is served", func() {
					So(rec.Code, ShouldEqual, http.StatusNotFound)
					So(rec.Header().Get("Content-Type"), ShouldStartWith, "image/svg+xml")
					So(rec.Header().Get("Cache-Control"), ShouldEqual, "no-store")
				})
			})

			Convey("And JSON is requested", func() {
				rec := get(mux, "/api/streak?user=ghost&format=json")

				Convey("Then a structured error is returned", func() {
					So(rec.Code, ShouldEqual, http.StatusNotFound)
					So(rec.Body.String(), ShouldContainSubstring, "not_found")
				})
			})
		})

		Convey("When GitHub is rate limited", func() {
			deps.err = github.ErrRateLimited
			rec := get(mux, "/api/streak?user=octocat&format=json")

			Convey("Then the status is 429", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			})
		})

		Convey("When access is denied", func() {
			deps.err = app.ErrAccessDenied
			rec := get(mux, "/api/streak?user=octocat&format=json")

			Convey("Then the status is 403", func() {
				So(rec.Code, ShouldEqual, http.StatusForbidden)
			})
		})

		Convey("When an unexpected failure happens", func() {
			deps.err = errors.New("boom")
			rec := get(mux, "/api/streak?user=octocat&format=json")

			Convey("Then the status is 500", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When the method is not GET", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/streak?user=octocat", nil))

			Convey("Then the route does not exist", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		deps := &fakeDeps{stats: model.UserStats{
			Name:         "The Octocat",
			Login:        "octocat",
			TotalStars:   150,
			TotalCommits: 120,
			Rank:         model.UserRank{Level: "A+", Percentile: 12.3},
		}}
		mux := newTestMux(deps, nil)

		Convey("When requesting the card", func() {
			rec := get(mux, "/api/stats?user=octocat")

			Convey("Then the SVG embeds the rank", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "A+")
			})
		})

		Convey("When requesting JSON", func() {
			rec := get(mux, "/api/stats?user=octocat&format=json")

			var got model.UserStats
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)

			Convey("Then the counters round-trip", func() {
				So(got.TotalStars, ShouldEqual, 150)
				So(got.Rank.Level, ShouldEqual, "A+")
			})
		})
	})
}

func TestTopLangsEndpoint(t *testing.T) {
	Convey("Given the top languages endpoint", t, func() {
		deps := &fakeDeps{langs: model.TopLanguages{
			Languages: []model.LanguageStats{{Name: "Go", Color: "#00ADD8", Size: 1500, RepoCount: 2, Percentage: 88.2}},
			TotalSize: 1700,
		}}
		mux := newTestMux(deps, nil)

		Convey("When requesting the ranking", func() {
			rec := get(mux, "/api/top-langs?user=octocat")

			Convey("Then the languages are returned as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Cache-Control"), ShouldContainSubstring, "max-age")

				var got model.TopLanguages
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.Languages[0].Name, ShouldEqual, "Go")
			})
		})
	})
}

func TestRuntimeStatsEndpoint(t *testing.T) {
	Convey("Given the runtime stats endpoint", t, func() {
		mux := newTestMux(&fakeDeps{}, nil)

		Convey("When requesting it", func() {
			rec := get(mux, "/stats")

			Convey("Then the service state is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "started")
			})
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given the middleware chain", t, func() {
		Convey("When no request id is supplied", func() {
			mux := newTestMux(&fakeDeps{}, nil)
			rec := get(mux, "/api/top-langs?user=octocat")

			Convey("Then one is generated", func() {
				So(rec.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
			})
		})

		Convey("When the caller supplies a request id", func() {
			mux := newTestMux(&fakeDeps{}, nil)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/top-langs?user=octocat", nil)
			req.Header.Set("X-Request-Id", "req-123")
			mux.ServeHTTP(rec, req)

			Convey("Then it is echoed back", func() {
				So(rec.Header().Get("X-Request-Id"), ShouldEqual, "req-123")
			})
		})

		Convey("When a client exceeds its rate budget", func() {
			limiter := api.NewClientLimiter(1, 1)
			Reset(func() { _ = limiter.Close() })
			mux := newTestMux(&fakeDeps{}, limiter)

			first := get(mux, "/api/top-langs?user=octocat")
			second := get(mux, "/api/top-langs?user=octocat")

			Convey("Then the burst passes and the overflow is rejected", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusTooManyRequests)
			})
		})

		Convey("When a limiter is closed", func() {
			limiter := api.NewClientLimiter(1, 1)

			Convey("Then closing is idempotent and Allow still answers", func() {
				So(limiter.Close(), ShouldBeNil)
				So(limiter.Close(), ShouldBeNil)
				So(limiter.Allow("192.0.2.1:1234"), ShouldBeTrue)
			})
		})
	})
}
