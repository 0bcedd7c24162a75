package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/encryptedtouhid/github-readme-stats/internal/adapters/github"
	"github.com/encryptedtouhid/github-readme-stats/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

// newGitHubStub serves the creation-date and batched-contribution queries
// for one user whose streak covers yesterday and the day before.
func newGitHubStub(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()

	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	dayBefore := now.AddDate(0, 0, -2).Format("2006-01-02")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.Contains(req.Query, "createdAt"):
			fmt.Fprintf(w, `{"data":{"user":{"createdAt":"%d-01-15T00:00:00Z"}}}`, now.Year())
		case strings.Contains(req.Query, "contributionsCollection"):
			fmt.Fprintf(w, `{"data":{"user":{"y%d":{"contributionCalendar":{"totalContributions":5,"weeks":[
				{"contributionDays":[
					{"contributionCount":2,"date":"%s"},
					{"contributionCount":3,"date":"%s"}
				]}
			]}}}}}`, now.Year(), dayBefore, yesterday)
		default:
			fmt.Fprint(w, `{"errors":[{"type":"INTERNAL","message":"no stub"}]}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func startedService(t *testing.T, srvURL string, opts ...app.Option) *app.Service {
	t.Helper()

	base := []app.Option{
		app.WithTokens([]string{"tok"}),
		app.WithEndpoints(srvURL, srvURL),
	}
	svc := app.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given the card service", t, func() {
		ctx := context.Background()

		Convey("When starting without tokens", func() {
			svc := app.New()
			err := svc.Start(ctx)

			Convey("Then startup fails", func() {
				So(err, ShouldWrap, github.ErrNoTokens)
			})
		})

		Convey("When querying before start", func() {
			svc := app.New(app.WithTokens([]string{"tok"}))

			_, err := svc.StreakStats(ctx, "octocat", nil)

			Convey("Then the service reports it is not started", func() {
				So(err, ShouldWrap, app.ErrNotStarted)
			})
		})

		Convey("When started", func() {
			var calls atomic.Int64
			stub := newGitHubStub(t, &calls)
			svc := startedService(t, stub.URL)

			Convey("Then runtime stats are exposed", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["tokenCount"], ShouldEqual, 1)
				So(stats["cacheEntries"], ShouldEqual, 0)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

func TestServiceStreakStats(t *testing.T) {
	Convey("Given a started service with a stubbed upstream", t, func() {
		ctx := context.Background()
		var calls atomic.Int64
		stub := newGitHubStub(t, &calls)
		svc := startedService(t, stub.URL)

		Convey("When computing a streak", func() {
			stats, err := svc.StreakStats(ctx, "octocat", nil)

			Convey("Then the run through yesterday is current", func() {
				So(err, ShouldBeNil)
				So(stats.Username, ShouldEqual, "octocat")
				So(stats.TotalContributions, ShouldEqual, 5)
				So(stats.CurrentStreak.Length, ShouldEqual, 2)
			})

			Convey("And a repeat request is served from cache", func() {
				So(err, ShouldBeNil)
				before := calls.Load()

				again, err := svc.StreakStats(ctx, "OCTOCAT", nil)
				So(err, ShouldBeNil)
				So(again.TotalContributions, ShouldEqual, 5)
				So(calls.Load(), ShouldEqual, before)
			})
		})

		Convey("When a starting year is supplied", func() {
			_, err := svc.StreakStats(ctx, "octocat", intPtr(time.Now().UTC().Year()))

			Convey("Then the creation lookup is skipped", func() {
				So(err, ShouldBeNil)
				So(calls.Load(), ShouldEqual, 1)
			})
		})

		Convey("When the username is blank", func() {
			_, err := svc.StreakStats(ctx, "  ", nil)

			Convey("Then the request is rejected up front", func() {
				So(err, ShouldWrap, app.ErrMissingParam)
				So(calls.Load(), ShouldEqual, 0)
			})
		})
	})
}

func TestServiceAccessControl(t *testing.T) {
	Convey("Given a service with access rules", t, func() {
		ctx := context.Background()
		var calls atomic.Int64
		stub := newGitHubStub(t, &calls)

		Convey("When a user is blacklisted", func() {
			svc := startedService(t, stub.URL, app.WithAccessControl(nil, []string{"BadActor"}))

			_, err := svc.StreakStats(ctx, "badactor", nil)

			Convey("Then the request is denied case-insensitively", func() {
				So(err, ShouldWrap, app.ErrAccessDenied)
				So(calls.Load(), ShouldEqual, 0)
			})
		})

		Convey("When a whitelist is active", func() {
			svc := startedService(t, stub.URL, app.WithAccessControl([]string{"octocat"}, nil))

			Convey("Then listed users pass", func() {
				_, err := svc.StreakStats(ctx, "Octocat", nil)
				So(err, ShouldBeNil)
			})

			Convey("Then everyone else is denied", func() {
				_, err := svc.StreakStats(ctx, "stranger", nil)
				So(err, ShouldWrap, app.ErrAccessDenied)
			})
		})
	})
}

func TestServiceCacheTTL(t *testing.T) {
	Convey("Given configured cache windows", t, func() {
		svc := app.New(app.WithCacheTTLs(time.Hour, 2*time.Hour, 3*time.Hour))

		Convey("When asking per card", func() {
			So(svc.CacheTTL("streak"), ShouldEqual, time.Hour)
			So(svc.CacheTTL("stats"), ShouldEqual, 2*time.Hour)
			So(svc.CacheTTL("langs"), ShouldEqual, 3*time.Hour)
		})

		Convey("When asking for an unknown card", func() {
			So(svc.CacheTTL("mystery"), ShouldEqual, time.Hour)
		})
	})
}

func intPtr(v int) *int { return &v }
