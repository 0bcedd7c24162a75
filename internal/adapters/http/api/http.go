// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/encryptedtouhid/github-readme-stats/internal/adapters/github"
	"github.com/encryptedtouhid/github-readme-stats/internal/app"
	"github.com/encryptedtouhid/github-readme-stats/internal/domain/model"
	"github.com/encryptedtouhid/github-readme-stats/internal/render"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StreakStats(ctx context.Context, login string, startingYear *int) (model.StreakStats, error)
	UserStats(ctx context.Context, login string, includeAllCommits bool) (model.UserStats, error)
	TopLanguages(ctx context.Context, login string) (model.TopLanguages, error)

	// CacheTTL reports the cache window per card so responses can carry
	// matching CDN headers.
	CacheTTL(card string) time.Duration
}

// StatsProvider exposes service runtime statistics for monitoring.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	runtimeHandler *RuntimeStatsHandler
	streakHandler  *StreakHandler
	statsHandler   *StatsHandler
	langsHandler   *TopLangsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		runtimeHandler: NewRuntimeStatsHandler(statsProvider),
		streakHandler:  NewStreakHandler(deps),
		statsHandler:   NewStatsHandler(deps),
		langsHandler:   NewTopLangsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, limiter *ClientLimiter) {
	chain := func(h http.HandlerFunc, endpoint string) http.HandlerFunc {
		return RequestIDMiddleware(RateLimitMiddleware(MetricsMiddleware(h, endpoint), limiter))
	}

	mux.HandleFunc("/healthz", s.healthHandler.HandleHealth)
	mux.HandleFunc("/stats", MetricsMiddleware(s.runtimeHandler.HandleStats, "runtime_stats"))
	mux.HandleFunc("/api/streak", chain(s.streakHandler.HandleGetStreak, "streak"))
	mux.HandleFunc("/api/stats", chain(s.statsHandler.HandleGetStats, "stats"))
	mux.HandleFunc("/api/top-langs", chain(s.langsHandler.HandleGetTopLangs, "top_langs"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeSVG sends a rendered card with Cache-Control matching ttl.
func writeSVG(w http.ResponseWriter, status int, body []byte, ttl time.Duration) {
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl(ttl))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// cacheControl builds a Cache-Control value for a cache window. Errors and
// zero windows must not be cached by CDNs.
func cacheControl(ttl time.Duration) string {
	if ttl <= 0 {
		return "no-store"
	}
	seconds := int(ttl.Seconds())
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d", seconds, seconds)
}

// statusFor translates service errors into HTTP status codes and codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, github.ErrUserNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, github.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, app.ErrAccessDenied):
		return http.StatusForbidden, "access_denied"
	case errors.Is(err, app.ErrMissingParam), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return statusClientClosedRequest, "canceled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeCardError renders an error as an SVG card (or JSON when the caller
// asked for JSON) so broken embeds stay readable in a README.
func writeCardError(w http.ResponseWriter, err error, theme render.Theme, asJSON bool) {
	status, code := statusFor(err)
	if asJSON {
		writeError(w, status, code, err)
		return
	}
	writeSVG(w, status, render.ErrorCard(err.Error(), theme), 0)
}

// parseOptionalYear reads an optional integer query parameter.
func parseOptionalYear(value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%w: starting_year must be an integer", ErrBadRequest)
	}
	return &year, nil
}
