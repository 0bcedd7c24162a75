// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/encryptedtouhid/github-readme-stats/internal/render"
)

// StatsHandler handles stats card requests.
type StatsHandler struct {
	deps Dependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps Dependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// HandleGetStats handles GET /api/stats requests.
func (h *StatsHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	theme := render.Lookup(q.Get("theme"))
	asJSON := q.Get("format") == "json"
	includeAllCommits := q.Get("include_all_commits") == "true"

	stats, err := h.deps.UserStats(r.Context(), q.Get("user"), includeAllCommits)
	if err != nil {
		writeCardError(w, err, theme, asJSON)
		return
	}

	if asJSON {
		writeJSON(w, http.StatusOK, stats)
		return
	}

	body, err := render.StatsCard(stats, theme)
	if err != nil {
		writeCardError(w, err, theme, false)
		return
	}
	writeSVG(w, http.StatusOK, body, h.deps.CacheTTL("stats"))
}

// RuntimeStatsHandler serves service runtime statistics.
type RuntimeStatsHandler struct {
	statsProvider StatsProvider
}

// NewRuntimeStatsHandler creates a new runtime stats handler.
func NewRuntimeStatsHandler(statsProvider StatsProvider) *RuntimeStatsHandler {
	return &RuntimeStatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *RuntimeStatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	stats := h.statsProvider.GetStats()
	_ = json.NewEncoder(w).Encode(stats)
}
