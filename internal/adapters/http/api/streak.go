// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/encryptedtouhid/github-readme-stats/internal/render"
)

// StreakHandler handles streak card requests.
type StreakHandler struct {
	deps Dependencies
}

// NewStreakHandler creates a new streak handler.
func NewStreakHandler(deps Dependencies) *StreakHandler {
	return &StreakHandler{deps: deps}
}

// HandleGetStreak handles GET /api/streak requests. The response is an SVG
// card by default; format=json returns the raw streak summary instead.
func (h *StreakHandler) HandleGetStreak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	theme := render.Lookup(q.Get("theme"))
	asJSON := q.Get("format") == "json"

	startingYear, err := parseOptionalYear(q.Get("starting_year"))
	if err != nil {
		writeCardError(w, err, theme, asJSON)
		return
	}

	stats, err := h.deps.StreakStats(r.Context(), q.Get("user"), startingYear)
	if err != nil {
		writeCardError(w, err, theme, asJSON)
		return
	}

	if asJSON {
		writeJSON(w, http.StatusOK, stats)
		return
	}

	body, err := render.StreakCard(stats, theme)
	if err != nil {
		writeCardError(w, err, theme, false)
		return
	}
	writeSVG(w, http.StatusOK, body, h.deps.CacheTTL("streak"))
}
