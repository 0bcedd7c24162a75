// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// TopLangsHandler handles top languages requests.
type TopLangsHandler struct {
	deps Dependencies
}

// NewTopLangsHandler creates a new top languages handler.
func NewTopLangsHandler(deps Dependencies) *TopLangsHandler {
	return &TopLangsHandler{deps: deps}
}

// HandleGetTopLangs handles GET /api/top-langs requests. Languages are
// returned as JSON; the card rendering for this endpoint is ranked data
// only, so there is no SVG form.
func (h *TopLangsHandler) HandleGetTopLangs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	top, err := h.deps.TopLanguages(r.Context(), r.URL.Query().Get("user"))
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	w.Header().Set("Cache-Control", cacheControl(h.deps.CacheTTL("langs")))
	writeJSON(w, http.StatusOK, top)
}
