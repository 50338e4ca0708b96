package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/formcast/internal/domain/types"
)

// FeaturesHandler serves the stored feature vector of one team-game.
type FeaturesHandler struct {
	deps FeatureDependencies
}

// NewFeaturesHandler creates a new features handler.
func NewFeaturesHandler(deps FeatureDependencies) *FeaturesHandler {
	return &FeaturesHandler{deps: deps}
}

// FeatureResponse is the wire shape of one stored entry.
type FeatureResponse struct {
	GameID   string             `json:"game_id,omitempty"`
	Team     string             `json:"team"`
	Opponent string             `json:"opponent"`
	Date     string             `json:"date"`
	Season   int                `json:"season"`
	Features map[string]float64 `json:"features"`
}

// HandleGetFeatures handles GET /features/{team}/{date} requests.
func (h *FeaturesHandler) HandleGetFeatures(w http.ResponseWriter, r *http.Request) {
	team := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "team")))
	if team == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	date, err := time.Parse(time.DateOnly, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadDate)
		return
	}

	entry, err := h.deps.Features(r.Context(), team, date)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FeatureResponse{
		GameID:   entry.Record.GameID,
		Team:     entry.Record.Team,
		Opponent: entry.Record.Opponent,
		Date:     entry.Record.Date.Format(time.DateOnly),
		Season:   entry.Record.Season,
		Features: types.FeatureMap(entry.Features),
	})
}
