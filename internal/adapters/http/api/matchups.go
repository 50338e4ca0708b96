package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/formcast/internal/domain/types"
)

const (
	defaultMatchupLimit    = 100
	defaultMaxMatchupLimit = 1000
)

// MatchupsHandler serves aligned matchup rows.
type MatchupsHandler struct {
	deps     MatchupDependencies
	maxLimit int
}

// NewMatchupsHandler creates a new matchups handler.
func NewMatchupsHandler(deps MatchupDependencies, maxLimit int) *MatchupsHandler {
	return &MatchupsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetMatchups handles GET /matchups?team=T&limit=N requests.
func (h *MatchupsHandler) HandleGetMatchups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	team := strings.ToUpper(strings.TrimSpace(q.Get("team")))

	limit := min(defaultMatchupLimit, h.maxLimit)
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadLimit)
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadLimit)
		return
	}

	rows, err := h.deps.Matchups(r.Context(), team, limit)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	out := make([]types.Matchup, len(rows))
	for i, row := range rows {
		out[i] = types.NewMatchup(row)
	}
	writeJSON(w, http.StatusOK, out)
}
