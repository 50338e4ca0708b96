// Package api exposes pipeline outputs over a read-only HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/formcast/internal/adapters/http/swagger"
	"github.com/okian/formcast/internal/adapters/repository"
	"github.com/okian/formcast/internal/domain/model"
	"github.com/okian/formcast/internal/domain/types"
)

// Router configuration constants.
const (
	requestTimeout = 30 * time.Second
	corsMaxAge     = 300
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider
	ReportDependencies
	MatchupDependencies
	FeatureDependencies
}

// ReportDependencies provides the latest backtest report.
type ReportDependencies interface {
	Report(ctx context.Context) (types.Report, error)
}

// MatchupDependencies provides aligned matchup rows.
type MatchupDependencies interface {
	Matchups(ctx context.Context, team string, limit int) ([]model.MatchupRow, error)
}

// FeatureDependencies provides keyed feature lookups.
type FeatureDependencies interface {
	Features(ctx context.Context, team string, date time.Time) (repository.Entry, error)
}

// Server wires HTTP routes for the read API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	reportHandler   *ReportHandler
	matchupsHandler *MatchupsHandler
	featuresHandler *FeaturesHandler

	corsOrigins []string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCORSOrigins sets the allowed CORS origins. Default allows any origin.
func WithCORSOrigins(origins ...string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithMaxMatchupLimit caps GET /matchups?limit.
func WithMaxMatchupLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.matchupsHandler.maxLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		reportHandler:   NewReportHandler(deps),
		matchupsHandler: NewMatchupsHandler(deps, defaultMaxMatchupLimit),
		featuresHandler: NewFeaturesHandler(deps),
		corsOrigins:     []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with middleware and every route attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         corsMaxAge,
	}))
	r.Use(MetricsMiddleware)

	s.Register(r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/report", s.reportHandler.HandleGetReport)
	r.Get("/matchups", s.matchupsHandler.HandleGetMatchups)
	r.Get("/features/{team}/{date}", s.featuresHandler.HandleGetFeatures)
	swagger.Register(r)
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

// writeUpstreamError translates read errors to status codes.
func writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrNoResult):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
