// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/leaguedesk/internal/adapters/blobstore"
	"github.com/example/leaguedesk/internal/adapters/repository"
	"github.com/example/leaguedesk/internal/app"
	"github.com/example/leaguedesk/internal/domain/match"
	"github.com/example/leaguedesk/internal/domain/model"
)

// Upload and MatchConfirmation are the service-layer batch types.
type (
	Upload            = app.Upload
	MatchConfirmation = app.MatchConfirmation
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	ResolveBatch(ctx context.Context, uploads []Upload, targetWeek int) ([]match.Suggestion, error)
	ConfirmSetResult(ctx context.Context, week, matchNumber, setNumber int, winner, digest string) error
	ConfirmMatchResult(ctx context.Context, confirmation MatchConfirmation) error
	MissingResults(ctx context.Context, week int, matchNumbers []int) ([]model.SetKey, error)

	Schedule(ctx context.Context, week int) ([]model.ScheduledSet, error)
	Weeks(ctx context.Context) ([]int, error)

	SubmitLineup(ctx context.Context, lineup model.LineupSubmission) error
	Lineups(ctx context.Context, week int) ([]repository.LineupRow, error)
	Teams(ctx context.Context) ([]model.Team, error)
	Players(ctx context.Context, teamID int) ([]model.Player, error)

	Replay(ctx context.Context, digest string) ([]byte, error)
	Ready(ctx context.Context) error
}

// Server wires HTTP routes for the league API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	replaysHandler  *ReplaysHandler
	resultsHandler  *ResultsHandler
	scheduleHandler *ScheduleHandler
	lineupsHandler  *LineupsHandler
}

// NewServer creates the API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(deps),
		statsHandler:    NewStatsHandler(statsProvider),
		replaysHandler:  NewReplaysHandler(deps),
		resultsHandler:  NewResultsHandler(deps),
		scheduleHandler: NewScheduleHandler(deps),
		lineupsHandler:  NewLineupsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /replays", MetricsMiddleware(s.replaysHandler.HandlePostReplays, "replays"))
	mux.HandleFunc("GET /replays/{digest}", MetricsMiddleware(s.replaysHandler.HandleGetReplay, "replay"))

	mux.HandleFunc("POST /results/set", MetricsMiddleware(s.resultsHandler.HandlePostSetResult, "result_set"))
	mux.HandleFunc("POST /results/match", MetricsMiddleware(s.resultsHandler.HandlePostMatchResult, "result_match"))
	mux.HandleFunc("GET /results/missing", MetricsMiddleware(s.resultsHandler.HandleGetMissing, "result_missing"))

	mux.HandleFunc("GET /schedule/{week}", MetricsMiddleware(s.scheduleHandler.HandleGetSchedule, "schedule"))
	mux.HandleFunc("GET /weeks", MetricsMiddleware(s.scheduleHandler.HandleGetWeeks, "weeks"))

	mux.HandleFunc("POST /lineups", MetricsMiddleware(s.lineupsHandler.HandlePostLineup, "lineup_submit"))
	mux.HandleFunc("GET /lineups/{week}", MetricsMiddleware(s.lineupsHandler.HandleGetLineups, "lineups"))
	mux.HandleFunc("GET /teams", MetricsMiddleware(s.lineupsHandler.HandleGetTeams, "teams"))
	mux.HandleFunc("GET /teams/{id}/players", MetricsMiddleware(s.lineupsHandler.HandleGetPlayers, "players"))
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

// writeOutcome maps service-layer sentinels to status codes. Conflict is
// distinct from validation so a client can tell "bad request" from "already
// done".
func writeOutcome(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrValidation), errors.Is(err, blobstore.ErrInvalidDigest):
		writeError(w, http.StatusBadRequest, "validation_error", err)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, blobstore.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, app.ErrBusy):
		writeError(w, http.StatusTooManyRequests, "busy", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
