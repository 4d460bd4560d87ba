package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/example/leaguedesk/internal/domain/model"
)

// LineupsHandler handles lineup submission and roster reads.
type LineupsHandler struct {
	deps Dependencies
}

// NewLineupsHandler creates a new lineups handler.
func NewLineupsHandler(deps Dependencies) *LineupsHandler {
	return &LineupsHandler{deps: deps}
}

// HandlePostLineup handles POST /lineups.
func (h *LineupsHandler) HandlePostLineup(w http.ResponseWriter, r *http.Request) {
	var lineup model.LineupSubmission
	if err := json.NewDecoder(r.Body).Decode(&lineup); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", errors.New("invalid JSON body"))
		return
	}

	if err := h.deps.SubmitLineup(r.Context(), lineup); err != nil {
		writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "recorded"})
}

// HandleGetLineups handles GET /lineups/{week}.
func (h *LineupsHandler) HandleGetLineups(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(r.PathValue("week"))
	if err != nil || week < 1 {
		writeError(w, http.StatusBadRequest, "validation_error", errors.New("invalid week"))
		return
	}

	lineups, err := h.deps.Lineups(r.Context(), week)
	if err != nil {
		writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lineups)
}

// HandleGetTeams handles GET /teams.
func (h *LineupsHandler) HandleGetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.deps.Teams(r.Context())
	if err != nil {
		writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandleGetPlayers handles GET /teams/{id}/players.
func (h *LineupsHandler) HandleGetPlayers(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || teamID < 1 {
		writeError(w, http.StatusBadRequest, "validation_error", errors.New("invalid team id"))
		return
	}

	players, err := h.deps.Players(r.Context(), teamID)
	if err != nil {
		writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}
