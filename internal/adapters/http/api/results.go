package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/leaguedesk/internal/domain/model"
)

// ResultsHandler handles result confirmation and the gap report.
type ResultsHandler struct {
	deps Dependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps Dependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// setResultRequest mirrors the OpenAPI schema for POST /results/set.
type setResultRequest struct {
	Week         int    `json:"week"`
	MatchNumber  int    `json:"match_number"`
	SetNumber    int    `json:"set_number"`
	Winner       string `json:"winner"`
	ReplayDigest string `json:"replay_digest"`
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandlePostSetResult handles POST /results/set.
func (h *ResultsHandler) HandlePostSetResult(w http.ResponseWriter, r *http.Request) {
	var req setResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", errors.New("invalid JSON body"))
		return
	}

	err := h.deps.ConfirmSetResult(r.Context(), req.Week, req.MatchNumber, req.SetNumber, req.Winner, req.ReplayDigest)
	if err != nil {
		writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "recorded"})
}

// matchResultRequest mirrors the OpenAPI schema for POST /results/match.
type matchResultRequest struct {
	Week        int `json:"week"`
	MatchNumber int `json:"match_number"`
	Sets        []struct {
		SetNumber    int    `json:"set_number"`
		Winner       string `json:"winner"`
		Forfeit      bool   `json:"forfeit"`
		ReplayDigest string `json:"replay_digest"`
	} `json:"sets"`
	Ace *struct {
		HomePlayer string `json:"home_player"`
		AwayPlayer string `json:"away_player"`
		HomeRace   string `json:"home_race"`
		AwayRace   string `json:"away_race"`
	} `json:"ace"`
}

// HandlePostMatchResult handles POST /results/match: all five sets at once.
func (h *ResultsHandler) HandlePostMatchResult(w http.ResponseWriter, r *http.Request) {
	var req matchResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", errors.New("invalid JSON body"))
		return
	}
	if len(req.Sets) != model.SetsPerMatch {
		writeError(w, http.StatusBadRequest, "validation_error", errors.New("need one entry per set"))
		return
	}

	confirmation := MatchConfirmation{Week: req.Week, MatchNumber: req.MatchNumber}
	seen := map[int]bool{}
	for _, set := range req.Sets {
		if set.SetNumber < 1 || set.SetNumber > model.SetsPerMatch || seen[set.SetNumber] {
			writeError(w, http.StatusBadRequest, "validation_error", errors.New("bad set numbering"))
			return
		}
		seen[set.SetNumber] = true
		confirmation.Winners[set.SetNumber-1] = model.Winner(set.Winner)
		confirmation.Forfeits[set.SetNumber-1] = set.Forfeit
		confirmation.Digests[set.SetNumber-1] = set.ReplayDigest
	}
	if req.Ace != nil {
		confirmation.Ace = &model.AceMatchRecord{
			HomePlayer: req.Ace.HomePlayer,
			AwayPlayer: req.Ace.AwayPlayer,
			HomeRace:   model.Race(req.Ace.HomeRace),
			AwayRace:   model.Race(req.Ace.AwayRace),
		}
	}

	if err := h.deps.ConfirmMatchResult(r.Context(), confirmation); err != nil {
		writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "recorded"})
}

// HandleGetMissing handles GET /results/missing?week=N&matches=1,2,3.
func (h *ResultsHandler) HandleGetMissing(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(r.URL.Query().Get("week"))
	if err != nil || week < 1 {
		writeError(w, http.StatusBadRequest, "validation_error", errors.New("missing or invalid week"))
		return
	}

	matchNumbers := []int{}
	if raw := r.URL.Query().Get("matches"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "validation_error", errors.New("invalid match number"))
				return
			}
			matchNumbers = append(matchNumbers, n)
		}
	}

	missing, err := h.deps.MissingResults(r.Context(), week, matchNumbers)
	if err != nil {
		writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, missing)
}
