package api

import (
	"errors"
	"net/http"
	"strconv"
)

// ScheduleHandler serves schedule reads.
type ScheduleHandler struct {
	deps Dependencies
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(deps Dependencies) *ScheduleHandler {
	return &ScheduleHandler{deps: deps}
}

// HandleGetSchedule handles GET /schedule/{week}.
func (h *ScheduleHandler) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(r.PathValue("week"))
	if err != nil || week < 1 {
		writeError(w, http.StatusBadRequest, "validation_error", errors.New("invalid week"))
		return
	}

	sets, err := h.deps.Schedule(r.Context(), week)
	if err != nil {
		writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

// HandleGetWeeks handles GET /weeks.
func (h *ScheduleHandler) HandleGetWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.deps.Weeks(r.Context())
	if err != nil {
		writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weeks)
}
