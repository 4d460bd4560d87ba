package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/example/leaguedesk/internal/domain/match"
	"github.com/example/leaguedesk/internal/domain/model"
)

const defaultMaxUploadBytes = 32 << 20

// ReplaysHandler handles replay upload and download.
type ReplaysHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewReplaysHandler creates a new replays handler.
func NewReplaysHandler(deps Dependencies) *ReplaysHandler {
	return &ReplaysHandler{deps: deps, maxUploadBytes: defaultMaxUploadBytes}
}

// suggestionResponse is one row of the review payload. ArchiveName is the
// cleaned download name a review UI would save the replay under.
type suggestionResponse struct {
	Name        string              `json:"name"`
	Digest      string              `json:"digest,omitempty"`
	Error       string              `json:"error,omitempty"`
	Suggestion  *model.ScheduledSet `json:"suggestion,omitempty"`
	ArchiveName string              `json:"archive_name,omitempty"`
}

// resolveResponse wraps a batch of suggestions with the sets still lacking
// results for the matches the batch touched.
type resolveResponse struct {
	BatchID     string               `json:"batch_id"`
	Suggestions []suggestionResponse `json:"suggestions"`
	Missing     []model.SetKey       `json:"missing"`
}

// HandlePostReplays handles POST /replays?week=N with multipart files under
// the "replays" field. The response carries one suggestion row per uploaded
// file, in upload order, for human review.
func (h *ReplaysHandler) HandlePostReplays(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(r.URL.Query().Get("week"))
	if err != nil || week < 1 {
		writeError(w, http.StatusBadRequest, "validation_error", errors.New("missing or invalid week"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", errors.New("invalid multipart body"))
		return
	}
	files := r.MultipartForm.File["replays"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "validation_error", errors.New("no replay files"))
		return
	}

	uploads := make([]Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", errors.New("unreadable upload"))
			return
		}
		raw, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", errors.New("unreadable upload"))
			return
		}
		uploads = append(uploads, Upload{Name: fh.Filename, Raw: raw})
	}

	suggestions, err := h.deps.ResolveBatch(r.Context(), uploads, week)
	if err != nil {
		writeOutcome(w, err)
		return
	}

	missing, err := h.missingForBatch(r, suggestions)
	if err != nil {
		writeOutcome(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resolveResponse{
		BatchID:     uuid.NewString(),
		Suggestions: toSuggestionResponses(suggestions),
		Missing:     missing,
	})
}

// missingForBatch reports the unrecorded sets of every match the batch
// suggested a candidate for, so the review payload shows what is still open.
func (h *ReplaysHandler) missingForBatch(r *http.Request, suggestions []match.Suggestion) ([]model.SetKey, error) {
	byWeek := map[int]map[int]bool{}
	for _, s := range suggestions {
		if s.Candidate == nil {
			continue
		}
		if byWeek[s.Candidate.Week] == nil {
			byWeek[s.Candidate.Week] = map[int]bool{}
		}
		byWeek[s.Candidate.Week][s.Candidate.MatchNumber] = true
	}

	weeks := make([]int, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	missing := []model.SetKey{}
	for _, wk := range weeks {
		matchNumbers := make([]int, 0, len(byWeek[wk]))
		for m := range byWeek[wk] {
			matchNumbers = append(matchNumbers, m)
		}
		sort.Ints(matchNumbers)

		keys, err := h.deps.MissingResults(r.Context(), wk, matchNumbers)
		if err != nil {
			return nil, err
		}
		missing = append(missing, keys...)
	}
	return missing, nil
}

func toSuggestionResponses(suggestions []match.Suggestion) []suggestionResponse {
	out := make([]suggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		row := suggestionResponse{
			Name:       s.Name,
			Digest:     s.Digest,
			Suggestion: s.Candidate,
		}
		if s.Candidate != nil {
			row.ArchiveName = archiveName(s.Candidate)
		}
		if s.Err != nil {
			row.Error = s.Err.Error()
		}
		out = append(out, row)
	}
	return out
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// archiveName builds the Team-Team_set_Player-Player download name with
// non-alphanumerics stripped from each component.
func archiveName(c *model.ScheduledSet) string {
	clean := func(s string) string { return nonAlnum.ReplaceAllString(s, "") }
	return fmt.Sprintf("%s-%s_%d_%s-%s",
		clean(c.HomeTeam), clean(c.AwayTeam), c.SetNumber,
		clean(c.HomePlayer), clean(c.AwayPlayer))
}

// HandleGetReplay handles GET /replays/{digest}, serving the archived file.
func (h *ReplaysHandler) HandleGetReplay(w http.ResponseWriter, r *http.Request) {
	digest := r.PathValue("digest")

	raw, err := h.deps.Replay(r.Context(), digest)
	if err != nil {
		writeOutcome(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+digest+`.SC2Replay"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
