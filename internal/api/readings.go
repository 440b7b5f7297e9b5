package api

import (
	"net/http"
	"strconv"

	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
	"github.com/FocuswithJustin/JuniperJournal/internal/logging"
	"github.com/FocuswithJustin/JuniperJournal/internal/reading"
)

// maxHeatmapDays bounds ?days= on the heatmap.
const maxHeatmapDays = 3660

// readingRequest is the body of POST /readings and PUT /readings/{id}.
type readingRequest struct {
	reading.Draft
	ScriptureText string `json:"scripture_text,omitempty"`
}

func (req readingRequest) draft(w http.ResponseWriter, r *http.Request) (reading.Draft, bool) {
	d := req.Draft
	if req.ScriptureText != "" {
		refs, ok := scripture.ParseList(req.ScriptureText)
		if !ok {
			logging.ReferenceRejected(r.Context(), req.ScriptureText)
			respondError(w, http.StatusUnprocessableEntity, "UNPARSEABLE_REFERENCE", unparseableMessage)
			return reading.Draft{}, false
		}
		d.Scripture = refs
	}
	return d, true
}

// ReadingView is a reading with its references rendered for display.
type ReadingView struct {
	reading.Reading
	ScriptureDisplay string `json:"scripture_display"`
}

func viewReading(rd reading.Reading) ReadingView {
	return ReadingView{Reading: rd, ScriptureDisplay: scripture.FormatMany(rd.Scripture)}
}

// HeatmapView is the response of GET /readings/heatmap.
type HeatmapView struct {
	Days   []reading.Day `json:"days"`
	Streak int           `json:"streak"`
}

// CoverageView is the response of GET /readings/coverage.
type CoverageView struct {
	reading.Coverage
	Percent float64 `json:"percent"`
}

// userReadings returns all of the caller's readings, served from the
// per-user cache when warm.
func (s *Server) userReadings(r *http.Request) ([]reading.Reading, error) {
	uid := userID(r)
	if rs, ok := s.readings.Get(uid); ok {
		return rs, nil
	}
	gen := s.readingGeneration(uid)
	rs, err := s.repo.ListReadings(r.Context(), uid)
	if err != nil {
		return nil, err
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.readingGen[uid] == gen {
		s.readings.Set(uid, rs)
	}
	return rs, nil
}

func (s *Server) readingGeneration(uid string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.readingGen[uid]
}

// readingsChanged drops cached derived views and notifies the caller's
// other sessions.
func (s *Server) readingsChanged(uid string, ev ChangeEvent) {
	s.genMu.Lock()
	s.readingGen[uid]++
	s.readings.Delete(uid)
	s.genMu.Unlock()
	s.hub.Publish(uid, ev)
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")

	var (
		rs  []reading.Reading
		err error
	)
	if from != "" || to != "" {
		if from == "" || to == "" {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Both from and to are required")
			return
		}
		rs, err = s.repo.ListReadingsBetween(r.Context(), userID(r), from, to)
	} else {
		rs, err = s.repo.ListReadings(r.Context(), userID(r))
	}
	if err != nil {
		respondErr(w, r, "list_readings", err)
		return
	}

	views := make([]ReadingView, len(rs))
	for i, rd := range rs {
		views[i] = viewReading(rd)
	}
	respondCached(w, r, views, len(views))
}

func (s *Server) handleGetReading(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rd, err := s.repo.GetReading(r.Context(), userID(r), id)
	if err != nil {
		respondErr(w, r, "get_reading", err)
		return
	}
	respondCached(w, r, viewReading(rd), -1)
}

func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, ok := req.draft(w, r)
	if !ok {
		return
	}
	uid := userID(r)
	rd, err := s.repo.CreateReading(r.Context(), uid, d)
	if err != nil {
		respondErr(w, r, "create_reading", err)
		return
	}
	s.readingsChanged(uid, ChangeEvent{Type: EventReadingCreated, ID: rd.ID})
	respond(w, http.StatusCreated, viewReading(rd))
}

func (s *Server) handleUpdateReading(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req readingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, ok := req.draft(w, r)
	if !ok {
		return
	}
	uid := userID(r)
	rd, err := s.repo.UpdateReading(r.Context(), uid, id, d)
	if err != nil {
		respondErr(w, r, "update_reading", err)
		return
	}
	s.readingsChanged(uid, ChangeEvent{Type: EventReadingUpdated, ID: rd.ID})
	respond(w, http.StatusOK, viewReading(rd))
}

func (s *Server) handleDeleteReading(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	uid := userID(r)
	if err := s.repo.DeleteReading(r.Context(), uid, id); err != nil {
		respondErr(w, r, "delete_reading", err)
		return
	}
	s.readingsChanged(uid, ChangeEvent{Type: EventReadingDeleted, ID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	days := reading.DefaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHeatmapDays {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT",
				"days must be between 1 and "+strconv.Itoa(maxHeatmapDays))
			return
		}
		days = n
	}

	rs, err := s.userReadings(r)
	if err != nil {
		respondErr(w, r, "heatmap", err)
		return
	}
	cells := reading.Heatmap(rs, s.now(), days)
	respondCached(w, r, HeatmapView{Days: cells, Streak: reading.Streak(cells)}, -1)
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	rs, err := s.userReadings(r)
	if err != nil {
		respondErr(w, r, "coverage", err)
		return
	}
	c := reading.ComputeCoverage(rs)
	respondCached(w, r, CoverageView{Coverage: c, Percent: c.Percent()}, -1)
}

func (s *Server) handleReadingSummary(w http.ResponseWriter, r *http.Request) {
	rs, err := s.userReadings(r)
	if err != nil {
		respondErr(w, r, "reading_summary", err)
		return
	}
	respond(w, http.StatusOK, reading.Summarize(rs, s.now()))
}
