package api

import (
	"net/http"

	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
	"github.com/FocuswithJustin/JuniperJournal/internal/journal"
	"github.com/FocuswithJustin/JuniperJournal/internal/logging"
)

// entryRequest is the body of POST /journal and PUT /journal/{id}.
// References may be sent structured or as free text such as
// "John 3:16; Rom 8"; free text wins when both are present.
type entryRequest struct {
	journal.Draft
	ScriptureText string `json:"scripture_text,omitempty"`
}

// draft resolves the request into a journal draft, writing a 422 when the
// free-text references do not parse.
func (req entryRequest) draft(w http.ResponseWriter, r *http.Request) (journal.Draft, bool) {
	d := req.Draft
	if req.ScriptureText != "" {
		refs, ok := scripture.ParseList(req.ScriptureText)
		if !ok {
			logging.ReferenceRejected(r.Context(), req.ScriptureText)
			respondError(w, http.StatusUnprocessableEntity, "UNPARSEABLE_REFERENCE", unparseableMessage)
			return journal.Draft{}, false
		}
		d.Scripture = refs
	}
	return d, true
}

// EntryView is an entry as returned by the API, with its references
// pre-rendered for display.
type EntryView struct {
	journal.Entry
	ScriptureDisplay string `json:"scripture_display"`
}

func viewEntry(e journal.Entry) EntryView {
	return EntryView{Entry: e, ScriptureDisplay: e.ScriptureDisplay()}
}

// Dashboard is the response of GET /dashboard.
type Dashboard struct {
	Verse  journal.DailyVerse `json:"verse"`
	Stats  journal.Stats      `json:"stats"`
	Recent []EntryView        `json:"recent"`
}

const dashboardRecent = 3

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.ListEntries(r.Context(), userID(r))
	if err != nil {
		respondErr(w, r, "list_entries", err)
		return
	}
	views := make([]EntryView, len(entries))
	for i, e := range entries {
		views[i] = viewEntry(e)
	}
	respondCached(w, r, views, len(views))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := s.repo.GetEntry(r.Context(), userID(r), id)
	if err != nil {
		respondErr(w, r, "get_entry", err)
		return
	}
	respondCached(w, r, viewEntry(e), -1)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, ok := req.draft(w, r)
	if !ok {
		return
	}
	uid := userID(r)
	e, err := s.repo.CreateEntry(r.Context(), uid, d)
	if err != nil {
		respondErr(w, r, "create_entry", err)
		return
	}
	s.hub.Publish(uid, ChangeEvent{Type: EventEntryCreated, ID: e.ID})
	respond(w, http.StatusCreated, viewEntry(e))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req entryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, ok := req.draft(w, r)
	if !ok {
		return
	}
	uid := userID(r)
	e, err := s.repo.UpdateEntry(r.Context(), uid, id, d)
	if err != nil {
		respondErr(w, r, "update_entry", err)
		return
	}
	s.hub.Publish(uid, ChangeEvent{Type: EventEntryUpdated, ID: e.ID})
	respond(w, http.StatusOK, viewEntry(e))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	uid := userID(r)
	if err := s.repo.DeleteEntry(r.Context(), uid, id); err != nil {
		respondErr(w, r, "delete_entry", err)
		return
	}
	s.hub.Publish(uid, ChangeEvent{Type: EventEntryDeleted, ID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	t, err := journal.ParseType(r.URL.Query().Get("type"))
	if err != nil {
		respondErr(w, r, "prompt", err)
		return
	}
	respond(w, http.StatusOK, map[string]string{
		"type":   string(t),
		"prompt": journal.RandomPrompt(t, nil),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.ListEntries(r.Context(), userID(r))
	if err != nil {
		respondErr(w, r, "dashboard", err)
		return
	}
	now := s.now()
	recent := make([]EntryView, 0, dashboardRecent)
	for _, e := range entries[:min(len(entries), dashboardRecent)] {
		recent = append(recent, viewEntry(e))
	}
	respond(w, http.StatusOK, Dashboard{
		Verse:  journal.VerseOfTheDay(now),
		Stats:  journal.Summarize(entries, now),
		Recent: recent,
	})
}
