package api

import (
	"net/http"
	"strings"

	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
	"github.com/FocuswithJustin/JuniperJournal/internal/logging"
)

// unparseableMessage is shown beside reference inputs that fail to parse.
const unparseableMessage = "Could not parse reference. Try format: Book Chapter:Verse"

// maxReferenceText bounds free-text reference input.
const maxReferenceText = 1000

type parseRequest struct {
	Text string `json:"text"`
}

// ParseResult is the response of POST /scripture/parse.
type ParseResult struct {
	Reference scripture.Reference `json:"reference"`
	Kind      string              `json:"kind"`
	Display   string              `json:"display"`
}

// ParseListResult is the response of POST /scripture/parse-list.
type ParseListResult struct {
	References []scripture.Reference `json:"references"`
	Display    string                `json:"display"`
}

type formatRequest struct {
	References []scripture.Reference `json:"references"`
}

// ResolveResult is the response of GET /scripture/resolve.
type ResolveResult struct {
	Query string `json:"query"`
	Book  string `json:"book"`
}

func readReferenceText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req parseRequest
	if !decodeJSON(w, r, &req) {
		return "", false
	}
	if len(req.Text) > maxReferenceText {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Reference text too long")
		return "", false
	}
	return req.Text, true
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	text, ok := readReferenceText(w, r)
	if !ok {
		return
	}
	ref, ok := scripture.Parse(text)
	if !ok {
		logging.ReferenceRejected(r.Context(), text)
		respondError(w, http.StatusUnprocessableEntity, "UNPARSEABLE_REFERENCE", unparseableMessage)
		return
	}
	respond(w, http.StatusOK, ParseResult{
		Reference: ref,
		Kind:      ref.Kind().String(),
		Display:   scripture.Format(ref),
	})
}

func (s *Server) handleParseList(w http.ResponseWriter, r *http.Request) {
	text, ok := readReferenceText(w, r)
	if !ok {
		return
	}
	refs, ok := scripture.ParseList(text)
	if !ok {
		logging.ReferenceRejected(r.Context(), text)
		respondError(w, http.StatusUnprocessableEntity, "UNPARSEABLE_REFERENCE", unparseableMessage)
		return
	}
	respond(w, http.StatusOK, ParseListResult{
		References: refs,
		Display:    scripture.FormatMany(refs),
	})
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.References) == 0 {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "At least one reference is required")
		return
	}
	respond(w, http.StatusOK, map[string]string{"display": scripture.FormatMany(req.References)})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	books := scripture.Catalog()
	respondList(w, books, len(books))
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	book, ok := scripture.Resolve(q)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No book matches "+strings.TrimSpace(q))
		return
	}
	respond(w, http.StatusOK, ResolveResult{Query: q, Book: book})
}
