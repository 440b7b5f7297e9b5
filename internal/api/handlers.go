package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/core/sqlite"
	"github.com/FocuswithJustin/JuniperJournal/internal/logging"
	"github.com/FocuswithJustin/JuniperJournal/internal/validation"
)

// Version is reported by / and /health.
const Version = "0.3.0"

// maxBodyBytes caps JSON request bodies. Entry content is limited to
// 100 000 characters, which fits with room for the other fields.
const maxBodyBytes = 1 << 20

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
	Driver   string `json:"driver"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"name":    "Juniper Journal API",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"POST /scripture/parse",
			"POST /scripture/parse-list",
			"POST /scripture/format",
			"GET /scripture/books",
			"GET /scripture/resolve?q=",
			"GET /journal",
			"POST /journal",
			"GET /journal/{id}",
			"PUT /journal/{id}",
			"DELETE /journal/{id}",
			"GET /journal/prompt?type=",
			"GET /dashboard",
			"GET /readings",
			"POST /readings",
			"GET /readings/{id}",
			"PUT /readings/{id}",
			"DELETE /readings/{id}",
			"GET /readings/heatmap?days=",
			"GET /readings/coverage",
			"GET /readings/summary",
			"GET /export",
			"POST /import",
			"WS /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := HealthInfo{
		Status:   "healthy",
		Version:  Version,
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Database: "ok",
		Driver:   sqlite.DriverType(),
	}
	if err := s.repo.Ping(r.Context()); err != nil {
		logging.StoreError(r.Context(), "ping", err)
		info.Status = "degraded"
		info.Database = "unavailable"
		respond(w, http.StatusServiceUnavailable, info)
		return
	}
	respond(w, http.StatusOK, info)
}

func respond(w http.ResponseWriter, status int, data any) {
	respondMeta(w, status, data, &APIMeta{})
}

func respondList(w http.ResponseWriter, data any, total int) {
	respondMeta(w, http.StatusOK, data, &APIMeta{Total: total})
}

func respondMeta(w http.ResponseWriter, status int, data any, meta *APIMeta) {
	meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	writeJSON(w, status, APIResponse{Success: true, Data: data, Meta: meta})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondErr maps a domain error onto an HTTP status. Internal errors are
// logged and reported without detail.
func respondErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := errors.Code(err)
	switch code {
	case "NOT_FOUND":
		respondError(w, http.StatusNotFound, code, err.Error())
	case "INVALID_INPUT":
		respondError(w, http.StatusBadRequest, code, err.Error())
	case "ALREADY_EXISTS":
		respondError(w, http.StatusConflict, code, err.Error())
	case "UNAUTHORIZED":
		respondError(w, http.StatusForbidden, code, err.Error())
	case "UNSUPPORTED":
		respondError(w, http.StatusUnsupportedMediaType, code, err.Error())
	default:
		logging.StoreError(r.Context(), op, err)
		respondError(w, http.StatusInternalServerError, code, "Internal server error")
	}
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var msg string
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body too large")
			return false
		case err == io.EOF:
			msg = "Request body is empty"
		default:
			msg = fmt.Sprintf("Invalid JSON body: %v", err)
		}
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", msg)
		return false
	}
	return true
}

// pathID returns the {id} path segment, answering 400 when it is not a
// store-issued UUID.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if err := validation.ID(id); err != nil {
		respondErr(w, r, "path_id", err)
		return "", false
	}
	return id, true
}
