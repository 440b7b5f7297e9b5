package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/internal/archive"
	"github.com/FocuswithJustin/JuniperJournal/internal/logging"
	"github.com/FocuswithJustin/JuniperJournal/internal/validation"
)

// ImportResult is the response of POST /import.
type ImportResult struct {
	Entries   int              `json:"entries"`
	Readings  int              `json:"readings"`
	Conflicts []ImportConflict `json:"conflicts,omitempty"`
}

// ImportConflict is a backup record that was skipped because its id
// belongs to another user.
type ImportConflict struct {
	Code     string `json:"code"`
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

func (res *ImportResult) addConflicts(cs []*errors.ConflictError) {
	for _, c := range cs {
		res.Conflicts = append(res.Conflicts, ImportConflict{Code: errors.Code(c), Resource: c.Resource, ID: c.ID})
	}
}

// compressionParam maps ?compression= (or its older alias ?format=) onto
// a codec; xz is the default.
func compressionParam(r *http.Request) (archive.Compression, bool) {
	q := r.URL.Query()
	name := q.Get("compression")
	if name == "" {
		name = q.Get("format")
	}
	switch name {
	case "", "xz", "tar.xz":
		return archive.XZ, true
	case "gz", "gzip", "tar.gz":
		return archive.Gzip, true
	}
	return 0, false
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	c, ok := compressionParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "compression must be xz or gz")
		return
	}
	uid := userID(r)
	entries, err := s.repo.ListEntries(r.Context(), uid)
	if err != nil {
		respondErr(w, r, "export_entries", err)
		return
	}
	readings, err := s.repo.ListReadings(r.Context(), uid)
	if err != nil {
		respondErr(w, r, "export_readings", err)
		return
	}

	now := s.now()
	b := archive.Backup{
		Manifest: archive.Manifest{UserID: uid, ExportedAt: now},
		Entries:  entries,
		Readings: readings,
	}
	var buf bytes.Buffer
	if err := archive.Write(&buf, b, c); err != nil {
		respondErr(w, r, "export_write", err)
		return
	}

	name := fmt.Sprintf("journal-backup-%s%s", now.Format("2006-01-02"), c.Extension())
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// handleImport restores a backup produced by /export into the caller's
// account. Records keep their ids, so importing the same backup twice is
// idempotent.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	c, ok := compressionParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "compression must be xz or gz")
		return
	}
	ar, err := archive.NewReader(http.MaxBytesReader(w, r.Body, validation.MaxBackupSize), c)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Body is not a "+c.Extension()+" backup")
		return
	}
	defer ar.Close()

	b, err := ar.Decode()
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BACKUP", err.Error())
		return
	}

	uid := userID(r)
	entries, err := s.repo.ImportEntries(r.Context(), uid, b.Entries)
	if err != nil {
		respondErr(w, r, "import_entries", err)
		return
	}
	readings, err := s.repo.ImportReadings(r.Context(), uid, b.Readings)
	if err != nil {
		respondErr(w, r, "import_readings", err)
		return
	}
	s.readingsChanged(uid, ChangeEvent{Type: EventImported})

	res := ImportResult{Entries: entries.Written, Readings: readings.Written}
	res.addConflicts(entries.Conflicts)
	res.addConflicts(readings.Conflicts)
	if len(res.Conflicts) > 0 {
		logging.WarnContext(r.Context(), "import skipped records owned by another user", "conflicts", len(res.Conflicts))
	}
	respond(w, http.StatusOK, res)
}
