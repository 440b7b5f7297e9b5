package api

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zeebo/blake3"
)

// etagFor returns a strong ETag over the JSON encoding of v.
func etagFor(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`, nil
}

// notModified sets the ETag header and reports whether the client's
// If-None-Match already matches it, in which case a 304 has been written.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("ETag", etag)
	for _, candidate := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}

// respondCached writes data with an ETag, or 304 when it is unchanged.
func respondCached(w http.ResponseWriter, r *http.Request, data any, total int) {
	etag, err := etagFor(data)
	if err == nil && notModified(w, r, etag) {
		return
	}
	if total >= 0 {
		respondList(w, data, total)
		return
	}
	respond(w, http.StatusOK, data)
}
