// Package archive reads and writes journal backups: a tar stream holding
// a manifest plus one JSON document per record type, compressed with xz
// or gzip.
package archive

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/internal/journal"
	"github.com/FocuswithJustin/JuniperJournal/internal/reading"
)

// FormatVersion is the backup layout written by this package.
const FormatVersion = 1

// Member names inside the tar stream.
const (
	ManifestFile = "manifest.json"
	JournalFile  = "journal.json"
	ReadingsFile = "readings.json"
)

// Compression selects the stream codec.
type Compression int

const (
	XZ Compression = iota
	Gzip
)

// Extension returns the conventional file suffix.
func (c Compression) Extension() string {
	if c == Gzip {
		return ".tar.gz"
	}
	return ".tar.xz"
}

// CompressionFor picks the codec from a file name suffix.
func CompressionFor(path string) (Compression, error) {
	switch {
	case strings.HasSuffix(path, ".tar.xz"):
		return XZ, nil
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		return Gzip, nil
	}
	return 0, errors.NewUnsupported("backup format", path)
}

// Manifest describes a backup.
type Manifest struct {
	Version    int               `json:"version"`
	UserID     string            `json:"user_id"`
	ExportedAt time.Time         `json:"exported_at"`
	Entries    int               `json:"entries"`
	Readings   int               `json:"readings"`
	Checksums  map[string]string `json:"checksums"` // member name -> BLAKE3 hex
}

// Backup is the full contents of one user's export.
type Backup struct {
	Manifest Manifest          `json:"manifest"`
	Entries  []journal.Entry   `json:"entries"`
	Readings []reading.Reading `json:"readings"`
}

// Checksum returns the hex BLAKE3-256 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
