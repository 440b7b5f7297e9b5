package archive

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/internal/journal"
	"github.com/FocuswithJustin/JuniperJournal/internal/reading"
)

// Write encodes b as a compressed tar stream. The manifest's version,
// counts and checksums are filled in from the records.
func Write(w io.Writer, b Backup, c Compression) error {
	entries := b.Entries
	if entries == nil {
		entries = []journal.Entry{}
	}
	readings := b.Readings
	if readings == nil {
		readings = []reading.Reading{}
	}

	journalJSON, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	readingsJSON, err := json.MarshalIndent(readings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode readings: %w", err)
	}

	m := b.Manifest
	if m.ExportedAt.IsZero() {
		m.ExportedAt = time.Now().UTC()
	}
	m.Version = FormatVersion
	m.Entries = len(entries)
	m.Readings = len(readings)
	m.Checksums = map[string]string{
		JournalFile:  Checksum(journalJSON),
		ReadingsFile: Checksum(readingsJSON),
	}
	manifestJSON, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	var cw io.WriteCloser
	switch c {
	case XZ:
		if cw, err = xz.NewWriter(w); err != nil {
			return fmt.Errorf("xz writer: %w", err)
		}
	case Gzip:
		cw = gzip.NewWriter(w)
	default:
		return errors.NewUnsupported("compression", fmt.Sprint(c))
	}

	tw := tar.NewWriter(cw)
	for _, member := range []struct {
		name string
		data []byte
	}{
		{ManifestFile, manifestJSON},
		{JournalFile, journalJSON},
		{ReadingsFile, readingsJSON},
	} {
		hdr := &tar.Header{
			Name:    member.name,
			Mode:    0o644,
			Size:    int64(len(member.data)),
			ModTime: m.ExportedAt,
			Format:  tar.FormatPAX,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("write %s header: %w", member.name, err)
		}
		if _, err := tw.Write(member.data); err != nil {
			return fmt.Errorf("write %s: %w", member.name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	return cw.Close()
}

// WriteFile writes b to path, choosing compression from the suffix.
// Parent directories are created as needed.
func WriteFile(path string, b Backup) error {
	c, err := CompressionFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewIO("create directory for", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create", path, err)
	}
	if err := Write(f, b, c); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return errors.NewIO("close", path, err)
	}
	return nil
}
