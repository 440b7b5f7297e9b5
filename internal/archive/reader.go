package archive

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/internal/validation"
)

// Reader wraps a tar.Reader over a decompressed backup stream.
type Reader struct {
	*tar.Reader
	closers []io.Closer
}

// NewReader decompresses r with codec c.
func NewReader(r io.Reader, c Compression) (*Reader, error) {
	switch c {
	case XZ:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		return &Reader{Reader: tar.NewReader(xzr)}, nil
	case Gzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return &Reader{Reader: tar.NewReader(gzr), closers: []io.Closer{gzr}}, nil
	}
	return nil, errors.NewUnsupported("compression", fmt.Sprint(c))
}

// Open opens a backup file, detecting compression from its suffix.
func Open(path string) (*Reader, error) {
	c, err := CompressionFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	r, err := NewReader(f, c)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closers = append(r.closers, f)
	return r, nil
}

// Close releases the decompressor and underlying file, if any.
func (r *Reader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Visitor is called for each member. Return true to stop iteration.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks the members in stream order.
func (r *Reader) Iterate(visitor Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		stop, err := visitor(header, r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// Decode reads a full backup from the stream. Both data members must carry
// a manifest checksum, and it must match.
func (r *Reader) Decode() (Backup, error) {
	members := make(map[string][]byte, 3)
	err := r.Iterate(func(h *tar.Header, content io.Reader) (bool, error) {
		if h.Typeflag != tar.TypeReg {
			return false, nil
		}
		switch h.Name {
		case ManifestFile, JournalFile, ReadingsFile:
		default:
			return false, nil
		}
		if h.Size > validation.MaxBackupSize {
			return true, &errors.ValidationError{Field: h.Name, Message: "member exceeds size limit"}
		}
		data, err := io.ReadAll(io.LimitReader(content, validation.MaxBackupSize))
		if err != nil {
			return true, fmt.Errorf("read %s: %w", h.Name, err)
		}
		members[h.Name] = data
		return false, nil
	})
	if err != nil {
		return Backup{}, err
	}

	var b Backup
	raw, ok := members[ManifestFile]
	if !ok {
		return Backup{}, errors.NewParse("backup", "", "missing "+ManifestFile)
	}
	if err := json.Unmarshal(raw, &b.Manifest); err != nil {
		return Backup{}, &errors.ParseError{Format: "manifest", Message: err.Error(), Err: err}
	}
	if b.Manifest.Version != FormatVersion {
		return Backup{}, errors.NewUnsupported("backup version", fmt.Sprint(b.Manifest.Version))
	}

	for name, dst := range map[string]any{JournalFile: &b.Entries, ReadingsFile: &b.Readings} {
		data, ok := members[name]
		if !ok {
			return Backup{}, errors.NewParse("backup", "", "missing "+name)
		}
		switch want := b.Manifest.Checksums[name]; {
		case want == "":
			return Backup{}, errors.NewParse("backup", name, "manifest has no checksum")
		case want != Checksum(data):
			return Backup{}, errors.NewParse("backup", name, "checksum mismatch")
		}
		if err := json.Unmarshal(data, dst); err != nil {
			return Backup{}, &errors.ParseError{Format: "backup", Path: name, Message: err.Error(), Err: err}
		}
	}
	return b, nil
}

// ReadFile opens and decodes the backup at path.
func ReadFile(path string) (Backup, error) {
	r, err := Open(path)
	if err != nil {
		return Backup{}, err
	}
	defer r.Close()
	return r.Decode()
}
