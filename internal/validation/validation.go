// Package validation checks user-supplied values before they reach the
// store: text limits, identifiers, calendar dates and file paths.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	coreerrors "github.com/FocuswithJustin/JuniperJournal/core/errors"
)

// Limits on stored records.
const (
	MaxTitleLength    = 200
	MaxContentLength  = 100_000
	MaxReferences     = 50
	MaxTags           = 20
	MaxTagLength      = 40
	MaxPathLength     = 4096
	MaxFilenameLength = 255
	// MaxBackupSize bounds a single decompressed backup member (64 MB).
	MaxBackupSize = 64 << 20
)

// DateLayout is the calendar-date format used for reading dates.
const DateLayout = "2006-01-02"

// Path errors.
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long")
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrInvalidFilename  = errors.New("invalid filename")
)

// Text checks that s is valid UTF-8 of at most max runes. Required text
// must be non-blank.
func Text(field, s string, max int, required bool) error {
	if !utf8.ValidString(s) {
		return coreerrors.NewValidation(field, "must be valid UTF-8")
	}
	if required && strings.TrimSpace(s) == "" {
		return coreerrors.NewValidation(field, "is required")
	}
	if n := utf8.RuneCountInString(s); n > max {
		return &coreerrors.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters (got %d)", max, n),
		}
	}
	return nil
}

// ID checks that id is a UUID as issued by the store.
func ID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &coreerrors.ValidationError{Field: "id", Value: id, Message: "must be a UUID", Err: coreerrors.ErrInvalidInput}
	}
	return nil
}

// Date parses a YYYY-MM-DD calendar date.
func Date(field, s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &coreerrors.ValidationError{Field: field, Value: s, Message: "must be a date in YYYY-MM-DD form"}
	}
	return d, nil
}

// Tags trims, drops blanks and de-duplicates tags, keeping first-seen
// order, then enforces tag limits.
func Tags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		if err := Text("tags", tag, MaxTagLength, true); err != nil {
			return nil, err
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) > MaxTags {
		return nil, coreerrors.NewValidation("tags", fmt.Sprintf("at most %d tags allowed", MaxTags))
	}
	return out, nil
}

// Path rejects empty, oversized or control-character paths and paths that
// climb out of the working directory.
func Path(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	for _, r := range path {
		if r == 0 || unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	if !filepath.IsAbs(path) {
		clean := filepath.Clean(path)
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return ErrPathTraversal
		}
	}
	return nil
}

// Filename checks a single path component, e.g. a backup download name.
func Filename(name string) error {
	switch {
	case name == "" || name == "." || name == "..":
		return ErrInvalidFilename
	case len(name) > MaxFilenameLength:
		return fmt.Errorf("%w: too long", ErrInvalidFilename)
	case strings.ContainsAny(name, "/\\"):
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	case strings.HasPrefix(name, "-"):
		return fmt.Errorf("%w: filename cannot start with hyphen", ErrInvalidFilename)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}
	return nil
}
