// Package journal models journal entries: free-form writing that may be
// tagged with Scripture references.
package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
	"github.com/FocuswithJustin/JuniperJournal/internal/validation"
)

// EntryType distinguishes reflections on life from notes on a passage.
type EntryType string

const (
	TypeLife      EntryType = "Life"
	TypeScripture EntryType = "Scripture"
)

// ParseType accepts "Life" or "Scripture" case-insensitively. Empty input
// defaults to Life.
func ParseType(s string) (EntryType, error) {
	switch {
	case s == "" || strings.EqualFold(s, string(TypeLife)):
		return TypeLife, nil
	case strings.EqualFold(s, string(TypeScripture)):
		return TypeScripture, nil
	}
	return "", &errors.ValidationError{Field: "type", Value: s, Message: `must be "Life" or "Scripture"`}
}

// Entry is a stored journal entry.
type Entry struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id"`
	Title     string                `json:"title"`
	Content   string                `json:"content"`
	Type      EntryType             `json:"type"`
	Scripture []scripture.Reference `json:"scripture"`
	Tags      []string              `json:"tags"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// ScriptureDisplay renders the entry's references, e.g. "John 3:16, Romans 8".
func (e Entry) ScriptureDisplay() string {
	return scripture.FormatMany(e.Scripture)
}

// Draft holds the user-editable fields of an entry.
type Draft struct {
	Title     string                `json:"title"`
	Content   string                `json:"content"`
	Type      EntryType             `json:"type"`
	Scripture []scripture.Reference `json:"scripture"`
	Tags      []string              `json:"tags"`
}

// Normalize validates d and returns the cleaned copy that gets stored.
func (d Draft) Normalize() (Draft, error) {
	if err := validation.Text("title", d.Title, validation.MaxTitleLength, true); err != nil {
		return Draft{}, err
	}
	if err := validation.Text("content", d.Content, validation.MaxContentLength, false); err != nil {
		return Draft{}, err
	}
	t, err := ParseType(string(d.Type))
	if err != nil {
		return Draft{}, err
	}
	if len(d.Scripture) > validation.MaxReferences {
		return Draft{}, errors.NewValidation("scripture", fmt.Sprintf("at most %d references allowed", validation.MaxReferences))
	}
	for i, ref := range d.Scripture {
		if ref.IsZero() {
			return Draft{}, errors.NewValidation(fmt.Sprintf("scripture[%d]", i), "empty reference")
		}
	}
	tags, err := validation.Tags(d.Tags)
	if err != nil {
		return Draft{}, err
	}

	refs := make([]scripture.Reference, len(d.Scripture))
	copy(refs, d.Scripture)
	return Draft{
		Title:     d.Title,
		Content:   d.Content,
		Type:      t,
		Scripture: refs,
		Tags:      tags,
	}, nil
}
