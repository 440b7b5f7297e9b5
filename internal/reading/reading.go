// Package reading models the daily Bible-reading log and the derived
// views shown to the user: the activity heatmap, the current streak and
// per-book chapter coverage.
package reading

import (
	"fmt"
	"time"

	"github.com/FocuswithJustin/JuniperJournal/core/errors"
	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
	"github.com/FocuswithJustin/JuniperJournal/internal/validation"
)

// Reading records the passages a user read on one calendar day.
type Reading struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id"`
	Date      string                `json:"reading_date"`
	Scripture []scripture.Reference `json:"scripture"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Draft holds the user-editable fields of a reading.
type Draft struct {
	Date      string                `json:"reading_date"`
	Scripture []scripture.Reference `json:"scripture"`
}

// Normalize validates d and returns a copy safe to store.
func (d Draft) Normalize() (Draft, error) {
	if _, err := validation.Date("reading_date", d.Date); err != nil {
		return Draft{}, err
	}
	if len(d.Scripture) == 0 {
		return Draft{}, errors.NewValidation("scripture", "at least one reference is required")
	}
	if len(d.Scripture) > validation.MaxReferences {
		return Draft{}, errors.NewValidation("scripture", fmt.Sprintf("at most %d references allowed", validation.MaxReferences))
	}
	refs := make([]scripture.Reference, len(d.Scripture))
	for i, ref := range d.Scripture {
		if ref.IsZero() {
			return Draft{}, errors.NewValidation(fmt.Sprintf("scripture[%d]", i), "empty reference")
		}
		refs[i] = ref
	}
	return Draft{Date: d.Date, Scripture: refs}, nil
}
