package model

import (
	"fmt"
	"time"
)

// MaxRating is the upper bound of mood and productivity.
const MaxRating = 5

// EntryPayload is the body of create and update requests. Nil fields are
// left out of the JSON so an update only touches what was set.
type EntryPayload struct {
	Date              string   `json:"date,omitempty"`
	Yesterday         *string  `json:"yesterday,omitempty"`
	Today             *string  `json:"today,omitempty"`
	Blockers          *string  `json:"blockers,omitempty"`
	IsBlockerResolved *bool    `json:"isBlockerResolved,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Mood              *int     `json:"mood,omitempty"`
	Productivity      *int     `json:"productivity,omitempty"`
}

// NewRating returns nil for 0 (unrated) so the value is never submitted.
func NewRating(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

// PayloadFromEntry builds a full create payload from an entry.
func PayloadFromEntry(e Entry) EntryPayload {
	resolved := e.IsBlockerResolved
	return EntryPayload{
		Date:              e.Date,
		Yesterday:         &e.Yesterday,
		Today:             &e.Today,
		Blockers:          &e.Blockers,
		IsBlockerResolved: &resolved,
		Tags:              NormalizeTags(e.Tags),
		Mood:              NewRating(e.Mood),
		Productivity:      NewRating(e.Productivity),
	}
}

// Prepare normalizes tags and strips unrated values before submission.
func (p EntryPayload) Prepare() EntryPayload {
	if p.Tags != nil {
		p.Tags = NormalizeTags(p.Tags)
	}
	if p.Mood != nil && *p.Mood == 0 {
		p.Mood = nil
	}
	if p.Productivity != nil && *p.Productivity == 0 {
		p.Productivity = nil
	}
	return p
}

// ValidationError reports input rejected before any remote call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateDate checks that s is a calendar date in DateLayout.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return nil
}

// Validate checks local constraints. requireDate is set for creates.
func (p EntryPayload) Validate(requireDate bool) error {
	if requireDate || p.Date != "" {
		if err := ValidateDate(p.Date); err != nil {
			return err
		}
	}
	ratings := []struct {
		name string
		v    *int
	}{{"mood", p.Mood}, {"productivity", p.Productivity}}
	for _, r := range ratings {
		if r.v != nil && (*r.v < 0 || *r.v > MaxRating) {
			return &ValidationError{Field: r.name, Reason: fmt.Sprintf("%d is outside 0-%d", *r.v, MaxRating)}
		}
	}
	return nil
}
