package model

import (
	"strings"
	"time"
)

// DateLayout is the layout of an entry's natural key.
const DateLayout = "2006-01-02"

// Entry is one daily standup. Date is the natural key and never changes
// once the entry exists on the server.
type Entry struct {
	Date              string     `json:"date"`
	Yesterday         string     `json:"yesterday"`
	Today             string     `json:"today"`
	Blockers          string     `json:"blockers"`
	IsBlockerResolved bool       `json:"isBlockerResolved"`
	Tags              []string   `json:"tags"`
	Mood              int        `json:"mood"`
	Productivity      int        `json:"productivity"`
	IsHighlight       bool       `json:"isHighlight"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

// Key returns the identity used to match entries across operations.
func (e *Entry) Key() string {
	if e == nil {
		return ""
	}
	return e.Date
}

// HasBlocker reports whether the entry lists an unresolved blocker.
func (e *Entry) HasBlocker() bool {
	return strings.TrimSpace(e.Blockers) != "" && !e.IsBlockerResolved
}

// ListFilter narrows listEntries. Zero values mean "no constraint".
type ListFilter struct {
	From      string
	To        string
	Tag       string
	Highlight bool
}

// IsZero reports whether the filter constrains nothing.
func (f ListFilter) IsZero() bool {
	return f == ListFilter{}
}

// Match applies the filter locally, the way the service does. Dates compare
// lexically since they share DateLayout.
func (f ListFilter) Match(e *Entry) bool {
	switch {
	case e == nil:
		return false
	case f.From != "" && e.Date < f.From:
		return false
	case f.To != "" && e.Date > f.To:
		return false
	case f.Highlight && !e.IsHighlight:
		return false
	}
	if f.Tag == "" {
		return true
	}
	tag := strings.ToLower(strings.TrimSpace(f.Tag))
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// NormalizeTags lowercases and trims tags, dropping empties and duplicates
// while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitTags parses a comma-separated tag list.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}
