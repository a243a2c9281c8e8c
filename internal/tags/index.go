// Package tags suggests tags while the user types. Index counts how often
// each tag occurs in the loaded entries; Engine is the keyboard-driven state
// machine of the suggestion input.
package tags

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Tiliavir/standup/internal/model"
)

const (
	// TopLimit caps the suggestions shown for an empty query.
	TopLimit = 5
	// MatchLimit caps the suggestions shown while filtering.
	MatchLimit = 10
)

// Index maps a tag to its number of occurrences.
type Index map[string]int

// BuildIndex counts the tags of entries. Entries are only read.
func BuildIndex(entries []*model.Entry) Index {
	ix := make(Index)
	for _, e := range entries {
		if e == nil {
			continue
		}
		for _, t := range model.NormalizeTags(e.Tags) {
			ix[t]++
		}
	}
	return ix
}

// Top returns the n most frequent tags not in exclude.
func (ix Index) Top(n int, exclude []string) []string {
	return ix.rank(n, exclude, func(string) bool { return true })
}

// Match returns up to n tags containing query, case-insensitively, that
// are not in exclude.
func (ix Index) Match(query string, n int, exclude []string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	return ix.rank(n, exclude, func(tag string) bool {
		return strings.Contains(tag, q)
	})
}

// Counts returns every tag with its count, most frequent first.
func (ix Index) Counts() []model.TagCount {
	out := make([]model.TagCount, 0, len(ix))
	for tag, n := range ix {
		out = append(out, model.TagCount{Tag: tag, Count: n})
	}
	slices.SortFunc(out, byFrequency)
	return out
}

func (ix Index) rank(n int, exclude []string, keep func(string) bool) []string {
	rows := make([]model.TagCount, 0, len(ix))
	for tag, count := range ix {
		if slices.Contains(exclude, tag) || !keep(tag) {
			continue
		}
		rows = append(rows, model.TagCount{Tag: tag, Count: count})
	}
	slices.SortFunc(rows, byFrequency)
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Tag
	}
	return out
}

// byFrequency orders by count descending, then alphabetically.
func byFrequency(a, b model.TagCount) int {
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	return strings.Compare(a.Tag, b.Tag)
}
