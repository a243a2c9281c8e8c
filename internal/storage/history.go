package storage

import (
	"path/filepath"
	"slices"
	"strings"
)

// DefaultHistorySize is used when no positive size is configured.
const DefaultHistorySize = 20

// History is the list of recent search queries, most recent first.
type History struct {
	path string
	size int
}

// HistoryPath returns the history file location under base.
func HistoryPath(base string) string {
	return filepath.Join(base, "history.json")
}

// NewHistory opens the history at path holding at most size queries.
func NewHistory(path string, size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{path: path, size: size}
}

// Load returns the stored queries. A missing file yields an empty list.
func (h *History) Load() ([]string, error) {
	var queries []string
	if err := readJSON(h.path, &queries); err != nil {
		return nil, err
	}
	if queries == nil {
		queries = []string{}
	}
	return queries, nil
}

// Add moves query to the front, dropping older duplicates and anything
// past the size limit, and saves the result.
func (h *History) Add(query string) ([]string, error) {
	query = strings.TrimSpace(query)
	queries, err := h.Load()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return queries, nil
	}
	next := make([]string, 0, len(queries)+1)
	next = append(next, query)
	for _, q := range queries {
		if !strings.EqualFold(q, query) {
			next = append(next, q)
		}
	}
	if len(next) > h.size {
		next = slices.Clip(next[:h.size])
	}
	if err := writeJSON(h.path, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Clear removes every stored query.
func (h *History) Clear() error {
	return writeJSON(h.path, []string{})
}
