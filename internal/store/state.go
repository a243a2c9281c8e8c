// Package store holds the canonical in-memory entry collection for one
// session. State only changes through Reduce, which implements the fixed
// transition table for every operation family.
package store

import (
	"maps"

	"github.com/Tiliavir/standup/internal/envelope"
	"github.com/Tiliavir/standup/internal/model"
)

// Op identifies an operation family.
type Op string

const (
	OpFetchAll        Op = "fetchAll"
	OpFetchOne        Op = "fetchOne"
	OpCreate          Op = "create"
	OpUpdate          Op = "update"
	OpDelete          Op = "delete"
	OpToggleHighlight Op = "toggleHighlight"
	OpSearch          Op = "search"
	OpStats           Op = "stats"
)

// Local transitions that never reach the remote service.
const (
	OpClearFocus     Op = "clearFocus"
	OpConsumeSuccess Op = "consumeSuccess"
)

// Ops lists every remote operation family.
var Ops = []Op{OpFetchAll, OpFetchOne, OpCreate, OpUpdate, OpDelete, OpToggleHighlight, OpSearch, OpStats}

// ParseOp resolves a family name such as "toggleHighlight".
func ParseOp(s string) (Op, bool) {
	for _, op := range Ops {
		if string(op) == s {
			return op, true
		}
	}
	return "", false
}

// IsWrite reports whether op changes an entry on the service.
func (op Op) IsWrite() bool {
	switch op {
	case OpCreate, OpUpdate, OpDelete, OpToggleHighlight:
		return true
	}
	return false
}

// Phase is the step of an operation an action reports.
type Phase int

const (
	PhaseRequest Phase = iota
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseRequest:
		return "request"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Action is one transition. Only the payload fields relevant to Op are read.
type Action struct {
	Op    Op
	Phase Phase
	Seq   uint64

	Entry   *model.Entry     // fetchOne, create, update, toggleHighlight
	Entries []*model.Entry   // fetchAll, search
	Filter  model.ListFilter // fetchAll
	Key     string           // delete; for writes also the target of the request
	Query   string           // search
	Stats   *model.Stats     // stats

	Err   string // failure message
	Stale bool   // set by Container when a newer request superseded this one
}

// State is an immutable snapshot. Slices and pointers are shared between
// snapshots and must not be modified.
type State struct {
	Entries []*model.Entry
	Focused *model.Entry

	Pending  map[Op]int
	Error    string
	FailedOp Op
	Success  bool

	Query         string
	SearchResults []*model.Entry
	Stats         *model.Stats
}

// Loading reports whether any operation is in flight.
func (s State) Loading() bool {
	for _, n := range s.Pending {
		if n > 0 {
			return true
		}
	}
	return false
}

// IsLoading reports whether op has a request in flight.
func (s State) IsLoading(op Op) bool {
	return s.Pending[op] > 0
}

// Find returns the entry with the given date, or nil.
func (s State) Find(date string) *model.Entry {
	for _, e := range s.Entries {
		if e.Date == date {
			return e
		}
	}
	return nil
}

// Reduce applies a to s and returns the next state. s is never modified.
func Reduce(s State, a Action) State {
	switch a.Op {
	case OpClearFocus:
		s.Focused = nil
		return s
	case OpConsumeSuccess:
		s.Success = false
		return s
	}

	switch a.Phase {
	case PhaseRequest:
		s.Pending = adjust(s.Pending, a.Op, 1)
		s.Error = ""
		s.FailedOp = ""
		return s
	case PhaseFailure:
		s.Pending = adjust(s.Pending, a.Op, -1)
		if a.Stale {
			return s
		}
		return failed(s, a.Op, a.Err)
	}

	// Success.
	s.Pending = adjust(s.Pending, a.Op, -1)
	if a.Stale {
		return s
	}
	if needsEntity(a.Op) && (a.Entry == nil || a.Entry.Date == "") {
		return failed(s, a.Op, envelope.ErrInvalidResponseFormat.Error()+": entry lacks its date")
	}
	s.Error = ""
	s.FailedOp = ""

	switch a.Op {
	case OpFetchAll:
		s.Entries = a.Entries
	case OpFetchOne:
		s.Focused = a.Entry
	case OpCreate:
		next := make([]*model.Entry, 0, len(s.Entries)+1)
		next = append(next, a.Entry)
		s.Entries = append(next, s.Entries...)
		s.Focused = a.Entry
		s.Success = true
	case OpUpdate:
		s.Entries = replace(s.Entries, a.Entry)
		s.Focused = a.Entry
		s.Success = true
	case OpDelete:
		s.Entries = remove(s.Entries, a.Key)
		if s.Focused != nil && s.Focused.Date == a.Key {
			s.Focused = nil
		}
		s.Success = true
	case OpToggleHighlight:
		s.Entries = replace(s.Entries, a.Entry)
		if s.Focused != nil && s.Focused.Date == a.Entry.Date {
			s.Focused = a.Entry
		}
	case OpSearch:
		s.Query = a.Query
		s.SearchResults = a.Entries
	case OpStats:
		s.Stats = a.Stats
	}
	return s
}

func needsEntity(op Op) bool {
	switch op {
	case OpFetchOne, OpCreate, OpUpdate, OpToggleHighlight:
		return true
	}
	return false
}

func failed(s State, op Op, msg string) State {
	if msg == "" {
		msg = string(op) + " failed"
	}
	s.Error = msg
	s.FailedOp = op
	return s
}

// adjust returns a copy of pending with op moved by delta, never below zero.
func adjust(pending map[Op]int, op Op, delta int) map[Op]int {
	next := maps.Clone(pending)
	if next == nil {
		next = make(map[Op]int, 1)
	}
	n := next[op] + delta
	if n <= 0 {
		delete(next, op)
	} else {
		next[op] = n
	}
	return next
}

// replace swaps the element sharing e's key. When nothing matches the
// original slice is returned unchanged.
func replace(entries []*model.Entry, e *model.Entry) []*model.Entry {
	idx := -1
	for i, cur := range entries {
		if cur.Date == e.Date {
			idx = i
			break
		}
	}
	if idx < 0 {
		return entries
	}
	next := make([]*model.Entry, len(entries))
	copy(next, entries)
	next[idx] = e
	return next
}

func remove(entries []*model.Entry, key string) []*model.Entry {
	next := make([]*model.Entry, 0, len(entries))
	for _, cur := range entries {
		if cur.Date != key {
			next = append(next, cur)
		}
	}
	return next
}
