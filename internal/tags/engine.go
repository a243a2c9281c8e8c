package tags

import (
	"slices"
	"strings"
)

// Mode is the visibility state of the suggestion list.
type Mode int

const (
	// Idle: not focused and nothing typed.
	Idle Mode = iota
	// BrowsingTop: focused with an empty query, showing the top tags.
	BrowsingTop
	// Filtering: showing tags that contain the query.
	Filtering
	// Closed: suggestions hidden after Escape, a commit or a blur.
	Closed
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case BrowsingTop:
		return "browsing-top"
	case Filtering:
		return "filtering"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Engine holds the state of one tag input. It is not safe for concurrent
// use; it belongs to the form that embeds it.
type Engine struct {
	index      Index
	query      string
	selected   []string
	candidates []string
	active     int
	mode       Mode
}

// NewEngine creates an engine over index with the tags already selected by
// the owning form.
func NewEngine(index Index, selected []string) *Engine {
	e := &Engine{index: index}
	for _, t := range selected {
		e.Add(t)
	}
	e.refresh()
	return e
}

// SetCorpus replaces the index, e.g. after the entry collection changed.
func (e *Engine) SetCorpus(index Index) {
	e.index = index
	e.refresh()
	e.clamp()
}

func (e *Engine) Query() string        { return e.query }
func (e *Engine) Mode() Mode           { return e.mode }
func (e *Engine) Active() int          { return e.active }
func (e *Engine) Selected() []string   { return slices.Clone(e.selected) }
func (e *Engine) Candidates() []string { return slices.Clone(e.candidates) }

// Visible reports whether the suggestion list is shown.
func (e *Engine) Visible() bool {
	return e.mode == BrowsingTop || e.mode == Filtering
}

// ActiveCandidate returns the suggestion under the cursor.
func (e *Engine) ActiveCandidate() (string, bool) {
	if !e.Visible() || len(e.candidates) == 0 {
		return "", false
	}
	return e.candidates[e.active], true
}

// Focus opens the suggestion list.
func (e *Engine) Focus() {
	e.open()
}

// Blur hides the list unless focus moved into the list itself.
func (e *Engine) Blur(insideList bool) {
	if insideList {
		return
	}
	if e.query == "" {
		e.mode = Idle
	} else {
		e.mode = Closed
	}
}

// Type sets the query and resets the cursor.
func (e *Engine) Type(query string) {
	e.query = query
	e.active = 0
	e.open()
}

// Down moves the cursor one suggestion down, stopping at the last.
func (e *Engine) Down() {
	if e.Visible() && e.active < len(e.candidates)-1 {
		e.active++
	}
}

// Up moves the cursor one suggestion up, stopping at the first.
func (e *Engine) Up() {
	if e.Visible() && e.active > 0 {
		e.active--
	}
}

// Enter commits the active suggestion, or the trimmed query as a free-form
// tag when no suggestion is shown. It returns the tag it handled.
func (e *Engine) Enter() (string, bool) {
	if tag, ok := e.ActiveCandidate(); ok {
		e.commit(tag)
		return tag, true
	}
	tag := normalize(e.query)
	if tag == "" {
		return "", false
	}
	e.commit(tag)
	return tag, true
}

// Click commits tag as if it were the active suggestion.
func (e *Engine) Click(tag string) bool {
	tag = normalize(tag)
	if tag == "" {
		return false
	}
	e.commit(tag)
	return true
}

// Backspace removes the last rune of the query, or the last selected tag
// when the query is empty. It returns the removed tag, if any.
func (e *Engine) Backspace() (string, bool) {
	if e.query != "" {
		r := []rune(e.query)
		e.Type(string(r[:len(r)-1]))
		return "", false
	}
	if len(e.selected) == 0 {
		return "", false
	}
	last := e.selected[len(e.selected)-1]
	e.selected = e.selected[:len(e.selected)-1]
	e.refresh()
	return last, true
}

// Escape hides the suggestions without committing.
func (e *Engine) Escape() {
	if e.mode != Idle {
		e.mode = Closed
	}
}

// Add appends tag to the selection unless it is already present.
func (e *Engine) Add(tag string) bool {
	tag = normalize(tag)
	if tag == "" || slices.Contains(e.selected, tag) {
		return false
	}
	e.selected = append(slices.Clip(e.selected), tag)
	e.refresh()
	e.clamp()
	return true
}

// Remove drops tag from the selection.
func (e *Engine) Remove(tag string) bool {
	tag = normalize(tag)
	i := slices.Index(e.selected, tag)
	if i < 0 {
		return false
	}
	e.selected = slices.Delete(slices.Clone(e.selected), i, i+1)
	e.refresh()
	e.clamp()
	return true
}

func (e *Engine) commit(tag string) {
	e.Add(tag)
	e.query = ""
	e.active = 0
	e.mode = Closed
	e.refresh()
}

func (e *Engine) open() {
	if strings.TrimSpace(e.query) == "" {
		e.mode = BrowsingTop
	} else {
		e.mode = Filtering
	}
	e.refresh()
	e.clamp()
}

func (e *Engine) refresh() {
	if strings.TrimSpace(e.query) == "" {
		e.candidates = e.index.Top(TopLimit, e.selected)
	} else {
		e.candidates = e.index.Match(e.query, MatchLimit, e.selected)
	}
}

func (e *Engine) clamp() {
	if e.active > len(e.candidates)-1 {
		e.active = len(e.candidates) - 1
	}
	if e.active < 0 {
		e.active = 0
	}
}

func normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
