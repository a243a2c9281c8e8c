package store

import (
	"fmt"
	"sync"

	"github.com/Tiliavir/standup/internal/model"
)

// StalePolicy decides what happens to a response whose request was
// superseded by a newer one. Reads are superseded by any newer read of the
// same family; writes only by a newer write of the same family to the same
// date.
type StalePolicy int

const (
	// DiscardStale drops superseded responses; only their pending slot is released.
	DiscardStale StalePolicy = iota
	// LastWriteWins applies responses in arrival order, newest or not.
	LastWriteWins
)

func (p StalePolicy) String() string {
	if p == LastWriteWins {
		return "last-write-wins"
	}
	return "discard-stale"
}

// ParseStalePolicy accepts "discard-stale" or "last-write-wins".
func ParseStalePolicy(s string) (StalePolicy, error) {
	switch s {
	case "", "discard-stale":
		return DiscardStale, nil
	case "last-write-wins":
		return LastWriteWins, nil
	}
	return DiscardStale, fmt.Errorf("unknown stale policy %q (want discard-stale or last-write-wins)", s)
}

// Listener observes every applied transition in dispatch order.
// Listeners run synchronously and must not dispatch.
type Listener func(prev, next State, a Action)

// Container owns the session's State. It is safe for concurrent use.
type Container struct {
	dispatchMu sync.Mutex // serializes reduce + notify

	mu        sync.RWMutex
	state     State
	seq       map[Op]uint64
	latest    map[target]uint64
	listeners map[int]Listener
	nextID    int

	policy StalePolicy
}

// target is the scope a generation counts in.
type target struct {
	op  Op
	key string
}

func targetOf(op Op, key string) target {
	if !op.IsWrite() {
		key = ""
	}
	return target{op: op, key: key}
}

// Option configures a Container.
type Option func(*Container)

// WithStalePolicy overrides the default DiscardStale.
func WithStalePolicy(p StalePolicy) Option {
	return func(c *Container) { c.policy = p }
}

// WithEntries seeds the collection, e.g. from the offline cache.
func WithEntries(entries []*model.Entry) Option {
	return func(c *Container) { c.state.Entries = entries }
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		seq:       make(map[Op]uint64),
		latest:    make(map[target]uint64),
		listeners: make(map[int]Listener),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Policy returns the stale policy in effect.
func (c *Container) Policy() StalePolicy { return c.policy }

// State returns the current snapshot.
func (c *Container) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers l and returns a function that removes it.
func (c *Container) Subscribe(l Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Begin issues the next generation for op and dispatches its request. key
// is the date a write targets; reads ignore it. The matching Finish must
// carry the same key.
func (c *Container) Begin(op Op, key string) uint64 {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	c.seq[op]++
	seq := c.seq[op]
	c.latest[targetOf(op, key)] = seq
	c.mu.Unlock()

	c.apply(Action{Op: op, Phase: PhaseRequest, Seq: seq})
	return seq
}

// Finish dispatches the success or failure of a request started with Begin.
// Under DiscardStale a superseded response is marked Stale before reducing.
func (c *Container) Finish(a Action) (State, bool) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.RLock()
	latest := c.latest[targetOf(a.Op, a.Key)]
	c.mu.RUnlock()
	if c.policy == DiscardStale && a.Seq != 0 && a.Seq < latest {
		a.Stale = true
	}
	return c.apply(a), a.Stale
}

// Dispatch applies a as-is.
func (c *Container) Dispatch(a Action) State {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	return c.apply(a)
}

// ClearFocus drops the focused entry.
func (c *Container) ClearFocus() {
	c.Dispatch(Action{Op: OpClearFocus, Phase: PhaseSuccess})
}

// ConsumeSuccess reports the one-shot success flag and resets it.
func (c *Container) ConsumeSuccess() bool {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	if !c.State().Success {
		return false
	}
	c.apply(Action{Op: OpConsumeSuccess, Phase: PhaseSuccess})
	return true
}

// apply must be called with dispatchMu held.
func (c *Container) apply(a Action) State {
	c.mu.Lock()
	prev := c.state
	next := Reduce(prev, a)
	c.state = next
	ls := make([]Listener, 0, len(c.listeners))
	for id := 0; id < c.nextID; id++ {
		if l, ok := c.listeners[id]; ok {
			ls = append(ls, l)
		}
	}
	c.mu.Unlock()

	for _, l := range ls {
		l(prev, next, a)
	}
	return next
}
