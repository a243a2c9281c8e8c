// Package orchestrator issues remote calls for every entry operation,
// normalizes the responses and dispatches the resulting transitions into a
// store.Container.
//
// Writes may be followed by re-reads (a refetch-after-write policy) so that
// list-level data derived by the server stays consistent without merging
// responses by hand. By default only toggleHighlight re-reads.
package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Tiliavir/standup/internal/api"
	"github.com/Tiliavir/standup/internal/envelope"
	"github.com/Tiliavir/standup/internal/model"
	"github.com/Tiliavir/standup/internal/store"
)

// Service is the remote standup service. Read and write calls return the
// raw body; the orchestrator unwraps it.
type Service interface {
	ListEntries(ctx context.Context, filter model.ListFilter) (json.RawMessage, error)
	GetEntry(ctx context.Context, date string) (json.RawMessage, error)
	CreateEntry(ctx context.Context, p model.EntryPayload) (json.RawMessage, error)
	UpdateEntry(ctx context.Context, date string, p model.EntryPayload) (json.RawMessage, error)
	DeleteEntry(ctx context.Context, date string) error
	ToggleHighlight(ctx context.Context, date string) (json.RawMessage, error)
	SearchEntries(ctx context.Context, keyword string) (json.RawMessage, error)
	GetStats(ctx context.Context) (json.RawMessage, error)
}

// Refetch says which reads follow a successful write.
type Refetch struct {
	// Focused re-reads the focused entry when it is the one written.
	Focused bool
	// List re-reads the whole collection with the last used filter.
	List bool
}

// Policy maps write families to their refetch behavior. Entries for read
// families are ignored.
type Policy map[store.Op]Refetch

// DefaultPolicy re-reads after toggleHighlight only: the server owns the
// highlight flag and the counts derived from it.
func DefaultPolicy() Policy {
	return Policy{
		store.OpToggleHighlight: {Focused: true, List: true},
	}
}

// Completion reports the outcome of one invocation.
type Completion struct {
	Op    store.Op
	Seq   uint64
	Key   string
	Entry *model.Entry
	Err   string
	// Stale is set when a newer request superseded this one and its
	// response was not applied.
	Stale bool
}

// OK reports whether the remote call succeeded.
func (c Completion) OK() bool { return c.Err == "" }

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	svc    Service
	store  *store.Container
	policy Policy
	log    *slog.Logger

	mu         sync.Mutex
	lastFilter model.ListFilter
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRefetch sets the refetch behavior of one write family. Read families
// are ignored.
func WithRefetch(op store.Op, r Refetch) Option {
	return func(o *Orchestrator) {
		if op.IsWrite() {
			o.policy[op] = r
		}
	}
}

// WithPolicy replaces the whole refetch policy. An empty policy disables
// every refetch.
func WithPolicy(p Policy) Option {
	return func(o *Orchestrator) {
		o.policy = make(Policy, len(p))
		for op, r := range p {
			if op.IsWrite() {
				o.policy[op] = r
			}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New wires svc to c.
func New(svc Service, c *store.Container, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		svc:    svc,
		store:  c,
		policy: DefaultPolicy(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the container the orchestrator dispatches into.
func (o *Orchestrator) Store() *store.Container { return o.store }

// FetchAll replaces the collection with the entries matching filter.
func (o *Orchestrator) FetchAll(ctx context.Context, filter model.ListFilter) Completion {
	o.mu.Lock()
	o.lastFilter = filter
	o.mu.Unlock()

	return o.run(ctx, store.OpFetchAll, "", func(a *store.Action) error {
		raw, err := o.svc.ListEntries(ctx, filter)
		if err != nil {
			return err
		}
		list, err := envelope.Entries(raw)
		if err != nil {
			return err
		}
		a.Entries = pointers(list.Value)
		a.Filter = filter
		return nil
	})
}

// FetchOne focuses the entry for date.
func (o *Orchestrator) FetchOne(ctx context.Context, date string) Completion {
	return o.run(ctx, store.OpFetchOne, date, func(a *store.Action) error {
		raw, err := o.svc.GetEntry(ctx, date)
		if err != nil {
			return err
		}
		return decodeEntry(raw, a)
	})
}

// Create submits a new entry and prepends the stored result.
func (o *Orchestrator) Create(ctx context.Context, p model.EntryPayload) Completion {
	return o.run(ctx, store.OpCreate, p.Date, func(a *store.Action) error {
		if err := p.Validate(true); err != nil {
			return err
		}
		raw, err := o.svc.CreateEntry(ctx, p)
		if err != nil {
			return err
		}
		return decodeEntry(raw, a)
	})
}

// Update applies a partial update to date.
func (o *Orchestrator) Update(ctx context.Context, date string, p model.EntryPayload) Completion {
	return o.run(ctx, store.OpUpdate, date, func(a *store.Action) error {
		if err := model.ValidateDate(date); err != nil {
			return err
		}
		if err := p.Validate(false); err != nil {
			return err
		}
		raw, err := o.svc.UpdateEntry(ctx, date, p)
		if err != nil {
			return err
		}
		return decodeEntry(raw, a)
	})
}

// Delete removes the entry for date.
func (o *Orchestrator) Delete(ctx context.Context, date string) Completion {
	return o.run(ctx, store.OpDelete, date, func(a *store.Action) error {
		return o.svc.DeleteEntry(ctx, date)
	})
}

// ToggleHighlight flips the highlight flag of date.
func (o *Orchestrator) ToggleHighlight(ctx context.Context, date string) Completion {
	return o.run(ctx, store.OpToggleHighlight, date, func(a *store.Action) error {
		raw, err := o.svc.ToggleHighlight(ctx, date)
		if err != nil {
			return err
		}
		return decodeEntry(raw, a)
	})
}

// Search stores the entries matching keyword as the search results.
func (o *Orchestrator) Search(ctx context.Context, keyword string) Completion {
	return o.run(ctx, store.OpSearch, "", func(a *store.Action) error {
		raw, err := o.svc.SearchEntries(ctx, keyword)
		if err != nil {
			return err
		}
		list, err := envelope.Entries(raw)
		if err != nil {
			return err
		}
		a.Query = keyword
		a.Entries = pointers(list.Value)
		return nil
	})
}

// FetchStats reads the aggregate summary.
func (o *Orchestrator) FetchStats(ctx context.Context) Completion {
	return o.run(ctx, store.OpStats, "", func(a *store.Action) error {
		raw, err := o.svc.GetStats(ctx)
		if err != nil {
			return err
		}
		stats, err := envelope.Stats(raw)
		if err != nil {
			return err
		}
		a.Stats = &stats.Value
		return nil
	})
}

// run drives one operation through request, call and success/failure, then
// applies the refetch policy. call fills the success payload.
func (o *Orchestrator) run(ctx context.Context, op store.Op, key string, call func(a *store.Action) error) Completion {
	seq := o.store.Begin(op, key)
	log := o.log.With("op", string(op), "seq", seq)
	if key != "" {
		log = log.With("key", key)
	}
	log.Debug("operation started")

	a := store.Action{Op: op, Phase: store.PhaseSuccess, Seq: seq, Key: key}
	if err := call(&a); err != nil {
		msg := api.Message(err)
		_, stale := o.store.Finish(store.Action{Op: op, Phase: store.PhaseFailure, Seq: seq, Key: key, Err: msg})
		log.Warn("operation failed", "error", err, "stale", stale)
		return Completion{Op: op, Seq: seq, Key: key, Err: msg, Stale: stale}
	}

	next, stale := o.store.Finish(a)
	done := Completion{Op: op, Seq: seq, Key: key, Entry: a.Entry, Stale: stale}
	if a.Entry != nil {
		done.Key = a.Entry.Date
	}
	if stale {
		log.Info("stale response discarded")
		return done
	}
	if next.FailedOp == op && next.Error != "" {
		// The container rejected the payload.
		done.Err = next.Error
		log.Warn("operation rejected", "error", next.Error)
		return done
	}
	log.Debug("operation succeeded")

	o.refetch(ctx, op, done.Key, next)
	return done
}

// refetch runs the reads the policy asks for after op succeeded on key.
// Their outcomes go through the normal failure channel and never alter the
// completion of the write that triggered them.
func (o *Orchestrator) refetch(ctx context.Context, op store.Op, key string, s store.State) {
	r, ok := o.policy[op]
	if !ok || !op.IsWrite() {
		return
	}
	if r.Focused && op != store.OpDelete && key != "" && s.Focused != nil && s.Focused.Date == key {
		o.FetchOne(ctx, key)
	}
	if r.List {
		o.mu.Lock()
		filter := o.lastFilter
		o.mu.Unlock()
		o.FetchAll(ctx, filter)
	}
}

func decodeEntry(raw json.RawMessage, a *store.Action) error {
	d, err := envelope.Entry(raw)
	if err != nil {
		return err
	}
	e := d.Value
	a.Entry = &e
	return nil
}

func pointers(list []model.Entry) []*model.Entry {
	out := make([]*model.Entry, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out
}
