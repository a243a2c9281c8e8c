package store_test

import (
	"sync"
	"testing"

	"github.com/Tiliavir/standup/internal/model"
	"github.com/Tiliavir/standup/internal/store"
)

func TestContainerDiscardsStaleResponse(t *testing.T) {
	c := store.New()
	first := c.Begin(store.OpFetchAll, "")
	second := c.Begin(store.OpFetchAll, "")

	newer := []*model.Entry{entry("2024-01-06")}
	_, stale := c.Finish(store.Action{Op: store.OpFetchAll, Phase: store.PhaseSuccess, Seq: second, Entries: newer})
	if stale {
		t.Fatal("latest response marked stale")
	}

	older := []*model.Entry{entry("2023-12-31")}
	s, stale := c.Finish(store.Action{Op: store.OpFetchAll, Phase: store.PhaseSuccess, Seq: first, Entries: older})
	if !stale {
		t.Fatal("superseded response not marked stale")
	}
	if len(s.Entries) != 1 || s.Entries[0] != newer[0] {
		t.Error("stale response overwrote newer data")
	}
	if s.Loading() {
		t.Error("pending slot not released by stale response")
	}
}

func TestContainerLastWriteWins(t *testing.T) {
	c := store.New(store.WithStalePolicy(store.LastWriteWins))
	first := c.Begin(store.OpFetchAll, "")
	second := c.Begin(store.OpFetchAll, "")

	c.Finish(store.Action{Op: store.OpFetchAll, Phase: store.PhaseSuccess, Seq: second, Entries: []*model.Entry{entry("2024-01-06")}})
	s, stale := c.Finish(store.Action{Op: store.OpFetchAll, Phase: store.PhaseSuccess, Seq: first, Entries: []*model.Entry{entry("2023-12-31")}})
	if stale {
		t.Error("LastWriteWins marked a response stale")
	}
	if s.Entries[0].Date != "2023-12-31" {
		t.Errorf("Entries[0] = %q, want the last arrival", s.Entries[0].Date)
	}
}

func TestContainerStaleFailureKeepsError(t *testing.T) {
	c := store.New()
	first := c.Begin(store.OpFetchOne, "")
	second := c.Begin(store.OpFetchOne, "")
	c.Finish(store.Action{Op: store.OpFetchOne, Phase: store.PhaseFailure, Seq: second, Err: "current"})
	s, _ := c.Finish(store.Action{Op: store.OpFetchOne, Phase: store.PhaseSuccess, Seq: first, Entry: entry("2024-01-01")})
	if s.Error != "current" {
		t.Errorf("Error = %q, stale success masked the newer failure", s.Error)
	}
	if s.Focused != nil {
		t.Error("stale success focused an entry")
	}
}

func TestGenerationsArePerFamily(t *testing.T) {
	c := store.New()
	all := c.Begin(store.OpFetchAll, "")
	c.Begin(store.OpFetchOne, "")
	if _, stale := c.Finish(store.Action{Op: store.OpFetchAll, Phase: store.PhaseSuccess, Seq: all, Entries: []*model.Entry{}}); stale {
		t.Error("a fetchOne request made fetchAll stale")
	}
}

func TestWriteGenerationsArePerDate(t *testing.T) {
	c := store.New(store.WithEntries([]*model.Entry{entry("2024-01-01"), entry("2024-01-02")}))
	first := c.Begin(store.OpDelete, "2024-01-01")
	second := c.Begin(store.OpDelete, "2024-01-02")
	c.Finish(store.Action{Op: store.OpDelete, Phase: store.PhaseSuccess, Seq: second, Key: "2024-01-02"})

	s, stale := c.Finish(store.Action{Op: store.OpDelete, Phase: store.PhaseSuccess, Seq: first, Key: "2024-01-01"})
	if stale {
		t.Error("delete of another date made this delete stale")
	}
	if len(s.Entries) != 0 {
		t.Errorf("entries left = %d, want 0", len(s.Entries))
	}

	// Same date: the older toggle is superseded.
	old := c.Begin(store.OpToggleHighlight, "2024-01-03")
	c.Begin(store.OpToggleHighlight, "2024-01-03")
	if _, stale := c.Finish(store.Action{Op: store.OpToggleHighlight, Phase: store.PhaseSuccess, Seq: old, Key: "2024-01-03", Entry: entry("2024-01-03")}); !stale {
		t.Error("older toggle of the same date not marked stale")
	}
}

func TestSubscribeOrderAndUnsubscribe(t *testing.T) {
	c := store.New()
	var got []store.Phase
	unsubscribe := c.Subscribe(func(_, _ store.State, a store.Action) {
		got = append(got, a.Phase)
	})
	seq := c.Begin(store.OpCreate, "")
	c.Finish(store.Action{Op: store.OpCreate, Phase: store.PhaseSuccess, Seq: seq, Entry: entry("2024-01-05")})
	unsubscribe()
	c.Begin(store.OpCreate, "")

	want := []store.Phase{store.PhaseRequest, store.PhaseSuccess}
	if len(got) != len(want) {
		t.Fatalf("listener saw %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("phase %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestListenerMayReadState(t *testing.T) {
	c := store.New()
	var seen int
	c.Subscribe(func(_, next store.State, _ store.Action) {
		seen = len(c.State().Entries)
		if seen != len(next.Entries) {
			t.Errorf("State() = %d entries inside listener, next has %d", seen, len(next.Entries))
		}
	})
	seq := c.Begin(store.OpCreate, "")
	c.Finish(store.Action{Op: store.OpCreate, Phase: store.PhaseSuccess, Seq: seq, Entry: entry("2024-01-05")})
	if seen != 1 {
		t.Errorf("seen = %d, want 1", seen)
	}
}

func TestConsumeSuccess(t *testing.T) {
	c := store.New()
	if c.ConsumeSuccess() {
		t.Error("ConsumeSuccess true on a fresh container")
	}
	seq := c.Begin(store.OpDelete, "2024-01-05")
	c.Finish(store.Action{Op: store.OpDelete, Phase: store.PhaseSuccess, Seq: seq, Key: "2024-01-05"})
	if !c.ConsumeSuccess() {
		t.Error("ConsumeSuccess false after delete success")
	}
	if c.ConsumeSuccess() {
		t.Error("ConsumeSuccess fired twice")
	}
}

func TestClearFocus(t *testing.T) {
	c := store.New()
	seq := c.Begin(store.OpFetchOne, "")
	c.Finish(store.Action{Op: store.OpFetchOne, Phase: store.PhaseSuccess, Seq: seq, Entry: entry("2024-01-05")})
	c.ClearFocus()
	if c.State().Focused != nil {
		t.Error("ClearFocus kept the focused entry")
	}
}

func TestWithEntriesSeedsState(t *testing.T) {
	seed := []*model.Entry{entry("2024-01-01")}
	c := store.New(store.WithEntries(seed))
	if got := c.State().Find("2024-01-01"); got != seed[0] {
		t.Error("Find did not return the seeded entry")
	}
}

func TestContainerConcurrentDispatch(t *testing.T) {
	c := store.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq := c.Begin(store.OpStats, "")
			c.Finish(store.Action{Op: store.OpStats, Phase: store.PhaseSuccess, Seq: seq, Stats: &model.Stats{}})
		}()
	}
	wg.Wait()
	if c.State().Loading() {
		t.Errorf("pending = %v after all requests finished", c.State().Pending)
	}
}

func TestParseStalePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    store.StalePolicy
		wantErr bool
	}{
		{"", store.DiscardStale, false},
		{"discard-stale", store.DiscardStale, false},
		{"last-write-wins", store.LastWriteWins, false},
		{"newest", store.DiscardStale, true},
	}
	for _, tt := range tests {
		got, err := store.ParseStalePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStalePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseStalePolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
