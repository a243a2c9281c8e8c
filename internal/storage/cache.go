package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/Tiliavir/standup/internal/model"
	"github.com/Tiliavir/standup/internal/store"
)

// Cache is the offline copy of entries, one JSON file per date laid out as
// YYYY/MM/DD.json under its directory.
type Cache struct {
	d   *diskv.Diskv
	log *slog.Logger
}

// CacheDir returns the cache location under base.
func CacheDir(base string) string {
	return filepath.Join(base, "cache")
}

// OpenCache opens the cache rooted at dir.
func OpenCache(dir string, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: dateToPath,
			InverseTransform:  pathToDate,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		log: log,
	}
}

// Put stores e under its date.
func (c *Cache) Put(e *model.Entry) error {
	if err := model.ValidateDate(e.Key()); err != nil {
		return fmt.Errorf("caching entry: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	if err := c.d.Write(e.Date, data); err != nil {
		return fmt.Errorf("storage error writing %s: %w", e.Date, err)
	}
	return nil
}

// Get returns the cached entry for date, or nil when there is none.
func (c *Cache) Get(date string) (*model.Entry, error) {
	if err := model.ValidateDate(date); err != nil {
		return nil, err
	}
	if !c.d.Has(date) {
		return nil, nil
	}
	data, err := c.d.Read(date)
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", date, err)
	}
	var e model.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("corrupt cache entry %s: %w", date, err)
	}
	return &e, nil
}

// Erase removes the entry for date. Erasing a missing entry is a no-op.
func (c *Cache) Erase(date string) error {
	if model.ValidateDate(date) != nil || !c.d.Has(date) {
		return nil
	}
	if err := c.d.Erase(date); err != nil {
		return fmt.Errorf("storage error erasing %s: %w", date, err)
	}
	return nil
}

// Load returns the cached entries matching filter, newest first. Corrupt
// files are logged and skipped.
func (c *Cache) Load(ctx context.Context, filter model.ListFilter) ([]*model.Entry, error) {
	var out []*model.Entry
	for key := range c.d.Keys(ctx.Done()) {
		if model.ValidateDate(key) != nil {
			continue
		}
		e, err := c.Get(key)
		if err != nil {
			c.log.Warn("skipping cache entry", "date", key, "error", err)
			continue
		}
		if e != nil && filter.Match(e) {
			out = append(out, e)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b *model.Entry) int {
		return strings.Compare(b.Date, a.Date)
	})
	return out, nil
}

// Observe keeps the cache in step with the entry container. It is meant to
// be registered with store.Container.Subscribe.
func (c *Cache) Observe(_, next store.State, a store.Action) {
	if a.Phase != store.PhaseSuccess || a.Stale || next.FailedOp == a.Op {
		return
	}
	var err error
	switch a.Op {
	case store.OpFetchAll:
		for _, e := range a.Entries {
			if err = c.Put(e); err != nil {
				break
			}
		}
		if err == nil && a.Filter.IsZero() {
			err = c.prune(a.Entries)
		}
	case store.OpFetchOne, store.OpCreate, store.OpUpdate, store.OpToggleHighlight:
		if a.Entry != nil {
			err = c.Put(a.Entry)
		}
	case store.OpDelete:
		err = c.Erase(a.Key)
	}
	if err != nil {
		c.log.Warn("cache update failed", "op", string(a.Op), "error", err)
	}
}

// prune erases every cached date missing from keep, the complete
// collection of an unfiltered fetch.
func (c *Cache) prune(keep []*model.Entry) error {
	live := make(map[string]bool, len(keep))
	for _, e := range keep {
		live[e.Date] = true
	}
	var gone []string
	for key := range c.d.Keys(nil) {
		if !live[key] {
			gone = append(gone, key)
		}
	}
	for _, key := range gone {
		if err := c.Erase(key); err != nil {
			return err
		}
	}
	return nil
}

// dateToPath maps 2024-01-05 to 2024/01/05.json.
func dateToPath(key string) *diskv.PathKey {
	parts := strings.Split(key, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1] + ".json",
	}
}

func pathToDate(pk *diskv.PathKey) string {
	name := strings.TrimSuffix(pk.FileName, ".json")
	return strings.Join(append(slices.Clone(pk.Path), name), "-")
}
