package folio

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/folio/content"
)

// publishedLister is the store query the cache is filled from.
type publishedLister interface {
	ListPublished(ctx context.Context) ([]content.Entry, error)
}

// EntryCache is an in-memory cache of published entries with TTL. It
// satisfies meta.EntryStore, so every page render costs at most one store
// query.
type EntryCache struct {
	mu      sync.RWMutex
	entries []content.Entry
	index   map[string]int
	fetched time.Time
	ttl     time.Duration
	store   publishedLister
}

// NewEntryCache creates an EntryCache backed by the given store.
func NewEntryCache(s publishedLister, ttl time.Duration) *EntryCache {
	return &EntryCache{store: s, ttl: ttl}
}

func (c *EntryCache) valid() bool {
	return c.entries != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *EntryCache) Invalidate() {
	c.mu.Lock()
	c.entries = nil
	c.index = nil
	c.mu.Unlock()
}

func (c *EntryCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	entries, err := c.store.ListPublished(ctx)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []content.Entry{}
	}
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[cacheKey(e.Collection, e.Slug)] = i
	}
	c.entries = entries
	c.index = index
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached entries after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *EntryCache) ensureLoaded(ctx context.Context) ([]content.Entry, map[string]int, error) {
	c.mu.RLock()
	if c.valid() {
		entries, index := c.entries, c.index
		c.mu.RUnlock()
		return entries, index, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	return c.entries, c.index, nil
}

// ListPublished returns all published entries, newest first. Callers must
// not modify the returned slice.
func (c *EntryCache) ListPublished(ctx context.Context) ([]content.Entry, error) {
	entries, _, err := c.ensureLoaded(ctx)
	return entries, err
}

// ListRecent returns up to limit published entries of collection, newest
// first. An empty collection matches all; limit <= 0 means no limit.
func (c *EntryCache) ListRecent(ctx context.Context, collection string, limit int) ([]content.Entry, error) {
	entries, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	var out []content.Entry
	for _, e := range entries {
		if limit > 0 && len(out) == limit {
			break
		}
		if collection == "" || e.Collection == collection {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetEntry returns a published entry. Drafts are never cached, so they
// report content.ErrNotFound.
func (c *EntryCache) GetEntry(ctx context.Context, collection, slug string) (content.Entry, error) {
	entries, index, err := c.ensureLoaded(ctx)
	if err != nil {
		return content.Entry{}, err
	}
	i, ok := index[cacheKey(collection, slug)]
	if !ok {
		return content.Entry{}, content.ErrNotFound
	}
	return entries[i], nil
}

func cacheKey(collection, slug string) string {
	return collection + "/" + slug
}
