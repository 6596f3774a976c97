package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/berningb/dream-speak-sub000/internal/domain"
	"github.com/berningb/dream-speak-sub000/internal/metrics"
)

// TTLs are asymmetric on purpose: lists reflect other users' writes
// (someone else's new public dream) and go stale faster than a single
// dream the owner is looking at.
const (
	DefaultDreamTTL = 5 * time.Minute
	DefaultListTTL  = 2 * time.Minute
)

type dreamEntry struct {
	dream     *domain.Dream
	fetchedAt time.Time
}

type listEntry struct {
	page      *domain.DreamPage
	fetchedAt time.Time
}

type fullListEntry struct {
	dreams    []*domain.Dream
	fetchedAt time.Time
}

// Cache is the in-process read-through cache for dreams and dream
// listings. It is an optimization, never a source of truth: a miss
// (including a stale entry) always falls through to the store, so the
// cache itself never returns an error. Entries are expired lazily at
// read time; stale entries stay in the maps until overwritten or
// invalidated.
//
// The cache is constructed once at the composition root and injected
// into the services that use it.
type Cache struct {
	mu    sync.RWMutex
	dreams map[domain.DreamID]dreamEntry
	lists  map[string]listEntry
	full   map[string]fullListEntry

	dreamTTL time.Duration
	listTTL  time.Duration

	now    func() time.Time
	logger *zap.Logger
}

// New creates a cache. Non-positive TTLs fall back to the defaults.
func New(dreamTTL, listTTL time.Duration, logger *zap.Logger) *Cache {
	if dreamTTL <= 0 {
		dreamTTL = DefaultDreamTTL
	}
	if listTTL <= 0 {
		listTTL = DefaultListTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		dreams:   make(map[domain.DreamID]dreamEntry),
		lists:    make(map[string]listEntry),
		full:     make(map[string]fullListEntry),
		dreamTTL: dreamTTL,
		listTTL:  listTTL,
		now:      time.Now,
		logger:   logger,
	}
}

func (c *Cache) fresh(fetchedAt time.Time, ttl time.Duration) bool {
	return c.now().Sub(fetchedAt) <= ttl
}

// GetDream returns the cached dream iff present and not stale.
func (c *Cache) GetDream(id domain.DreamID) (*domain.Dream, bool) {
	c.mu.RLock()
	entry, ok := c.dreams[id]
	c.mu.RUnlock()

	if !ok || !c.fresh(entry.fetchedAt, c.dreamTTL) {
		metrics.CacheMissesTotal.WithLabelValues("dream").Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.WithLabelValues("dream").Inc()
	return entry.dream, true
}

// PutDream unconditionally overwrites the entry for the dream's id,
// stamped with the current time. No-op for a nil dream or empty id.
func (c *Cache) PutDream(dream *domain.Dream) {
	if dream == nil || dream.ID == "" {
		return
	}
	c.mu.Lock()
	c.dreams[dream.ID] = dreamEntry{dream: dream, fetchedAt: c.now()}
	c.mu.Unlock()
}

// InvalidateDream removes a single entry, forcing the next read to hit
// the store. Used after writes.
func (c *Cache) InvalidateDream(id domain.DreamID) {
	c.mu.Lock()
	delete(c.dreams, id)
	c.mu.Unlock()
}

// InvalidateAllDreams clears every cached dream.
func (c *Cache) InvalidateAllDreams() {
	c.mu.Lock()
	n := len(c.dreams)
	c.dreams = make(map[domain.DreamID]dreamEntry)
	c.mu.Unlock()
	c.logger.Debug("dream cache cleared", zap.Int("entries", n))
}

// GetList returns the cached page for the query iff fresher than the
// list TTL.
func (c *Cache) GetList(q domain.DreamQuery) (*domain.DreamPage, bool) {
	key := BuildListKey(q).String()

	c.mu.RLock()
	entry, ok := c.lists[key]
	c.mu.RUnlock()

	if !ok || !c.fresh(entry.fetchedAt, c.listTTL) {
		metrics.CacheMissesTotal.WithLabelValues("list").Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.WithLabelValues("list").Inc()
	return entry.page, true
}

// PutList stores one page result under the query's composite key.
func (c *Cache) PutList(q domain.DreamQuery, page *domain.DreamPage) {
	if page == nil {
		return
	}
	key := BuildListKey(q).String()
	c.mu.Lock()
	c.lists[key] = listEntry{page: page, fetchedAt: c.now()}
	c.mu.Unlock()
}

// GetFullList returns the whole-collection slot for (kind, user) iff
// fresher than the list TTL.
func (c *Cache) GetFullList(kind domain.ListKind, userID domain.UserID) ([]*domain.Dream, bool) {
	key := fullListKey(kind, userID)

	c.mu.RLock()
	entry, ok := c.full[key]
	c.mu.RUnlock()

	if !ok || !c.fresh(entry.fetchedAt, c.listTTL) {
		metrics.CacheMissesTotal.WithLabelValues("full_list").Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.WithLabelValues("full_list").Inc()
	return entry.dreams, true
}

// PutFullList stores a whole collection and writes every contained
// dream through into the per-dream slots, so a later single-dream
// lookup hits even though that dream was never fetched directly.
func (c *Cache) PutFullList(kind domain.ListKind, userID domain.UserID, dreams []*domain.Dream) {
	key := fullListKey(kind, userID)
	now := c.now()

	c.mu.Lock()
	c.full[key] = fullListEntry{dreams: dreams, fetchedAt: now}
	for _, d := range dreams {
		if d == nil || d.ID == "" {
			continue
		}
		c.dreams[d.ID] = dreamEntry{dream: d, fetchedAt: now}
	}
	c.mu.Unlock()

	c.logger.Debug("full list cached",
		zap.String("key", key),
		zap.Int("dreams", len(dreams)),
	)
}

// InvalidateLists clears all paginated and full-list entries.
func (c *Cache) InvalidateLists() {
	c.mu.Lock()
	c.lists = make(map[string]listEntry)
	c.full = make(map[string]fullListEntry)
	c.mu.Unlock()
}

// Reset drops everything. Wired to the auth lifecycle so one user's
// cached records never leak into another's session. All three maps are
// cleared under one lock so no concurrent write lands between phases.
func (c *Cache) Reset() {
	c.mu.Lock()
	n := len(c.dreams) + len(c.lists) + len(c.full)
	c.dreams = make(map[domain.DreamID]dreamEntry)
	c.lists = make(map[string]listEntry)
	c.full = make(map[string]fullListEntry)
	c.mu.Unlock()

	c.logger.Debug("cache reset", zap.Int("entries", n))
}
