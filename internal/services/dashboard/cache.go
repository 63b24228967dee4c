package dashboard

import (
	"sync"
	"time"

	"github.com/mhollowell/tradedeck/internal/models"
)

// recordCache memoizes one journal fetch per source key for a fixed TTL,
// bounding call frequency against the remote service. Invalidate forces the
// next Get to miss (the manual refresh affordance).
type recordCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry

	// now is swappable for tests
	now func() time.Time
}

type cacheEntry struct {
	records   []models.TradeRecord
	fetchedAt time.Time
}

func newRecordCache(ttl time.Duration) *recordCache {
	return &recordCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached records for key and whether they are still fresh.
// Stale records are returned too, so callers can degrade to them when a
// refetch fails.
func (c *recordCache) Get(key string) ([]models.TradeRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	fresh := c.now().Sub(entry.fetchedAt) < c.ttl
	return entry.records, fresh
}

// Put stores records for key, stamping the fetch time.
func (c *recordCache) Put(key string, records []models.TradeRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{records: records, fetchedAt: c.now()}
}

// Invalidate drops the entry for key.
func (c *recordCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}
