package history

import (
	"sync"
	"time"

	"tokenScope/internal/model"
)

// StaleAfter bounds how old a persisted history blob may be before a fresh
// process discards it wholesale. Freshness is judged once, at load; entries
// already in the cache never expire.
const StaleAfter = 5 * time.Minute

// Cache holds per-token history samples fetched during this process's
// lifetime plus whatever a fresh-enough persisted blob carried over.
type Cache struct {
	mu      sync.RWMutex
	records map[string]model.HistoryRecord
}

func NewCache() *Cache {
	return &Cache{records: make(map[string]model.HistoryRecord)}
}

// Get returns the cached record for a token key.
func (c *Cache) Get(key string) (model.HistoryRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[key]
	return rec, ok
}

// Has reports whether the key is cached.
func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.records[key]
	return ok
}

// Put stores samples for a token key stamped with the current time and
// returns the stored record.
func (c *Cache) Put(key string, samples []model.HistorySample) model.HistoryRecord {
	rec := model.HistoryRecord{
		Samples:   samples,
		FetchedAt: time.Now().UnixMilli(),
	}
	c.mu.Lock()
	c.records[key] = rec
	c.mu.Unlock()
	return rec
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Snapshot packages every cached entry into a persistable blob stamped with
// the current time.
func (c *Cache) Snapshot() model.HistoryBlob {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data := make(map[string][]model.HistorySample, len(c.records))
	for key, rec := range c.records {
		data[key] = rec.Samples
	}
	return model.HistoryBlob{
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// LoadBlob seeds the cache from a persisted blob and reports how many
// entries it took. A blob whose stamp is StaleAfter or older is ignored
// entirely.
func (c *Cache) LoadBlob(blob model.HistoryBlob, now time.Time) int {
	if now.UnixMilli()-blob.Timestamp >= StaleAfter.Milliseconds() {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, samples := range blob.Data {
		c.records[key] = model.HistoryRecord{Samples: samples, FetchedAt: blob.Timestamp}
	}
	return len(blob.Data)
}
