package services

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"sales-dashboard/internal/models"
)

type CacheStats struct {
	Hits          int64     `json:"hits"`
	Misses        int64     `json:"misses"`
	Invalidations int64     `json:"invalidations"`
	Fingerprint   string    `json:"fingerprint,omitempty"`
	Records       int       `json:"records"`
	LoadedAt      time.Time `json:"loaded_at,omitempty"`
}

// datasetCache holds at most one RecordSet, keyed by source fingerprint.
type datasetCache struct {
	mu            sync.RWMutex
	current       *models.RecordSet
	group         singleflight.Group
	hits          atomic.Int64
	misses        atomic.Int64
	invalidations atomic.Int64
}

func newDatasetCache() *datasetCache {
	return &datasetCache{}
}

// lookup is peek plus hit/miss accounting.
func (c *datasetCache) lookup(fingerprint string) (*models.RecordSet, bool) {
	rs, ok := c.peek(fingerprint)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return rs, ok
}

func (c *datasetCache) peek(fingerprint string) (*models.RecordSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil || c.current.Fingerprint != fingerprint {
		return nil, false
	}
	return c.current, true
}

func (c *datasetCache) store(rs *models.RecordSet) {
	c.mu.Lock()
	c.current = rs
	c.mu.Unlock()
}

func (c *datasetCache) invalidate() {
	c.mu.Lock()
	if c.current != nil {
		c.group.Forget(c.current.Fingerprint)
	}
	c.current = nil
	c.mu.Unlock()
	c.invalidations.Add(1)
}

func (c *datasetCache) stats() CacheStats {
	s := CacheStats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Invalidations: c.invalidations.Load(),
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current != nil {
		s.Fingerprint = c.current.Fingerprint
		s.Records = c.current.Len()
		s.LoadedAt = c.current.LoadedAt
	}
	return s
}
