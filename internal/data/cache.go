package data

import (
	"sync"
	"time"

	"gridalpha/internal/model"
)

type cacheEntry struct {
	curve     model.PriceCurve
	expiresAt time.Time
}

// CurveCache keeps recently fetched curves in memory for a fixed TTL.
// A nil *CurveCache is a valid, always-empty cache.
type CurveCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewCurveCache(ttl time.Duration) *CurveCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CurveCache{
		store: make(map[string]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func cacheKey(zone string, date time.Time) string {
	return zone + "|" + date.Format(feedDateLayout)
}

func (c *CurveCache) Get(zone string, date time.Time) (model.PriceCurve, bool) {
	if c == nil {
		return model.PriceCurve{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.store[cacheKey(zone, date)]
	if !ok || c.now().After(e.expiresAt) {
		return model.PriceCurve{}, false
	}
	return copyCurve(e.curve), true
}

func (c *CurveCache) Set(curve model.PriceCurve) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[cacheKey(curve.Zone, curve.Date)] = cacheEntry{
		curve:     copyCurve(curve),
		expiresAt: c.now().Add(c.ttl),
	}
}

// Prune drops expired entries and returns how many were removed.
func (c *CurveCache) Prune() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for k, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, k)
			n++
		}
	}
	return n
}

func (c *CurveCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func copyCurve(c model.PriceCurve) model.PriceCurve {
	c.Prices = append([]float64(nil), c.Prices...)
	return c
}
