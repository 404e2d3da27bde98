// Package cache decorates a SeriesSource with an in-memory TTL cache.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/normalize"
	"github.com/guttosm/tickerlens/internal/provider"
)

type key struct {
	symbol string
	start  time.Time
}

// entry stores a cached series with its expiry.
type entry struct {
	expiresAt time.Time
	series    models.PriceSeries
}

// Series caches history per (symbol, start day) for TTL.
// A zero TTL disables caching.
type Series struct {
	Source   provider.SeriesSource
	TTL      time.Duration
	MaxItems int
	// Now defaults to time.Now.
	Now func() time.Time

	mu    sync.RWMutex
	items map[key]entry
}

// New wraps src with a cache of the given TTL and capacity.
func New(src provider.SeriesSource, ttl time.Duration, maxItems int) *Series {
	return &Series{Source: src, TTL: ttl, MaxItems: maxItems}
}

func (c *Series) ID() normalize.ProviderID { return c.Source.ID() }

// Series returns the cached series when still valid, otherwise fetches and
// stores it. Fetch errors are never cached.
func (c *Series) Series(ctx context.Context, symbol string, start time.Time) (models.PriceSeries, error) {
	if c.TTL <= 0 {
		return c.Source.Series(ctx, symbol, start)
	}

	now := c.now()
	k := key{symbol: symbol, start: models.Day(start)}

	c.mu.RLock()
	e, ok := c.items[k]
	c.mu.RUnlock()
	if ok && now.Before(e.expiresAt) {
		return e.series, nil
	}

	s, err := c.Source.Series(ctx, symbol, start)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.items == nil {
		c.items = make(map[key]entry)
	}
	c.items[k] = entry{expiresAt: now.Add(c.TTL), series: s}
	c.evict(now)
	c.mu.Unlock()
	return s, nil
}

// evict drops expired entries, then arbitrary ones, until under MaxItems.
// Callers hold mu.
func (c *Series) evict(now time.Time) {
	if c.MaxItems <= 0 || len(c.items) <= c.MaxItems {
		return
	}
	for k, v := range c.items {
		if !now.Before(v.expiresAt) {
			delete(c.items, k)
		}
	}
	for k := range c.items {
		if len(c.items) <= c.MaxItems {
			break
		}
		delete(c.items, k)
	}
}

// Len reports the number of cached entries.
func (c *Series) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Series) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
