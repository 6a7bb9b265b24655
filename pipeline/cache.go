package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// entry is one per-station flight. done closes when the flight finishes;
// bundle and err are valid only after that.
type entry struct {
	done   chan struct{}
	bundle *Bundle
	err    error
}

// Cache memoizes processed bundles per station. Each station is loaded
// and processed at most once: concurrent Gets for the same key share a
// single flight, and failed flights are forgotten so later Gets retry.
type Cache struct {
	loader Loader
	proc   *Processor

	mu      sync.Mutex
	entries map[string]*entry
}

// NewCache wraps loader and proc in a memoizing cache. A nil proc gets
// the default configuration.
func NewCache(loader Loader, proc *Processor) *Cache {
	if proc == nil {
		proc, _ = NewProcessor(Config{})
	}

	return &Cache{
		loader:  loader,
		proc:    proc,
		entries: make(map[string]*entry),
	}
}

// Get returns the bundle for one station, computing it on first use.
// Callers that join a running flight wait under their own context; the
// computation itself runs under the initiating caller's context.
func (c *Cache) Get(ctx context.Context, station string) (*Bundle, error) {
	m := c.proc.cfg.Metrics

	c.mu.Lock()
	if e, ok := c.entries[station]; ok {
		c.mu.Unlock()
		if m != nil {
			m.CacheLookups.WithLabelValues("hit").Inc()
		}

		select {
		case <-e.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if e.err != nil {
			return nil, e.err
		}
		return e.bundle, nil
	}

	e := &entry{done: make(chan struct{})}
	c.entries[station] = e
	c.mu.Unlock()
	if m != nil {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}

	bundle, err := c.fill(ctx, station)
	if err != nil {
		// Drop the flight before waking waiters so the failure is
		// not memoized; waiters still receive this flight's error.
		c.mu.Lock()
		if c.entries[station] == e {
			delete(c.entries, station)
		}
		c.mu.Unlock()

		e.err = err
		close(e.done)
		return nil, err
	}

	e.bundle = bundle
	close(e.done)

	return bundle, nil
}

func (c *Cache) fill(ctx context.Context, station string) (*Bundle, error) {
	m := c.proc.cfg.Metrics

	rec, err := c.loader.Load(ctx, station)
	if err != nil {
		if m != nil {
			m.ComputeErrors.Inc()
		}
		return nil, fmt.Errorf("pipeline: load %s: %w", station, err)
	}
	if m != nil {
		m.StationsLoaded.Inc()
	}

	return c.proc.Process(station, rec)
}

// Len counts completed entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		select {
		case <-e.done:
			n++
		default:
		}
	}

	return n
}

// Reset discards all completed entries. In-flight computations finish
// and deliver to their waiters but do not re-install themselves.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
}
