package files

import "sync"

// resultCache memoizes the two derived views: the full metadata list and
// the aggregate summary. There is exactly one of each, so invalidation is
// always wholesale. Misses are recomputed by the service and stored back.
//
// A generation counter guards against lost invalidations: a miss captures
// the generation before recomputing, and the store-back is discarded if a
// mutation invalidated the cache in the meantime. Without it, an in-flight
// recompute could repopulate the cache with a pre-mutation snapshot.
type resultCache struct {
	mu      sync.Mutex
	gen     uint64
	list    []FileRecord
	hasList bool
	summary Summary
	hasSum  bool
}

func newResultCache() *resultCache {
	return &resultCache{}
}

// List returns the cached list and the current generation. The returned
// slice is a copy so callers cannot mutate the cached value. On a miss the
// caller recomputes and passes the generation back to SetList.
func (c *resultCache) List() ([]FileRecord, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasList {
		return nil, c.gen, false
	}
	return append([]FileRecord(nil), c.list...), c.gen, true
}

// SetList stores a recomputed list. The write is discarded if the cache
// was invalidated after the generation was captured.
func (c *resultCache) SetList(list []FileRecord, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.list = append([]FileRecord(nil), list...)
	c.hasList = true
}

// Summary returns the cached summary and the current generation. On a miss
// the caller recomputes and passes the generation back to SetSummary.
func (c *resultCache) Summary() (Summary, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary, c.gen, c.hasSum
}

// SetSummary stores a recomputed summary. The write is discarded if the
// cache was invalidated after the generation was captured.
func (c *resultCache) SetSummary(s Summary, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.summary = s
	c.hasSum = true
}

// Invalidate drops both entries and advances the generation. Called after
// every mutation.
func (c *resultCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.list = nil
	c.hasList = false
	c.summary = Summary{}
	c.hasSum = false
}
