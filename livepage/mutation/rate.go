package mutation

import (
	"sync"
	"time"
)

// RateCounter counts live region updates per element key across batches.
// It is safe for concurrent use.
type RateCounter struct {
	mu     sync.Mutex
	now    func() time.Time
	start  time.Time
	counts map[uint64]int
}

// NewRateCounter starts counting at now. A nil now uses time.Now.
func NewRateCounter(now func() time.Time) *RateCounter {
	if now == nil {
		now = time.Now
	}
	return &RateCounter{now: now, start: now(), counts: make(map[uint64]int)}
}

// Add counts one update for every live region key in b.
func (c *RateCounter) Add(b Batch) {
	keys := b.LiveKeys()
	if len(keys) == 0 {
		return
	}
	c.mu.Lock()
	for _, k := range keys {
		c.counts[k]++
	}
	c.mu.Unlock()
}

// Rate returns the updates per second of key since the counter started.
// Elapsed time below one second counts as one second.
func (c *RateCounter) Rate(key uint64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.counts[key]
	if n == 0 {
		return 0
	}
	elapsed := max(c.now().Sub(c.start), time.Second)
	return float64(n) / elapsed.Seconds()
}
