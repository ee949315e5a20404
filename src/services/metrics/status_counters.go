// Package metrics keeps the per-status order counters the workflow emits on
// creation and on every transition. Counters are plain atomics behind an
// injectable component; they are exposed through the service's own metrics
// endpoint rather than a metrics backend.
package metrics

import (
	"sync"
	"sync/atomic"
)

type StatusCounters struct {
	mu     sync.RWMutex
	counts map[string]*atomic.Int64
}

func NewStatusCounters() *StatusCounters {
	return &StatusCounters{counts: make(map[string]*atomic.Int64)}
}

func (c *StatusCounters) counter(status string) *atomic.Int64 {
	c.mu.RLock()
	n, ok := c.counts[status]
	c.mu.RUnlock()
	if ok {
		return n
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.counts[status]; ok {
		return n
	}
	n = &atomic.Int64{}
	c.counts[status] = n
	return n
}

func (c *StatusCounters) Inc(status string) {
	c.counter(status).Add(1)
}

func (c *StatusCounters) Dec(status string) {
	c.counter(status).Add(-1)
}

// Seed overwrites counters from persisted per-status counts, run once at
// startup before the service takes traffic.
func (c *StatusCounters) Seed(counts map[string]int64) {
	for status, count := range counts {
		c.counter(status).Store(count)
	}
}

func (c *StatusCounters) Snapshot() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make(map[string]int64, len(c.counts))
	for status, n := range c.counts {
		snapshot[status] = n.Load()
	}
	return snapshot
}
