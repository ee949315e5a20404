package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCountersIncDec(t *testing.T) {
	counters := NewStatusCounters()

	counters.Inc("PENDING")
	counters.Inc("PENDING")
	counters.Inc("CONFIRMED")
	counters.Dec("PENDING")

	snapshot := counters.Snapshot()
	assert.Equal(t, int64(1), snapshot["PENDING"])
	assert.Equal(t, int64(1), snapshot["CONFIRMED"])
	_, ok := snapshot["SHIPPED"]
	assert.False(t, ok, "untouched statuses are absent from the snapshot")
}

func TestStatusCountersSeed(t *testing.T) {
	counters := NewStatusCounters()
	counters.Inc("PENDING")

	counters.Seed(map[string]int64{
		"PENDING":   12,
		"CANCELLED": 3,
	})

	snapshot := counters.Snapshot()
	assert.Equal(t, int64(12), snapshot["PENDING"], "seed overwrites, not adds")
	assert.Equal(t, int64(3), snapshot["CANCELLED"])
}

func TestStatusCountersSnapshotIsCopy(t *testing.T) {
	counters := NewStatusCounters()
	counters.Inc("PENDING")

	snapshot := counters.Snapshot()
	snapshot["PENDING"] = 999

	assert.Equal(t, int64(1), counters.Snapshot()["PENDING"])
}

func TestStatusCountersConcurrent(t *testing.T) {
	counters := NewStatusCounters()
	statuses := []string{"PENDING", "CONFIRMED", "SHIPPED", "DELIVERED", "CANCELLED"}

	const perStatus = 200

	var wg sync.WaitGroup
	for _, status := range statuses {
		for i := 0; i < perStatus; i++ {
			wg.Add(1)
			go func(status string) {
				defer wg.Done()
				counters.Inc(status)
			}(status)
		}
	}
	wg.Wait()

	snapshot := counters.Snapshot()
	for _, status := range statuses {
		assert.Equal(t, int64(perStatus), snapshot[status])
	}
}
