package stream

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	for i := int64(0); i < 5; i++ {
		q.Enqueue(&Unit{TimestampUs: i})
	}
	assert.Equal(t, 5, q.Len())

	for i := int64(0); i < 5; i++ {
		u, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, u.TimestampUs)
	}
	_, ok := q.Dequeue()
	assert.False(t, ok, "dequeue on empty queue")
	assert.Equal(t, 0, q.Len())
}

func TestQueueDequeueAtMostOnce(t *testing.T) {
	q := NewQueue()
	q.Enqueue(&Unit{StreamID: 1})
	u1, ok1 := q.Dequeue()
	_, ok2 := q.Dequeue()
	require.True(t, ok1)
	assert.Equal(t, int64(1), u1.StreamID)
	assert.False(t, ok2)
}

// Producers on distinct goroutines may interleave freely, but each producer's
// own units must come out in its enqueue order, and nothing may be lost.
func TestQueueConcurrentProducers(t *testing.T) {
	const producers = 4
	const perProducer = 250

	q := NewQueue()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := int64(0); i < perProducer; i++ {
				q.Enqueue(&Unit{StreamID: id, TimestampUs: i})
			}
		}(int64(p))
	}
	wg.Wait()

	require.Equal(t, producers*perProducer, q.Len())

	next := map[int64]int64{}
	for {
		u, ok := q.Dequeue()
		if !ok {
			break
		}
		assert.Equal(t, next[u.StreamID], u.TimestampUs, "per-producer order for stream %d", u.StreamID)
		next[u.StreamID]++
	}
	for p := int64(0); p < producers; p++ {
		assert.Equal(t, int64(perProducer), next[p])
	}
}
