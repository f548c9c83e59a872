package taskscheduler_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ts "github.com/azargarov/taskscheduler"
)

func TestWorkQueue_FIFOAcrossGrowth(t *testing.T) {
	q := ts.NewWorkQueue[int](3)

	// interleave pushes and pops so the ring wraps before it grows
	for i := range 10 {
		q.Push(i)
	}
	for want := range 5 {
		got, ok := q.PopFront()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	for i := 10; i < 100; i++ {
		q.Push(i)
	}
	require.Equal(t, 95, q.Size())

	for want := 5; want < 100; want++ {
		got, ok := q.PopFront()
		require.True(t, ok)
		require.Equal(t, want, got)
	}

	_, ok := q.PopFront()
	assert.False(t, ok, "pop on empty queue must report no item")
	assert.Equal(t, 0, q.Size())
}

func TestWorkQueue_DrainedHint(t *testing.T) {
	q := ts.NewWorkQueue[string](3)
	assert.True(t, q.RecentlyDrained(), "a new queue counts as drained")

	q.Push("a")
	q.Push("b")
	assert.True(t, q.RecentlyDrained(), "hint survives below the capacity hint")

	size, drained := q.PushObserve("c")
	assert.Equal(t, 3, size)
	assert.False(t, drained, "reaching the capacity hint clears the hint")

	q.Push("d")
	assert.False(t, q.RecentlyDrained())

	for range 3 {
		_, _ = q.PopFront()
		assert.False(t, q.RecentlyDrained(), "hint is only set when the queue empties")
	}
	_, _ = q.PopFront()
	assert.True(t, q.RecentlyDrained())

	// shrinking back through the threshold is not growing to it
	q.Push("e")
	assert.True(t, q.RecentlyDrained())
}

func TestWorkQueue_NonPositiveHint(t *testing.T) {
	q := ts.NewWorkQueue[int](0)
	assert.Equal(t, 1, q.CapacityHint())

	q.Push(1)
	assert.False(t, q.RecentlyDrained())
}

func TestWorkQueue_ConcurrentNoLossNoDup(t *testing.T) {
	const producers = 32
	const perProducer = 2000
	const consumers = 8

	q := ts.NewWorkQueue[int](consumers)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		seen     = make(map[int]int, producers*perProducer)
		lastSeen = make([][]int, consumers)
	)

	for p := range producers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range perProducer {
				q.Push(id*perProducer + j)
			}
		}(p)
	}

	done := make(chan struct{})
	var cwg sync.WaitGroup
	for c := range consumers {
		cwg.Add(1)
		go func(c int) {
			defer cwg.Done()
			for {
				v, ok := q.PopFront()
				if !ok {
					select {
					case <-done:
						if q.Size() == 0 {
							return
						}
					default:
					}
					continue
				}
				lastSeen[c] = append(lastSeen[c], v)
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}(c)
	}

	wg.Wait()
	close(done)
	cwg.Wait()

	require.Len(t, seen, producers*perProducer)
	for v, n := range seen {
		require.Equalf(t, 1, n, "item %d popped %d times", v, n)
	}

	// a single consumer sees each producer's items in push order
	for _, vals := range lastSeen {
		last := make(map[int]int)
		for _, v := range vals {
			p := v / perProducer
			if prev, ok := last[p]; ok {
				require.Less(t, prev, v)
			}
			last[p] = v
		}
	}
}
