package multithreading

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestChunkRanges(t *testing.T) {
	tests := []struct {
		total, n int
		want     [][2]int
	}{
		{10, 3, [][2]int{{0, 4}, {4, 7}, {7, 10}}},
		{2, 5, [][2]int{{0, 1}, {1, 2}}},
		{7, 1, [][2]int{{0, 7}}},
		{5, 0, [][2]int{{0, 5}}},
		{0, 4, nil},
	}
	for _, test := range tests {
		got := ChunkRanges(test.total, test.n)
		if len(got) != len(test.want) {
			t.Errorf("ChunkRanges(%d, %d) = %v, expected %v", test.total, test.n, got, test.want)
			continue
		}
		for i := range got {
			if got[i] != test.want[i] {
				t.Errorf("ChunkRanges(%d, %d) = %v, expected %v", test.total, test.n, got, test.want)
				break
			}
		}
	}
}

func TestParallelFor(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()
	if pool.NumWorkers() != 4 {
		t.Fatalf("expected 4 workers, got %d", pool.NumWorkers())
	}
	for _, n := range []int{0, 1, 3, 100, 1001} {
		hits := make([]int32, n)
		pool.ParallelFor(n, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n = %d: index %d visited %d times", n, i, h)
			}
		}
	}
}

func TestParallelForAtomic(t *testing.T) {
	pool := NewPool(3)
	var sum atomic.Int64
	pool.ParallelForAtomic(1000, func(i int) { sum.Add(int64(i)) })
	if got := sum.Load(); got != 999*1000/2 {
		t.Errorf("expected sum %d, got %d", 999*1000/2, got)
	}

	pool.Close()
	pool.Close()
	sum.Store(0)
	pool.ParallelForAtomic(10, func(i int) { sum.Add(int64(i)) })
	if got := sum.Load(); got != 45 {
		t.Errorf("closed pool: expected 45, got %d", got)
	}
	var calls int
	pool.ParallelFor(10, func(start, end int) { calls++ })
	if calls != 1 {
		t.Errorf("closed pool should run sequentially, got %d calls", calls)
	}
}

func TestStartTask(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]bool)
	err := StartTask(5, func(w int) error {
		mu.Lock()
		seen[w] = true
		mu.Unlock()
		return nil
	})
	if err != nil || len(seen) != 5 {
		t.Fatalf("expected 5 workers without error, got %v and %v", seen, err)
	}

	boom := errors.New("boom")
	err = StartTask(4, func(w int) error {
		if w == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestStartAndJoin(t *testing.T) {
	var n atomic.Int32
	start := time.Now()
	err := StartAndJoin(
		func() error { ThreadWait(20 * time.Millisecond); n.Add(1); return nil },
		func() error { ThreadWait(20 * time.Millisecond); n.Add(1); return nil },
	)
	if err != nil || n.Load() != 2 {
		t.Fatalf("expected both functions to run, got %d and %v", n.Load(), err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned before functions finished: %s", elapsed)
	}
}
