/*
Package multithreading runs image work on several goroutines.

A Pool keeps its workers alive between calls, so algorithms that process many
small images do not pay for goroutine startup each time:

	pool := multithreading.NewPool(0)
	defer pool.Close()
	pool.ParallelFor(img.NumPixels(), func(start, end int) {
		// each call gets its own cursors
	})

StartTask and StartAndJoin are the one-shot variants for work that can fail.
*/
package multithreading

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/janelia-flyem/ndimg/ndimg"
)

// Pool is a fixed set of persistent workers.
type Pool struct {
	numWorkers int
	work       chan task
	closeOnce  sync.Once
	closed     atomic.Bool
}

type task struct {
	fn   func()
	done *sync.WaitGroup
}

// NewPool starts n workers, or NumThreads() workers if n <= 0.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = NumThreads()
	}
	p := &Pool{
		numWorkers: n,
		work:       make(chan task, 2*n),
	}
	for i := 0; i < n; i++ {
		go p.worker()
	}
	ndimg.Debugf("Started pool of %d workers\n", n)
	return p
}

func (p *Pool) worker() {
	for t := range p.work {
		t.fn()
		t.done.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int { return p.numWorkers }

// Close stops the workers after pending work completes.  It is safe to call
// more than once; a closed pool runs work on the calling goroutine.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.work)
	})
}

// ParallelFor splits [0, n) into one contiguous range per worker and calls fn
// on each, blocking until all return.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	ranges := ChunkRanges(n, p.numWorkers)
	if p.closed.Load() || len(ranges) == 1 {
		fn(0, n)
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for _, r := range ranges {
		start, end := r[0], r[1]
		p.work <- task{fn: func() { fn(start, end) }, done: &wg}
	}
	wg.Wait()
}

// ParallelForAtomic calls fn for each index in [0, n), handing indices to
// whichever worker is free.  Use it when the cost per index varies.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(p.numWorkers, n)
	if p.closed.Load() || workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		p.work <- task{
			fn: func() {
				for {
					i := int(next.Add(1)) - 1
					if i >= n {
						return
					}
					fn(i)
				}
			},
			done: &wg,
		}
	}
	wg.Wait()
}

// ChunkRanges partitions [0, total) into at most n contiguous [start, end)
// ranges of nearly equal size.  No range is empty.
func ChunkRanges(total, n int) [][2]int {
	if total <= 0 {
		return nil
	}
	if n <= 0 {
		n = 1
	}
	n = min(n, total)
	size := total / n
	extra := total % n
	ranges := make([][2]int, n)
	start := 0
	for i := range ranges {
		end := start + size
		if i < extra {
			end++
		}
		ranges[i] = [2]int{start, end}
		start = end
	}
	return ranges
}

// NumThreads returns the default number of workers, runtime.GOMAXPROCS(0).
func NumThreads() int {
	return runtime.GOMAXPROCS(0)
}
