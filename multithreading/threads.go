package multithreading

import (
	"time"

	"github.com/janelia-flyem/ndimg/ndimg"
	"golang.org/x/sync/errgroup"
)

// StartTask runs fn on n goroutines, passing each its worker number, and
// waits for all of them.  It returns the first error encountered.
func StartTask(n int, fn func(worker int) error) error {
	if n <= 0 {
		n = NumThreads()
	}
	var g errgroup.Group
	for w := 0; w < n; w++ {
		w := w
		g.Go(func() error { return fn(w) })
	}
	return g.Wait()
}

// StartAndJoin runs each function on its own goroutine and waits for all.
func StartAndJoin(fns ...func() error) error {
	var g errgroup.Group
	for _, fn := range fns {
		g.Go(fn)
	}
	return g.Wait()
}

// ThreadWait pauses the calling goroutine for d.
func ThreadWait(d time.Duration) {
	time.Sleep(d)
}

// ThreadHaltUnclean blocks the calling goroutine forever.  It is a debugging
// aid for inspecting a stuck worker and never returns.
func ThreadHaltUnclean() {
	ndimg.Criticalf("goroutine halted on purpose, it will never resume\n")
	select {}
}
