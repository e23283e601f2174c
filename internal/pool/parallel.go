package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Run invokes fn(i) for every i in [begin, end), distributing iterations
// over up to GOMAXPROCS goroutines. Iterations are claimed atomically, so
// uneven per-iteration cost still balances. Run returns only after every
// iteration has completed; callers rely on this as a phase barrier.
//
// fn must not assume any ordering between iterations.
func Run(begin, end int, fn func(i int)) {
	n := end - begin
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := begin; i < end; i++ {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	next.Store(int64(begin))
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= end {
					return
				}
				fn(i)
			}
		}()
	}
	wg.Wait()
}
