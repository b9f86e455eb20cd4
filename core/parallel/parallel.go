// Package parallel provides chunked parallel loops for element-wise
// work over tensors and metric buffers.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Run divides items across the available CPU cores and executes fn for
// each half-open range [start, end) in parallel.
func Run(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so every item is covered
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// RunWithThreshold parallelizes only when items exceeds threshold;
// smaller workloads run sequentially on the calling goroutine.
func RunWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Run(items, fn)
}

// All reports whether pred holds for every index in [0, items).
// Workers stop scanning new chunks once any worker has found a
// counterexample. pred must be safe for concurrent calls.
func All(items, threshold int, pred func(i int) bool) bool {
	if items <= threshold {
		for i := 0; i < items; i++ {
			if !pred(i) {
				return false
			}
		}
		return true
	}

	var failed atomic.Bool
	Run(items, func(start, end int) {
		for i := start; i < end; i++ {
			if failed.Load() {
				return
			}
			if !pred(i) {
				failed.Store(true)
				return
			}
		}
	})
	return !failed.Load()
}
