package blosc

import "sync/atomic"

// nthreads holds the process-wide worker count minus one, so the zero value
// means a single worker.
var nthreads atomic.Int32

// NThreads returns the number of workers compression and decompression may
// fan blocks out across. The default is 1.
func NThreads() int {
	return int(nthreads.Load()) + 1
}

// SetNThreads sets the process-wide worker count and returns the previous
// value. Values below 1 are clamped to 1. The new count applies to calls
// that begin after SetNThreads returns.
func SetNThreads(n int) int {
	if n < 1 {
		n = 1
	}
	return int(nthreads.Swap(int32(n-1))) + 1
}
