package numcodecs

import (
	"fmt"

	"github.com/d-v-b/numcodecs/internal/blosc"
)

// GetNThreads returns the number of worker threads the compression engine
// may use internally for a single encode or decode call.
func GetNThreads() int {
	return blosc.NThreads()
}

// SetNThreads sets the engine's process-wide worker count and returns the
// previous value. n must be at least 1.
//
// The setting affects all codec instances. The change takes effect no
// earlier than the next call that begins after SetNThreads returns; callers
// mutating it while operations are in flight must synchronize externally.
func SetNThreads(n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: nthreads must be >= 1, got %d", ErrInvalidConfig, n)
	}
	return blosc.SetNThreads(n), nil
}

// ListCompressors returns the names of the engine's internal compressors,
// usable as the cname of a Blosc codec.
func ListCompressors() []string {
	return blosc.ListCompressors()
}
