package numcodecs

import (
	"fmt"

	"github.com/d-v-b/numcodecs/internal/blosc"
)

// ShuffleFilter is the standalone byte-shuffle filter: it transposes the
// bytes of fixed-size elements without compressing anything, for use ahead
// of a general-purpose codec. A trailing partial element passes through
// untouched, so any input length round-trips.
type ShuffleFilter struct {
	elementSize int
}

// NewShuffleFilter returns a shuffle filter for elements of elementSize
// bytes, 1-255. An element size of one makes the filter the identity.
func NewShuffleFilter(elementSize int) (*ShuffleFilter, error) {
	if elementSize < 1 || elementSize > blosc.MaxTypeSize {
		return nil, fmt.Errorf("%w: shuffle element size must be in [1, %d], got %d",
			ErrInvalidConfig, blosc.MaxTypeSize, elementSize)
	}
	return &ShuffleFilter{elementSize: elementSize}, nil
}

func shuffleFromConfig(cfg Config) (Codec, error) {
	elementSize, err := cfg.intValue("elementsize", 4)
	if err != nil {
		return nil, err
	}
	return NewShuffleFilter(elementSize)
}

// ID returns "shuffle".
func (c *ShuffleFilter) ID() string { return "shuffle" }

// ElementSize returns the configured element size in bytes.
func (c *ShuffleFilter) ElementSize() int { return c.elementSize }

// Encode returns a shuffled copy of src.
func (c *ShuffleFilter) Encode(src []byte) ([]byte, error) {
	return blosc.ShuffleBuffer(src, c.elementSize), nil
}

// Decode unshuffles src. See Codec.Decode for the destination contract.
func (c *ShuffleFilter) Decode(src, dst []byte) (Decoded, error) {
	return finishDecode(blosc.UnshuffleBuffer(src, c.elementSize), dst)
}

// DecodePartial unshuffles the whole buffer and slices out the requested
// elements; the transposition interleaves every element across the buffer,
// so there is no cheaper path.
func (c *ShuffleFilter) DecodePartial(src []byte, start, count int, dst []byte) (Decoded, error) {
	out := blosc.UnshuffleBuffer(src, c.elementSize)
	return partialFromFull(out, start, count, c.elementSize, dst)
}
