package numcodecs

import (
	"encoding/binary"
	"fmt"
)

// Delta is a filter codec for arrays of fixed-width little-endian integers:
// the first element is stored verbatim and every later element is replaced
// by its difference from the predecessor. Arithmetic wraps, so the filter is
// exact for signed and unsigned data alike. It does not compress by itself;
// it is meant to run ahead of a general-purpose codec on slowly varying
// sequences.
type Delta struct {
	itemSize int
}

// NewDelta returns a Delta codec for elements of itemSize bytes, one of
// 1, 2, 4 or 8.
func NewDelta(itemSize int) (*Delta, error) {
	switch itemSize {
	case 1, 2, 4, 8:
	default:
		return nil, fmt.Errorf("%w: delta item size must be 1, 2, 4 or 8, got %d",
			ErrInvalidConfig, itemSize)
	}
	return &Delta{itemSize: itemSize}, nil
}

func deltaFromConfig(cfg Config) (Codec, error) {
	itemSize, err := cfg.intValue("itemsize", 4)
	if err != nil {
		return nil, err
	}
	return NewDelta(itemSize)
}

// ID returns "delta".
func (c *Delta) ID() string { return "delta" }

// ItemSize returns the configured element width in bytes.
func (c *Delta) ItemSize() int { return c.itemSize }

func (c *Delta) checkLen(n int) error {
	if n%c.itemSize != 0 {
		return fmt.Errorf("%w: input length %d is not a multiple of item size %d",
			ErrInvalidConfig, n, c.itemSize)
	}
	return nil
}

// Encode replaces each element after the first with its difference from the
// previous element.
func (c *Delta) Encode(src []byte) ([]byte, error) {
	if err := c.checkLen(len(src)); err != nil {
		return nil, err
	}
	out := make([]byte, len(src))
	var prev uint64
	for off := 0; off < len(src); off += c.itemSize {
		v := c.get(src[off:])
		c.put(out[off:], v-prev)
		prev = v
	}
	return out, nil
}

// Decode reverses Encode by cumulative summation.
func (c *Delta) Decode(src, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return finishDecode(out, dst)
}

// DecodePartial decodes the elements [start, start+count). Differences are
// cumulative, so the whole prefix has to be decoded regardless of the range.
func (c *Delta) DecodePartial(src []byte, start, count int, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return partialFromFull(out, start, count, c.itemSize, dst)
}

func (c *Delta) decode(src []byte) ([]byte, error) {
	if err := c.checkLen(len(src)); err != nil {
		return nil, err
	}
	out := make([]byte, len(src))
	var acc uint64
	for off := 0; off < len(src); off += c.itemSize {
		acc += c.get(src[off:])
		c.put(out[off:], acc)
	}
	return out, nil
}

func (c *Delta) get(b []byte) uint64 {
	switch c.itemSize {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}

func (c *Delta) put(b []byte, v uint64) {
	switch c.itemSize {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint64(b, v)
	}
}
