package numcodecs

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2 encodes buffers with S2, a Snappy-compatible format with better
// throughput and ratio. It has no tuning parameters.
type S2 struct{}

// NewS2 returns an S2 codec.
func NewS2() *S2 { return &S2{} }

func s2FromConfig(Config) (Codec, error) {
	return NewS2(), nil
}

// ID returns "s2".
func (c *S2) ID() string { return "s2" }

// Encode compresses src.
func (c *S2) Encode(src []byte) ([]byte, error) {
	return s2.Encode(nil, src), nil
}

// Decode decompresses src. See Codec.Decode for the destination contract.
func (c *S2) Decode(src, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return finishDecode(out, dst)
}

// DecodePartial decodes a byte range by decoding the whole buffer and
// slicing.
func (c *S2) DecodePartial(src []byte, start, count int, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return partialFromFull(out, start, count, 1, dst)
}

func (c *S2) decode(src []byte) ([]byte, error) {
	out, err := s2.Decode(nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: s2 decode: %v", ErrEngine, err)
	}
	return out, nil
}
