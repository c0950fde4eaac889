package numcodecs

import (
	"fmt"

	"github.com/d-v-b/numcodecs/internal/blosc"
)

// BufferSizes are the size fields recorded in a Blosc chunk header.
type BufferSizes struct {
	Nbytes    int // uncompressed size
	Cbytes    int // total chunk size including the header
	BlockSize int // block size used for compression
}

// BufferMeta describes the shuffle filter recorded in a Blosc chunk header.
type BufferMeta struct {
	// TypeSize is the element size the shuffle filter used, or 0 when no
	// shuffle was applied.
	TypeSize  int
	BlockSize int
	Shuffled  bool
}

// Sizes reads the size fields of an encoded Blosc buffer without decoding
// it. Buffers shorter than the header or with an invalid format marker fail
// with ErrCorruptHeader.
func Sizes(buf []byte) (BufferSizes, error) {
	h, err := blosc.ParseHeader(buf)
	if err != nil {
		return BufferSizes{}, mapEngineError(err)
	}
	return BufferSizes{
		Nbytes:    int(h.Nbytes),
		Cbytes:    int(h.Cbytes),
		BlockSize: int(h.BlockSize),
	}, nil
}

// ComplibName reads the name of the compressor that produced an encoded
// Blosc buffer. Algorithm codes outside the known set fail with
// ErrUnknownComplib.
func ComplibName(buf []byte) (string, error) {
	h, err := blosc.ParseHeader(buf)
	if err != nil {
		return "", mapEngineError(err)
	}
	name, ok := blosc.CompressorName(h.Compressor)
	if !ok {
		return "", fmt.Errorf("%w: algorithm code %d", ErrUnknownComplib, h.Compressor)
	}
	return name, nil
}

// MetaInfo reads the shuffle metadata of an encoded Blosc buffer.
func MetaInfo(buf []byte) (BufferMeta, error) {
	h, err := blosc.ParseHeader(buf)
	if err != nil {
		return BufferMeta{}, mapEngineError(err)
	}
	meta := BufferMeta{
		BlockSize: int(h.BlockSize),
		Shuffled:  h.Shuffled(),
	}
	if meta.Shuffled {
		meta.TypeSize = int(h.TypeSize)
	}
	return meta, nil
}
