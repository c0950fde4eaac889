package numcodecs

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool reuses lz4.Compressor hash tables across Encode calls.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4 encodes buffers as a single LZ4 block prefixed with the original size
// as a little-endian uint32. Raw LZ4 blocks are not self-describing, so the
// prefix is what lets Decode allocate exactly. Incompressible input is
// stored verbatim after the prefix; a compressed block is only written when
// it is strictly smaller than the input, so the two forms never collide.
type LZ4 struct{}

// NewLZ4 returns an LZ4 codec.
func NewLZ4() *LZ4 { return &LZ4{} }

func lz4FromConfig(Config) (Codec, error) {
	return NewLZ4(), nil
}

// ID returns "lz4".
func (c *LZ4) ID() string { return "lz4" }

// Encode compresses src.
func (c *LZ4) Encode(src []byte) ([]byte, error) {
	if uint64(len(src)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrBufferTooLarge, len(src))
	}
	buf := make([]byte, 4+lz4.CompressBlockBound(len(src)))
	binary.LittleEndian.PutUint32(buf, uint32(len(src)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(src, buf[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 compress: %v", ErrEngine, err)
	}
	if n == 0 || n >= len(src) {
		out := make([]byte, 4+len(src))
		binary.LittleEndian.PutUint32(out, uint32(len(src)))
		copy(out[4:], src)
		return out, nil
	}
	return buf[:4+n], nil
}

// Decode decompresses src. See Codec.Decode for the destination contract.
func (c *LZ4) Decode(src, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return finishDecode(out, dst)
}

// DecodePartial decodes a byte range. LZ4 blocks have no internal index, so
// this decodes the whole buffer and slices.
func (c *LZ4) DecodePartial(src []byte, start, count int, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return partialFromFull(out, start, count, 1, dst)
}

func (c *LZ4) decode(src []byte) ([]byte, error) {
	if len(src) < 4 {
		return nil, fmt.Errorf("%w: missing lz4 size prefix", ErrCorruptHeader)
	}
	size := int(binary.LittleEndian.Uint32(src))
	payload := src[4:]
	if len(payload) == size {
		// Stored verbatim.
		out := make([]byte, size)
		copy(out, payload)
		return out, nil
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(payload, out)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 decompress: %v", ErrEngine, err)
	}
	if n != size {
		return nil, fmt.Errorf("%w: lz4 block decoded to %d bytes, prefix says %d",
			ErrEngine, n, size)
	}
	return out, nil
}
