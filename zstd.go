package numcodecs

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool reuses warmed-up decoders; DecodeAll is stateless, so a
// pooled decoder survives a failed call.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("numcodecs: zstd decoder options rejected: %v", err))
		}
		return decoder
	},
}

// Zstd encodes buffers as standard Zstandard frames.
type Zstd struct {
	level int
	enc   *zstd.Encoder
}

// NewZstd returns a Zstd codec for the given level, 1-22.
func NewZstd(level int) (*Zstd, error) {
	if level < 1 || level > 22 {
		return nil, fmt.Errorf("%w: zstd level must be in [1, 22], got %d", ErrInvalidConfig, level)
	}
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderCRC(false),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &Zstd{level: level, enc: enc}, nil
}

func zstdFromConfig(cfg Config) (Codec, error) {
	level, err := cfg.intValue("level", 1)
	if err != nil {
		return nil, err
	}
	return NewZstd(level)
}

// ID returns "zstd".
func (c *Zstd) ID() string { return "zstd" }

// Level returns the configured compression level.
func (c *Zstd) Level() int { return c.level }

// Encode compresses src. EncodeAll is concurrent-safe, so the persistent
// encoder is shared by all goroutines using this codec.
func (c *Zstd) Encode(src []byte) ([]byte, error) {
	return c.enc.EncodeAll(src, nil), nil
}

// Decode decompresses src. See Codec.Decode for the destination contract.
func (c *Zstd) Decode(src, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return finishDecode(out, dst)
}

// DecodePartial decodes a byte range. Zstandard frames have no block index
// here, so this decodes the whole buffer and slices.
func (c *Zstd) DecodePartial(src []byte, start, count int, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return partialFromFull(out, start, count, 1, dst)
}

func (c *Zstd) decode(src []byte) ([]byte, error) {
	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decode: %v", ErrEngine, err)
	}
	return out, nil
}
