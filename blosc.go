package numcodecs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/d-v-b/numcodecs/internal/blosc"
)

// ShuffleMode selects the filter a Blosc codec applies before compression.
// The numeric values are the ones stored in array metadata and must not
// change.
type ShuffleMode int

const (
	// AutoShuffle defers the choice to the engine, which picks from the
	// element size. The encoded header records the resolved mode.
	AutoShuffle ShuffleMode = -1
	NoShuffle   ShuffleMode = 0
	ByteShuffle ShuffleMode = 1
	BitShuffle  ShuffleMode = 2
)

// BloscOptions configures a Blosc codec.
type BloscOptions struct {
	// CName is the internal compressor name, one of ListCompressors().
	// Empty selects lz4.
	CName string

	// CLevel is the compression level, 0-9. Level 0 stores the input
	// uncompressed.
	CLevel int

	// Shuffle is the pre-compression filter.
	Shuffle ShuffleMode

	// TypeSize is the element size in bytes used by the shuffle filter and
	// by DecodePartial, 1-255. Zero selects 1.
	TypeSize int

	// BlockSize is the engine block size in bytes; 0 lets the engine pick.
	BlockSize int
}

// DefaultBloscOptions mirrors the defaults of the reference implementation:
// lz4 at level 5 with byte shuffle over 4-byte elements.
func DefaultBloscOptions() BloscOptions {
	return BloscOptions{
		CName:    "lz4",
		CLevel:   5,
		Shuffle:  ByteShuffle,
		TypeSize: 4,
	}
}

// Blosc encodes buffers as Blosc chunks: shuffled, block-split and
// compressed by one of the engine's internal compressors. Encoded buffers
// are self-describing (see Sizes, ComplibName, MetaInfo) and support
// block-level random access, so DecodePartial only decompresses the blocks
// that overlap the requested range.
type Blosc struct {
	opts BloscOptions
	comp blosc.CompressorID
}

// NewBlosc validates opts and returns a Blosc codec.
func NewBlosc(opts BloscOptions) (*Blosc, error) {
	if opts.CName == "" {
		opts.CName = "lz4"
	}
	comp, ok := blosc.CompressorByName(strings.ToLower(opts.CName))
	if !ok {
		return nil, fmt.Errorf("%w: unsupported cname %q (supported: %s)",
			ErrInvalidConfig, opts.CName, strings.Join(blosc.ListCompressors(), ", "))
	}
	if opts.CLevel < 0 || opts.CLevel > 9 {
		return nil, fmt.Errorf("%w: clevel must be in [0, 9], got %d", ErrInvalidConfig, opts.CLevel)
	}
	switch opts.Shuffle {
	case AutoShuffle, NoShuffle, ByteShuffle, BitShuffle:
	default:
		return nil, fmt.Errorf("%w: invalid shuffle mode %d", ErrInvalidConfig, opts.Shuffle)
	}
	if opts.TypeSize == 0 {
		opts.TypeSize = 1
	}
	if opts.TypeSize < 1 || opts.TypeSize > blosc.MaxTypeSize {
		return nil, fmt.Errorf("%w: typesize must be in [1, %d], got %d",
			ErrInvalidConfig, blosc.MaxTypeSize, opts.TypeSize)
	}
	if opts.BlockSize < 0 {
		return nil, fmt.Errorf("%w: blocksize must be >= 0, got %d", ErrInvalidConfig, opts.BlockSize)
	}
	return &Blosc{opts: opts, comp: comp}, nil
}

func bloscFromConfig(cfg Config) (Codec, error) {
	defaults := DefaultBloscOptions()
	cname, err := cfg.stringValue("cname", defaults.CName)
	if err != nil {
		return nil, err
	}
	clevel, err := cfg.intValue("clevel", defaults.CLevel)
	if err != nil {
		return nil, err
	}
	shuffle, err := cfg.intValue("shuffle", int(defaults.Shuffle))
	if err != nil {
		return nil, err
	}
	typeSize, err := cfg.intValue("typesize", defaults.TypeSize)
	if err != nil {
		return nil, err
	}
	blockSize, err := cfg.intValue("blocksize", 0)
	if err != nil {
		return nil, err
	}
	return NewBlosc(BloscOptions{
		CName:     cname,
		CLevel:    clevel,
		Shuffle:   ShuffleMode(shuffle),
		TypeSize:  typeSize,
		BlockSize: blockSize,
	})
}

// ID returns "blosc".
func (b *Blosc) ID() string { return "blosc" }

// Options returns the codec's configuration.
func (b *Blosc) Options() BloscOptions { return b.opts }

func (b *Blosc) engineShuffle() blosc.Shuffle {
	switch b.opts.Shuffle {
	case ByteShuffle:
		return blosc.ByteShuffle
	case BitShuffle:
		return blosc.BitShuffle
	case AutoShuffle:
		return blosc.AutoShuffle
	default:
		return blosc.NoShuffle
	}
}

// Encode compresses src into a Blosc chunk. Inputs larger than the engine's
// maximum buffer size fail with ErrBufferTooLarge.
func (b *Blosc) Encode(src []byte) ([]byte, error) {
	if len(src) > blosc.MaxBufferSize {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d",
			ErrBufferTooLarge, len(src), blosc.MaxBufferSize)
	}
	out, err := blosc.Compress(src, blosc.Options{
		Compressor: b.comp,
		Level:      b.opts.CLevel,
		Shuffle:    b.engineShuffle(),
		TypeSize:   b.opts.TypeSize,
		BlockSize:  b.opts.BlockSize,
	})
	if err != nil {
		return nil, mapEngineError(err)
	}
	return out, nil
}

// Decode decompresses a Blosc chunk. See Codec.Decode for the destination
// contract; the in-place path decodes directly into dst with no extra copy.
func (b *Blosc) Decode(src, dst []byte) (Decoded, error) {
	h, err := blosc.ParseHeader(src)
	if err != nil {
		return Decoded{}, mapEngineError(err)
	}
	if dst != nil {
		if len(dst) != int(h.Nbytes) {
			return Decoded{}, fmt.Errorf("%w: destination is %d bytes, chunk holds %d",
				ErrDestSize, len(dst), h.Nbytes)
		}
		if err := blosc.DecompressInto(dst, src); err != nil {
			return Decoded{}, mapEngineError(err)
		}
		return Decoded{Data: dst, InPlace: true}, nil
	}
	out, err := blosc.Decompress(src)
	if err != nil {
		return Decoded{}, mapEngineError(err)
	}
	return Decoded{Data: out}, nil
}

// DecodePartial decompresses the elements [start, start+count) of a chunk,
// using the configured TypeSize as the element size. Only the blocks
// overlapping the range are decompressed.
func (b *Blosc) DecodePartial(src []byte, start, count int, dst []byte) (Decoded, error) {
	if start < 0 || count < 0 {
		return Decoded{}, fmt.Errorf("%w: start=%d count=%d", ErrRangeOutOfBounds, start, count)
	}
	if dst != nil {
		if len(dst) != count*b.opts.TypeSize {
			return Decoded{}, fmt.Errorf("%w: destination is %d bytes, range holds %d",
				ErrDestSize, len(dst), count*b.opts.TypeSize)
		}
		if err := blosc.DecompressRangeInto(dst, src, start, count, b.opts.TypeSize); err != nil {
			return Decoded{}, mapEngineError(err)
		}
		return Decoded{Data: dst, InPlace: true}, nil
	}
	out, err := blosc.DecompressRange(src, start, count, b.opts.TypeSize)
	if err != nil {
		return Decoded{}, mapEngineError(err)
	}
	return Decoded{Data: out}, nil
}

// mapEngineError translates engine failures into this package's error
// kinds. Anything without a precise local meaning is an engine failure.
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, blosc.ErrInvalidHeader),
		errors.Is(err, blosc.ErrInvalidVersion),
		errors.Is(err, blosc.ErrInvalidData):
		return fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	case errors.Is(err, blosc.ErrInvalidCodec):
		return fmt.Errorf("%w: %v", ErrUnknownComplib, err)
	case errors.Is(err, blosc.ErrDataTooLarge):
		return fmt.Errorf("%w: %v", ErrBufferTooLarge, err)
	case errors.Is(err, blosc.ErrOutOfRange):
		return fmt.Errorf("%w: %v", ErrRangeOutOfBounds, err)
	default:
		return fmt.Errorf("%w: %v", ErrEngine, err)
	}
}
