// Package blosc implements the Blosc chunk format in pure Go.
//
// A Blosc chunk is a 16-byte little-endian header followed by a payload.
// The header records the uncompressed size, the block size, the total chunk
// size, the compressor that produced the payload and the shuffle filter that
// was applied before compression. Chunks are split into blocks that are
// shuffled and compressed independently; an offset index after the header
// locates each block, so a sub-range of the chunk can be decompressed without
// touching the rest.
//
// This package is the compression engine behind the numcodecs package. All
// functions are safe for concurrent use; the process-wide worker count (see
// NThreads) is the only shared mutable state.
package blosc

import (
	"errors"
	"math"
)

// FormatVersion is the Blosc format version written into byte 0 of every
// chunk header.
const FormatVersion = 2

// HeaderSize is the fixed size of the Blosc chunk header in bytes.
const HeaderSize = 16

// MaxBufferSize is the largest input Compress accepts. The header stores
// sizes as unsigned 32-bit integers and reserves room for the header itself,
// matching the limit of the reference implementation.
const MaxBufferSize = math.MaxInt32 - HeaderSize

// MaxTypeSize is the largest shuffle element size the header can record.
const MaxTypeSize = 255

// CompressorID identifies the compression algorithm used for a chunk.
type CompressorID uint8

const (
	BloscLZ CompressorID = iota // reserved, not implemented
	LZ4
	LZ4HC
	Snappy
	ZLIB
	ZSTD
)

// String returns the canonical lowercase compressor name.
func (c CompressorID) String() string {
	name, ok := CompressorName(uint8(c))
	if !ok {
		return "unknown"
	}
	return name
}

// CompressorName maps a header algorithm code to its canonical name.
// The second result is false for codes outside the known set.
func CompressorName(id uint8) (string, bool) {
	switch CompressorID(id) {
	case BloscLZ:
		return "blosclz", true
	case LZ4:
		return "lz4", true
	case LZ4HC:
		return "lz4hc", true
	case Snappy:
		return "snappy", true
	case ZLIB:
		return "zlib", true
	case ZSTD:
		return "zstd", true
	default:
		return "", false
	}
}

// CompressorByName resolves a canonical compressor name to its ID.
// Only names with a working backend resolve; "blosclz" does not.
func CompressorByName(name string) (CompressorID, bool) {
	for id := CompressorID(0); id <= ZSTD; id++ {
		if _, ok := backends[id]; !ok {
			continue
		}
		if id.String() == name {
			return id, true
		}
	}
	return 0, false
}

// ListCompressors returns the names of all compressors with a working
// backend, in ID order.
func ListCompressors() []string {
	names := make([]string, 0, len(backends))
	for id := CompressorID(0); id <= ZSTD; id++ {
		if _, ok := backends[id]; ok {
			names = append(names, id.String())
		}
	}
	return names
}

// Shuffle selects the filter applied to each block before compression.
type Shuffle uint8

const (
	NoShuffle   Shuffle = 0
	ByteShuffle Shuffle = 1
	BitShuffle  Shuffle = 2

	// AutoShuffle lets the engine pick a filter from the element size:
	// single-byte elements get BitShuffle, wider elements get ByteShuffle.
	// The header always records the resolved mode, never AutoShuffle.
	AutoShuffle Shuffle = 0xff
)

// String returns the shuffle mode name.
func (s Shuffle) String() string {
	switch s {
	case NoShuffle:
		return "noshuffle"
	case ByteShuffle:
		return "shuffle"
	case BitShuffle:
		return "bitshuffle"
	case AutoShuffle:
		return "autoshuffle"
	default:
		return "unknown"
	}
}

// Predefined errors for common failure conditions, checkable with errors.Is.
var (
	// ErrInvalidHeader indicates the chunk header is missing or malformed.
	ErrInvalidHeader = errors.New("blosc: invalid header")

	// ErrInvalidVersion indicates an unsupported Blosc format version.
	ErrInvalidVersion = errors.New("blosc: unsupported format version")

	// ErrInvalidData indicates the chunk payload is truncated or corrupted.
	ErrInvalidData = errors.New("blosc: invalid compressed data")

	// ErrInvalidCodec indicates the compressor is not in the supported set.
	ErrInvalidCodec = errors.New("blosc: unsupported compressor")

	// ErrDataTooLarge indicates the input exceeds MaxBufferSize.
	ErrDataTooLarge = errors.New("blosc: data too large")

	// ErrSizeMismatch indicates a size recorded in the chunk disagrees with
	// the bytes actually produced or supplied.
	ErrSizeMismatch = errors.New("blosc: size mismatch")

	// ErrOutOfRange indicates a ranged decompression request falls outside
	// the chunk's element count.
	ErrOutOfRange = errors.New("blosc: range out of bounds")

	// ErrCompressionFailed indicates a backend compressor failed.
	ErrCompressionFailed = errors.New("blosc: compression failed")

	// ErrDecompressionFailed indicates a backend decompressor failed.
	ErrDecompressionFailed = errors.New("blosc: decompression failed")
)

// Options configures Compress.
type Options struct {
	Compressor CompressorID
	Level      int     // 0 stores the input uncompressed, 1-9 compress
	Shuffle    Shuffle // filter applied per block before compression
	TypeSize   int     // shuffle element size in bytes, 1-255
	BlockSize  int     // block size in bytes, 0 picks one automatically
}

// DefaultOptions returns the options used when callers have no preference:
// LZ4 at level 5 with byte shuffle over 4-byte elements.
func DefaultOptions() Options {
	return Options{
		Compressor: LZ4,
		Level:      5,
		Shuffle:    ByteShuffle,
		TypeSize:   4,
		BlockSize:  0,
	}
}

// Compress compresses src into a self-describing Blosc chunk.
//
// The result always starts with the 16-byte header. Inputs larger than
// MaxBufferSize fail with ErrDataTooLarge. A level of 0, an empty input, or
// a payload that would not shrink all produce a stored (memcpy) chunk.
func Compress(src []byte, opts Options) ([]byte, error) {
	if len(src) > MaxBufferSize {
		return nil, ErrDataTooLarge
	}
	opts = normalize(opts)
	if _, ok := backends[opts.Compressor]; !ok && opts.Level > 0 {
		return nil, ErrInvalidCodec
	}
	return compressChunk(src, opts)
}

// Decompress decompresses a Blosc chunk into a freshly allocated buffer.
func Decompress(src []byte) ([]byte, error) {
	h, err := ParseHeader(src)
	if err != nil {
		return nil, err
	}
	dst := make([]byte, int(h.Nbytes))
	if err := decompressChunk(dst, src, h); err != nil {
		return nil, err
	}
	return dst, nil
}

// DecompressInto decompresses a Blosc chunk into dst, which must be exactly
// the chunk's uncompressed size. It fails with ErrSizeMismatch otherwise.
func DecompressInto(dst, src []byte) error {
	h, err := ParseHeader(src)
	if err != nil {
		return err
	}
	if len(dst) != int(h.Nbytes) {
		return ErrSizeMismatch
	}
	return decompressChunk(dst, src, h)
}

// DecompressRange decompresses the elements [start, start+count) of a chunk
// interpreted as an array of itemSize-byte elements, touching only the
// blocks that overlap the range.
func DecompressRange(src []byte, start, count, itemSize int) ([]byte, error) {
	h, err := ParseHeader(src)
	if err != nil {
		return nil, err
	}
	if err := validateRange(h, start, count, itemSize); err != nil {
		return nil, err
	}
	dst := make([]byte, count*itemSize)
	if err := decompressRange(dst, src, h, start*itemSize, count*itemSize); err != nil {
		return nil, err
	}
	return dst, nil
}

// DecompressRangeInto is DecompressRange writing into dst, which must be
// exactly count*itemSize bytes.
func DecompressRangeInto(dst, src []byte, start, count, itemSize int) error {
	h, err := ParseHeader(src)
	if err != nil {
		return err
	}
	if err := validateRange(h, start, count, itemSize); err != nil {
		return err
	}
	if len(dst) != count*itemSize {
		return ErrSizeMismatch
	}
	return decompressRange(dst, src, h, start*itemSize, count*itemSize)
}

// validateRange bounds a ranged request against the chunk's element count.
// Validation happens before any allocation sized from the request.
func validateRange(h Header, start, count, itemSize int) error {
	if itemSize < 1 || start < 0 || count < 0 {
		return ErrOutOfRange
	}
	total := int(h.Nbytes) / itemSize
	if start > total || count > total-start {
		return ErrOutOfRange
	}
	return nil
}

// normalize clamps option values into the ranges the format can record.
func normalize(opts Options) Options {
	if opts.TypeSize < 1 || opts.TypeSize > MaxTypeSize {
		opts.TypeSize = 1
	}
	if opts.Level < 0 {
		opts.Level = 0
	}
	if opts.Level > 9 {
		opts.Level = 9
	}
	if opts.Shuffle == AutoShuffle {
		if opts.TypeSize == 1 {
			opts.Shuffle = BitShuffle
		} else {
			opts.Shuffle = ByteShuffle
		}
	}
	// Byte shuffle over single-byte elements is the identity.
	if opts.Shuffle == ByteShuffle && opts.TypeSize == 1 {
		opts.Shuffle = NoShuffle
	}
	return opts
}
