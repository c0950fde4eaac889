package blosc

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/snappy"
	kzlib "github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// backend compresses and decompresses a single block.
type backend interface {
	// compress compresses src at the given level (1-9). The result may be
	// larger than src for incompressible input; the caller handles that.
	compress(src []byte, level int) ([]byte, error)

	// decompress decompresses src, which is known to expand to size bytes.
	decompress(src []byte, size int) ([]byte, error)
}

var backends = map[CompressorID]backend{
	LZ4:    lz4Backend{},
	LZ4HC:  lz4hcBackend{},
	ZLIB:   zlibBackend{},
	ZSTD:   zstdBackend{},
	Snappy: snappyBackend{},
}

// lz4CompressorPool reuses lz4.Compressor hash tables across calls.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

type lz4Backend struct{}

func (lz4Backend) compress(src []byte, level int) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 {
		// Incompressible.
		return src, nil
	}
	return dst[:n], nil
}

func (lz4Backend) decompress(src []byte, size int) ([]byte, error) {
	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return dst[:n], nil
}

type lz4hcBackend struct{}

func (lz4hcBackend) compress(src []byte, level int) ([]byte, error) {
	var hcLevel lz4.CompressionLevel
	switch {
	case level <= 3:
		hcLevel = lz4.Level1
	case level <= 5:
		hcLevel = lz4.Level5
	case level <= 7:
		hcLevel = lz4.Level7
	default:
		hcLevel = lz4.Level9
	}

	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	ht := make([]int, 1<<16)
	n, err := lz4.CompressBlockHC(src, dst, hcLevel, ht, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4hc compress: %w", err)
	}
	if n == 0 {
		return src, nil
	}
	return dst[:n], nil
}

func (lz4hcBackend) decompress(src []byte, size int) ([]byte, error) {
	// The block format is shared with plain LZ4.
	return lz4Backend{}.decompress(src, size)
}

type zlibBackend struct{}

func (zlibBackend) compress(src []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := kzlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("zlib writer: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, fmt.Errorf("zlib write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}
	return buf.Bytes(), nil
}

func (zlibBackend) decompress(src []byte, size int) ([]byte, error) {
	r, err := kzlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("zlib reader: %w", err)
	}
	defer r.Close()

	dst := make([]byte, size)
	n, err := io.ReadFull(r, dst)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("zlib read: %w", err)
	}
	return dst[:n], nil
}

// Persistent zstd encoders by level band. EncodeAll is concurrent-safe, so
// every goroutine shares these.
var zstdEncoders = func() [4]*zstd.Encoder {
	levels := [4]zstd.EncoderLevel{
		zstd.SpeedFastest,
		zstd.SpeedDefault,
		zstd.SpeedBetterCompression,
		zstd.SpeedBestCompression,
	}
	var encoders [4]*zstd.Encoder
	for i, level := range levels {
		e, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderCRC(false))
		encoders[i] = e
	}
	return encoders
}()

// Persistent zstd decoder; DecodeAll is concurrent-safe.
var zstdDecoder = func() *zstd.Decoder {
	d, _ := zstd.NewReader(nil)
	return d
}()

type zstdBackend struct{}

func (zstdBackend) compress(src []byte, level int) ([]byte, error) {
	idx := 1
	switch {
	case level <= 2:
		idx = 0
	case level <= 4:
		idx = 1
	case level <= 6:
		idx = 2
	default:
		idx = 3
	}
	return zstdEncoders[idx].EncodeAll(src, nil), nil
}

func (zstdBackend) decompress(src []byte, size int) ([]byte, error) {
	dst, err := zstdDecoder.DecodeAll(src, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return dst, nil
}

type snappyBackend struct{}

func (snappyBackend) compress(src []byte, level int) ([]byte, error) {
	// Snappy has no levels.
	return snappy.Encode(nil, src), nil
}

func (snappyBackend) decompress(src []byte, size int) ([]byte, error) {
	dst, err := snappy.Decode(make([]byte, size), src)
	if err != nil {
		return nil, fmt.Errorf("snappy decode: %w", err)
	}
	return dst, nil
}
