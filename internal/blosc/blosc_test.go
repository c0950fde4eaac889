package blosc

import (
	"bytes"
	cryptorand "crypto/rand"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func makeCompressibleData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 64)
	}
	return data
}

func makeFloat32Data(n int) []byte {
	data := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(float32(i)*0.5))
	}
	return data
}

func roundTrip(t *testing.T, data []byte, opts Options) []byte {
	t.Helper()

	compressed, err := Compress(data, opts)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if !bytes.Equal(data, decompressed) {
		t.Error("data mismatch after round-trip")
	}
	return compressed
}

func TestCompressDecompressAllCompressors(t *testing.T) {
	data := makeCompressibleData(10000)

	for _, comp := range []CompressorID{LZ4, LZ4HC, Snappy, ZLIB, ZSTD} {
		t.Run(comp.String(), func(t *testing.T) {
			roundTrip(t, data, Options{Compressor: comp, Level: 5, TypeSize: 1})
		})
	}
}

func TestCompressDecompressShuffleModes(t *testing.T) {
	data := makeFloat32Data(2500)

	for _, shuffle := range []Shuffle{NoShuffle, ByteShuffle, BitShuffle, AutoShuffle} {
		t.Run(shuffle.String(), func(t *testing.T) {
			roundTrip(t, data, Options{
				Compressor: LZ4,
				Level:      5,
				Shuffle:    shuffle,
				TypeSize:   4,
			})
		})
	}
}

func TestShuffleModeRecordedInHeader(t *testing.T) {
	// Periodic data stays periodic under either shuffle, so every mode
	// compresses and no case falls back to a stored chunk.
	data := makeCompressibleData(10000)

	cases := []struct {
		requested Shuffle
		typeSize  int
		want      Shuffle
	}{
		{NoShuffle, 4, NoShuffle},
		{ByteShuffle, 4, ByteShuffle},
		{BitShuffle, 4, BitShuffle},
		{AutoShuffle, 4, ByteShuffle},
		{AutoShuffle, 1, BitShuffle},
		{ByteShuffle, 1, NoShuffle}, // identity over single bytes
	}
	for _, tc := range cases {
		compressed, err := Compress(data, Options{
			Compressor: LZ4,
			Level:      5,
			Shuffle:    tc.requested,
			TypeSize:   tc.typeSize,
		})
		if err != nil {
			t.Fatalf("compress failed: %v", err)
		}
		h, err := ParseHeader(compressed)
		if err != nil {
			t.Fatalf("parse header failed: %v", err)
		}
		if got := h.ShuffleMode(); got != tc.want {
			t.Errorf("requested %v with typesize %d: header records %v, want %v",
				tc.requested, tc.typeSize, got, tc.want)
		}
	}
}

func TestMultiBlockRoundTrip(t *testing.T) {
	data := makeFloat32Data(4096) // 16 KiB

	compressed := roundTrip(t, data, Options{
		Compressor: ZSTD,
		Level:      5,
		Shuffle:    ByteShuffle,
		TypeSize:   4,
		BlockSize:  1024,
	})

	h, err := ParseHeader(compressed)
	if err != nil {
		t.Fatalf("parse header failed: %v", err)
	}
	if h.BlockSize != 1024 {
		t.Errorf("block size = %d, want 1024", h.BlockSize)
	}
	if h.IsStored() {
		t.Error("compressible data should not be stored")
	}
}

func TestBlockSizeAlignedToTypeSize(t *testing.T) {
	data := makeCompressibleData(9000)

	compressed, err := Compress(data, Options{
		Compressor: LZ4,
		Level:      5,
		Shuffle:    ByteShuffle,
		TypeSize:   8,
		BlockSize:  1001, // not a multiple of 8
	})
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	h, err := ParseHeader(compressed)
	if err != nil {
		t.Fatalf("parse header failed: %v", err)
	}
	if !h.IsStored() && h.BlockSize%8 != 0 {
		t.Errorf("block size %d is not a multiple of the type size", h.BlockSize)
	}
}

func TestIncompressibleDataStored(t *testing.T) {
	data := make([]byte, 10000)
	if _, err := cryptorand.Read(data); err != nil {
		t.Fatal(err)
	}

	compressed := roundTrip(t, data, Options{Compressor: LZ4, Level: 5, TypeSize: 1})

	h, err := ParseHeader(compressed)
	if err != nil {
		t.Fatalf("parse header failed: %v", err)
	}
	if !h.IsStored() {
		t.Error("incompressible data should fall back to a stored chunk")
	}
	if len(compressed) != HeaderSize+len(data) {
		t.Errorf("stored chunk is %d bytes, want %d", len(compressed), HeaderSize+len(data))
	}
}

func TestLevelZeroStoresUncompressed(t *testing.T) {
	data := makeCompressibleData(5000)

	compressed := roundTrip(t, data, Options{Compressor: LZ4, Level: 0, TypeSize: 1})

	h, err := ParseHeader(compressed)
	if err != nil {
		t.Fatalf("parse header failed: %v", err)
	}
	if !h.IsStored() {
		t.Error("level 0 should store uncompressed")
	}
	if !bytes.Equal(compressed[HeaderSize:], data) {
		t.Error("stored payload should be the input verbatim")
	}
}

func TestEmptyInputRoundTrip(t *testing.T) {
	compressed := roundTrip(t, []byte{}, Options{Compressor: LZ4, Level: 5, TypeSize: 1})

	if len(compressed) != HeaderSize {
		t.Errorf("empty chunk is %d bytes, want %d", len(compressed), HeaderSize)
	}
}

func TestCompressRejectsUnknownCompressor(t *testing.T) {
	_, err := Compress(makeCompressibleData(100), Options{Compressor: BloscLZ, Level: 5, TypeSize: 1})
	if !errors.Is(err, ErrInvalidCodec) {
		t.Errorf("got %v, want ErrInvalidCodec", err)
	}
}

func TestDecompressShortBuffer(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {0x02}, make([]byte, HeaderSize-1)} {
		if _, err := Decompress(data); !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("len %d: got %v, want ErrInvalidHeader", len(data), err)
		}
	}
}

func TestDecompressWrongVersion(t *testing.T) {
	compressed := roundTrip(t, makeCompressibleData(100), Options{Compressor: LZ4, Level: 5, TypeSize: 1})
	compressed[0] = 99

	if _, err := Decompress(compressed); !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("got %v, want ErrInvalidVersion", err)
	}
}

func TestDecompressUnknownCompressorInHeader(t *testing.T) {
	data := makeCompressibleData(1000)
	compressed, err := Compress(data, Options{Compressor: LZ4, Level: 5, TypeSize: 1})
	if err != nil {
		t.Fatal(err)
	}
	h, _ := ParseHeader(compressed)
	if h.IsStored() {
		t.Skip("chunk was stored, no compressor dispatch on decode")
	}
	compressed[1] = 200

	if _, err := Decompress(compressed); !errors.Is(err, ErrInvalidCodec) {
		t.Errorf("got %v, want ErrInvalidCodec", err)
	}
}

func TestDecompressTruncatedPayload(t *testing.T) {
	compressed := roundTrip(t, makeCompressibleData(5000), Options{Compressor: ZLIB, Level: 5, TypeSize: 1})

	if _, err := Decompress(compressed[:len(compressed)-10]); !errors.Is(err, ErrInvalidData) {
		t.Errorf("got %v, want ErrInvalidData", err)
	}
}

func TestDecompressIntoWrongSize(t *testing.T) {
	compressed := roundTrip(t, makeCompressibleData(1000), Options{Compressor: LZ4, Level: 5, TypeSize: 1})

	if err := DecompressInto(make([]byte, 999), compressed); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("got %v, want ErrSizeMismatch", err)
	}
	if err := DecompressInto(make([]byte, 1001), compressed); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("got %v, want ErrSizeMismatch", err)
	}
}

func TestDecompressInto(t *testing.T) {
	data := makeCompressibleData(1000)
	compressed := roundTrip(t, data, Options{Compressor: LZ4, Level: 5, TypeSize: 1})

	dst := make([]byte, 1000)
	if err := DecompressInto(dst, compressed); err != nil {
		t.Fatalf("decompress into failed: %v", err)
	}
	if !bytes.Equal(dst, data) {
		t.Error("data mismatch after in-place decompress")
	}
}

func TestDecompressRange(t *testing.T) {
	data := makeFloat32Data(4096)

	for _, opts := range []Options{
		{Compressor: LZ4, Level: 5, Shuffle: ByteShuffle, TypeSize: 4, BlockSize: 1024},
		{Compressor: ZSTD, Level: 5, Shuffle: BitShuffle, TypeSize: 4, BlockSize: 512},
		{Compressor: LZ4, Level: 0, TypeSize: 4}, // stored
	} {
		compressed, err := Compress(data, opts)
		if err != nil {
			t.Fatalf("compress failed: %v", err)
		}
		for _, r := range []struct{ start, count int }{
			{0, 10},
			{0, 4096},
			{1000, 200},
			{255, 2},   // straddles a block boundary
			{4090, 6},  // final partial block
			{4096, 0},  // empty range at the end
			{100, 0},   // empty range
		} {
			got, err := DecompressRange(compressed, r.start, r.count, 4)
			if err != nil {
				t.Fatalf("range [%d, %d): %v", r.start, r.start+r.count, err)
			}
			want := data[r.start*4 : (r.start+r.count)*4]
			if !bytes.Equal(got, want) {
				t.Errorf("range [%d, %d) mismatch", r.start, r.start+r.count)
			}
		}
	}
}

func TestDecompressRangeOutOfBounds(t *testing.T) {
	data := makeFloat32Data(1024)
	compressed, err := Compress(data, Options{Compressor: LZ4, Level: 5, Shuffle: ByteShuffle, TypeSize: 4})
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range []struct{ start, count, itemSize int }{
		{-1, 10, 4},
		{0, -1, 4},
		{0, 1025, 4},
		{1024, 1, 4},
		{1020, 5, 4},
		{0, 1, 0},
	} {
		_, err := DecompressRange(compressed, r.start, r.count, r.itemSize)
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("start=%d count=%d itemSize=%d: got %v, want ErrOutOfRange",
				r.start, r.count, r.itemSize, err)
		}
	}
}

func TestDecompressRangeIntoWrongSize(t *testing.T) {
	data := makeFloat32Data(1024)
	compressed, err := Compress(data, Options{Compressor: LZ4, Level: 5, Shuffle: ByteShuffle, TypeSize: 4})
	if err != nil {
		t.Fatal(err)
	}

	err = DecompressRangeInto(make([]byte, 39), compressed, 0, 10, 4)
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("got %v, want ErrSizeMismatch", err)
	}
}

func TestParallelRoundTrip(t *testing.T) {
	prev := SetNThreads(4)
	defer SetNThreads(prev)

	data := makeFloat32Data(65536) // 256 KiB across many blocks
	roundTrip(t, data, Options{
		Compressor: LZ4,
		Level:      5,
		Shuffle:    ByteShuffle,
		TypeSize:   4,
		BlockSize:  4096,
	})
}

func TestSetNThreads(t *testing.T) {
	prev := SetNThreads(4)
	defer SetNThreads(prev)

	if got := NThreads(); got != 4 {
		t.Errorf("NThreads() = %d, want 4", got)
	}
	if got := SetNThreads(2); got != 4 {
		t.Errorf("SetNThreads returned previous value %d, want 4", got)
	}
	if got := SetNThreads(0); got != 2 {
		t.Errorf("SetNThreads returned previous value %d, want 2", got)
	}
	// Values below 1 clamp to 1.
	if got := NThreads(); got != 1 {
		t.Errorf("NThreads() = %d, want 1 after clamping", got)
	}
}

func TestListCompressors(t *testing.T) {
	names := ListCompressors()
	want := []string{"lz4", "lz4hc", "snappy", "zlib", "zstd"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestCompressorByName(t *testing.T) {
	for _, name := range ListCompressors() {
		id, ok := CompressorByName(name)
		if !ok {
			t.Errorf("CompressorByName(%q) not found", name)
		}
		if id.String() != name {
			t.Errorf("CompressorByName(%q) = %v", name, id)
		}
	}
	if _, ok := CompressorByName("blosclz"); ok {
		t.Error("blosclz has no backend and should not resolve")
	}
	if _, ok := CompressorByName("nope"); ok {
		t.Error("unknown name should not resolve")
	}
}
