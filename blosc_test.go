package numcodecs

import (
	"bytes"
	cryptorand "crypto/rand"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func compressiblePattern(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 64)
	}
	return data
}

func float64Pattern(n int) []byte {
	data := make([]byte, n*8)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(float64(i)*0.25))
	}
	return data
}

func TestBloscRoundTripAllCNames(t *testing.T) {
	data := float64Pattern(4000)

	for _, cname := range ListCompressors() {
		t.Run(cname, func(t *testing.T) {
			codec, err := NewBlosc(BloscOptions{CName: cname, CLevel: 5, Shuffle: ByteShuffle, TypeSize: 8})
			require.NoError(t, err)

			encoded, err := codec.Encode(data)
			require.NoError(t, err)

			decoded, err := codec.Decode(encoded, nil)
			require.NoError(t, err)
			require.False(t, decoded.InPlace)
			require.Equal(t, data, decoded.Data)
		})
	}
}

func TestBloscRoundTripShuffleModes(t *testing.T) {
	data := float64Pattern(2000)

	for _, shuffle := range []ShuffleMode{NoShuffle, ByteShuffle, BitShuffle, AutoShuffle} {
		codec, err := NewBlosc(BloscOptions{CName: "zstd", CLevel: 5, Shuffle: shuffle, TypeSize: 8})
		require.NoError(t, err)

		encoded, err := codec.Encode(data)
		require.NoError(t, err)
		decoded, err := codec.Decode(encoded, nil)
		require.NoError(t, err)
		require.Equal(t, data, decoded.Data, "shuffle mode %d", shuffle)
	}
}

func TestBloscHeaderSizesMatchInput(t *testing.T) {
	codec, err := NewBlosc(DefaultBloscOptions())
	require.NoError(t, err)

	for _, size := range []int{0, 1, 100, 4096, 100000} {
		data := compressiblePattern(size)
		encoded, err := codec.Encode(data)
		require.NoError(t, err)

		sizes, err := Sizes(encoded)
		require.NoError(t, err)
		require.Equal(t, size, sizes.Nbytes)
		require.Equal(t, len(encoded), sizes.Cbytes)
	}
}

func TestBloscLevelZeroStores(t *testing.T) {
	codec, err := NewBlosc(BloscOptions{CName: "lz4", CLevel: 0, TypeSize: 1})
	require.NoError(t, err)

	data := compressiblePattern(5000)
	encoded, err := codec.Encode(data)
	require.NoError(t, err)

	sizes, err := Sizes(encoded)
	require.NoError(t, err)
	require.Equal(t, len(data)+16, sizes.Cbytes, "level 0 stores the input uncompressed")

	meta, err := MetaInfo(encoded)
	require.NoError(t, err)
	require.False(t, meta.Shuffled)

	decoded, err := codec.Decode(encoded, nil)
	require.NoError(t, err)
	require.Equal(t, data, decoded.Data)
}

func TestBloscDecodeInPlace(t *testing.T) {
	codec, err := NewBlosc(DefaultBloscOptions())
	require.NoError(t, err)

	data := compressiblePattern(10000)
	encoded, err := codec.Encode(data)
	require.NoError(t, err)

	dst := make([]byte, len(data))
	decoded, err := codec.Decode(encoded, dst)
	require.NoError(t, err)
	require.True(t, decoded.InPlace)
	require.Equal(t, data, dst, "decoding must fill the supplied destination")
	require.Equal(t, &dst[0], &decoded.Data[0], "in-place result must alias the destination")
}

func TestBloscDecodeDestSizeMismatch(t *testing.T) {
	codec, err := NewBlosc(DefaultBloscOptions())
	require.NoError(t, err)

	data := compressiblePattern(1000)
	encoded, err := codec.Encode(data)
	require.NoError(t, err)

	for _, n := range []int{1, 999, 1001, 5000} {
		_, err := codec.Decode(encoded, make([]byte, n))
		require.ErrorIs(t, err, ErrDestSize, "destination of %d bytes", n)
	}
}

func TestBloscDecodePartialEquivalence(t *testing.T) {
	const typeSize = 8
	data := float64Pattern(4096)

	codec, err := NewBlosc(BloscOptions{
		CName:     "lz4",
		CLevel:    5,
		Shuffle:   ByteShuffle,
		TypeSize:  typeSize,
		BlockSize: 2048,
	})
	require.NoError(t, err)

	encoded, err := codec.Encode(data)
	require.NoError(t, err)

	full, err := codec.Decode(encoded, nil)
	require.NoError(t, err)

	for _, r := range []struct{ start, count int }{
		{0, 1},
		{0, 4096},
		{17, 100},
		{250, 20}, // straddles a block boundary
		{4095, 1},
		{4096, 0},
	} {
		partial, err := codec.DecodePartial(encoded, r.start, r.count, nil)
		require.NoError(t, err, "range [%d, %d)", r.start, r.start+r.count)
		want := full.Data[r.start*typeSize : (r.start+r.count)*typeSize]
		require.Equal(t, want, partial.Data, "range [%d, %d)", r.start, r.start+r.count)
	}
}

func TestBloscDecodePartialInPlace(t *testing.T) {
	codec, err := NewBlosc(BloscOptions{CName: "lz4", CLevel: 5, Shuffle: ByteShuffle, TypeSize: 4})
	require.NoError(t, err)

	data := compressiblePattern(4096)
	encoded, err := codec.Encode(data)
	require.NoError(t, err)

	dst := make([]byte, 40)
	decoded, err := codec.DecodePartial(encoded, 10, 10, dst)
	require.NoError(t, err)
	require.True(t, decoded.InPlace)
	require.Equal(t, data[40:80], dst)

	_, err = codec.DecodePartial(encoded, 10, 10, make([]byte, 39))
	require.ErrorIs(t, err, ErrDestSize)
}

func TestBloscDecodePartialOutOfBounds(t *testing.T) {
	codec, err := NewBlosc(BloscOptions{CName: "lz4", CLevel: 5, TypeSize: 4})
	require.NoError(t, err)

	encoded, err := codec.Encode(compressiblePattern(4096)) // 1024 elements
	require.NoError(t, err)

	for _, r := range []struct{ start, count int }{
		{-1, 1},
		{0, -1},
		{0, 1025},
		{1024, 1},
		{1000, 100},
	} {
		_, err := codec.DecodePartial(encoded, r.start, r.count, nil)
		require.ErrorIs(t, err, ErrRangeOutOfBounds, "start=%d count=%d", r.start, r.count)
	}
}

func TestBloscDecodeCorruptHeader(t *testing.T) {
	codec, err := NewBlosc(DefaultBloscOptions())
	require.NoError(t, err)

	_, err = codec.Decode([]byte{1, 2, 3}, nil)
	require.ErrorIs(t, err, ErrCorruptHeader)

	encoded, err := codec.Encode(compressiblePattern(100))
	require.NoError(t, err)
	encoded[0] = 77 // invalid format marker
	_, err = codec.Decode(encoded, nil)
	require.ErrorIs(t, err, ErrCorruptHeader)
}

func TestBloscIncompressibleRoundTrip(t *testing.T) {
	codec, err := NewBlosc(BloscOptions{CName: "zstd", CLevel: 9, Shuffle: BitShuffle, TypeSize: 2})
	require.NoError(t, err)

	data := make([]byte, 10000)
	_, err = cryptorand.Read(data)
	require.NoError(t, err)

	encoded, err := codec.Encode(data)
	require.NoError(t, err)
	decoded, err := codec.Decode(encoded, nil)
	require.NoError(t, err)
	require.True(t, bytes.Equal(data, decoded.Data))
}

func TestBloscOptionValidation(t *testing.T) {
	_, err := NewBlosc(BloscOptions{CName: "not-a-compressor"})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewBlosc(BloscOptions{CName: "lz4", CLevel: 10})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewBlosc(BloscOptions{CName: "lz4", CLevel: -1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewBlosc(BloscOptions{CName: "lz4", Shuffle: ShuffleMode(7)})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewBlosc(BloscOptions{CName: "lz4", TypeSize: 300})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewBlosc(BloscOptions{CName: "lz4", BlockSize: -5})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBloscFromConfig(t *testing.T) {
	codec, err := New(Config{
		"id":       "blosc",
		"cname":    "zstd",
		"clevel":   3,
		"shuffle":  2,
		"typesize": 8,
	})
	require.NoError(t, err)

	b := codec.(*Blosc)
	require.Equal(t, "blosc", b.ID())
	require.Equal(t, "zstd", b.Options().CName)
	require.Equal(t, 3, b.Options().CLevel)
	require.Equal(t, BitShuffle, b.Options().Shuffle)
	require.Equal(t, 8, b.Options().TypeSize)

	data := float64Pattern(1000)
	encoded, err := b.Encode(data)
	require.NoError(t, err)

	name, err := ComplibName(encoded)
	require.NoError(t, err)
	require.Equal(t, "zstd", name)

	decoded, err := b.Decode(encoded, nil)
	require.NoError(t, err)
	require.Equal(t, data, decoded.Data)
}
