package blosc

import (
	"encoding/binary"
	"fmt"
)

// Flag bits in byte 2 of the chunk header.
const (
	flagByteShuffle = 0x1 // byte shuffle applied
	flagMemcpy      = 0x2 // payload stored uncompressed
	flagBitShuffle  = 0x4 // bit shuffle applied
)

// Header is the 16-byte metadata prefix on every Blosc chunk.
//
// The layout is a fixed external contract: byte 0 format version, byte 1
// compressor code, byte 2 flags, byte 3 shuffle element size, then three
// little-endian uint32 fields for the uncompressed size, the block size and
// the total chunk size including the header.
type Header struct {
	Version    uint8
	Compressor uint8
	Flags      uint8
	TypeSize   uint8
	Nbytes     uint32
	BlockSize  uint32
	Cbytes     uint32
}

// ParseHeader reads and validates a chunk header. It fails with
// ErrInvalidHeader on short input and ErrInvalidVersion on an unknown
// format marker.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, ErrInvalidHeader
	}
	h := Header{
		Version:    data[0],
		Compressor: data[1],
		Flags:      data[2],
		TypeSize:   data[3],
		Nbytes:     binary.LittleEndian.Uint32(data[4:8]),
		BlockSize:  binary.LittleEndian.Uint32(data[8:12]),
		Cbytes:     binary.LittleEndian.Uint32(data[12:16]),
	}
	if h.Version != FormatVersion {
		return Header{}, fmt.Errorf("%w: got %d, expected %d", ErrInvalidVersion, h.Version, FormatVersion)
	}
	return h, nil
}

// Bytes serializes the header.
func (h Header) Bytes() []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.Version
	buf[1] = h.Compressor
	buf[2] = h.Flags
	buf[3] = h.TypeSize
	binary.LittleEndian.PutUint32(buf[4:8], h.Nbytes)
	binary.LittleEndian.PutUint32(buf[8:12], h.BlockSize)
	binary.LittleEndian.PutUint32(buf[12:16], h.Cbytes)
	return buf
}

// IsStored reports whether the payload is stored uncompressed.
func (h Header) IsStored() bool {
	return h.Flags&flagMemcpy != 0
}

// Shuffled reports whether any shuffle filter was applied.
func (h Header) Shuffled() bool {
	return h.Flags&(flagByteShuffle|flagBitShuffle) != 0
}

// ShuffleMode returns the shuffle filter recorded in the flags.
func (h Header) ShuffleMode() Shuffle {
	if h.Flags&flagBitShuffle != 0 {
		return BitShuffle
	}
	if h.Flags&flagByteShuffle != 0 {
		return ByteShuffle
	}
	return NoShuffle
}

// shuffleFlags returns the flag bits for a resolved shuffle mode.
func shuffleFlags(mode Shuffle) uint8 {
	switch mode {
	case ByteShuffle:
		return flagByteShuffle
	case BitShuffle:
		return flagBitShuffle
	default:
		return 0
	}
}
