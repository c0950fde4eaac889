package numcodecs

import "bytes"

// Raw is the identity codec: data passes through unchanged. It is useful as
// a baseline and for data that is already compressed.
type Raw struct{}

// NewRaw returns a Raw codec.
func NewRaw() *Raw { return &Raw{} }

func rawFromConfig(Config) (Codec, error) {
	return NewRaw(), nil
}

// ID returns "raw".
func (c *Raw) ID() string { return "raw" }

// Encode returns a copy of src.
func (c *Raw) Encode(src []byte) ([]byte, error) {
	return bytes.Clone(src), nil
}

// Decode returns a copy of src, or writes it into dst when supplied.
func (c *Raw) Decode(src, dst []byte) (Decoded, error) {
	if dst == nil {
		return Decoded{Data: bytes.Clone(src)}, nil
	}
	return finishDecode(src, dst)
}

// DecodePartial copies the requested byte range of src.
func (c *Raw) DecodePartial(src []byte, start, count int, dst []byte) (Decoded, error) {
	if start < 0 || count < 0 || start > len(src) || count > len(src)-start {
		return Decoded{}, errRange(start, count, len(src))
	}
	if dst == nil {
		return Decoded{Data: bytes.Clone(src[start : start+count])}, nil
	}
	return finishDecode(src[start:start+count], dst)
}
