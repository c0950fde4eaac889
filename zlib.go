package numcodecs

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Zlib encodes buffers as zlib streams.
type Zlib struct {
	level int
}

// NewZlib returns a Zlib codec for the given level, 1-9.
func NewZlib(level int) (*Zlib, error) {
	if level < 1 || level > 9 {
		return nil, fmt.Errorf("%w: zlib level must be in [1, 9], got %d", ErrInvalidConfig, level)
	}
	return &Zlib{level: level}, nil
}

func zlibFromConfig(cfg Config) (Codec, error) {
	level, err := cfg.intValue("level", 1)
	if err != nil {
		return nil, err
	}
	return NewZlib(level)
}

// ID returns "zlib".
func (c *Zlib) ID() string { return "zlib" }

// Level returns the configured compression level.
func (c *Zlib) Level() int { return c.level }

// Encode compresses src.
func (c *Zlib) Encode(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib writer: %v", ErrEngine, err)
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, fmt.Errorf("%w: zlib write: %v", ErrEngine, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: zlib close: %v", ErrEngine, err)
	}
	return buf.Bytes(), nil
}

// Decode decompresses src. See Codec.Decode for the destination contract.
func (c *Zlib) Decode(src, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return finishDecode(out, dst)
}

// DecodePartial decodes a byte range by decoding the whole stream and
// slicing; zlib streams have no random access.
func (c *Zlib) DecodePartial(src []byte, start, count int, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return partialFromFull(out, start, count, 1, dst)
}

func (c *Zlib) decode(src []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib reader: %v", ErrEngine, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib read: %v", ErrEngine, err)
	}
	return out, nil
}
