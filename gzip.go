package numcodecs

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// GZip encodes buffers as gzip streams.
type GZip struct {
	level int
}

// NewGZip returns a GZip codec for the given level, 1-9.
func NewGZip(level int) (*GZip, error) {
	if level < 1 || level > 9 {
		return nil, fmt.Errorf("%w: gzip level must be in [1, 9], got %d", ErrInvalidConfig, level)
	}
	return &GZip{level: level}, nil
}

func gzipFromConfig(cfg Config) (Codec, error) {
	level, err := cfg.intValue("level", 1)
	if err != nil {
		return nil, err
	}
	return NewGZip(level)
}

// ID returns "gzip".
func (c *GZip) ID() string { return "gzip" }

// Level returns the configured compression level.
func (c *GZip) Level() int { return c.level }

// Encode compresses src.
func (c *GZip) Encode(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip writer: %v", ErrEngine, err)
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, fmt.Errorf("%w: gzip write: %v", ErrEngine, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: gzip close: %v", ErrEngine, err)
	}
	return buf.Bytes(), nil
}

// Decode decompresses src. See Codec.Decode for the destination contract.
func (c *GZip) Decode(src, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return finishDecode(out, dst)
}

// DecodePartial decodes a byte range by decoding the whole stream and
// slicing; gzip streams have no random access.
func (c *GZip) DecodePartial(src []byte, start, count int, dst []byte) (Decoded, error) {
	out, err := c.decode(src)
	if err != nil {
		return Decoded{}, err
	}
	return partialFromFull(out, start, count, 1, dst)
}

func (c *GZip) decode(src []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: gzip reader: %v", ErrEngine, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip read: %v", ErrEngine, err)
	}
	return out, nil
}
