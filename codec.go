package numcodecs

import "fmt"

// Codec is a configured, reusable encode/decode unit for one algorithm
// family. Implementations are immutable after construction; reconfiguring
// means constructing a new instance. No Codec retains a reference to an
// input or output buffer across calls, so every operation is re-entrant and
// instances are safe for concurrent use.
type Codec interface {
	// ID returns the identifier the codec registers under. It is the stable
	// tag persisted alongside encoded data, so it never changes.
	ID() string

	// Encode encodes src into a freshly allocated buffer.
	Encode(src []byte) ([]byte, error)

	// Decode decodes src. When dst is nil a buffer of exactly the decoded
	// size is allocated. When dst is non-nil its length must equal the
	// decoded size (ErrDestSize otherwise) and decoding writes into it,
	// returning an in-place result.
	Decode(src, dst []byte) (Decoded, error)

	// DecodePartial decodes the elements [start, start+count) of src, using
	// the codec's element size (one byte unless the codec is configured
	// with a wider type). Ranges outside the buffer's element count fail
	// with ErrRangeOutOfBounds. The dst contract matches Decode, sized to
	// the requested range.
	//
	// Only codecs with block-level random access avoid decoding the whole
	// buffer; the rest fall back to a full decode and slice.
	DecodePartial(src []byte, start, count int, dst []byte) (Decoded, error)
}

// Decoded is the result of a decode operation. It makes the zero-copy
// contract explicit: InPlace reports whether Data is the caller-supplied
// destination rather than a fresh allocation.
type Decoded struct {
	Data    []byte
	InPlace bool
}

// Config is a codec configuration as stored by higher-level formats. The
// "id" key names the codec; the remaining keys are codec-specific. Values
// that travelled through JSON arrive as float64 and are accepted wherever
// an integer is expected.
type Config map[string]any

// ID returns the codec identifier in the config, or "" when absent.
func (c Config) ID() string {
	id, _ := c["id"].(string)
	return id
}

// intValue reads an integer config value, tolerating the numeric types JSON
// and YAML decoders produce.
func (c Config) intValue(key string, def int) (int, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%w: %q must be an integer, got %v", ErrInvalidConfig, key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %q must be an integer, got %T", ErrInvalidConfig, key, v)
	}
}

// stringValue reads a string config value.
func (c Config) stringValue(key, def string) (string, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrInvalidConfig, key, v)
	}
	return s, nil
}

// finishDecode applies the shared destination contract to a fully decoded
// buffer: copy into dst when supplied, hand out the fresh buffer otherwise.
func finishDecode(out, dst []byte) (Decoded, error) {
	if dst == nil {
		return Decoded{Data: out}, nil
	}
	if len(dst) != len(out) {
		return Decoded{}, fmt.Errorf("%w: destination is %d bytes, decoded size is %d",
			ErrDestSize, len(dst), len(out))
	}
	copy(dst, out)
	return Decoded{Data: dst, InPlace: true}, nil
}

// partialFromFull implements DecodePartial for codecs without block-level
// random access: slice the requested element range out of the fully decoded
// buffer.
func partialFromFull(full []byte, start, count, itemSize int, dst []byte) (Decoded, error) {
	if start < 0 || count < 0 {
		return Decoded{}, fmt.Errorf("%w: start=%d count=%d", ErrRangeOutOfBounds, start, count)
	}
	total := len(full) / itemSize
	if start > total || count > total-start {
		return Decoded{}, errRange(start, count, total)
	}
	return finishDecode(full[start*itemSize:(start+count)*itemSize], dst)
}

func errRange(start, count, total int) error {
	return fmt.Errorf("%w: elements [%d, %d) of %d", ErrRangeOutOfBounds, start, start+count, total)
}
