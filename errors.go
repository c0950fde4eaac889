package numcodecs

import "errors"

// Predefined errors for common failure conditions. These can be checked
// using errors.Is for programmatic error handling. Every error is reported
// synchronously to the caller of the failing operation; nothing is retried
// internally.
var (
	// ErrBufferTooLarge indicates the input exceeds the engine's maximum
	// supported buffer size.
	ErrBufferTooLarge = errors.New("numcodecs: buffer exceeds maximum supported size")

	// ErrCorruptHeader indicates the buffer is too short to hold a header
	// or carries an invalid format marker.
	ErrCorruptHeader = errors.New("numcodecs: corrupt buffer header")

	// ErrUnknownComplib indicates the header's algorithm code is not in the
	// known set.
	ErrUnknownComplib = errors.New("numcodecs: unrecognized compressor in header")

	// ErrDestSize indicates a caller-supplied destination buffer does not
	// match the decoded size exactly.
	ErrDestSize = errors.New("numcodecs: destination size mismatch")

	// ErrRangeOutOfBounds indicates a partial decode range falls outside
	// the buffer's element count.
	ErrRangeOutOfBounds = errors.New("numcodecs: partial decode range out of bounds")

	// ErrUnknownCodec indicates no codec is registered under the requested
	// identifier.
	ErrUnknownCodec = errors.New("numcodecs: unknown codec")

	// ErrInvalidConfig indicates a codec configuration holds a missing,
	// mistyped or out-of-range value.
	ErrInvalidConfig = errors.New("numcodecs: invalid codec config")

	// ErrEngine wraps failures surfaced by the compression engine itself.
	// It is the only error kind that carries a nested cause.
	ErrEngine = errors.New("numcodecs: compression engine failure")
)
