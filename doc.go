// Package numcodecs provides a registry of buffer compression and filter
// codecs for array storage formats.
//
// A Codec turns a byte buffer into an encoded form and back, and can decode
// a sub-range of elements without reading the whole buffer. Codecs are
// resolved by a short lowercase identifier ("blosc", "zstd", "lz4", ...)
// through a Registry, so storage layers can persist the identifier next to
// the data and rehydrate the codec later from a Config.
//
//	codec, err := numcodecs.New(numcodecs.Config{"id": "blosc", "cname": "zstd", "clevel": 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	encoded, err := codec.Encode(data)
//
// The built-in blosc codec carries a 16-byte header on every encoded buffer;
// Sizes, ComplibName and MetaInfo inspect that header without decoding, and
// GetNThreads/SetNThreads control the engine's internal parallelism
// process-wide.
//
// All codecs are immutable after construction and safe for concurrent use.
package numcodecs
