package numcodecs

import "sync"

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the shared process-wide registry, creating it and
// registering the built-in codecs on first use.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		for _, d := range builtins() {
			r.Register(d)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// builtins lists the codecs every process starts with.
func builtins() []Descriptor {
	return []Descriptor{
		{Name: "blosc", New: bloscFromConfig},
		{Name: "lz4", New: lz4FromConfig},
		{Name: "zstd", New: zstdFromConfig},
		{Name: "zlib", New: zlibFromConfig},
		{Name: "gzip", New: gzipFromConfig},
		{Name: "s2", New: s2FromConfig},
		{Name: "raw", New: rawFromConfig},
		{Name: "delta", New: deltaFromConfig},
		{Name: "shuffle", New: shuffleFromConfig},
	}
}

// Register adds a descriptor to the default registry.
func Register(d Descriptor) {
	DefaultRegistry().Register(d)
}

// Resolve looks up a descriptor in the default registry.
func Resolve(name string) (Descriptor, error) {
	return DefaultRegistry().Resolve(name)
}

// List returns the names registered in the default registry.
func List() []string {
	return DefaultRegistry().List()
}

// New constructs a codec from cfg using the default registry.
func New(cfg Config) (Codec, error) {
	return DefaultRegistry().New(cfg)
}
