package numcodecs

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Constructor builds a codec instance from a configuration. The config's
// "id" key has already been used for dispatch; constructors read only their
// own parameters.
type Constructor func(cfg Config) (Codec, error)

// Descriptor ties a codec identifier to its constructor. Descriptors live
// for the process lifetime once registered; there is no removal primitive.
type Descriptor struct {
	Name string
	New  Constructor
}

// Registry maps codec identifiers to constructors. Registration typically
// happens once at startup while resolution happens on every open of a
// stored array, so reads take a shared lock and never race with Register.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Constructor
	order  []string
	logger *zap.Logger
}

// NewRegistry returns an empty registry. Logging is disabled until
// SetLogger is called.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Constructor),
		logger: zap.NewNop(),
	}
}

// SetLogger routes the registry's debug logging to l. A nil logger disables
// logging again.
func (r *Registry) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	r.mu.Lock()
	r.logger = l
	r.mu.Unlock()
}

// Register adds a descriptor. Registering a name twice replaces the earlier
// constructor; that overwrite is the documented policy, not an error. The
// name keeps its original position in List.
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[d.Name]; !exists {
		r.order = append(r.order, d.Name)
	}
	r.byName[d.Name] = d.New
	r.logger.Debug("registering codec", zap.String("id", d.Name))
}

// Resolve returns the descriptor registered under name, or ErrUnknownCodec.
func (r *Registry) Resolve(name string) (Descriptor, error) {
	r.mu.RLock()
	ctor, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return Descriptor{Name: name, New: ctor}, nil
}

// List returns all registered names in registration order, so iteration is
// deterministic within a process run.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// New resolves cfg's "id" and constructs a codec from it.
func (r *Registry) New(cfg Config) (Codec, error) {
	id := cfg.ID()
	if id == "" {
		return nil, fmt.Errorf("%w: config is missing an %q field", ErrInvalidConfig, "id")
	}
	d, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	logger := r.logger
	r.mu.RUnlock()
	logger.Debug("instantiating codec", zap.String("id", id))
	return d.New(cfg)
}
