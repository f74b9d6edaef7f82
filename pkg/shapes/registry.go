package shapes

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Registry maps state names to immutable N-point targets.
// A globe sphere is generated at construction so at least one target is
// always available, before any shape source has loaded.
type Registry struct {
	mu       sync.RWMutex
	n        int
	targets  map[string]*Target
	fallback string
	log      *slog.Logger
}

// NewRegistry creates a registry for n-point targets.
func NewRegistry(n int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		n:        n,
		targets:  make(map[string]*Target),
		fallback: Human,
		log:      logger,
	}
	r.targets[Globe] = &Target{name: Globe, points: GenerateSphere(n, ReferenceSize/2)}
	return r
}

// Size returns N.
func (r *Registry) Size() int {
	return r.n
}

// Register stores a copy of coords under name, resampling to N if the
// length differs. Re-registering a name replaces the previous target; the
// old *Target stays valid and unchanged for holders.
func (r *Registry) Register(name string, coords []mgl64.Vec3) (*Target, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidShape)
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: %s has no points", ErrInvalidShape, name)
	}

	var points []mgl64.Vec3
	if len(coords) == r.n {
		points = make([]mgl64.Vec3, r.n)
		copy(points, coords)
	} else {
		points = Resample(coords, r.n, saltResample)
	}

	t := &Target{name: name, points: points}

	r.mu.Lock()
	r.targets[name] = t
	r.mu.Unlock()

	return t, nil
}

// RegisterShape registers a loaded shape under its name.
func (r *Registry) RegisterShape(s Shape) (*Target, error) {
	return r.Register(s.Name, s.Points)
}

// Get retrieves a target by name.
func (r *Registry) Get(name string) (*Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.targets[name]
	return ok
}

// SetFallback changes the target Resolve returns for unknown names.
func (r *Registry) SetFallback(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = name
}

// Resolve returns the target for name, or the fallback target when name is
// unknown. The fallback is the configured one (human by default) if it is
// registered, else the globe, which always exists. Fallbacks are logged.
func (r *Registry) Resolve(name string) *Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.targets[name]; ok {
		return t
	}

	t, ok := r.targets[r.fallback]
	if !ok {
		t = r.targets[Globe]
	}
	r.log.Warn("unknown target, using fallback", "target", name, "fallback", t.name)
	return t
}

// List returns all registered target names, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered targets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}
