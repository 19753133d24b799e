package extender

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

// ErrUnknownKind is returned when an extender file names an unregistered kind.
var ErrUnknownKind = errors.New("unknown extender kind")

// Factory builds an extender from its YAML mapping (including the "kind" key).
type Factory func(node *yaml.Node) (Extender, error)

// Registry maps extender kinds to factories and legacy names to callables.
type Registry struct {
	mu     sync.RWMutex
	kinds  map[string]Factory
	legacy map[string]LegacyFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds:  make(map[string]Factory),
		legacy: make(map[string]LegacyFunc),
	}
}

// RegisterKind makes kind available to extender files.
func (r *Registry) RegisterKind(kind string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = f
}

// RegisterLegacy makes a legacy callable addressable by name.
func (r *Registry) RegisterLegacy(name string, fn LegacyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.legacy[name] = fn
}

// Legacy implements LegacyResolver.
func (r *Registry) Legacy(name string) (LegacyFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.legacy[name]
	return fn, ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build instantiates kind from node.
func (r *Registry) Build(kind string, node *yaml.Node) (Extender, error) {
	r.mu.RLock()
	f, ok := r.kinds[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownKind, kind, strings.Join(r.Kinds(), ", "))
	}
	return f(node)
}

// Decode returns a Factory that decodes the mapping into a fresh T.
func Decode[T any, PT interface {
	*T
	Extender
}]() Factory {
	return func(node *yaml.Node) (Extender, error) {
		var v T
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return PT(&v), nil
	}
}
