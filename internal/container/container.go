// Package container provides the name-keyed service container that extenders
// receive as the application context. Extenders contribute bindings and
// decorators; the host resolves them later.
package container

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrNotBound is returned when resolving a name nothing was bound to.
var ErrNotBound = errors.New("service not bound")

// Factory builds a service. It receives the container for nested lookups.
type Factory func(c *Container) (any, error)

// Decorator wraps or replaces a resolved service.
type Decorator func(service any, c *Container) (any, error)

// Container holds service factories, resolved singletons and decorators.
type Container struct {
	mu         sync.RWMutex
	factories  map[string]Factory
	instances  map[string]any
	decorators map[string][]Decorator
}

// New returns an empty container.
func New() *Container {
	return &Container{
		factories:  make(map[string]Factory),
		instances:  make(map[string]any),
		decorators: make(map[string][]Decorator),
	}
}

// Bind registers a lazily built singleton. Rebinding drops any resolved
// instance.
func (c *Container) Bind(name string, f Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.factories[name]; exists {
		log.Debug().Str("service", name).Msg("rebinding service")
	}
	c.factories[name] = f
	delete(c.instances, name)
}

// Instance registers an already built value.
func (c *Container) Instance(name string, value any) {
	c.Bind(name, func(*Container) (any, error) { return value, nil })
}

// Extend adds a decorator applied the first time name is resolved.
// Decorators run in registration order.
func (c *Container) Extend(name string, d Decorator) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.decorators[name] = append(c.decorators[name], d)
	delete(c.instances, name)
}

// Has reports whether name is bound.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.factories[name]
	return ok
}

// Names returns all bound names, sorted.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.factories))
	for n := range c.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Make resolves name, building and decorating it on first use.
func (c *Container) Make(name string) (any, error) {
	c.mu.RLock()
	if v, ok := c.instances[name]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	f, ok := c.factories[name]
	decorators := append([]Decorator(nil), c.decorators[name]...)
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotBound, name)
	}

	// Factories and decorators run unlocked so they may resolve other services.
	v, err := f(c)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}
	for _, d := range decorators {
		if v, err = d(v, c); err != nil {
			return nil, fmt.Errorf("decorating %s: %w", name, err)
		}
	}

	c.mu.Lock()
	c.instances[name] = v
	c.mu.Unlock()
	return v, nil
}

// MakeAs resolves name and asserts its type.
func MakeAs[T any](c *Container, name string) (T, error) {
	var zero T
	v, err := c.Make(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("service %s is %T, not %T", name, v, zero)
	}
	return t, nil
}
