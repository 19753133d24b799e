package extend

import (
	"fmt"
	"sync"

	"github.com/forumkit/extkit/internal/container"
	"github.com/forumkit/extkit/internal/extender"
)

// Events records which handlers listen to which event names.
type Events struct {
	mu        sync.RWMutex
	listeners map[string][]string
}

// NewEvents returns an empty listener table.
func NewEvents() *Events {
	return &Events{listeners: make(map[string][]string)}
}

// Listen adds handler to event.
func (e *Events) Listen(event, handler string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], handler)
}

// Listeners returns the handlers for event in registration order.
func (e *Events) Listeners(event string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.listeners[event]...)
}

// Listener subscribes a named handler to an event.
type Listener struct {
	Event   string `yaml:"event"`
	Handler string `yaml:"handler"`
}

// Extend registers the subscription on the events binding.
func (l *Listener) Extend(app *container.Container, ext extender.Extension) error {
	if l.Event == "" || l.Handler == "" {
		return fmt.Errorf("listener in %s needs both event and handler", ext.ID())
	}
	ensure(app, BindingEvents, func(*container.Container) (any, error) { return NewEvents(), nil })
	events, err := container.MakeAs[*Events](app, BindingEvents)
	if err != nil {
		return err
	}
	events.Listen(l.Event, l.Handler)
	return nil
}

// String names the unit in logs.
func (l *Listener) String() string { return "listener:" + l.Event }

// Binding binds a constant value in the container.
type Binding struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

// Extend binds the value.
func (b *Binding) Extend(app *container.Container, ext extender.Extension) error {
	if b.Name == "" {
		return fmt.Errorf("bind in %s has no name", ext.ID())
	}
	app.Instance(b.Name, b.Value)
	return nil
}

// String names the unit in logs.
func (b *Binding) String() string { return "bind:" + b.Name }
