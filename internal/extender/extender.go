package extender

import (
	"errors"
	"fmt"

	"github.com/forumkit/extkit/internal/container"
)

// ErrNotExtender is wrapped by NotExtenderError.
var ErrNotExtender = errors.New("value does not implement Extend")

// Extension is the view of an extension that extenders receive.
type Extension interface {
	ID() string
	Path() string
	Get(path string) (any, bool)
}

// Extender mutates the application while it boots.
type Extender interface {
	Extend(app *container.Container, ext Extension) error
}

// Lifecycle is implemented by extenders that react to the owning extension
// being enabled or disabled.
type Lifecycle interface {
	OnEnable(app *container.Container, ext Extension) error
	OnDisable(app *container.Container, ext Extension) error
}

// LegacyFunc is the older bare-callable extender form.
type LegacyFunc func(app *container.Container, ext Extension) error

// LegacyResolver looks up legacy callables referenced by name.
type LegacyResolver interface {
	Legacy(name string) (LegacyFunc, bool)
}

// LegacyAdapter presents a legacy callable, or a name resolved to one at
// call time, as an Extender. It never implements Lifecycle.
type LegacyAdapter struct {
	fn       LegacyFunc
	ref      string
	resolver LegacyResolver
}

// Extend calls the wrapped callable with (app, ext).
func (a *LegacyAdapter) Extend(app *container.Container, ext Extension) error {
	fn := a.fn
	if fn == nil {
		var ok bool
		if a.resolver != nil {
			fn, ok = a.resolver.Legacy(a.ref)
		}
		if !ok {
			return fmt.Errorf("legacy extender %q is not registered", a.ref)
		}
	}
	return fn(app, ext)
}

// String names the adapter in logs.
func (a *LegacyAdapter) String() string {
	if a.ref != "" {
		return "legacy:" + a.ref
	}
	return "legacy:func"
}

// NotExtenderError is returned at dispatch time for loaded values that are
// neither units, legacy callables nor groups.
type NotExtenderError struct {
	Value any
}

// Error implements the error interface for NotExtenderError.
func (e *NotExtenderError) Error() string {
	return fmt.Sprintf("extender value %v (%T) does not implement Extend", e.Value, e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *NotExtenderError) Unwrap() error {
	return ErrNotExtender
}

// opaqueUnit carries a value through flattening so the failure surfaces
// when Extend is invoked.
type opaqueUnit struct {
	value any
}

func (o *opaqueUnit) Extend(*container.Container, Extension) error {
	return &NotExtenderError{Value: o.value}
}

func (o *opaqueUnit) String() string {
	return fmt.Sprintf("opaque:%T", o.value)
}

// describe names a unit for log output.
func describe(u Extender) string {
	if s, ok := u.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", u)
}
