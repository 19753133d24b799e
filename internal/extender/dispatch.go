package extender

import (
	"github.com/forumkit/extkit/internal/container"
	"github.com/rs/zerolog/log"
)

// Dispatcher loads an extension's extenders and runs them against the app.
// Nothing is cached: every call re-reads the extender file.
type Dispatcher struct {
	Loader Loader
	Legacy LegacyResolver
}

// NewDispatcher returns a dispatcher reading extend.yaml through reg.
func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{Loader: &FileLoader{Registry: reg}, Legacy: reg}
}

// Units loads and flattens the extenders of ext. An extension without an
// extender file has none.
func (d *Dispatcher) Units(ext Extension) ([]Extender, error) {
	src, ok, err := d.Loader.Load(ext.Path())
	if err != nil {
		log.Error().Str("extension", ext.ID()).Err(err).Msg("failed to load extenders")
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return Flatten(src, d.Legacy), nil
}

// Extend applies every extender of ext.
func (d *Dispatcher) Extend(app *container.Container, ext Extension) error {
	units, err := d.Units(ext)
	if err != nil {
		return err
	}
	return Apply(app, ext, units)
}

// Enable runs the enable hook of every lifecycle extender of ext.
func (d *Dispatcher) Enable(app *container.Container, ext Extension) error {
	units, err := d.Units(ext)
	if err != nil {
		return err
	}
	return Enable(app, ext, units)
}

// Disable runs the disable hook of every lifecycle extender of ext.
func (d *Dispatcher) Disable(app *container.Container, ext Extension) error {
	units, err := d.Units(ext)
	if err != nil {
		return err
	}
	return Disable(app, ext, units)
}

// Apply calls Extend on each unit in order. The first error stops dispatch
// and is returned as is.
func Apply(app *container.Container, ext Extension, units []Extender) error {
	for i, u := range units {
		if err := u.Extend(app, ext); err != nil {
			logFailure("extend", ext, i, u, err)
			return err
		}
	}
	log.Debug().Str("extension", ext.ID()).Int("units", len(units)).Msg("extenders applied")
	return nil
}

// Enable calls OnEnable on the units that implement Lifecycle, in order.
func Enable(app *container.Container, ext Extension, units []Extender) error {
	return eachLifecycle("enable", ext, units, func(l Lifecycle) error {
		return l.OnEnable(app, ext)
	})
}

// Disable calls OnDisable on the units that implement Lifecycle, in order.
func Disable(app *container.Container, ext Extension, units []Extender) error {
	return eachLifecycle("disable", ext, units, func(l Lifecycle) error {
		return l.OnDisable(app, ext)
	})
}

func eachLifecycle(phase string, ext Extension, units []Extender, call func(Lifecycle) error) error {
	for i, u := range units {
		l, ok := u.(Lifecycle)
		if !ok {
			continue
		}
		if err := call(l); err != nil {
			logFailure(phase, ext, i, u, err)
			return err
		}
	}
	return nil
}

func logFailure(phase string, ext Extension, index int, u Extender, err error) {
	log.Error().
		Str("extension", ext.ID()).
		Str("phase", phase).
		Int("unit", index).
		Str("type", describe(u)).
		Err(err).
		Msg("extender failed")
}
