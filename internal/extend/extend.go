// Package extend holds the built-in extender kinds that extension authors
// reference from extend.yaml.
package extend

import (
	"github.com/forumkit/extkit/internal/container"
	"github.com/forumkit/extkit/internal/extender"
)

// Container binding names the built-in kinds contribute to.
const (
	BindingLocales         = "locales"
	BindingSettings        = "settings"
	BindingSettingsDefault = "settings.defaults"
	BindingEvents          = "events"
)

// Register adds every built-in kind to reg.
func Register(reg *extender.Registry) {
	reg.RegisterKind("locales", extender.Decode[Locales]())
	reg.RegisterKind("settings", extender.Decode[Settings]())
	reg.RegisterKind("listener", extender.Decode[Listener]())
	reg.RegisterKind("bind", extender.Decode[Binding]())
}

// NewRegistry returns a registry with the built-in kinds registered.
func NewRegistry() *extender.Registry {
	reg := extender.NewRegistry()
	Register(reg)
	return reg
}

// ensure binds name with f unless something is already bound.
func ensure(app *container.Container, name string, f container.Factory) {
	if !app.Has(name) {
		app.Bind(name, f)
	}
}
