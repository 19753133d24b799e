package extend

import (
	"path/filepath"

	"github.com/forumkit/extkit/internal/container"
	"github.com/forumkit/extkit/internal/extender"
)

// Locales registers a translation directory shipped by the extension.
type Locales struct {
	Dir string `yaml:"dir"`
}

// Extend appends <extension path>/<dir> to the locales binding.
func (l *Locales) Extend(app *container.Container, ext extender.Extension) error {
	dir := l.Dir
	if dir == "" {
		dir = "locale"
	}
	path := filepath.Join(ext.Path(), dir)

	ensure(app, BindingLocales, func(*container.Container) (any, error) { return []string{}, nil })
	app.Extend(BindingLocales, func(v any, _ *container.Container) (any, error) {
		return append(v.([]string), path), nil
	})
	return nil
}

// String names the unit in logs.
func (l *Locales) String() string { return "locales" }
