package extend

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/forumkit/extkit/internal/container"
	"github.com/forumkit/extkit/internal/extender"
)

// SettingsStore is the persistent settings repository the host binds under
// "settings". Set and Delete report persistence failures.
type SettingsStore interface {
	Get(key string) (any, bool)
	Set(key string, value any) error
	Delete(key string) error
}

// MemorySettings is an in-process SettingsStore.
type MemorySettings struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemorySettings returns an empty store.
func NewMemorySettings() *MemorySettings {
	return &MemorySettings{values: make(map[string]any)}
}

func (m *MemorySettings) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemorySettings) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemorySettings) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Settings declares default values for settings owned by the extension.
//
// While booting, the defaults are published under "settings.defaults".
// Enabling seeds the store with any missing key; disabling removes keys
// that still hold their default.
type Settings struct {
	Defaults map[string]any `yaml:"defaults"`
}

// Extend publishes the defaults.
func (s *Settings) Extend(app *container.Container, _ extender.Extension) error {
	ensure(app, BindingSettingsDefault, func(*container.Container) (any, error) {
		return map[string]any{}, nil
	})
	app.Extend(BindingSettingsDefault, func(v any, _ *container.Container) (any, error) {
		defaults := v.(map[string]any)
		for k, val := range s.Defaults {
			defaults[k] = val
		}
		return defaults, nil
	})
	return nil
}

// OnEnable seeds missing keys.
func (s *Settings) OnEnable(app *container.Container, _ extender.Extension) error {
	store, err := container.MakeAs[SettingsStore](app, BindingSettings)
	if err != nil {
		return err
	}
	for _, k := range s.keys() {
		if _, ok := store.Get(k); ok {
			continue
		}
		if err := store.Set(k, s.Defaults[k]); err != nil {
			return fmt.Errorf("seeding %s: %w", k, err)
		}
	}
	return nil
}

// OnDisable drops keys left at their default.
func (s *Settings) OnDisable(app *container.Container, _ extender.Extension) error {
	store, err := container.MakeAs[SettingsStore](app, BindingSettings)
	if err != nil {
		return err
	}
	for _, k := range s.keys() {
		v, ok := store.Get(k)
		if !ok || !reflect.DeepEqual(v, s.Defaults[k]) {
			continue
		}
		if err := store.Delete(k); err != nil {
			return fmt.Errorf("removing %s: %w", k, err)
		}
	}
	return nil
}

// String names the unit in logs.
func (s *Settings) String() string { return "settings" }

func (s *Settings) keys() []string {
	keys := make([]string, 0, len(s.Defaults))
	for k := range s.Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
