package extension

import (
	"errors"
	"fmt"

	"github.com/forumkit/extkit/internal/container"
	"github.com/forumkit/extkit/internal/extender"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	// ErrNotFound is returned when no discovered extension has the id.
	ErrNotFound = errors.New("extension not found")
	// ErrNotEnabled is returned when disabling an extension that is not enabled.
	ErrNotEnabled = errors.New("extension not enabled")
)

// Options configures a Manager. Zero fields get defaults from NewManager.
type Options struct {
	// Fs holds the extensions directory and the state file.
	Fs afero.Fs
	// Root is the directory scanned by Discover.
	Root string
	// StatePath is the state file location.
	StatePath string
	// Public receives published assets. Nil disables publishing.
	Public afero.Fs
	// Migrator runs extension migrations. Nil skips migrations.
	Migrator Migrator
	// App is the container extenders contribute to.
	App *container.Container
	// Dispatcher loads and runs extenders.
	Dispatcher *extender.Dispatcher
}

// Manager tracks which extensions are enabled and drives their lifecycle.
type Manager struct {
	fs         afero.Fs
	root       string
	statePath  string
	public     afero.Fs
	migrator   Migrator
	app        *container.Container
	dispatcher *extender.Dispatcher
}

// Update is an enabled extension whose files carry a newer version than
// the one recorded when it was enabled.
type Update struct {
	ID        string `json:"id"`
	Recorded  string `json:"recorded"`
	Available string `json:"available"`
}

// NewManager builds a Manager from opts.
func NewManager(opts Options) *Manager {
	m := &Manager{
		fs:         opts.Fs,
		root:       opts.Root,
		statePath:  opts.StatePath,
		public:     opts.Public,
		migrator:   opts.Migrator,
		app:        opts.App,
		dispatcher: opts.Dispatcher,
	}
	if m.fs == nil {
		m.fs = afero.NewOsFs()
	}
	if m.statePath == "" {
		m.statePath = StateFileName
	}
	if m.app == nil {
		m.app = container.New()
	}
	if m.dispatcher == nil {
		m.dispatcher = extender.NewDispatcher(extender.NewRegistry())
	}
	return m
}

// App returns the container extenders contribute to.
func (m *Manager) App() *container.Container { return m.app }

// State reads the current state file.
func (m *Manager) State() (*State, error) {
	return LoadState(m.fs, m.statePath)
}

// List discovers every extension under the root. Extensions without a
// detected version fall back to the version recorded in the state file.
func (m *Manager) List() ([]*Extension, error) {
	exts, err := Discover(m.fs, m.root)
	if err != nil {
		return nil, err
	}
	st, err := m.State()
	if err != nil {
		return nil, err
	}
	for _, ext := range exts {
		if _, ok := ext.InstalledVersion(); ok {
			continue
		}
		if v, ok := st.Version(ext.ID()); ok {
			ext.SetInstalledVersion(v)
		}
	}
	return exts, nil
}

// Find returns the discovered extension with id.
func (m *Manager) Find(id string) (*Extension, error) {
	exts, err := m.List()
	if err != nil {
		return nil, err
	}
	for _, ext := range exts {
		if ext.ID() == id {
			return ext, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Enabled returns the enabled extensions in boot order. Enabled ids that
// are no longer present are skipped.
func (m *Manager) Enabled() ([]*Extension, error) {
	exts, err := m.List()
	if err != nil {
		return nil, err
	}
	st, err := m.State()
	if err != nil {
		return nil, err
	}
	byID := index(exts)
	out := make([]*Extension, 0, len(st.Enabled))
	for _, id := range st.Enabled {
		ext, ok := byID[id]
		if !ok {
			log.Warn().Str("extension", id).Msg("enabled extension is not installed")
			continue
		}
		out = append(out, ext)
	}
	return out, nil
}

// Enable migrates, publishes assets and runs the enable hooks of id, then
// records it as enabled. Enabling an enabled extension does nothing.
func (m *Manager) Enable(id string) error {
	exts, err := m.List()
	if err != nil {
		return err
	}
	byID := index(exts)
	ext, ok := byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	st, err := m.State()
	if err != nil {
		return err
	}
	if st.IsEnabled(id) {
		log.Debug().Str("extension", id).Msg("already enabled")
		return nil
	}

	if missing := missingFrom(ext, st); len(missing) > 0 {
		log.Warn().Str("extension", id).Strs("missing", missing).Msg("dependencies are not enabled")
	}

	if m.migrator != nil {
		applied, err := ext.Migrate(m.migrator, DirectionUp)
		if err != nil {
			return fmt.Errorf("migrating %s: %w", id, err)
		}
		if len(applied) > 0 {
			log.Info().Str("extension", id).Strs("migrations", applied).Msg("migrations applied")
		}
	}
	if m.public != nil {
		n, err := ext.CopyAssetsTo(m.public)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Debug().Str("extension", id).Int("files", n).Msg("assets published")
		}
	}
	if err := ext.Enable(m.app, m.dispatcher); err != nil {
		return fmt.Errorf("enabling %s: %w", id, err)
	}

	version, _ := ext.InstalledVersion()
	st.markEnabled(id, version)
	st.Enabled = orderIDs(st.Enabled, byID)
	if err := SaveState(m.fs, m.statePath, st); err != nil {
		return err
	}
	log.Info().Str("extension", id).Str("version", version).Msg("extension enabled")
	return nil
}

// Disable runs the disable hooks of id, removes its published assets and
// drops it from the enabled list.
func (m *Manager) Disable(id string) error {
	st, err := m.State()
	if err != nil {
		return err
	}
	if !st.IsEnabled(id) {
		return fmt.Errorf("%w: %s", ErrNotEnabled, id)
	}
	ext, err := m.Find(id)
	if err != nil {
		return err
	}
	if err := ext.Disable(m.app, m.dispatcher); err != nil {
		return fmt.Errorf("disabling %s: %w", id, err)
	}
	if m.public != nil {
		if err := ext.RemoveAssetsFrom(m.public); err != nil {
			return err
		}
	}
	st.markDisabled(id)
	if err := SaveState(m.fs, m.statePath, st); err != nil {
		return err
	}
	log.Info().Str("extension", id).Msg("extension disabled")
	return nil
}

// Uninstall disables id if needed, rolls back its migrations and forgets
// it. The extension's files are left in place.
func (m *Manager) Uninstall(id string) error {
	ext, err := m.Find(id)
	if err != nil {
		return err
	}
	st, err := m.State()
	if err != nil {
		return err
	}
	if st.IsEnabled(id) {
		if err := m.Disable(id); err != nil {
			return err
		}
		if st, err = m.State(); err != nil {
			return err
		}
	}
	if m.migrator != nil {
		if _, err := ext.Migrate(m.migrator, DirectionDown); err != nil {
			return fmt.Errorf("rolling back %s: %w", id, err)
		}
	}
	st.forget(id)
	if err := SaveState(m.fs, m.statePath, st); err != nil {
		return err
	}
	log.Info().Str("extension", id).Msg("extension uninstalled")
	return nil
}

// Boot applies the extenders of every enabled extension in stored order.
// The first failure stops booting.
func (m *Manager) Boot() error {
	exts, err := m.Enabled()
	if err != nil {
		return err
	}
	for _, ext := range exts {
		if err := ext.Extend(m.app, m.dispatcher); err != nil {
			return fmt.Errorf("booting %s: %w", ext.ID(), err)
		}
	}
	log.Debug().Int("extensions", len(exts)).Msg("extensions booted")
	return nil
}

// Outdated reports enabled extensions whose current version is newer than
// the one recorded at enable time. Unparseable versions are skipped.
func (m *Manager) Outdated() ([]Update, error) {
	exts, err := m.Enabled()
	if err != nil {
		return nil, err
	}
	st, err := m.State()
	if err != nil {
		return nil, err
	}
	var updates []Update
	for _, ext := range exts {
		recorded, ok := st.Version(ext.ID())
		if !ok {
			continue
		}
		current, ok := ext.InstalledVersion()
		if !ok {
			continue
		}
		newer, err := IsNewer(recorded, current)
		if err != nil {
			log.Debug().Str("extension", ext.ID()).Err(err).Msg("cannot compare versions")
			continue
		}
		if newer {
			updates = append(updates, Update{ID: ext.ID(), Recorded: recorded, Available: current})
		}
	}
	return updates, nil
}

// MissingDependencies returns the dependency ids of id that are not
// enabled.
func (m *Manager) MissingDependencies(id string) ([]string, error) {
	ext, err := m.Find(id)
	if err != nil {
		return nil, err
	}
	st, err := m.State()
	if err != nil {
		return nil, err
	}
	return missingFrom(ext, st), nil
}

func missingFrom(ext *Extension, st *State) []string {
	deps, _ := ext.DependencyIDs()
	var missing []string
	for _, dep := range deps {
		if !st.IsEnabled(dep) {
			missing = append(missing, dep)
		}
	}
	return missing
}

// orderIDs sorts enabled ids so dependencies come first. Ids that are not
// installed keep their place at the front.
func orderIDs(ids []string, byID map[string]*Extension) []string {
	var unknown []string
	exts := make([]*Extension, 0, len(ids))
	for _, id := range ids {
		if ext, ok := byID[id]; ok {
			exts = append(exts, ext)
		} else {
			unknown = append(unknown, id)
		}
	}
	out := unknown
	for _, ext := range BootOrder(exts) {
		out = append(out, ext.ID())
	}
	return out
}
