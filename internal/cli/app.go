package cli

import (
	"fmt"

	"github.com/forumkit/extkit/internal/config"
	"github.com/forumkit/extkit/internal/container"
	"github.com/forumkit/extkit/internal/extend"
	"github.com/forumkit/extkit/internal/extender"
	"github.com/forumkit/extkit/internal/extension"
	"github.com/forumkit/extkit/internal/migration"
	"github.com/spf13/afero"
)

// newManager wires a Manager from the loaded configuration.
func newManager() (*extension.Manager, error) {
	osFs := afero.NewOsFs()

	settings, err := extend.OpenFileSettings(osFs, config.Get(config.KeySettingsFile))
	if err != nil {
		return nil, err
	}
	app := container.New()
	app.Instance(extend.BindingSettings, extend.SettingsStore(settings))

	publicDir := config.Get(config.KeyPublicDir)
	if err := osFs.MkdirAll(publicDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating public directory %s: %w", publicDir, err)
	}

	return extension.NewManager(extension.Options{
		Fs:         osFs,
		Root:       config.Get(config.KeyExtensionsDir),
		StatePath:  config.Get(config.KeyStateFile),
		Public:     afero.NewBasePathFs(osFs, publicDir),
		Migrator:   migration.NewLedger(osFs, config.Get(config.KeyLedgerFile)),
		App:        app,
		Dispatcher: extender.NewDispatcher(extend.NewRegistry()),
	}), nil
}
