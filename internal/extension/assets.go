package extension

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// AssetsDir holds files published to the public directory.
	AssetsDir = "assets"
	// MigrationsDir holds the extension's migration files.
	MigrationsDir = "migrations"
	// PublicPrefix is the directory under the public root that receives assets.
	PublicPrefix = "extensions"
)

// Migration directions accepted by Migrate.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Migrator runs or rolls back the migrations found in dir.
type Migrator interface {
	Run(dir string, ext *Extension) ([]string, error)
	Reset(dir string, ext *Extension) ([]string, error)
}

// AssetsPath returns <path>/assets.
func (e *Extension) AssetsPath() string { return filepath.Join(e.path, AssetsDir) }

// MigrationsPath returns <path>/migrations.
func (e *Extension) MigrationsPath() string { return filepath.Join(e.path, MigrationsDir) }

// HasAssets reports whether the assets directory exists.
func (e *Extension) HasAssets() bool { return e.dirExists(e.AssetsPath()) }

// HasMigrations reports whether the migrations directory exists.
func (e *Extension) HasMigrations() bool { return e.dirExists(e.MigrationsPath()) }

func (e *Extension) dirExists(dir string) bool {
	ok, err := afero.DirExists(e.fs, dir)
	return err == nil && ok
}

// PublicAssetsPath is where CopyAssetsTo puts this extension's files,
// relative to the target filesystem root.
func (e *Extension) PublicAssetsPath() string {
	return filepath.Join(PublicPrefix, e.id)
}

// CopyAssetsTo publishes every file under the assets directory into target
// at extensions/<id>/<relative path>, replacing earlier copies. It returns
// the number of files written. An extension without assets is a no-op.
func (e *Extension) CopyAssetsTo(target afero.Fs) (int, error) {
	if !e.HasAssets() {
		return 0, nil
	}
	src := e.AssetsPath()
	dst := e.PublicAssetsPath()

	if err := target.RemoveAll(dst); err != nil {
		return 0, fmt.Errorf("removing published assets at %s: %w", dst, err)
	}

	copied := 0
	err := afero.Walk(e.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if info.IsDir() {
			return target.MkdirAll(out, 0o755)
		}
		data, err := afero.ReadFile(e.fs, path)
		if err != nil {
			return err
		}
		if err := afero.WriteFile(target, out, data, info.Mode().Perm()); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("publishing assets of %s: %w", e.id, err)
	}
	return copied, nil
}

// RemoveAssetsFrom deletes the published copy of the assets.
func (e *Extension) RemoveAssetsFrom(target afero.Fs) error {
	if err := target.RemoveAll(e.PublicAssetsPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing published assets of %s: %w", e.id, err)
	}
	return nil
}

// Migrate runs the extension's migrations through m. "up" applies them;
// any other direction rolls them back. Without a migrations directory it
// does nothing.
func (e *Extension) Migrate(m Migrator, direction string) ([]string, error) {
	if !e.HasMigrations() {
		return nil, nil
	}
	if direction == DirectionUp {
		return m.Run(e.MigrationsPath(), e)
	}
	return m.Reset(e.MigrationsPath(), e)
}
