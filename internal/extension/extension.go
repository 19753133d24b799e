package extension

import (
	"fmt"
	"path/filepath"

	"github.com/forumkit/extkit/internal/container"
	"github.com/forumkit/extkit/internal/descriptor"
	"github.com/forumkit/extkit/internal/extender"
	"github.com/forumkit/extkit/internal/identity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Extension is one discovered extension directory and its descriptor.
// The id, path and descriptor never change after construction; the host
// updates the installed flag, installed version and dependency ids.
type Extension struct {
	id   string
	path string
	desc *descriptor.Descriptor
	fs   afero.Fs

	installed        bool
	installedVersion string
	hasVersion       bool

	dependencyIDs  []string
	depsCalculated bool
}

// New builds an extension rooted at path on the OS filesystem.
func New(path string, desc *descriptor.Descriptor) (*Extension, error) {
	return NewWithFs(afero.NewOsFs(), path, desc)
}

// NewWithFs builds an extension whose files are read through fsys.
func NewWithFs(fsys afero.Fs, path string, desc *descriptor.Descriptor) (*Extension, error) {
	if desc == nil {
		desc = descriptor.New(nil)
	}
	id, err := identity.ResolveID(desc.Name())
	if err != nil {
		return nil, fmt.Errorf("extension at %s: %w", path, err)
	}
	return &Extension{
		id:        id,
		path:      path,
		desc:      desc,
		fs:        fsys,
		installed: true,
	}, nil
}

// Load reads <path>/composer.json and builds the extension.
func Load(fsys afero.Fs, path string) (*Extension, error) {
	desc, err := readDescriptor(fsys, path)
	if err != nil {
		return nil, err
	}
	return NewWithFs(fsys, path, desc)
}

func readDescriptor(fsys afero.Fs, dir string) (*descriptor.Descriptor, error) {
	file := filepath.Join(dir, descriptor.FileName)
	data, err := afero.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor %s: %w", file, err)
	}
	desc, err := descriptor.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing descriptor %s: %w", file, err)
	}
	return desc, nil
}

// ID returns the stable extension id, e.g. "acme-widgets".
func (e *Extension) ID() string { return e.id }

// Path returns the extension's root directory.
func (e *Extension) Path() string { return e.path }

// Descriptor returns the package descriptor.
func (e *Extension) Descriptor() *descriptor.Descriptor { return e.desc }

// Name returns the raw "vendor/package" name.
func (e *Extension) Name() string { return e.desc.Name() }

// Title returns the display title, falling back to the package name.
func (e *Extension) Title() string {
	if t := e.desc.Title(); t != "" {
		return t
	}
	return e.desc.Name()
}

// Get reads a descriptor value by dot path.
func (e *Extension) Get(path string) (any, bool) { return e.desc.Get(path) }

// Attr reads a descriptor value by camelCase property name.
func (e *Extension) Attr(name string) (any, bool) { return e.desc.Attr(name) }

// IsInstalled reports the host's installed flag.
func (e *Extension) IsInstalled() bool { return e.installed }

// SetInstalled updates the installed flag.
func (e *Extension) SetInstalled(installed bool) { e.installed = installed }

// InstalledVersion returns the version the host detected, if set.
func (e *Extension) InstalledVersion() (string, bool) {
	return e.installedVersion, e.hasVersion
}

// SetInstalledVersion records the detected version.
func (e *Extension) SetInstalledVersion(version string) {
	e.installedVersion = version
	e.hasVersion = true
}

// CalculateDependencies keeps the "require" entries that name an installed
// package and stores their extension ids in declaration order. A package
// counts as installed when it is a key of installed, whatever its value.
// Entries that are not installed extensions, such as "php", are dropped.
func (e *Extension) CalculateDependencies(installed map[string]bool) {
	ids := []string{}
	for _, req := range e.desc.Require() {
		if _, ok := installed[req.Package]; !ok {
			continue
		}
		id, err := identity.ResolveID(req.Package)
		if err != nil {
			log.Debug().Str("extension", e.id).Str("package", req.Package).Msg("skipping unresolvable requirement")
			continue
		}
		ids = append(ids, id)
	}
	e.dependencyIDs = ids
	e.depsCalculated = true
}

// DependencyIDs returns the ids computed by CalculateDependencies. ok is
// false until it has run.
func (e *Extension) DependencyIDs() (ids []string, ok bool) {
	return e.dependencyIDs, e.depsCalculated
}

// Extend applies the extension's extenders to app.
func (e *Extension) Extend(app *container.Container, d *extender.Dispatcher) error {
	return d.Extend(app, e)
}

// Enable runs the enable hooks of the extension's lifecycle extenders.
func (e *Extension) Enable(app *container.Container, d *extender.Dispatcher) error {
	return d.Enable(app, e)
}

// Disable runs the disable hooks of the extension's lifecycle extenders.
func (e *Extension) Disable(app *container.Container, d *extender.Dispatcher) error {
	return d.Disable(app, e)
}
