package extension

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forumkit/extkit/internal/descriptor"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// InstalledFile lists the package versions installed under the extensions
// directory, in the composer "installed.json" format.
const InstalledFile = "composer/installed.json"

// InstalledPackage is one entry of the installed packages file.
type InstalledPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Discover scans root for extension packages. Both <root>/<vendor>/<package>
// and <root>/<package> layouts are searched. Directories without a
// descriptor, or whose package is not of the extension type, are skipped.
// An unreadable descriptor or a malformed extension name fails the scan.
// Installed versions come from the installed packages file when present.
// Results are sorted by id and each has its dependency ids calculated
// against the other discovered extensions.
func Discover(fsys afero.Fs, root string) ([]*Extension, error) {
	dirs, err := candidateDirs(fsys, root)
	if err != nil {
		return nil, err
	}

	versions, err := ReadInstalled(fsys, filepath.Join(root, InstalledFile))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Extension)
	for _, dir := range dirs {
		desc, err := readDescriptor(fsys, dir)
		if err != nil {
			return nil, err
		}
		if !desc.IsExtension() {
			log.Debug().Str("dir", dir).Str("type", desc.Type()).Msg("skipping non-extension package")
			continue
		}
		ext, err := NewWithFs(fsys, dir, desc)
		if err != nil {
			return nil, err
		}
		if prev, dup := byID[ext.ID()]; dup {
			log.Warn().Str("extension", ext.ID()).Str("kept", prev.Path()).Str("skipped", dir).Msg("duplicate extension id")
			continue
		}
		if v, ok := versions[ext.Name()]; ok {
			ext.SetInstalledVersion(v)
		} else if v := ext.Descriptor().Version(); v != "" {
			ext.SetInstalledVersion(v)
		}
		byID[ext.ID()] = ext
	}

	result := make([]*Extension, 0, len(byID))
	installed := make(map[string]bool, len(byID))
	for _, ext := range byID {
		result = append(result, ext)
		installed[ext.Name()] = true
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })

	for _, ext := range result {
		ext.CalculateDependencies(installed)
	}
	return result, nil
}

// candidateDirs returns every directory one or two levels below root that
// holds a descriptor file, in lexical order.
func candidateDirs(fsys afero.Fs, root string) ([]string, error) {
	top, err := afero.ReadDir(fsys, root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading extensions directory %s: %w", root, err)
	}

	var dirs []string
	for _, entry := range top {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if hasDescriptor(fsys, dir) {
			dirs = append(dirs, dir)
			continue
		}
		nested, err := afero.ReadDir(fsys, dir)
		if err != nil {
			continue
		}
		for _, sub := range nested {
			if !sub.IsDir() {
				continue
			}
			subDir := filepath.Join(dir, sub.Name())
			if hasDescriptor(fsys, subDir) {
				dirs = append(dirs, subDir)
			}
		}
	}
	return dirs, nil
}

// SortByName orders extensions by package name, then id.
func SortByName(exts []*Extension) {
	sort.SliceStable(exts, func(i, j int) bool {
		if exts[i].Name() != exts[j].Name() {
			return exts[i].Name() < exts[j].Name()
		}
		return exts[i].ID() < exts[j].ID()
	})
}

func hasDescriptor(fsys afero.Fs, dir string) bool {
	ok, err := afero.Exists(fsys, filepath.Join(dir, descriptor.FileName))
	return err == nil && ok
}

// ReadInstalled returns package name to version from an installed packages
// file. Both the bare list layout and the {"packages": [...]} layout are
// accepted. A missing file yields an empty map.
func ReadInstalled(fsys afero.Fs, path string) (map[string]string, error) {
	versions := make(map[string]string)
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return versions, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var packages []InstalledPackage
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return versions, nil
	case trimmed[0] == '[':
		err = json.Unmarshal(trimmed, &packages)
	case trimmed[0] == '{':
		var wrapped struct {
			Packages []InstalledPackage `json:"packages"`
		}
		err = json.Unmarshal(trimmed, &wrapped)
		packages = wrapped.Packages
	default:
		err = errors.New("expected a package list or object")
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, p := range packages {
		if p.Name != "" {
			versions[p.Name] = p.Version
		}
	}
	return versions, nil
}
