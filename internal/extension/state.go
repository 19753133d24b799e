package extension

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

// StateFileName is the default name of the enabled-extensions file.
const StateFileName = "extensions.yaml"

// State is the persisted record of enabled extensions.
type State struct {
	// Enabled lists extension ids in boot order.
	Enabled []string `yaml:"enabled"`
	// Versions maps an id to the version recorded when it was enabled.
	Versions map[string]string `yaml:"versions,omitempty"`
}

// LoadState reads a state file. A missing file is an empty state.
func LoadState(fsys afero.Fs, path string) (*State, error) {
	st := &State{}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return nil, fmt.Errorf("reading state %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("parsing state %s: %w", path, err)
	}
	return st, nil
}

// SaveState writes the state file, creating its directory.
func SaveState(fsys afero.Fs, path string, st *State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("writing state %s: %w", path, err)
	}
	return nil
}

// IsEnabled reports whether id is in the enabled list.
func (s *State) IsEnabled(id string) bool {
	return slices.Contains(s.Enabled, id)
}

// Version returns the recorded version for id.
func (s *State) Version(id string) (string, bool) {
	v, ok := s.Versions[id]
	return v, ok
}

// markEnabled appends id and records version when non-empty.
func (s *State) markEnabled(id, version string) {
	if !s.IsEnabled(id) {
		s.Enabled = append(s.Enabled, id)
	}
	if version != "" {
		if s.Versions == nil {
			s.Versions = make(map[string]string)
		}
		s.Versions[id] = version
	}
}

// markDisabled removes id from the enabled list, keeping its version.
func (s *State) markDisabled(id string) {
	s.Enabled = slices.DeleteFunc(s.Enabled, func(e string) bool { return e == id })
}

// forget drops every trace of id.
func (s *State) forget(id string) {
	s.markDisabled(id)
	delete(s.Versions, id)
}
