package extend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

// FileSettings is a SettingsStore persisted as a flat YAML mapping. Every
// write rewrites the file.
type FileSettings struct {
	fs   afero.Fs
	path string

	mu     sync.Mutex
	values map[string]any
}

// OpenFileSettings loads the store at path. A missing file is empty.
func OpenFileSettings(fsys afero.Fs, path string) (*FileSettings, error) {
	s := &FileSettings{fs: fsys, path: path, values: make(map[string]any)}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return s, nil
}

func (s *FileSettings) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value and rewrites the file. On a write failure the previous
// value is restored.
func (s *FileSettings) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.values[key]
	s.values[key] = value
	if err := s.flush(); err != nil {
		s.restore(key, prev, had)
		return err
	}
	return nil
}

// Delete removes key and rewrites the file. On a write failure the key is
// kept.
func (s *FileSettings) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.values[key]
	if !had {
		return nil
	}
	delete(s.values, key)
	if err := s.flush(); err != nil {
		s.restore(key, prev, had)
		return err
	}
	return nil
}

func (s *FileSettings) restore(key string, prev any, had bool) {
	if had {
		s.values[key] = prev
	} else {
		delete(s.values, key)
	}
}

func (s *FileSettings) flush() error {
	data, err := yaml.Marshal(s.values)
	if err == nil {
		err = s.fs.MkdirAll(filepath.Dir(s.path), 0o755)
	}
	if err == nil {
		err = afero.WriteFile(s.fs, s.path, data, 0o644)
	}
	if err != nil {
		return fmt.Errorf("writing settings %s: %w", s.path, err)
	}
	return nil
}

var _ SettingsStore = (*FileSettings)(nil)
