package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/forumkit/extkit/internal/extension"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

// FileName is the default ledger file name.
const FileName = "migrations.yaml"

// migrationExts are the file extensions treated as migrations.
var migrationExts = map[string]bool{
	".sql":  true,
	".yaml": true,
	".yml":  true,
}

// ApplyFunc executes one migration file in the given direction.
type ApplyFunc func(ext *extension.Extension, file, direction string) error

// Ledger is an extension.Migrator that tracks applied migration names per
// extension id in a YAML file. Executing a migration is delegated to Apply;
// a nil Apply only records.
type Ledger struct {
	fs    afero.Fs
	path  string
	Apply ApplyFunc

	mu sync.Mutex
}

type ledgerFile struct {
	Applied map[string][]string `yaml:"applied"`
}

// NewLedger returns a ledger stored at path on fsys.
func NewLedger(fsys afero.Fs, path string) *Ledger {
	return &Ledger{fs: fsys, path: path}
}

// Run applies every migration in dir not yet recorded for ext, in name
// order, and returns the names applied. Progress is saved even when a
// migration fails.
func (l *Ledger) Run(dir string, ext *extension.Extension) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := l.list(dir)
	if err != nil {
		return nil, err
	}
	state, err := l.load()
	if err != nil {
		return nil, err
	}

	var applied []string
	done := state.Applied[ext.ID()]
	for _, name := range files {
		if slices.Contains(done, name) {
			continue
		}
		if err := l.apply(ext, filepath.Join(dir, name), extension.DirectionUp); err != nil {
			state.Applied[ext.ID()] = done
			if saveErr := l.save(state); saveErr != nil {
				log.Error().Err(saveErr).Msg("failed to save migration ledger")
			}
			return applied, fmt.Errorf("migration %s of %s: %w", name, ext.ID(), err)
		}
		done = append(done, name)
		applied = append(applied, name)
	}
	state.Applied[ext.ID()] = done
	return applied, l.save(state)
}

// Reset rolls back every recorded migration of ext, newest first, and
// returns the names rolled back.
func (l *Ledger) Reset(dir string, ext *extension.Extension) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.load()
	if err != nil {
		return nil, err
	}
	done := state.Applied[ext.ID()]

	var reverted []string
	for i := len(done) - 1; i >= 0; i-- {
		name := done[i]
		if err := l.apply(ext, filepath.Join(dir, name), extension.DirectionDown); err != nil {
			state.Applied[ext.ID()] = done[:i+1]
			if saveErr := l.save(state); saveErr != nil {
				log.Error().Err(saveErr).Msg("failed to save migration ledger")
			}
			return reverted, fmt.Errorf("rolling back %s of %s: %w", name, ext.ID(), err)
		}
		reverted = append(reverted, name)
	}
	delete(state.Applied, ext.ID())
	return reverted, l.save(state)
}

// Applied returns the recorded migration names of id in apply order.
func (l *Ledger) Applied(id string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	state, err := l.load()
	if err != nil {
		return nil, err
	}
	return state.Applied[id], nil
}

func (l *Ledger) apply(ext *extension.Extension, file, direction string) error {
	log.Debug().Str("extension", ext.ID()).Str("file", file).Str("direction", direction).Msg("migration")
	if l.Apply == nil {
		return nil
	}
	return l.Apply(ext, file, direction)
}

// list returns migration file names in dir, sorted.
func (l *Ledger) list(dir string) ([]string, error) {
	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !migrationExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

func (l *Ledger) load() (*ledgerFile, error) {
	state := &ledgerFile{}
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading ledger %s: %w", l.path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, state); err != nil {
			return nil, fmt.Errorf("parsing ledger %s: %w", l.path, err)
		}
	}
	if state.Applied == nil {
		state.Applied = make(map[string][]string)
	}
	return state, nil
}

func (l *Ledger) save(state *ledgerFile) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}
	if err := l.fs.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}
	if err := afero.WriteFile(l.fs, l.path, data, 0o644); err != nil {
		return fmt.Errorf("writing ledger %s: %w", l.path, err)
	}
	return nil
}

var _ extension.Migrator = (*Ledger)(nil)
