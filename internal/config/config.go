package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/forumkit/extkit/internal/branding"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Configuration keys understood by the CLI.
const (
	KeyExtensionsDir = "extensions_dir"
	KeyPublicDir     = "public_dir"
	KeyStateFile     = "state_file"
	KeyLedgerFile    = "ledger_file"
	KeySettingsFile  = "settings_file"
	KeyLogLevel      = "log_level"
)

// ErrUnknownKey is returned by Set for keys outside Keys().
var ErrUnknownKey = errors.New("unknown config key")

// setting is one known key with its default. Defaults that live in the
// config directory are computed at Load time so HOME changes apply.
type setting struct {
	key  string
	dflt func() string
}

var settings = []setting{
	{KeyExtensionsDir, constant("vendor")},
	{KeyPublicDir, constant("public")},
	{KeyStateFile, inDir("extensions.yaml")},
	{KeyLedgerFile, inDir("migrations.yaml")},
	{KeySettingsFile, inDir("settings.yaml")},
	{KeyLogLevel, constant("info")},
}

func constant(v string) func() string { return func() string { return v } }

func inDir(name string) func() string {
	return func() string { return filepath.Join(Dir(), name) }
}

// Dir returns the config directory, ~/.extkit.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns ~/.extkit/config.yaml.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if needed.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load points viper at the config file and the EXTKIT_* environment and
// registers defaults. A missing config file is fine; an unreadable one is
// an error.
func Load() error {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()
	for _, s := range settings {
		viper.SetDefault(s.key, s.dflt())
	}

	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config %s: %w", FilePath(), err)
		}
	}
	return nil
}

// BindFlag lets a command-line flag override key.
func BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %q", key)
	}
	return viper.BindPFlag(key, flag)
}

// Keys returns every known key in display order.
func Keys() []string {
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.key
	}
	return keys
}

// Get returns the value of key, or "" if unset.
func Get(key string) string {
	return viper.GetString(key)
}

// Set stores value under a known key and rewrites the config file.
func Set(key, value string) error {
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	if err := EnsureDir(); err != nil {
		return err
	}
	viper.Set(key, value)
	if err := viper.WriteConfigAs(FilePath()); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
