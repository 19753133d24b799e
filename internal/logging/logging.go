// Package logging configures the global zerolog logger used across extkit.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/forumkit/extkit/internal/branding"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the resolved logger settings.
type Config struct {
	Level     zerolog.Level
	NoColor   bool
	Timestamp bool
	Output    io.Writer
}

var configureOnce sync.Once

// ConfigureRuntime sets up logging for the CLI. level is the configured
// default and may be overridden through the environment.
func ConfigureRuntime(level string) {
	configureOnce.Do(func() {
		cfg := Config{Level: zerolog.InfoLevel, Timestamp: true, Output: os.Stderr}
		if lvl, ok := parseLevel(level); ok {
			cfg.Level = lvl
		}
		applyEnvOverrides(&cfg)
		Apply(cfg)
	})
}

// Apply installs cfg as the global logger unconditionally.
func Apply(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	zerolog.SetGlobalLevel(cfg.Level)
	cw := zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor}
	if !cfg.Timestamp {
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	log.Logger = zerolog.New(cw).With().Timestamp().Logger()
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := parseLevel(os.Getenv(branding.EnvVar("LOG_LEVEL"))); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(branding.EnvVar("LOG_NOCOLOR"))); ok {
		cfg.NoColor = v
	}
	if v, ok := parseBool(os.Getenv(branding.EnvVar("LOG_TIMESTAMP"))); ok {
		cfg.Timestamp = v
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return zerolog.InfoLevel, false
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel, false
	}
	return lvl, true
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
