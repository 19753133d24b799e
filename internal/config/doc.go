// Package config manages user-level settings stored at ~/.extkit/config.yaml.
// It resolves where extensions are discovered, where their public assets are
// published, and where enablement state and the migration ledger are kept.
package config
