// Package extension models installed extensions: their identity, metadata,
// dependency ids, icon and link presentation, published assets and
// migrations. A Manager persists which extensions are enabled and drives
// their lifecycle against a host container.
package extension
