// Package descriptor reads extension package descriptors (composer.json).
// It decodes them into an order-preserving tree, exposes dot-path lookup
// with typed convenience accessors, and validates descriptors against an
// embedded JSON schema.
package descriptor
