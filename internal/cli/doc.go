// Package cli implements the extkit command tree: listing and inspecting
// extensions, enabling and disabling them, and validating descriptors.
package cli
