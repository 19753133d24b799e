// Package identity derives stable extension identifiers from namespaced
// package names such as "acme/flarum-ext-widgets".
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedName is the sentinel wrapped by MalformedNameError.
var ErrMalformedName = errors.New("malformed package name")

// Prefixes stripped from the package segment, first match wins.
var packagePrefixes = []string{"flarum-ext-", "flarum-"}

// MalformedNameError is returned when a package name lacks the
// vendor/package separator.
type MalformedNameError struct {
	Name string
}

// Error implements the error interface for MalformedNameError.
func (e *MalformedNameError) Error() string {
	return fmt.Sprintf("malformed package name %q: expected vendor/package", e.Name)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *MalformedNameError) Unwrap() error {
	return ErrMalformedName
}

// ResolveID converts a package name into an extension id:
//
//	acme/flarum-ext-widgets -> acme-widgets
//	acme/flarum-widgets     -> acme-widgets
//	acme/widgets            -> acme-widgets
func ResolveID(name string) (string, error) {
	vendor, pkg, ok := strings.Cut(name, "/")
	if !ok || vendor == "" || pkg == "" {
		return "", &MalformedNameError{Name: name}
	}

	for _, prefix := range packagePrefixes {
		if strings.HasPrefix(pkg, prefix) {
			pkg = strings.TrimPrefix(pkg, prefix)
			break
		}
	}

	return strings.ToLower(vendor + "-" + pkg), nil
}
