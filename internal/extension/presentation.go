package extension

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/forumkit/extkit/internal/descriptor"
	"github.com/spf13/afero"
)

// ErrUnsupportedImageType is wrapped by UnsupportedImageTypeError.
var ErrUnsupportedImageType = errors.New("unsupported icon image type")

// iconMimeTypes is the whitelist of icon file extensions. Matching is
// case-sensitive.
var iconMimeTypes = map[string]string{
	"svg":  "image/svg+xml",
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
}

// UnsupportedImageTypeError is returned when an icon image has an
// extension outside the whitelist.
type UnsupportedImageTypeError struct {
	ExtensionID string
	File        string
}

// Error implements the error interface for UnsupportedImageTypeError.
func (e *UnsupportedImageTypeError) Error() string {
	return fmt.Sprintf("extension %s: icon %s must be svg, png, jpeg or jpg", e.ExtensionID, e.File)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *UnsupportedImageTypeError) Unwrap() error {
	return ErrUnsupportedImageType
}

// AuthorLink is one entry of the "authors" link list.
type AuthorLink struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Icon returns a copy of extra.flarum-extension.icon. When the icon names
// an image file that exists, the file is embedded as a data URL under
// "backgroundImage". ok is false when no icon is declared.
func (e *Extension) Icon() (icon *descriptor.Map, ok bool, err error) {
	declared, ok := e.desc.MapAt(descriptor.PathIcon)
	if !ok {
		return nil, false, nil
	}

	icon = descriptor.NewMap()
	icon.Merge(declared)

	image, _ := e.desc.String(descriptor.PathIcon + ".image")
	if image == "" {
		return icon, true, nil
	}

	file := filepath.Join(e.path, image)
	exists, err := afero.Exists(e.fs, file)
	if err != nil {
		return nil, true, fmt.Errorf("extension %s: checking icon %s: %w", e.id, file, err)
	}
	if !exists {
		return icon, true, nil
	}

	mime, supported := iconMimeTypes[strings.TrimPrefix(filepath.Ext(file), ".")]
	if !supported {
		return nil, true, &UnsupportedImageTypeError{ExtensionID: e.id, File: file}
	}

	data, err := afero.ReadFile(e.fs, file)
	if err != nil {
		return nil, true, fmt.Errorf("extension %s: reading icon %s: %w", e.id, file, err)
	}
	icon.Set("backgroundImage", "url('data:"+mime+";base64,"+base64.StdEncoding.EncodeToString(data)+"')")
	return icon, true, nil
}

// Links assembles the outbound links shown for the extension. Only links
// with a value are present, except "authors" which is always set. Links
// declared under extra.flarum-extension.links override computed ones.
func (e *Extension) Links() *descriptor.Map {
	links := descriptor.NewMap()

	if url, ok := e.desc.String("source.url"); ok {
		links.Set("source", url)
	} else if url, ok := e.desc.String("support.source"); ok {
		links.Set("source", url)
	}
	if url, ok := e.desc.String("support.forum"); ok {
		links.Set("discuss", url)
	}
	if url, ok := e.desc.String("support.docs"); ok {
		links.Set("documentation", url)
	}
	if url, ok := e.desc.String("homepage"); ok {
		links.Set("website", url)
	}
	if email, ok := e.desc.String("support.email"); ok {
		links.Set("support", "mailto:"+email)
	}
	if funding := e.desc.Funding(); len(funding) > 0 {
		links.Set("donate", funding[0].URL)
	}

	authors := []AuthorLink{}
	for _, a := range e.desc.Authors() {
		link := a.Homepage
		if link == "" && a.Email != "" {
			link = "mailto:" + a.Email
		}
		authors = append(authors, AuthorLink{Name: a.Name, Link: link})
	}
	links.Set("authors", authors)

	if extra, ok := e.desc.MapAt(descriptor.PathLinks); ok {
		links.Merge(extra)
	}
	return links
}

// ToArray returns the serializable view of the extension: the computed
// fields followed by every descriptor key not already set.
func (e *Extension) ToArray() (*descriptor.Map, error) {
	out := descriptor.NewMap()
	out.Set("id", e.id)

	if v, ok := e.InstalledVersion(); ok {
		out.Set("version", v)
	} else {
		out.Set("version", nil)
	}
	out.Set("path", e.path)

	icon, ok, err := e.Icon()
	if err != nil {
		return nil, err
	}
	if ok {
		out.Set("icon", icon)
	} else {
		out.Set("icon", nil)
	}

	out.Set("hasAssets", e.HasAssets())
	out.Set("hasMigrations", e.HasMigrations())

	deps, _ := e.DependencyIDs()
	if deps == nil {
		deps = []string{}
	}
	out.Set("dependencyIds", deps)
	out.Set("links", e.Links())

	root := e.desc.Root()
	for _, k := range root.Keys() {
		if _, taken := out.Get(k); taken {
			continue
		}
		v, _ := root.Get(k)
		out.Set(k, v)
	}
	return out, nil
}

// MarshalJSON encodes ToArray.
func (e *Extension) MarshalJSON() ([]byte, error) {
	m, err := e.ToArray()
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}
