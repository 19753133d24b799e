package extension

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/forumkit/extkit/internal/descriptor"
	"github.com/forumkit/extkit/internal/identity"
	"github.com/spf13/afero"
)

func parse(t *testing.T, data string) *descriptor.Descriptor {
	t.Helper()
	d, err := descriptor.Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse descriptor: %v", err)
	}
	return d
}

func writeFiles(t *testing.T, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newExt(t *testing.T, fsys afero.Fs, path, data string) *Extension {
	t.Helper()
	ext, err := NewWithFs(fsys, path, parse(t, data))
	if err != nil {
		t.Fatalf("NewWithFs: %v", err)
	}
	return ext
}

func TestNew(t *testing.T) {
	ext, err := New("/srv/ext/widgets", descriptor.FromMap(map[string]any{"name": "Acme/Flarum-Ext-Widgets"}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ext.ID() != "acme-widgets" {
		t.Errorf("ID = %q, want acme-widgets", ext.ID())
	}
	if ext.Path() != "/srv/ext/widgets" {
		t.Errorf("Path = %q", ext.Path())
	}
	if !ext.IsInstalled() {
		t.Error("new extension should be installed")
	}
	if _, ok := ext.InstalledVersion(); ok {
		t.Error("installed version should be absent")
	}
	if _, ok := ext.DependencyIDs(); ok {
		t.Error("dependency ids should not be calculated yet")
	}
	if ext.Title() != "Acme/Flarum-Ext-Widgets" {
		t.Errorf("Title falls back to name, got %q", ext.Title())
	}
}

func TestNew_MalformedName(t *testing.T) {
	_, err := New("/srv/ext/broken", descriptor.FromMap(map[string]any{"name": "widgets"}))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, identity.ErrMalformedName) {
		t.Errorf("error should wrap ErrMalformedName: %v", err)
	}
	if !strings.Contains(err.Error(), "/srv/ext/broken") || !strings.Contains(err.Error(), "widgets") {
		t.Errorf("error should name path and package: %v", err)
	}
}

func TestInstalledState(t *testing.T) {
	ext := newExt(t, afero.NewMemMapFs(), "/ext", `{"name": "acme/widgets"}`)
	ext.SetInstalled(false)
	ext.SetInstalledVersion("2.0.1")
	if ext.IsInstalled() {
		t.Error("installed flag not updated")
	}
	if v, ok := ext.InstalledVersion(); !ok || v != "2.0.1" {
		t.Errorf("InstalledVersion = %q, %v", v, ok)
	}
}

func TestCalculateDependencies(t *testing.T) {
	fsys := afero.NewMemMapFs()
	ext := newExt(t, fsys, "/ext", `{
		"name": "acme/flarum-ext-widgets",
		"require": {
			"flarum/core": "^1.0",
			"acme/flarum-ext-base": "*",
			"php": ">=8.1",
			"acme/flarum-charts": "^2.0",
			"acme/not-installed": "*"
		}
	}`)

	ext.CalculateDependencies(map[string]bool{
		"acme/flarum-charts":      true,
		"acme/flarum-ext-base":    true,
		"acme/flarum-ext-widgets": true,
	})

	ids, ok := ext.DependencyIDs()
	if !ok {
		t.Fatal("dependencies not marked calculated")
	}
	want := []string{"acme-base", "acme-charts"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("DependencyIDs = %v, want %v", ids, want)
	}
}

func TestCalculateDependencies_KeyPresence(t *testing.T) {
	ext := newExt(t, afero.NewMemMapFs(), "/ext", `{"name": "acme/widgets", "require": {"acme/flarum-ext-base": "*"}}`)
	ext.CalculateDependencies(map[string]bool{"acme/flarum-ext-base": false})
	if ids, _ := ext.DependencyIDs(); !reflect.DeepEqual(ids, []string{"acme-base"}) {
		t.Errorf("DependencyIDs = %v, want [acme-base]", ids)
	}
}

func TestCalculateDependencies_NoRequire(t *testing.T) {
	ext := newExt(t, afero.NewMemMapFs(), "/ext", `{"name": "acme/widgets"}`)
	ext.CalculateDependencies(map[string]bool{"acme/other": true})
	ids, ok := ext.DependencyIDs()
	if !ok || ids == nil || len(ids) != 0 {
		t.Errorf("DependencyIDs = %#v, %v, want empty calculated list", ids, ok)
	}
}

func TestIcon(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		files   map[string]string
		wantBg  string
		wantErr bool
	}{
		{
			name:   "svg embedded",
			image:  "icon.svg",
			files:  map[string]string{"/ext/icon.svg": "<svg/>"},
			wantBg: "url('data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte("<svg/>")) + "')",
		},
		{
			name:   "jpg uses jpeg mime",
			image:  "assets/logo.jpg",
			files:  map[string]string{"/ext/assets/logo.jpg": "jpg-bytes"},
			wantBg: "url('data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpg-bytes")) + "')",
		},
		{
			name:  "missing file leaves icon unchanged",
			image: "missing.png",
		},
		{
			name:    "unsupported type",
			image:   "icon.gif",
			files:   map[string]string{"/ext/icon.gif": "GIF89a"},
			wantErr: true,
		},
		{
			name:    "extension match is case-sensitive",
			image:   "LOGO.PNG",
			files:   map[string]string{"/ext/LOGO.PNG": "png-bytes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			writeFiles(t, fsys, tt.files)
			ext := newExt(t, fsys, "/ext", `{
				"name": "acme/widgets",
				"extra": {"flarum-extension": {"icon": {"name": "fas fa-cube", "image": "`+tt.image+`"}}}
			}`)

			icon, ok, err := ext.Icon()
			if !ok {
				t.Fatal("icon should be declared")
			}
			if tt.wantErr {
				var typed *UnsupportedImageTypeError
				if !errors.As(err, &typed) || !errors.Is(err, ErrUnsupportedImageType) {
					t.Fatalf("expected UnsupportedImageTypeError, got %v", err)
				}
				if typed.ExtensionID != "acme-widgets" || !strings.HasSuffix(typed.File, tt.image) {
					t.Errorf("error fields = %+v", typed)
				}
				return
			}
			if err != nil {
				t.Fatalf("Icon: %v", err)
			}
			if name, _ := icon.Get("name"); name != "fas fa-cube" {
				t.Errorf("name = %v", name)
			}
			bg, hasBg := icon.Get("backgroundImage")
			if tt.wantBg == "" {
				if hasBg {
					t.Errorf("unexpected backgroundImage %v", bg)
				}
				return
			}
			if bg != tt.wantBg {
				t.Errorf("backgroundImage = %v, want %v", bg, tt.wantBg)
			}
			if ext.Descriptor().Has(descriptor.PathIcon + ".backgroundImage") {
				t.Error("Icon must not modify the descriptor")
			}
		})
	}
}

func TestIcon_Absent(t *testing.T) {
	ext := newExt(t, afero.NewMemMapFs(), "/ext", `{"name": "acme/widgets"}`)
	icon, ok, err := ext.Icon()
	if ok || icon != nil || err != nil {
		t.Errorf("Icon = %v, %v, %v; want absent", icon, ok, err)
	}
}

func TestLinks(t *testing.T) {
	ext := newExt(t, afero.NewMemMapFs(), "/ext", `{
		"name": "acme/widgets",
		"homepage": "https://acme.test",
		"support": {
			"source": "https://git.acme.test",
			"forum": "https://forum.acme.test",
			"docs": "https://docs.acme.test",
			"email": "help@acme.test"
		},
		"funding": [{"type": "github", "url": "https://fund.test/1"}, {"url": "https://fund.test/2"}],
		"authors": [
			{"name": "Ada", "homepage": "https://ada.test", "email": "ada@acme.test"},
			{"name": "Bob", "email": "bob@acme.test"},
			{"name": "Cy"}
		],
		"extra": {"flarum-extension": {"links": {"discuss": "https://override.test", "chat": "https://chat.test"}}}
	}`)

	links := ext.Links()
	wantKeys := []string{"source", "discuss", "documentation", "website", "support", "donate", "authors", "chat"}
	if !reflect.DeepEqual(links.Keys(), wantKeys) {
		t.Errorf("keys = %v, want %v", links.Keys(), wantKeys)
	}
	checks := map[string]string{
		"source":        "https://git.acme.test",
		"discuss":       "https://override.test",
		"documentation": "https://docs.acme.test",
		"website":       "https://acme.test",
		"support":       "mailto:help@acme.test",
		"donate":        "https://fund.test/1",
		"chat":          "https://chat.test",
	}
	for k, want := range checks {
		if got, _ := links.Get(k); got != want {
			t.Errorf("%s = %v, want %v", k, got, want)
		}
	}
	authors, _ := links.Get("authors")
	wantAuthors := []AuthorLink{
		{Name: "Ada", Link: "https://ada.test"},
		{Name: "Bob", Link: "mailto:bob@acme.test"},
		{Name: "Cy", Link: ""},
	}
	if !reflect.DeepEqual(authors, wantAuthors) {
		t.Errorf("authors = %#v", authors)
	}
}

func TestLinks_Minimal(t *testing.T) {
	ext := newExt(t, afero.NewMemMapFs(), "/ext", `{"name": "acme/widgets", "source": {"url": "https://src.test"}, "support": {"source": "https://ignored.test"}}`)
	links := ext.Links()
	if !reflect.DeepEqual(links.Keys(), []string{"source", "authors"}) {
		t.Fatalf("keys = %v", links.Keys())
	}
	if src, _ := links.Get("source"); src != "https://src.test" {
		t.Errorf("source.url should win over support.source, got %v", src)
	}
	if authors, _ := links.Get("authors"); !reflect.DeepEqual(authors, []AuthorLink{}) {
		t.Errorf("authors = %#v, want empty list", authors)
	}
}

func TestToArray(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{"/ext/assets/app.js": "x"})
	ext := newExt(t, fsys, "/ext", `{
		"name": "acme/widgets",
		"id": "bogus",
		"description": "Widgets",
		"path": "/elsewhere",
		"type": "flarum-extension"
	}`)
	ext.SetInstalledVersion("1.0.0")
	ext.CalculateDependencies(nil)

	arr, err := ext.ToArray()
	if err != nil {
		t.Fatalf("ToArray: %v", err)
	}
	wantKeys := []string{
		"id", "version", "path", "icon", "hasAssets", "hasMigrations", "dependencyIds", "links",
		"name", "description", "type",
	}
	if !reflect.DeepEqual(arr.Keys(), wantKeys) {
		t.Errorf("keys = %v, want %v", arr.Keys(), wantKeys)
	}
	for k, want := range map[string]any{
		"id":            "acme-widgets",
		"version":       "1.0.0",
		"path":          "/ext",
		"hasAssets":     true,
		"hasMigrations": false,
		"description":   "Widgets",
	} {
		if got, _ := arr.Get(k); got != want {
			t.Errorf("%s = %v, want %v", k, got, want)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	ext := newExt(t, afero.NewMemMapFs(), "/ext", `{"name": "acme/widgets", "license": "MIT"}`)

	data, err := json.Marshal(ext)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"id":"acme-widgets","version":null,"path":"/ext","icon":null,"hasAssets":false,` +
		`"hasMigrations":false,"dependencyIds":[],"links":{"authors":[]},"name":"acme/widgets","license":"MIT"}`
	if string(data) != want {
		t.Errorf("json =\n%s\nwant\n%s", data, want)
	}
}
