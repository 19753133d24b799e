package extension

import (
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func TestState_RoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/home/.extkit/extensions.yaml"

	st, err := LoadState(fsys, path)
	if err != nil {
		t.Fatalf("LoadState missing file: %v", err)
	}
	if len(st.Enabled) != 0 {
		t.Fatalf("missing file should load empty, got %+v", st)
	}

	st.markEnabled("acme-widgets", "1.0.0")
	st.markEnabled("acme-base", "")
	st.markEnabled("acme-widgets", "1.1.0")
	if err := SaveState(fsys, path, st); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	loaded, err := LoadState(fsys, path)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if !reflect.DeepEqual(loaded.Enabled, []string{"acme-widgets", "acme-base"}) {
		t.Errorf("Enabled = %v", loaded.Enabled)
	}
	if v, ok := loaded.Version("acme-widgets"); !ok || v != "1.1.0" {
		t.Errorf("version = %q, %v", v, ok)
	}
	if _, ok := loaded.Version("acme-base"); ok {
		t.Error("empty version should not be recorded")
	}

	loaded.markDisabled("acme-widgets")
	if loaded.IsEnabled("acme-widgets") {
		t.Error("still enabled after markDisabled")
	}
	if _, ok := loaded.Version("acme-widgets"); !ok {
		t.Error("markDisabled should keep the version")
	}
	loaded.forget("acme-widgets")
	if _, ok := loaded.Version("acme-widgets"); ok {
		t.Error("forget should drop the version")
	}
}

func TestLoadState_Invalid(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{"/state.yaml": "enabled: {not: [a list"})
	if _, err := LoadState(fsys, "/state.yaml"); err == nil {
		t.Fatal("expected parse error")
	}
}
