package extension

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/forumkit/extkit/internal/container"
	"github.com/forumkit/extkit/internal/extend"
	"github.com/forumkit/extkit/internal/extender"
	"github.com/spf13/afero"
)

const widgetsComposer = `{
    "name": "acme/flarum-ext-widgets",
    "type": "flarum-extension",
    "version": "%s",
    "require": {"acme/flarum-ext-base": "^1.0"}
}`

const widgetsExtend = `
- kind: settings
  defaults:
    acme-widgets.limit: 5
- kind: bind
  name: acme.widgets.enabled
  value: true
`

type managerFixture struct {
	root     string
	vendor   string
	store    *extend.MemorySettings
	public   afero.Fs
	migrator *fakeMigrator
	manager  *Manager
}

func writeOS(t *testing.T, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func widgetsDescriptor(version string) string {
	return fmt.Sprintf(widgetsComposer, version)
}

func newFixture(t *testing.T) *managerFixture {
	t.Helper()
	root := t.TempDir()
	vendor := filepath.Join(root, "vendor")
	writeOS(t, map[string]string{
		filepath.Join(vendor, "acme/flarum-ext-widgets/composer.json"):      widgetsDescriptor("1.0.0"),
		filepath.Join(vendor, "acme/flarum-ext-widgets", extender.FileName): widgetsExtend,
		filepath.Join(vendor, "acme/flarum-ext-widgets/assets/widgets.js"):  "widgets()",
		filepath.Join(vendor, "acme/flarum-ext-widgets/migrations/001.sql"): "create table widgets",
		filepath.Join(vendor, "acme/flarum-ext-base/composer.json"):         `{"name": "acme/flarum-ext-base", "type": "flarum-extension", "version": "1.0.0"}`,
	})

	store := extend.NewMemorySettings()
	app := container.New()
	app.Instance(extend.BindingSettings, extend.SettingsStore(store))

	f := &managerFixture{
		root:     root,
		vendor:   vendor,
		store:    store,
		public:   afero.NewMemMapFs(),
		migrator: &fakeMigrator{},
	}
	f.manager = NewManager(Options{
		Fs:         afero.NewOsFs(),
		Root:       vendor,
		StatePath:  filepath.Join(root, "state", StateFileName),
		Public:     f.public,
		Migrator:   f.migrator,
		App:        app,
		Dispatcher: extender.NewDispatcher(extend.NewRegistry()),
	})
	return f
}

func TestManager_EnableDisable(t *testing.T) {
	f := newFixture(t)
	m := f.manager

	missing, err := m.MissingDependencies("acme-widgets")
	if err != nil {
		t.Fatalf("MissingDependencies: %v", err)
	}
	if !reflect.DeepEqual(missing, []string{"acme-base"}) {
		t.Errorf("missing = %v", missing)
	}

	if err := m.Enable("acme-widgets"); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if v, ok := f.store.Get("acme-widgets.limit"); !ok || v != 5 {
		t.Errorf("setting seeded = %v, %v", v, ok)
	}
	if data, err := afero.ReadFile(f.public, "extensions/acme-widgets/widgets.js"); err != nil || string(data) != "widgets()" {
		t.Errorf("published asset = %q, %v", data, err)
	}
	if len(f.migrator.calls) != 1 {
		t.Errorf("migrator calls = %v", f.migrator.calls)
	}

	if err := m.Enable("acme-widgets"); err != nil {
		t.Fatalf("second Enable: %v", err)
	}
	if len(f.migrator.calls) != 1 {
		t.Error("enabling twice must not migrate again")
	}

	if err := m.Enable("acme-base"); err != nil {
		t.Fatalf("Enable base: %v", err)
	}
	st, err := m.State()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(st.Enabled, []string{"acme-base", "acme-widgets"}) {
		t.Errorf("enabled order = %v, dependencies first", st.Enabled)
	}
	if v, _ := st.Version("acme-widgets"); v != "1.0.0" {
		t.Errorf("recorded version = %q", v)
	}
	if missing, _ := m.MissingDependencies("acme-widgets"); len(missing) != 0 {
		t.Errorf("missing after enabling base = %v", missing)
	}

	if err := m.Disable("acme-widgets"); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if _, ok := f.store.Get("acme-widgets.limit"); ok {
		t.Error("default setting should be removed on disable")
	}
	if ok, _ := afero.DirExists(f.public, "extensions/acme-widgets"); ok {
		t.Error("assets should be unpublished on disable")
	}
	if err := m.Disable("acme-widgets"); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("second Disable err = %v, want ErrNotEnabled", err)
	}
}

func TestManager_Boot(t *testing.T) {
	f := newFixture(t)
	m := f.manager
	for _, id := range []string{"acme-base", "acme-widgets"} {
		if err := m.Enable(id); err != nil {
			t.Fatalf("Enable %s: %v", id, err)
		}
	}

	if err := m.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	if v, err := m.App().Make("acme.widgets.enabled"); err != nil || v != true {
		t.Errorf("bound value = %v, %v", v, err)
	}
	defaults, err := container.MakeAs[map[string]any](m.App(), extend.BindingSettingsDefault)
	if err != nil {
		t.Fatal(err)
	}
	if defaults["acme-widgets.limit"] != 5 {
		t.Errorf("defaults = %v", defaults)
	}
}

func TestManager_BootFailure(t *testing.T) {
	f := newFixture(t)
	writeOS(t, map[string]string{
		filepath.Join(f.vendor, "acme/flarum-ext-base", extender.FileName): "- 42\n",
	})
	if err := f.manager.Enable("acme-base"); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	err := f.manager.Boot()
	if !errors.Is(err, extender.ErrNotExtender) {
		t.Fatalf("Boot err = %v, want ErrNotExtender", err)
	}
}

func TestManager_Outdated(t *testing.T) {
	f := newFixture(t)
	m := f.manager
	if err := m.Enable("acme-widgets"); err != nil {
		t.Fatal(err)
	}
	updates, err := m.Outdated()
	if err != nil || len(updates) != 0 {
		t.Fatalf("Outdated = %v, %v", updates, err)
	}

	writeOS(t, map[string]string{
		filepath.Join(f.vendor, "acme/flarum-ext-widgets/composer.json"): widgetsDescriptor("1.1.0"),
	})
	updates, err = m.Outdated()
	if err != nil {
		t.Fatal(err)
	}
	want := []Update{{ID: "acme-widgets", Recorded: "1.0.0", Available: "1.1.0"}}
	if !reflect.DeepEqual(updates, want) {
		t.Errorf("updates = %+v, want %+v", updates, want)
	}
}

func TestManager_Uninstall(t *testing.T) {
	f := newFixture(t)
	m := f.manager
	if err := m.Enable("acme-widgets"); err != nil {
		t.Fatal(err)
	}
	if err := m.Uninstall("acme-widgets"); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	st, err := m.State()
	if err != nil {
		t.Fatal(err)
	}
	if st.IsEnabled("acme-widgets") {
		t.Error("still enabled")
	}
	if _, ok := st.Version("acme-widgets"); ok {
		t.Error("version should be forgotten")
	}
	if got := f.migrator.calls; len(got) != 2 || got[1][:6] != "reset:" {
		t.Errorf("migrator calls = %v", got)
	}
	if _, err := os.Stat(filepath.Join(f.vendor, "acme/flarum-ext-widgets/composer.json")); err != nil {
		t.Error("uninstall must leave extension files in place")
	}
}

func TestManager_NotFound(t *testing.T) {
	f := newFixture(t)
	if err := f.manager.Enable("acme-nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Enable err = %v", err)
	}
	if _, err := f.manager.Find("acme-nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find err = %v", err)
	}
}
