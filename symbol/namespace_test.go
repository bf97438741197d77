package symbol

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"plugin"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type corruptor struct {
	Level float64
}

func (c *corruptor) Corrupt(x float64) float64 { return x * (1 - c.Level) }

func newTestNamespace(t *testing.T) *Namespace {
	t.Helper()
	ns := NewNamespace()
	ns.MustRegister(NewModule("pylearn2.corruption").
		Define("BinomialCorruptor", func() *corruptor { return &corruptor{Level: 0.5} }).
		Define("default", &corruptor{Level: 0.25}).
		Define("settings", map[string]any{"seed": 42}))
	return ns
}

func TestResolve(t *testing.T) {
	ns := newTestNamespace(t)

	v, err := ns.Resolve("pylearn2.corruption.default.Level")
	if err != nil {
		t.Fatal(err)
	}
	if v != 0.25 {
		t.Errorf("got %v", v)
	}

	v, err = ns.Resolve("pylearn2.corruption.default.level")
	if err != nil || v != 0.25 {
		t.Errorf("lower case field: %v %v", v, err)
	}

	v, err = ns.Resolve("pylearn2.corruption.settings.seed")
	if err != nil || v != 42 {
		t.Errorf("map key: %v %v", v, err)
	}

	v, err = ns.Resolve("pylearn2.corruption.default.corrupt")
	if err != nil {
		t.Fatal(err)
	}
	if f, ok := v.(func(float64) float64); !ok || f(4) != 3 {
		t.Errorf("method: %T", v)
	}

	v, err = ns.Resolve("pylearn2")
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := v.(*Module); !ok || m.Path() != "pylearn2" {
		t.Errorf("package: %v", v)
	}
	sub, err := Attr(v, "corruption")
	if err != nil {
		t.Fatal(err)
	}
	if sub.(*Module).Path() != "pylearn2.corruption" {
		t.Errorf("child: %v", sub)
	}
}

func TestResolveDefault(t *testing.T) {
	v, err := Resolve("math.sqrt")
	if err != nil {
		t.Fatal(err)
	}
	sqrt, ok := v.(func(float64) float64)
	if !ok {
		t.Fatalf("math.sqrt is %T", v)
	}
	if reflect.ValueOf(sqrt).Pointer() != reflect.ValueOf(math.Sqrt).Pointer() {
		t.Errorf("math.sqrt is not math.Sqrt")
	}
	if sqrt(16) != 4 {
		t.Errorf("sqrt(16) = %v", sqrt(16))
	}
	v, err = Resolve("builtins.dict")
	if err != nil {
		t.Fatal(err)
	}
	d, err := v.(func(map[string]any) (any, error))(map[string]any{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"a": 1}, d); diff != "" {
		t.Errorf("dict (-want +got):\n%s", diff)
	}
}

func TestResolveErrors(t *testing.T) {
	ns := newTestNamespace(t)
	tests := []struct {
		path string
		e    error
	}{
		{"", ErrImport},
		{"a..b", ErrImport},
		{"nosuchpkg.Thing", ErrImport},
		{"pylearn2.nosuchmod", ErrAttribute},
		{"pylearn2.corruption.Missing", ErrAttribute},
		{"pylearn2.corruption.default.missing", ErrAttribute},
		{"pylearn2.corruption.settings.missing", ErrAttribute},
	}
	for _, tt := range tests {
		_, err := ns.Resolve(tt.path)
		if !errors.Is(err, tt.e) {
			t.Errorf("%q: got %v, expected %v", tt.path, err, tt.e)
		}
	}
}

func TestRegister(t *testing.T) {
	ns := NewNamespace()
	ns.MustRegister(NewModule("a.b.c").Define("x", 1))
	if diff := cmp.Diff([]string{"a", "a.b", "a.b.c"}, ns.Modules()); diff != "" {
		t.Errorf("modules (-want +got):\n%s", diff)
	}
	// a real module replaces an implicit package and keeps its children
	if err := ns.Register(NewModule("a.b").Define("y", 2)); err != nil {
		t.Fatal(err)
	}
	if v, err := ns.Resolve("a.b.c.x"); err != nil || v != 1 {
		t.Errorf("a.b.c.x: %v %v", v, err)
	}
	if v, err := ns.Resolve("a.b.y"); err != nil || v != 2 {
		t.Errorf("a.b.y: %v %v", v, err)
	}
	if err := ns.Register(NewModule("a.b")); !errors.Is(err, ErrModuleExists) {
		t.Errorf("expected exists, got %v", err)
	}
	if err := ns.Register(NewModule("bad.")); !errors.Is(err, ErrImport) {
		t.Errorf("expected import error, got %v", err)
	}
}

func TestImporter(t *testing.T) {
	calls := 0
	ns := NewNamespace(ImporterFunc(func(path string) (*Module, error) {
		calls++
		if path != "lazy" {
			return nil, fmt.Errorf("%w %s", ErrNoModule, path)
		}
		return NewModule("lazy").Define("Value", "v"), nil
	}))
	for i := 0; i < 3; i++ {
		v, err := ns.Resolve("lazy.Value")
		if err != nil || v != "v" {
			t.Fatalf("resolve %d: %v %v", i, v, err)
		}
	}
	// one call for "lazy", one for "lazy.Value" which is not a module
	if calls != 4 {
		t.Errorf("expected the module import to be cached, got %d calls", calls)
	}

	boom := errors.New("boom")
	ns = NewNamespace(ImporterFunc(func(path string) (*Module, error) {
		return nil, boom
	}))
	if _, err := ns.Resolve("x.y"); !errors.Is(err, ErrImport) || !errors.Is(err, boom) {
		t.Errorf("expected wrapped importer error, got %v", err)
	}
}

type fakePlugin map[string]plugin.Symbol

func (p fakePlugin) Lookup(name string) (plugin.Symbol, error) {
	if s, ok := p[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("symbol %s not found", name)
}

func TestPluginImporter(t *testing.T) {
	dir := t.TempDir()
	rate := 0.1
	imp := &PluginImporter{
		Path: []string{t.TempDir(), dir},
		Open: func(path string) (Lookuper, error) {
			return fakePlugin{"LearningRate": &rate}, nil
		},
	}
	if err := writeFile(dir, "models/sgd.so"); err != nil {
		t.Fatal(err)
	}
	ns := NewNamespace(imp)
	v, err := ns.Resolve("models.sgd.learning_rate")
	if err != nil {
		t.Fatal(err)
	}
	if v != 0.1 {
		t.Errorf("got %v", v)
	}
	if _, err := ns.Resolve("models.other.X"); !errors.Is(err, ErrAttribute) {
		t.Errorf("expected attribute error, got %v", err)
	}
	if _, err := ns.Resolve("nomodels.X"); !errors.Is(err, ErrImport) {
		t.Errorf("expected import error, got %v", err)
	}
}

func writeFile(dir, rel string) error {
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, nil, 0o644)
}
