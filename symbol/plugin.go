package symbol

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"plugin"
	"strings"
	"sync"
)

// PluginImporter provides modules from Go plugins. The module a.b is loaded
// from a/b.so under the first directory of Path which has it, and a
// directory a/b gives an empty package module. Plugin symbols are the module
// attributes; exported variables are dereferenced.
type PluginImporter struct {
	Path []string

	// Open defaults to plugin.Open.
	Open func(path string) (Lookuper, error)
}

// Lookuper is satisfied by *plugin.Plugin.
type Lookuper interface {
	Lookup(name string) (plugin.Symbol, error)
}

func openPlugin(path string) (Lookuper, error) {
	return plugin.Open(path)
}

func (pi *PluginImporter) Import(path string) (*Module, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(path, ".", "/"))
	for _, dir := range pi.Path {
		file := filepath.Join(dir, rel+".so")
		if _, err := os.Stat(file); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			if fi, err := os.Stat(filepath.Join(dir, rel)); err == nil && fi.IsDir() {
				return NewModule(path), nil
			}
			continue
		}
		open := pi.Open
		if open == nil {
			open = openPlugin
		}
		p, err := open(file)
		if err != nil {
			return nil, fmt.Errorf("opening plugin %s: %w", file, err)
		}
		m := NewModule(path)
		m.lookup = pluginLookup(p)
		return m, nil
	}
	return nil, fmt.Errorf("%w %s", ErrNoModule, path)
}

func pluginLookup(p Lookuper) func(string) (any, bool) {
	var (
		mu    sync.Mutex
		cache = map[string]any{}
	)
	return func(name string) (any, bool) {
		mu.Lock()
		defer mu.Unlock()
		if v, ok := cache[name]; ok {
			return v, true
		}
		var v any
		for _, cand := range candidates(name) {
			sym, err := p.Lookup(cand)
			if err != nil {
				continue
			}
			v = deref(sym)
			cache[name] = v
			return v, true
		}
		return nil, false
	}
}

// deref returns the value of exported plugin variables, which Lookup
// returns as pointers. Functions are returned as is.
func deref(sym plugin.Symbol) any {
	switch x := sym.(type) {
	case *any:
		return *x
	case *string:
		return *x
	case *int:
		return *x
	case *float64:
		return *x
	case *bool:
		return *x
	}
	return sym
}
