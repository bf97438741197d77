package symbol

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Attributer is implemented by values which provide their own attribute
// lookup.
type Attributer interface {
	Attr(name string) (any, bool)
}

// Module is a named collection of attributes addressed by a dotted path.
type Module struct {
	path string

	mu    sync.RWMutex
	attrs map[string]any

	// implicit is set on package modules created to hold a registered
	// child.
	implicit bool
	// lookup, when set, is consulted for names not defined.
	lookup func(name string) (any, bool)
}

func NewModule(path string) *Module {
	return &Module{path: path, attrs: map[string]any{}}
}

func (m *Module) Path() string { return m.path }

// Name is the last component of the path.
func (m *Module) Name() string {
	i := strings.LastIndexByte(m.path, '.')
	return m.path[i+1:]
}

// Define binds name to v in m and returns m.
func (m *Module) Define(name string, v any) *Module {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attrs[name] = v
	return m
}

func (m *Module) Attr(name string) (any, bool) {
	m.mu.RLock()
	v, ok := m.attrs[name]
	lookup := m.lookup
	m.mu.RUnlock()
	if ok || lookup == nil {
		return v, ok
	}
	return lookup(name)
}

// Names returns the defined attribute names, sorted.
func (m *Module) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]string, 0, len(m.attrs))
	for k := range m.attrs {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

func (m *Module) String() string {
	return fmt.Sprintf("<module %s>", m.path)
}

func (m *Module) adopt(from *Module) {
	for _, name := range from.Names() {
		if _, ok := m.Attr(name); ok {
			continue
		}
		v, _ := from.Attr(name)
		m.Define(name, v)
	}
}
