// Package symbol resolves dotted paths such as "pkg.models.MLP" against a
// namespace of registered modules.
//
// Resolution imports the longest registered module prefix of the path, then
// walks the remaining components as attributes:
//
//	ns := symbol.NewNamespace()
//	ns.MustRegister(symbol.NewModule("pkg.models").Define("MLP", newMLP))
//	ctor, err := ns.Resolve("pkg.models.MLP")
//
// Modules not registered up front may be provided by importers, whose results
// are cached in the namespace.
package symbol

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/signadot/objyaml/debug"
)

// Importer provides modules on demand. Import returns an error matching
// ErrNoModule when it does not know path.
type Importer interface {
	Import(path string) (*Module, error)
}

type ImporterFunc func(path string) (*Module, error)

func (f ImporterFunc) Import(path string) (*Module, error) { return f(path) }

// Namespace is a registry of modules keyed by dotted path. It is safe for
// concurrent use.
type Namespace struct {
	mu        sync.RWMutex
	modules   map[string]*Module
	importers []Importer
}

func NewNamespace(importers ...Importer) *Namespace {
	return &Namespace{
		modules:   map[string]*Module{},
		importers: importers,
	}
}

// AddImporter appends imp to the importers consulted on a registry miss.
func (ns *Namespace) AddImporter(imp Importer) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.importers = append(ns.importers, imp)
}

// Register adds m under its path. Missing parent packages are created and
// each module is defined as an attribute of its parent.
func (ns *Namespace) Register(m *Module) error {
	if err := checkPath(m.path); err != nil {
		return err
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.register(m)
}

func (ns *Namespace) register(m *Module) error {
	if prev, present := ns.modules[m.path]; present {
		if !prev.implicit {
			return fmt.Errorf("%s: %w", m.path, ErrModuleExists)
		}
		m.adopt(prev)
	}
	ns.modules[m.path] = m
	child := m
	for {
		i := strings.LastIndexByte(child.path, '.')
		if i == -1 {
			return nil
		}
		parentPath := child.path[:i]
		parent, present := ns.modules[parentPath]
		if !present {
			parent = NewModule(parentPath)
			parent.implicit = true
			ns.modules[parentPath] = parent
		}
		parent.Define(child.Name(), child)
		if present {
			return nil
		}
		child = parent
	}
}

func (ns *Namespace) MustRegister(m *Module) {
	if err := ns.Register(m); err != nil {
		panic(err)
	}
}

// Modules returns the paths of all modules, sorted.
func (ns *Namespace) Modules() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	res := make([]string, 0, len(ns.modules))
	for k := range ns.modules {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Import returns the module registered at path, asking the importers in
// order if there is none.
func (ns *Namespace) Import(path string) (*Module, error) {
	ns.mu.RLock()
	m, present := ns.modules[path]
	importers := ns.importers
	ns.mu.RUnlock()
	if present {
		return m, nil
	}
	for _, imp := range importers {
		m, err := imp.Import(path)
		if errors.Is(err, ErrNoModule) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: importing %s: %w", ErrImport, path, err)
		}
		if m.path != path {
			return nil, fmt.Errorf("%w: importer returned %s for %s", ErrImport, m.path, path)
		}
		if debug.Resolve() {
			debug.Logf("imported %s via %T\n", path, imp)
		}
		ns.mu.Lock()
		defer ns.mu.Unlock()
		if cached, present := ns.modules[path]; present && !cached.implicit {
			return cached, nil
		}
		if err := ns.register(m); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w %s", ErrNoModule, path)
}

// Resolve maps a dotted path to the value it names. The first component
// must be importable; a missing later component is an ErrAttribute.
func (ns *Namespace) Resolve(dotted string) (any, error) {
	if err := checkPath(dotted); err != nil {
		return nil, err
	}
	parts := strings.Split(dotted, ".")
	var (
		cur any
		n   int
	)
	for n < len(parts) {
		m, err := ns.Import(strings.Join(parts[:n+1], "."))
		if errors.Is(err, ErrNoModule) {
			break
		}
		if err != nil {
			return nil, err
		}
		cur = m
		n++
	}
	if n == 0 {
		return nil, fmt.Errorf("%w %s (resolving %s)", ErrNoModule, parts[0], dotted)
	}
	for _, name := range parts[n:] {
		v, err := Attr(cur, name)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", dotted, err)
		}
		cur = v
	}
	if debug.Resolve() {
		debug.Logf("resolved %s to %T\n", dotted, cur)
	}
	return cur, nil
}

func checkPath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrImport)
	}
	for _, part := range strings.Split(p, ".") {
		if part == "" {
			return fmt.Errorf("%w: empty component in %q", ErrImport, p)
		}
	}
	return nil
}

var (
	defaultOnce sync.Once
	defaultNS   *Namespace
)

// Default returns the process wide namespace, which holds the built in
// "math" and "builtins" modules.
func Default() *Namespace {
	defaultOnce.Do(func() {
		defaultNS = NewNamespace()
		defaultNS.MustRegister(mathModule())
		defaultNS.MustRegister(builtinsModule())
	})
	return defaultNS
}

// Register adds m to the default namespace.
func Register(m *Module) error {
	return Default().Register(m)
}

func MustRegister(m *Module) {
	Default().MustRegister(m)
}

// Resolve resolves dotted in the default namespace.
func Resolve(dotted string) (any, error) {
	return Default().Resolve(dotted)
}
