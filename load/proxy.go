package load

import (
	"fmt"
	"reflect"

	"github.com/signadot/objyaml/construct"
	"github.com/signadot/objyaml/debug"
	"github.com/signadot/objyaml/ir"
)

// Proxy stands for an !obj: directive which has not been constructed.
// Callable is the resolved target and Args its resolved arguments, which
// may contain further proxies.
type Proxy struct {
	Target   string
	Callable any
	Args     construct.Args

	node *ir.Node
	file string
}

func (p *Proxy) String() string {
	return fmt.Sprintf("<proxy %s%s>", ir.ObjectTagPrefix, p.Target)
}

// Path is the location of the directive in its document.
func (p *Proxy) Path() string {
	if p.node == nil {
		return ""
	}
	return p.node.Path()
}

// Instantiate constructs the graph represented by p.
func (p *Proxy) Instantiate() (any, error) {
	return InstantiateGraph(p)
}

// InstantiateGraph replaces every proxy reachable from v by the object it
// constructs, innermost first. A proxy reachable along several paths is
// constructed once and the result shared. Maps and slices are updated in
// place.
func InstantiateGraph(v any) (any, error) {
	in := &instantiator{
		built: map[*Proxy]any{},
		seen:  map[uintptr]bool{},
	}
	return in.value(v)
}

type instantiator struct {
	built map[*Proxy]any
	seen  map[uintptr]bool
}

func (in *instantiator) value(v any) (any, error) {
	switch x := v.(type) {
	case *Proxy:
		return in.proxy(x)
	case []any:
		if len(x) == 0 || !in.visit(reflect.ValueOf(x).Pointer()) {
			return x, nil
		}
		for i := range x {
			e, err := in.value(x[i])
			if err != nil {
				return nil, err
			}
			x[i] = e
		}
		return x, nil
	case map[string]any:
		if !in.visit(reflect.ValueOf(x).Pointer()) {
			return x, nil
		}
		for k := range x {
			e, err := in.value(x[k])
			if err != nil {
				return nil, err
			}
			x[k] = e
		}
		return x, nil
	}
	return v, nil
}

func (in *instantiator) visit(p uintptr) bool {
	if in.seen[p] {
		return false
	}
	in.seen[p] = true
	return true
}

func (in *instantiator) proxy(p *Proxy) (any, error) {
	if v, ok := in.built[p]; ok {
		return v, nil
	}
	if _, err := in.value(map[string]any(p.Args)); err != nil {
		return nil, err
	}
	if debug.Construct() {
		debug.Logf("%s: constructing %s\n", p.Path(), p.Target)
	}
	v, err := construct.Call(p.Callable, p.Args)
	if err != nil {
		e := nodeError(p.node, ErrConstruction, err)
		e.File = p.file
		if p.node == nil {
			e.Tag = ir.ObjectTagPrefix + p.Target
		}
		return nil, e
	}
	in.built[p] = v
	return v, nil
}
