package load

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/signadot/objyaml/anchor"
	"github.com/signadot/objyaml/construct"
	"github.com/signadot/objyaml/debug"
	"github.com/signadot/objyaml/eval"
	"github.com/signadot/objyaml/ir"
)

// resolver walks one document depth first, in document order, so that an
// anchor is always registered before its aliases are reached.
type resolver struct {
	l       *Loader
	anchors *anchor.Table
}

func newResolver(l *Loader) *resolver {
	return &resolver{l: l, anchors: anchor.New()}
}

func (r *resolver) errorf(n *ir.Node, kind, err error) error {
	e := nodeError(n, kind, err)
	e.File = r.l.filename
	return e
}

func (r *resolver) resolve(n *ir.Node) (any, error) {
	if n.Anchor != "" {
		if err := r.anchors.Begin(n.Anchor); err != nil {
			return nil, r.errorf(n, ErrParse, err)
		}
	}
	v, err := r.value(n)
	if err != nil {
		return nil, err
	}
	if n.Anchor != "" {
		if err := r.anchors.Register(n.Anchor, v); err != nil {
			return nil, r.errorf(n, ErrParse, err)
		}
	}
	return v, nil
}

func (r *resolver) value(n *ir.Node) (any, error) {
	switch n.Type {
	case ir.NullType:
		return nil, nil
	case ir.BoolType:
		return n.Bool, nil
	case ir.NumberType:
		return r.number(n)
	case ir.StringType:
		return r.str(n)
	case ir.ArrayType:
		res := make([]any, len(n.Values))
		for i, vn := range n.Values {
			v, err := r.resolve(vn)
			if err != nil {
				return nil, err
			}
			res[i] = v
		}
		return res, nil
	case ir.ObjectType:
		return r.mapping(n)
	case ir.AliasType:
		v, err := r.anchors.Lookup(n.Alias)
		if err != nil {
			return nil, r.errorf(n, ErrUndefinedAnchor, err)
		}
		return v, nil
	case ir.DirectiveType:
		return r.directive(n)
	}
	return nil, r.errorf(n, ErrParse, fmt.Errorf("unexpected node type %s", n.Type))
}

func (r *resolver) number(n *ir.Node) (any, error) {
	switch {
	case n.Int64 != nil:
		if i := int(*n.Int64); int64(i) == *n.Int64 {
			return i, nil
		}
		return *n.Int64, nil
	case n.Float64 != nil:
		return *n.Float64, nil
	}
	u, err := strconv.ParseUint(n.Number, 0, 64)
	if err != nil {
		return nil, r.errorf(n, ErrParse, err)
	}
	return u, nil
}

func (r *resolver) str(n *ir.Node) (any, error) {
	if n.Tag == "!!binary" {
		d, err := base64.StdEncoding.DecodeString(n.String)
		if err != nil {
			return nil, r.errorf(n, ErrParse, err)
		}
		return d, nil
	}
	if !r.l.expand || !strings.Contains(n.String, "$") {
		return n.String, nil
	}
	opts := &eval.Options{Node: n}
	if v, ok, err := eval.Eval(n.String, r.l.environ, opts); ok {
		if err != nil {
			return nil, r.errorf(n, ErrExpand, err)
		}
		return v, nil
	}
	s, err := eval.ExpandVars(n.String, eval.Lookup(r.l.environ))
	if err != nil {
		return nil, r.errorf(n, ErrExpand, err)
	}
	s, err = eval.ExpandStringWithOptions(s, r.l.environ, opts)
	if err != nil {
		return nil, r.errorf(n, ErrExpand, err)
	}
	return s, nil
}

// mapping resolves the fields of a mapping or the arguments of an object
// directive. Merged mappings supply keys not given explicitly, the first
// merged mapping winning over later ones.
func (r *resolver) mapping(n *ir.Node) (map[string]any, error) {
	res := make(map[string]any, len(n.Fields))
	var merged []map[string]any
	for i, f := range n.Fields {
		v, err := r.resolve(n.Values[i])
		if err != nil {
			return nil, err
		}
		if !f.IsMergeKey() {
			res[f.String] = v
			continue
		}
		ms, err := mergeSources(v)
		if err != nil {
			return nil, r.errorf(n.Values[i], ErrParse, err)
		}
		merged = append(merged, ms...)
	}
	for _, m := range merged {
		for k, v := range m {
			if _, present := res[k]; !present {
				res[k] = v
			}
		}
	}
	return res, nil
}

func mergeSources(v any) ([]map[string]any, error) {
	switch x := v.(type) {
	case map[string]any:
		return []map[string]any{x}, nil
	case []any:
		res := make([]map[string]any, 0, len(x))
		for i, e := range x {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("merge element %d is %T, not a mapping", i, e)
			}
			res = append(res, m)
		}
		return res, nil
	}
	return nil, fmt.Errorf("cannot merge %T", v)
}

func (r *resolver) directive(n *ir.Node) (any, error) {
	switch n.Kind {
	case ir.ObjectDirective:
		return r.object(n)
	case ir.ImportDirective:
		v, err := r.l.ns.Resolve(n.Target)
		if err != nil {
			return nil, r.errorf(n, symbolKind(err), err)
		}
		if debug.Resolve() {
			debug.Logf("%s: import %s gave %T\n", n.Path(), n.Target, v)
		}
		return v, nil
	case ir.PickleDirective:
		loc, err := eval.ExpandVars(n.Target, eval.Lookup(r.l.environ))
		if err != nil {
			return nil, r.errorf(n, ErrBlobLoad, err)
		}
		v, err := r.l.blobs.Load(loc)
		if err != nil {
			return nil, r.errorf(n, ErrBlobLoad, err)
		}
		if debug.Blob() {
			debug.Logf("%s: loaded %s as %T\n", n.Path(), loc, v)
		}
		return v, nil
	}
	return nil, r.errorf(n, ErrParse, fmt.Errorf("unknown directive %s", n.Kind))
}

// object resolves the target before any argument, so nothing is
// constructed for a target which does not resolve.
func (r *resolver) object(n *ir.Node) (any, error) {
	target, err := r.l.ns.Resolve(n.Target)
	if err != nil {
		return nil, r.errorf(n, symbolKind(err), err)
	}
	args, err := r.mapping(n)
	if err != nil {
		return nil, err
	}
	if !r.l.instantiate {
		return &Proxy{
			Target:   n.Target,
			Callable: target,
			Args:     args,
			node:     n,
			file:     r.l.filename,
		}, nil
	}
	if debug.Construct() {
		debug.Logf("%s: constructing %s\n", n.Path(), n.Target)
	}
	v, err := construct.Call(target, args)
	if err != nil {
		return nil, r.errorf(n, ErrConstruction, err)
	}
	return v, nil
}
