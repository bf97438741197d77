package encode

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/signadot/objyaml/construct"
	"github.com/signadot/objyaml/ir"
	"github.com/signadot/objyaml/load"
	"github.com/signadot/objyaml/symbol"
)

// FromValue converts a loaded object graph to a document tree.
//
// Maps, slices and pointers reachable more than once are anchored at their
// first occurrence and aliased afterwards, so shared objects and cycles
// survive. Structs become mappings of their exported fields tagged with
// their type, functions and modules become !import directives and proxies
// become !obj: directives.
func FromValue(v any, opts ...EncodeOption) (*ir.Node, error) {
	es := newEncState(opts)
	return fromValue(v, es.refPrefix)
}

func fromValue(v any, prefix string) (*ir.Node, error) {
	c := &valueConv{
		prefix: prefix,
		refs:   map[ref]int{},
		names:  map[ref]string{},
	}
	rv := reflect.ValueOf(v)
	c.count(rv)
	return c.build(rv)
}

type ref struct {
	p uintptr
	t reflect.Type
	n int
}

type valueConv struct {
	prefix string
	refs   map[ref]int
	names  map[ref]string
	next   int
}

var (
	durationType = reflect.TypeFor[time.Duration]()
	bytesType    = reflect.TypeFor[[]byte]()
)

func refOf(rv reflect.Value) (ref, bool) {
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() || rv.Len() == 0 {
			return ref{}, false
		}
		return ref{p: rv.Pointer(), t: rv.Type()}, true
	case reflect.Slice:
		if rv.IsNil() || rv.Len() == 0 || rv.Type().ConvertibleTo(bytesType) {
			return ref{}, false
		}
		return ref{p: rv.Pointer(), t: rv.Type(), n: rv.Len()}, true
	case reflect.Pointer:
		if rv.IsNil() || rv.Type().Elem().Size() == 0 {
			return ref{}, false
		}
		return ref{p: rv.Pointer(), t: rv.Type()}, true
	}
	return ref{}, false
}

func elem(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Interface && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv
}

// leaf reports whether rv is rendered without looking inside it.
func leaf(rv reflect.Value) bool {
	if !rv.CanInterface() {
		return true
	}
	switch rv.Interface().(type) {
	case *symbol.Module, encoding.TextMarshaler:
		return true
	}
	return rv.Type() == durationType || rv.Type().ConvertibleTo(bytesType) || rv.Kind() == reflect.Func
}

func (c *valueConv) count(rv reflect.Value) {
	rv = elem(rv)
	if !rv.IsValid() || rv.Kind() == reflect.Interface {
		return
	}
	if r, ok := refOf(rv); ok {
		c.refs[r]++
		if c.refs[r] > 1 {
			return
		}
	}
	if leaf(rv) {
		return
	}
	if px, ok := rv.Interface().(*load.Proxy); ok {
		for _, v := range px.Args {
			c.count(reflect.ValueOf(v))
		}
		return
	}
	switch rv.Kind() {
	case reflect.Pointer:
		c.count(rv.Elem())
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			c.count(rv.Index(i))
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			c.count(iter.Value())
		}
	case reflect.Struct:
		for _, f := range fieldsOf(rv.Type()) {
			if fv, err := rv.FieldByIndexErr(f.index); err == nil {
				c.count(fv)
			}
		}
	}
}

func (c *valueConv) build(rv reflect.Value) (*ir.Node, error) {
	rv = elem(rv)
	if !rv.IsValid() || rv.Kind() == reflect.Interface {
		return ir.Null(), nil
	}
	r, shared := refOf(rv)
	shared = shared && c.refs[r] > 1
	if shared {
		if name, ok := c.names[r]; ok {
			return ir.NewAlias(name), nil
		}
		c.next++
		c.names[r] = c.prefix + strconv.Itoa(c.next)
	}
	n, err := c.convert(rv)
	if err != nil {
		return nil, err
	}
	if !shared {
		return n, nil
	}
	switch {
	case n.Type == ir.AliasType:
		c.names[r] = n.Alias
	case n.Anchor != "":
		c.names[r] = n.Anchor
	default:
		n.Anchor = c.names[r]
	}
	return n, nil
}

func (c *valueConv) convert(rv reflect.Value) (*ir.Node, error) {
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Func || rv.Kind() == reflect.Map ||
		rv.Kind() == reflect.Slice) && rv.IsNil() {
		return ir.Null(), nil
	}
	if rv.CanInterface() {
		switch x := rv.Interface().(type) {
		case *load.Proxy:
			return c.proxy(x)
		case *symbol.Module:
			return ir.NewDirective(ir.ImportDirective, x.Path(), nil), nil
		case time.Duration:
			return ir.FromString(x.String()), nil
		case encoding.TextMarshaler:
			d, err := x.MarshalText()
			if err != nil {
				return nil, fmt.Errorf("%w: %T: %w", ErrEncoding, x, err)
			}
			return ir.FromString(string(d)), nil
		}
	}
	if rv.Type().ConvertibleTo(bytesType) {
		d := rv.Convert(bytesType).Interface().([]byte)
		return ir.FromString(base64.StdEncoding.EncodeToString(d)).WithTag("!!binary"), nil
	}
	switch rv.Kind() {
	case reflect.Bool:
		return ir.FromBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ir.FromInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return ir.FromInt(int64(u)), nil
		}
		return &ir.Node{Type: ir.NumberType, Number: strconv.FormatUint(u, 10)}, nil
	case reflect.Float32, reflect.Float64:
		return ir.FromFloat(rv.Float()), nil
	case reflect.String:
		return ir.FromString(rv.String()), nil
	case reflect.Slice, reflect.Array:
		vals := make([]*ir.Node, rv.Len())
		for i := range vals {
			n, err := c.build(rv.Index(i))
			if err != nil {
				return nil, err
			}
			vals[i] = n
		}
		return ir.FromSlice(vals), nil
	case reflect.Map:
		return c.mapping(rv)
	case reflect.Pointer:
		return c.build(rv.Elem())
	case reflect.Struct:
		return c.structure(rv)
	case reflect.Func:
		return ir.NewDirective(ir.ImportDirective, funcName(rv), nil), nil
	case reflect.Complex64, reflect.Complex128:
		return ir.FromString(fmt.Sprint(rv.Complex())), nil
	}
	return nil, fmt.Errorf("%w: cannot encode %s", ErrEncoding, rv.Type())
}

func (c *valueConv) mapping(rv reflect.Value) (*ir.Node, error) {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := elem(iter.Key())
		var key string
		if k.Kind() == reflect.String {
			key = k.String()
		} else {
			key = fmt.Sprint(k.Interface())
		}
		entries = append(entries, entry{key: key, val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	kvs := make([]ir.KeyVal, len(entries))
	for i, e := range entries {
		n, err := c.build(e.val)
		if err != nil {
			return nil, err
		}
		kvs[i] = ir.KeyVal{Key: ir.FromString(e.key), Val: n}
	}
	return ir.FromKeyVals(kvs), nil
}

func (c *valueConv) structure(rv reflect.Value) (*ir.Node, error) {
	var kvs []ir.KeyVal
	for _, f := range fieldsOf(rv.Type()) {
		fv, err := rv.FieldByIndexErr(f.index)
		if err != nil {
			continue
		}
		n, err := c.build(fv)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", rv.Type(), f.name, err)
		}
		kvs = append(kvs, ir.KeyVal{Key: ir.FromString(f.name), Val: n})
	}
	res := ir.FromKeyVals(kvs)
	if rv.Type().Name() != "" {
		res.Tag = "!<" + rv.Type().String() + ">"
	}
	return res, nil
}

func (c *valueConv) proxy(px *load.Proxy) (*ir.Node, error) {
	kvs := make([]ir.KeyVal, 0, len(px.Args))
	for _, k := range px.Args.Names() {
		n, err := c.build(reflect.ValueOf(px.Args[k]))
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, ir.KeyVal{Key: ir.FromString(k), Val: n})
	}
	return ir.NewDirective(ir.ObjectDirective, px.Target, kvs), nil
}

type field struct {
	name  string
	index []int
}

// fieldsOf lists the exported fields of t under the names a constructor
// would accept for them.
func fieldsOf(t reflect.Type) []field {
	var res []field
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name := construct.Snake(f.Name)
		skip := false
		for _, key := range []string{"objyaml", "yaml", "json"} {
			tag, ok := f.Tag.Lookup(key)
			if !ok {
				continue
			}
			tn, _, _ := strings.Cut(tag, ",")
			if tn == "-" {
				skip = true
			} else if tn != "" {
				name = tn
			}
			break
		}
		if !skip {
			res = append(res, field{name: name, index: f.Index})
		}
	}
	return res
}

func funcName(rv reflect.Value) string {
	f := runtime.FuncForPC(rv.Pointer())
	if f == nil {
		return rv.Type().String()
	}
	return strings.TrimSuffix(f.Name(), "-fm")
}
