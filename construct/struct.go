package construct

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/signadot/objyaml/debug"
)

// Defaulter is called on a new struct before arguments are assigned.
type Defaulter interface {
	SetDefaults()
}

// Initializer is called on a struct after arguments are assigned.
type Initializer interface {
	Init() error
}

type structOpts struct {
	allowUnknown bool
}

type StructOption func(*structOpts)

// AllowUnknown ignores arguments which match no field.
func AllowUnknown() StructOption {
	return func(o *structOpts) { o.allowUnknown = true }
}

// Struct returns a Constructor producing a *T whose exported fields are
// set from the arguments.
//
// An argument matches a field by the name in its objyaml, yaml or json tag,
// by the field name or by the snake_case form of the field name. The tag
// option "required" makes a missing argument an error:
//
//	type MLP struct {
//		Layers    []any   `objyaml:"layers,required"`
//		BatchSize int     // batch_size
//		Rate      float64 `yaml:"learning_rate"`
//	}
func Struct[T any](opts ...StructOption) Constructor {
	o := &structOpts{}
	for _, f := range opts {
		f(o)
	}
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("construct.Struct: %s is not a struct", t))
	}
	return Func(func(args Args) (any, error) {
		ptr := reflect.New(t)
		if err := decodeStruct(ptr.Elem(), args, o); err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		return ptr.Interface(), nil
	})
}

// Decode assigns args to the struct dst points to, calling its
// SetDefaults and Init methods if it has them.
func Decode(args Args, dst any, opts ...StructOption) error {
	o := &structOpts{}
	for _, f := range opts {
		f(o)
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: decode destination must be a pointer to a struct, got %T", ErrArgument, dst)
	}
	return decodeStruct(rv.Elem(), args, o)
}

func decodeStruct(sv reflect.Value, args Args, o *structOpts) error {
	if d, ok := sv.Addr().Interface().(Defaulter); ok {
		d.SetDefaults()
	}
	fields := fieldsOf(sv.Type())
	for _, name := range sortedKeys(args) {
		f, ok := fields.byName[name]
		if !ok {
			if o.allowUnknown {
				continue
			}
			return fmt.Errorf("%w %q", ErrUnknownArgument, name)
		}
		dst := sv.FieldByIndex(f.index)
		v, err := convert(args[name], dst.Type(), o)
		if err != nil {
			return fmt.Errorf("argument %q: %w", name, err)
		}
		dst.Set(v)
		if debug.Construct() {
			debug.Logf("set %s.%s from %q\n", sv.Type(), f.name, name)
		}
	}
	for _, f := range fields.list {
		if !f.required {
			continue
		}
		found := false
		for _, alt := range f.keys {
			if _, ok := args[alt]; ok {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w %q", ErrMissingArgument, f.key)
		}
	}
	if i, ok := sv.Addr().Interface().(Initializer); ok {
		if err := i.Init(); err != nil {
			return err
		}
	}
	return nil
}

type field struct {
	name     string
	key      string
	keys     []string
	index    []int
	required bool
}

type fieldSet struct {
	list   []*field
	byName map[string]*field
}

var fieldCache sync.Map // reflect.Type -> *fieldSet

var tagNames = []string{"objyaml", "yaml", "json"}

func fieldsOf(t reflect.Type) *fieldSet {
	if fs, ok := fieldCache.Load(t); ok {
		return fs.(*fieldSet)
	}
	fs := &fieldSet{byName: map[string]*field{}}
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || (sf.Anonymous && sf.Type.Kind() == reflect.Struct) {
			continue
		}
		f := &field{name: sf.Name, index: sf.Index, key: Snake(sf.Name)}
		skip := false
		for _, tn := range tagNames {
			tag, ok := sf.Tag.Lookup(tn)
			if !ok {
				continue
			}
			name, rest, _ := strings.Cut(tag, ",")
			if name == "-" {
				skip = true
				break
			}
			if name != "" {
				f.key = name
			}
			for _, opt := range strings.Split(rest, ",") {
				if opt == "required" {
					f.required = true
				}
			}
			break
		}
		if skip {
			continue
		}
		f.keys = []string{f.key, sf.Name, Snake(sf.Name)}
		fs.list = append(fs.list, f)
		for _, k := range f.keys {
			if _, present := fs.byName[k]; !present {
				fs.byName[k] = f
			}
		}
	}
	actual, _ := fieldCache.LoadOrStore(t, fs)
	return actual.(*fieldSet)
}

// Snake converts a Go identifier to snake_case: "BatchSize" becomes
// "batch_size" and "NHid" becomes "n_hid".
func Snake(s string) string {
	var b strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(rs[i-1]) || unicode.IsDigit(rs[i-1]) ||
				(i+1 < len(rs) && unicode.IsLower(rs[i+1]) && unicode.IsUpper(rs[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
