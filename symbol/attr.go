package symbol

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Attr returns the attribute name of v.
//
// Attributers answer for themselves. Maps with string keys are indexed.
// Otherwise exported methods and struct fields are looked up by name, by
// the name with its first letter upper-cased and by the camel-cased form of
// a snake_case name, so "load_data" finds LoadData.
func Attr(v any, name string) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil has no attribute %q", ErrAttribute, name)
	}
	if a, ok := v.(Attributer); ok {
		res, ok := a.Attr(name)
		if !ok {
			return nil, fmt.Errorf("%w: %v has no attribute %q", ErrAttribute, v, name)
		}
		return res, nil
	}
	if m, ok := v.(map[string]any); ok {
		res, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("%w: map has no key %q", ErrAttribute, name)
		}
		return res, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		res := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !res.IsValid() {
			return nil, fmt.Errorf("%w: map has no key %q", ErrAttribute, name)
		}
		return res.Interface(), nil
	}
	for _, cand := range candidates(name) {
		if res, ok := member(rv, cand); ok {
			return res, nil
		}
	}
	return nil, fmt.Errorf("%w: %T has no attribute %q", ErrAttribute, v, name)
}

func member(rv reflect.Value, name string) (any, bool) {
	if !isExported(name) {
		return nil, false
	}
	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface(), true
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	f := rv.FieldByName(name)
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}
	return f.Interface(), true
}

func candidates(name string) []string {
	res := []string{name}
	if up := upperFirst(name); up != name {
		res = append(res, up)
	}
	if strings.Contains(name, "_") {
		if c := Camel(name); c != res[len(res)-1] {
			res = append(res, c)
		}
	}
	return res
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// Camel converts snake_case to CamelCase.
func Camel(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		b.WriteString(upperFirst(part))
	}
	return b.String()
}
