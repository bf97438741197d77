package construct

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"time"
)

var (
	durationType        = reflect.TypeFor[time.Duration]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Convert converts a loaded value to type t. Values already assignable to t
// are used as is, so shared references stay shared.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	return convert(v, t, &structOpts{})
}

func convert(v any, t reflect.Type, o *structOpts) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: cannot use null as %s", ErrArgument, t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if t == durationType {
		return duration(v)
	}
	if s, ok := v.(string); ok && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %w", ErrArgument, err)
		}
		return ptr.Elem(), nil
	}
	switch t.Kind() {
	case reflect.Pointer:
		ev, err := convert(v, t.Elem(), o)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(ev)
		return ptr, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := asInt(v)
		if !ok {
			break
		}
		res := reflect.New(t).Elem()
		if res.OverflowInt(i) {
			return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", ErrArgument, i, t)
		}
		res.SetInt(i)
		return res, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, ok := asUint(v)
		if !ok {
			break
		}
		res := reflect.New(t).Elem()
		if res.OverflowUint(u) {
			return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", ErrArgument, u, t)
		}
		res.SetUint(u)
		return res, nil
	case reflect.Float32, reflect.Float64:
		f, ok := asFloat(v)
		if !ok {
			break
		}
		res := reflect.New(t).Elem()
		res.SetFloat(f)
		return res, nil
	case reflect.String:
		if s, ok := v.(string); ok {
			return reflect.ValueOf(s).Convert(t), nil
		}
	case reflect.Bool:
		if b, ok := v.(bool); ok {
			return reflect.ValueOf(b).Convert(t), nil
		}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			switch x := v.(type) {
			case []byte:
				return reflect.ValueOf(x).Convert(t), nil
			case string:
				return reflect.ValueOf([]byte(x)).Convert(t), nil
			}
		}
		s, ok := v.([]any)
		if !ok {
			break
		}
		res := reflect.MakeSlice(t, len(s), len(s))
		for i, e := range s {
			ev, err := convert(e, t.Elem(), o)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			res.Index(i).Set(ev)
		}
		return res, nil
	case reflect.Array:
		s, ok := v.([]any)
		if !ok {
			break
		}
		if len(s) != t.Len() {
			return reflect.Value{}, fmt.Errorf("%w: expected %d elements for %s, got %d", ErrArgument, t.Len(), t, len(s))
		}
		res := reflect.New(t).Elem()
		for i, e := range s {
			ev, err := convert(e, t.Elem(), o)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			res.Index(i).Set(ev)
		}
		return res, nil
	case reflect.Map:
		m, ok := v.(map[string]any)
		if !ok || t.Key().Kind() != reflect.String {
			break
		}
		res := reflect.MakeMapWithSize(t, len(m))
		for _, k := range sortedKeys(m) {
			ev, err := convert(m[k], t.Elem(), o)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%q: %w", k, err)
			}
			res.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
		}
		return res, nil
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			break
		}
		ptr := reflect.New(t)
		if err := decodeStruct(ptr.Elem(), Args(m), o); err != nil {
			return reflect.Value{}, err
		}
		return ptr.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %T as %s", ErrArgument, v, t)
}

// duration accepts strings like "1m30s" and numbers of seconds.
func duration(v any) (reflect.Value, error) {
	switch x := v.(type) {
	case string:
		d, err := time.ParseDuration(x)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %w", ErrArgument, err)
		}
		return reflect.ValueOf(d), nil
	}
	if f, ok := asFloat(v); ok {
		return reflect.ValueOf(time.Duration(f * float64(time.Second))), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %T as a duration", ErrArgument, v)
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

func asUint(v any) (uint64, bool) {
	if u, ok := v.(uint64); ok {
		return u, true
	}
	i, ok := asInt(v)
	if !ok || i < 0 {
		return 0, false
	}
	return uint64(i), true
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
