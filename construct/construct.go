// Package construct invokes callables with keyword arguments.
//
// A callable is anything Call accepts: a Constructor, a function taking
// the arguments as a map, a function taking a struct which the arguments
// are decoded into, or a function of no arguments. Struct[T] makes a
// Constructor which fills the exported fields of a new T.
package construct

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"

	odebug "github.com/signadot/objyaml/debug"
)

var (
	ErrNotCallable     = errors.New("not callable")
	ErrArgument        = errors.New("invalid argument")
	ErrMissingArgument = fmt.Errorf("%w: missing required argument", ErrArgument)
	ErrUnknownArgument = fmt.Errorf("%w: unknown argument", ErrArgument)
	ErrPanic           = errors.New("panic during construction")
)

// Args are keyword arguments.
type Args map[string]any

// Names returns the argument names, sorted.
func (a Args) Names() []string {
	return sortedKeys(a)
}

type Constructor interface {
	Construct(Args) (any, error)
}

type Func func(Args) (any, error)

func (f Func) Construct(args Args) (any, error) {
	return f(args)
}

var (
	errorType = reflect.TypeFor[error]()
	argsType  = reflect.TypeFor[Args]()
)

// Callable reports whether Call accepts target.
func Callable(target any) bool {
	switch target.(type) {
	case Constructor, func(Args) (any, error), func(map[string]any) (any, error):
		return true
	}
	_, err := signature(reflect.TypeOf(target))
	return err == nil
}

// Call invokes target with args. Panics raised by target are returned as
// errors matching ErrPanic.
func Call(target any, args Args) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if odebug.Construct() {
				odebug.Logf("panic calling %T: %v\n%s", target, r, debug.Stack())
			}
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: %w", ErrPanic, e)
				return
			}
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	if args == nil {
		args = Args{}
	}
	if odebug.Construct() {
		odebug.Logf("calling %T with %v\n", target, args.Names())
	}
	switch t := target.(type) {
	case Constructor:
		return t.Construct(args)
	case func(Args) (any, error):
		return t(args)
	case func(map[string]any) (any, error):
		return t(args)
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrNotCallable)
	}
	fv := reflect.ValueOf(target)
	cs, err := signature(fv.Type())
	if err != nil {
		return nil, err
	}
	var in []reflect.Value
	switch cs.param {
	case paramNone:
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: %s takes no arguments, got %v", ErrUnknownArgument, fv.Type(), args.Names())
		}
	case paramArgs:
		in = []reflect.Value{reflect.ValueOf(args).Convert(fv.Type().In(0))}
	case paramStruct:
		pt := fv.Type().In(0)
		ptr := reflect.New(indirectType(pt))
		if err := decodeStruct(ptr.Elem(), args, &structOpts{}); err != nil {
			return nil, err
		}
		if pt.Kind() == reflect.Pointer {
			in = []reflect.Value{ptr}
		} else {
			in = []reflect.Value{ptr.Elem()}
		}
	}
	out := fv.Call(in)
	if cs.hasErr {
		if e := out[len(out)-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
	}
	return out[0].Interface(), nil
}

type paramKind int

const (
	paramNone paramKind = iota
	paramArgs
	paramStruct
)

type callSig struct {
	param  paramKind
	hasErr bool
}

func signature(t reflect.Type) (callSig, error) {
	var res callSig
	if t == nil || t.Kind() != reflect.Func {
		return res, fmt.Errorf("%w: %v", ErrNotCallable, t)
	}
	if t.IsVariadic() {
		return res, fmt.Errorf("%w: variadic %s", ErrNotCallable, t)
	}
	switch t.NumOut() {
	case 1:
		if t.Out(0) == errorType {
			return res, fmt.Errorf("%w: %s returns only an error", ErrNotCallable, t)
		}
	case 2:
		if t.Out(1) != errorType {
			return res, fmt.Errorf("%w: second result of %s is not an error", ErrNotCallable, t)
		}
		res.hasErr = true
	default:
		return res, fmt.Errorf("%w: %s must return a value", ErrNotCallable, t)
	}
	switch t.NumIn() {
	case 0:
		res.param = paramNone
	case 1:
		in := t.In(0)
		switch {
		case argsType.ConvertibleTo(in) && in.Kind() == reflect.Map:
			res.param = paramArgs
		case indirectType(in).Kind() == reflect.Struct:
			res.param = paramStruct
		default:
			return res, fmt.Errorf("%w: %s cannot take keyword arguments", ErrNotCallable, t)
		}
	default:
		return res, fmt.Errorf("%w: %s cannot take keyword arguments", ErrNotCallable, t)
	}
	return res, nil
}

func indirectType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}
