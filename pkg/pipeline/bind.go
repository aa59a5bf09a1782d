package pipeline

import (
	"fmt"
	"reflect"
	"sort"
)

// Callable is a bound library function.
type Callable func(args []string) (Value, error)

var (
	stringType = reflect.TypeOf("")
	boolType   = reflect.TypeOf(false)
	mapType    = reflect.TypeOf(map[string]string(nil))
	valueType  = reflect.TypeOf(Value{})
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// bindLibrary binds every function of lib once. The returned table is
// read-only.
func bindLibrary(lib Library) (map[string]Callable, error) {
	funcs := lib.Functions()
	table := make(map[string]Callable, len(funcs))
	for name, fn := range funcs {
		c, err := bind(fn)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		table[name] = c
	}
	return table, nil
}

// bind adapts a Go function to a Callable. The signature is checked here,
// once; calls only convert arguments and results.
func bind(fn any) (Callable, error) {
	switch f := fn.(type) {
	case Callable:
		return f, nil
	case func([]string) (Value, error):
		return f, nil
	case func() string:
		return func(args []string) (Value, error) {
			if err := arity(args, 0); err != nil {
				return None, err
			}
			return String(f()), nil
		}, nil
	case func(string) string:
		return func(args []string) (Value, error) {
			if err := arity(args, 1); err != nil {
				return None, err
			}
			return String(f(args[0])), nil
		}, nil
	case func(string, string) string:
		return func(args []string) (Value, error) {
			if err := arity(args, 2); err != nil {
				return None, err
			}
			return String(f(args[0], args[1])), nil
		}, nil
	case func(string) bool:
		return func(args []string) (Value, error) {
			if err := arity(args, 1); err != nil {
				return None, err
			}
			return Bool(f(args[0])), nil
		}, nil
	}
	return bindReflect(fn)
}

func bindReflect(fn any) (Callable, error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: %T is not a function", ErrInvalidFunction, fn)
	}
	rt := rv.Type()

	for i := 0; i < rt.NumIn(); i++ {
		in := rt.In(i)
		if rt.IsVariadic() && i == rt.NumIn()-1 {
			in = in.Elem()
		}
		if in != stringType {
			return nil, fmt.Errorf("%w: parameter %d of %s is not a string", ErrInvalidFunction, i, rt)
		}
	}

	hasErr := rt.NumOut() > 0 && rt.Out(rt.NumOut()-1) == errorType
	results := rt.NumOut()
	if hasErr {
		results--
	}
	if results > 1 {
		return nil, fmt.Errorf("%w: %s returns too many values", ErrInvalidFunction, rt)
	}
	var convert func(reflect.Value) Value
	if results == 1 {
		switch rt.Out(0) {
		case stringType:
			convert = func(v reflect.Value) Value { return String(v.String()) }
		case boolType:
			convert = func(v reflect.Value) Value { return Bool(v.Bool()) }
		case mapType:
			convert = func(v reflect.Value) Value { return Map(v.Interface().(map[string]string)) }
		case valueType:
			convert = func(v reflect.Value) Value { return v.Interface().(Value) }
		default:
			return nil, fmt.Errorf("%w: %s returns unsupported type %s", ErrInvalidFunction, rt, rt.Out(0))
		}
	}

	params := rt.NumIn()
	variadic := rt.IsVariadic()
	return func(args []string) (Value, error) {
		if variadic {
			if len(args) < params-1 {
				return None, fmt.Errorf("%w: want at least %d, got %d", ErrArity, params-1, len(args))
			}
		} else if err := arity(args, params); err != nil {
			return None, err
		}

		in := make([]reflect.Value, len(args))
		for i, a := range args {
			in[i] = reflect.ValueOf(a)
		}
		out := rv.Call(in)

		if hasErr {
			if err, _ := out[len(out)-1].Interface().(error); err != nil {
				return None, err
			}
		}
		if convert == nil {
			return None, nil
		}
		return convert(out[0]), nil
	}, nil
}

func arity(args []string, want int) error {
	if len(args) != want {
		return fmt.Errorf("%w: want %d, got %d", ErrArity, want, len(args))
	}
	return nil
}

// names returns the function names of a bound table in sorted order.
func names(table map[string]Callable) []string {
	out := make([]string, 0, len(table))
	for name := range table {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
