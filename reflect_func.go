package argcheck

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// FromFunc wraps an ordinary Go function as a Function. params names fn's
// formal parameters in order (Go keeps no parameter names at run time) and
// may declare defaults; their count must match fn's arity. Variadic
// functions are not supported.
//
// On each call the arguments are resolved with Signature.Resolve, converted
// to fn's parameter types (nil becomes the zero value, numbers convert across
// numeric kinds), and fn is invoked. Its results are returned as a slice; a
// trailing error result is returned as the error instead. The source location
// in contract messages is fn's definition.
func FromFunc(fn any, params ...Param) (Function[[]any], error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return Function[[]any]{}, fmt.Errorf("argcheck: FromFunc expects a function, got %T", fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return Function[[]any]{}, fmt.Errorf("argcheck: variadic function %s is not supported", ft)
	}
	if ft.NumIn() != len(params) {
		return Function[[]any]{}, fmt.Errorf("argcheck: %s has %d parameters, %d declared", ft, ft.NumIn(), len(params))
	}
	sig, err := newSignature(funcSource(fv), params)
	if err != nil {
		return Function[[]any]{}, err
	}
	returnsErr := ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == errorType

	impl := func(c Call) ([]any, error) {
		vals, err := sig.Resolve(c)
		if err != nil {
			return nil, err
		}
		in := make([]reflect.Value, len(vals))
		for i, v := range vals {
			rv, err := assignable(v, ft.In(i))
			if err != nil {
				return nil, fmt.Errorf("argcheck: %s argument %q: %w", sig.source, sig.params[i].Name, err)
			}
			in[i] = rv
		}
		outs := fv.Call(in)
		if returnsErr {
			last := outs[len(outs)-1]
			outs = outs[:len(outs)-1]
			if !last.IsNil() {
				return values(outs), last.Interface().(error)
			}
		}
		return values(outs), nil
	}
	return Function[[]any]{sig: sig, impl: impl}, nil
}

func assignable(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumericKind(rv.Kind()) && isNumericKind(t.Kind()) && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}

func isNumericKind(k reflect.Kind) bool {
	return isIntLike(k) || isUintLike(k) || isFloatLike(k)
}

func values(vs []reflect.Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v.Interface()
	}
	return out
}
