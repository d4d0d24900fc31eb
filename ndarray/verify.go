package ndarray

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/argcheck"
	"github.com/reoring/argcheck/dtype"
)

// VerifyOpt configures Verify.
type VerifyOpt func(*verifyConfig)

type verifyConfig struct {
	allowAbsent bool
	observe     func(error)
}

// AllowAbsent makes Verify return an empty array for nil data instead of
// failing.
func AllowAbsent() VerifyOpt {
	return func(c *verifyConfig) { c.allowAbsent = true }
}

// Observe registers fn to receive the outcome (nil on success) of the
// verification, e.g. metrics.Metrics.ObserveVerify.
func Observe(fn func(error)) VerifyOpt {
	return func(c *verifyConfig) { c.observe = fn }
}

// Verify normalizes data into an Array of the given descriptor and shape.
//
// dt is anything dtype.Parse accepts; nil infers the descriptor from the
// data. data may be a scalar, a (nested) slice or array of scalars, or an
// *Array. A nil shape keeps the natural nested shape of data.
//
// Failures are argcheck.Issues wrapping argcheck.ErrDataType (invalid
// descriptor, checked before data is inspected) or argcheck.ErrDataValue
// (nil data, inconvertible elements, element count not matching shape).
// Verification is not subject to any gate.
func Verify(data any, dt any, shape []int, opts ...VerifyOpt) (*Array, error) {
	var cfg verifyConfig
	for _, o := range opts {
		o(&cfg)
	}
	a, err := verify(data, dt, shape, cfg)
	if cfg.observe != nil {
		cfg.observe(err)
	}
	return a, err
}

func verify(data any, dt any, shape []int, cfg verifyConfig) (*Array, error) {
	var (
		desc  dtype.Descriptor
		infer = dt == nil
	)
	if !infer {
		d, err := dtype.Parse(dt)
		if err != nil {
			return nil, argcheck.DataTypeError(argcheck.At("/dtype"), "Invalid data type: "+display(dt), "dtype", dt)
		}
		desc = d
	}

	if isAbsent(data) {
		if cfg.allowAbsent {
			if infer {
				desc = dtype.Float64
			}
			return Empty(desc), nil
		}
		return nil, argcheck.DataValueError(argcheck.At("/data"), argcheck.CodeRequired, "Invalid data: nil is not allowed!")
	}

	elems, natural, ok := flatten(reflect.ValueOf(data))
	if !ok {
		return nil, conversionError(dt, desc, infer, -1)
	}
	if infer {
		d, ok := inferDescriptor(elems)
		if !ok {
			return nil, conversionError(dt, desc, infer, -1)
		}
		desc = d
	}

	buf := reflect.MakeSlice(reflect.SliceOf(desc.GoType()), len(elems), len(elems))
	for i, e := range elems {
		cv, err := dtype.ConvertValue(desc, e)
		if err != nil {
			return nil, conversionError(dt, desc, infer, i)
		}
		buf.Index(i).Set(cv)
	}

	if shape == nil {
		shape = natural
	}
	want, err := product(shape)
	if err != nil {
		return nil, argcheck.DataValueError(argcheck.At("/shape"), argcheck.CodeShapeMismatch,
			"Invalid data: shape "+fmt.Sprint(shape)+" is not a valid shape!",
			"got", len(elems), "shape", slices.Clone(shape))
	}
	if want != len(elems) {
		return nil, argcheck.DataValueError(argcheck.At("/shape"), argcheck.CodeShapeMismatch,
			"Invalid data: expected "+itoa(want)+" values, got "+itoa(len(elems))+"!",
			"expected", want, "got", len(elems), "shape", slices.Clone(shape))
	}
	return &Array{dt: desc, shape: slices.Clone(shape), data: buf}, nil
}

// isAbsent treats untyped nil and typed nil pointers/interfaces as absent.
// Nil slices are present but empty.
func isAbsent(data any) bool {
	if data == nil {
		return true
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func conversionError(dt any, desc dtype.Descriptor, infer bool, at int) error {
	name := desc.String()
	if infer {
		name = "an inferred type"
	} else if s, ok := dt.(string); ok {
		name = s
	}
	p := argcheck.At("/data")
	if at >= 0 {
		p = p.Index(at)
	}
	return argcheck.DataValueError(p, argcheck.CodeInvalidConversion, "Invalid data: cannot convert to "+name+"!", "dtype", desc.String())
}

// flatten walks data in row-major order and returns its scalar leaves and
// natural shape. Ragged nesting and mixing scalars with sequences at the
// same depth report ok=false.
func flatten(v reflect.Value) (elems []reflect.Value, shape []int, ok bool) {
	v = deref(v)
	if !v.IsValid() {
		return nil, nil, false
	}
	if a, isArr := v.Interface().(Array); isArr {
		return arrayElems(&a), a.Shape(), true
	}
	if !isSequence(v) {
		return []reflect.Value{v}, []int{}, true
	}
	shape = []int{v.Len()}
	if v.Len() == 0 {
		return nil, shape, true
	}
	var inner []int
	for i := 0; i < v.Len(); i++ {
		sub, subShape, ok := flatten(v.Index(i))
		if !ok {
			return nil, nil, false
		}
		if i == 0 {
			inner = subShape
		} else if !slices.Equal(inner, subShape) {
			return nil, nil, false
		}
		elems = append(elems, sub...)
	}
	return elems, append(shape, inner...), true
}

func arrayElems(a *Array) []reflect.Value {
	out := make([]reflect.Value, a.Size())
	for i := range out {
		out[i] = a.data.Index(i)
	}
	return out
}

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isSequence(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

// inferDescriptor picks the narrowest family that holds every element:
// bool < int < float < complex. All-unsigned data stays uint64.
func inferDescriptor(elems []reflect.Value) (dtype.Descriptor, bool) {
	if len(elems) == 0 {
		return dtype.Float64, true
	}
	allBool, allUint := true, true
	best := dtype.Bool
	for _, e := range elems {
		if e.Kind() == reflect.String && e.Type() != jsonNumberType {
			return dtype.Descriptor{}, false
		}
		k := dtype.KindOf(e.Interface())
		switch k {
		case dtype.Invalid:
			return dtype.Descriptor{}, false
		case dtype.Uint:
			allBool = false
		case dtype.Bool:
			allUint = false
		default:
			allBool, allUint = false, false
		}
		if rank(k) > rank(best) {
			best = k
		}
	}
	switch {
	case allBool:
		return dtype.Bool8, true
	case allUint:
		return dtype.Uint64, true
	case best == dtype.Complex:
		return dtype.Complex128, true
	case best == dtype.Float:
		return dtype.Float64, true
	default:
		return dtype.Int64, true
	}
}

func rank(k dtype.Kind) int {
	switch k {
	case dtype.Bool:
		return 0
	case dtype.Int, dtype.Uint:
		return 1
	case dtype.Float:
		return 2
	default:
		return 3
	}
}

var jsonNumberType = reflect.TypeOf(json.Number(""))

func itoa(n int) string { return strconv.Itoa(n) }

func display(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(v)
}
