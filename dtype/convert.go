package dtype

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ErrConvert is returned (wrapped) when a scalar cannot be represented by a
// descriptor.
var ErrConvert = errors.New("dtype: cannot convert")

// Convert casts a scalar to d's Go element type. Booleans, integers, floats,
// complex numbers, json.Number and numeric strings are accepted. Floats are
// truncated toward zero when converted to integers; values outside the
// target range and complex-to-real conversions fail.
func Convert(d Descriptor, v any) (any, error) {
	rv, err := ConvertValue(d, reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

// ConvertValue is the reflect.Value form of Convert.
func ConvertValue(d Descriptor, v reflect.Value) (reflect.Value, error) {
	gt := d.GoType()
	if gt == nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrInvalid, d)
	}
	s, err := scalarOf(v)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(gt).Elem()
	fail := func() (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf("%w %v to %s", ErrConvert, s.display(), d)
	}
	switch d.kind {
	case Bool:
		switch s.kind {
		case Bool:
			out.SetBool(s.b)
		case Int:
			out.SetBool(s.i != 0)
		case Uint:
			out.SetBool(s.u != 0)
		case Float:
			out.SetBool(s.f != 0)
		default:
			return fail()
		}
	case Int:
		var i int64
		switch s.kind {
		case Bool:
			if s.b {
				i = 1
			}
		case Int:
			i = s.i
		case Uint:
			if s.u > math.MaxInt64 {
				return fail()
			}
			i = int64(s.u)
		case Float:
			if math.IsNaN(s.f) || math.IsInf(s.f, 0) || s.f >= math.MaxInt64 || s.f < math.MinInt64 {
				return fail()
			}
			i = int64(s.f)
		default:
			return fail()
		}
		if out.OverflowInt(i) {
			return fail()
		}
		out.SetInt(i)
	case Uint:
		var u uint64
		switch s.kind {
		case Bool:
			if s.b {
				u = 1
			}
		case Int:
			if s.i < 0 {
				return fail()
			}
			u = uint64(s.i)
		case Uint:
			u = s.u
		case Float:
			if math.IsNaN(s.f) || s.f < 0 || s.f >= math.MaxUint64 {
				return fail()
			}
			u = uint64(s.f)
		default:
			return fail()
		}
		if out.OverflowUint(u) {
			return fail()
		}
		out.SetUint(u)
	case Float:
		var f float64
		switch s.kind {
		case Bool:
			if s.b {
				f = 1
			}
		case Int:
			f = float64(s.i)
		case Uint:
			f = float64(s.u)
		case Float:
			f = s.f
		default:
			return fail()
		}
		out.SetFloat(f)
	case Complex:
		var c complex128
		switch s.kind {
		case Bool:
			if s.b {
				c = 1
			}
		case Int:
			c = complex(float64(s.i), 0)
		case Uint:
			c = complex(float64(s.u), 0)
		case Float:
			c = complex(s.f, 0)
		case Complex:
			c = s.c
		}
		out.SetComplex(c)
	default:
		return fail()
	}
	return out, nil
}

// KindOf reports the element family of a scalar value, or Invalid when v is
// not a scalar Convert understands.
func KindOf(v any) Kind {
	s, err := scalarOf(reflect.ValueOf(v))
	if err != nil {
		return Invalid
	}
	return s.kind
}

// scalar is a widened scalar value.
type scalar struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	c    complex128
	raw  any
}

func (s scalar) display() string {
	if str, ok := s.raw.(string); ok {
		return strconv.Quote(str)
	}
	return fmt.Sprint(s.raw)
}

var jsonNumberType = reflect.TypeOf(json.Number(""))

func scalarOf(v reflect.Value) (scalar, error) {
	if !v.IsValid() {
		return scalar{}, fmt.Errorf("%w <nil>", ErrConvert)
	}
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return scalar{}, fmt.Errorf("%w <nil>", ErrConvert)
		}
		v = v.Elem()
	}
	raw := v.Interface()
	if v.Type() == jsonNumberType {
		return parseNumeric(v.String(), raw)
	}
	switch v.Kind() {
	case reflect.Bool:
		return scalar{kind: Bool, b: v.Bool(), raw: raw}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalar{kind: Int, i: v.Int(), raw: raw}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return scalar{kind: Uint, u: v.Uint(), raw: raw}, nil
	case reflect.Float32, reflect.Float64:
		return scalar{kind: Float, f: v.Float(), raw: raw}, nil
	case reflect.Complex64, reflect.Complex128:
		return scalar{kind: Complex, c: v.Complex(), raw: raw}, nil
	case reflect.String:
		return parseNumeric(v.String(), raw)
	}
	return scalar{}, fmt.Errorf("%w %T", ErrConvert, raw)
}

func parseNumeric(str string, raw any) (scalar, error) {
	t := strings.TrimSpace(str)
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return scalar{kind: Int, i: i, raw: raw}, nil
	}
	if u, err := strconv.ParseUint(t, 10, 64); err == nil {
		return scalar{kind: Uint, u: u, raw: raw}, nil
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return scalar{kind: Float, f: f, raw: raw}, nil
	}
	switch strings.ToLower(t) {
	case "true":
		return scalar{kind: Bool, b: true, raw: raw}, nil
	case "false":
		return scalar{kind: Bool, b: false, raw: raw}, nil
	}
	return scalar{}, fmt.Errorf("%w %q", ErrConvert, str)
}
