package argcheck

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/argcheck/dtype"
)

// Kind enumerates the check kinds. The set is closed.
type Kind int

const (
	KindType Kind = iota + 1
	KindMembership
	KindRange
	KindDescriptor
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindMembership:
		return "membership"
	case KindRange:
		return "range"
	case KindDescriptor:
		return "dtype"
	default:
		return "invalid"
	}
}

// Check declares a constraint on one named parameter. Build it with TypeOf,
// OneOf, Within or ValidDType. The domain payload depends on the kind.
type Check struct {
	param   string
	kind    Kind
	err     error
	types   []reflect.Type
	members []any
	lo, hi  any
}

// TypeOf requires the argument's dynamic type to be one of types, or to
// implement one of them when it is an interface type. Untyped nil never
// matches.
func TypeOf(param string, err error, types ...reflect.Type) Check {
	return Check{param: param, kind: KindType, err: err, types: append([]reflect.Type(nil), types...)}
}

// OneOf requires the argument to equal one of values. Numbers compare by
// value across Go numeric types.
func OneOf(param string, err error, values ...any) Check {
	return Check{param: param, kind: KindMembership, err: err, members: append([]any(nil), values...)}
}

// Within requires lo <= argument <= hi. Bounds and argument must all be
// numbers, or all be strings.
func Within(param string, err error, lo, hi any) Check {
	return Check{param: param, kind: KindRange, err: err, lo: lo, hi: hi}
}

// ValidDType requires the argument to be a valid element-type descriptor as
// understood by dtype.Parse.
func ValidDType(param string, err error) Check {
	return Check{param: param, kind: KindDescriptor, err: err}
}

// Param returns the checked parameter name.
func (c Check) Param() string { return c.param }

// Kind returns the check kind.
func (c Check) Kind() Kind { return c.kind }

// Err returns the error kind raised on failure.
func (c Check) Err() error { return c.err }

// Domain renders the violated domain for messages.
func (c Check) Domain() string {
	switch c.kind {
	case KindType:
		names := make([]string, len(c.types))
		for i, t := range c.types {
			names[i] = fmt.Sprint(t)
		}
		if len(names) == 1 {
			return names[0]
		}
		return "(" + strings.Join(names, ", ") + ")"
	case KindMembership:
		return fmt.Sprint(c.members)
	case KindRange:
		return fmt.Sprintf("[%v, %v]", c.lo, c.hi)
	case KindDescriptor:
		return "dtype"
	}
	return ""
}

// Eval reports whether v satisfies the check.
func (c Check) Eval(v any) bool {
	switch c.kind {
	case KindType:
		if v == nil {
			return false
		}
		vt := reflect.TypeOf(v)
		for _, t := range c.types {
			if t == nil {
				continue
			}
			if vt == t || (t.Kind() == reflect.Interface && vt.Implements(t)) {
				return true
			}
		}
		return false
	case KindMembership:
		for _, m := range c.members {
			if valuesEqual(v, m) {
				return true
			}
		}
		return false
	case KindRange:
		lo, ok := compareOrdered(c.lo, v)
		if !ok || lo > 0 {
			return false
		}
		hi, ok := compareOrdered(v, c.hi)
		return ok && hi <= 0
	case KindDescriptor:
		return dtype.Valid(v)
	}
	return false
}

// code maps the kind to its issue code.
func (c Check) code() string {
	switch c.kind {
	case KindType:
		return CodeInvalidType
	case KindMembership:
		return CodeInvalidEnum
	case KindRange:
		return CodeDomainRange
	default:
		return CodeInvalidDType
	}
}

// violation builds the error returned when v fails the check.
func (c Check) violation(source string, v any) *ContractError {
	var msg string
	switch c.kind {
	case KindType:
		msg = fmt.Sprintf("Parameter %s=%v must be of type %s", c.param, v, c.Domain())
	case KindMembership:
		msg = fmt.Sprintf("Parameter %s=%v must be one of %s", c.param, v, c.Domain())
	case KindRange:
		msg = fmt.Sprintf("Parameter %s=%v must be within range %s", c.param, v, c.Domain())
	default:
		msg = fmt.Sprintf("Parameter %s=%v must be a valid dtype", c.param, v)
	}
	kv := []any{"param", c.param, "value", v, "domain", c.Domain()}
	if c.kind == KindRange {
		kv = append(kv, "min", c.lo, "max", c.hi)
	}
	it := Root().Field(c.param).Issue(c.code(), msg, kv...)
	it.Cause = c.err
	return &ContractError{Issue: it, Source: source, Param: c.param, Value: v, Domain: c.Domain(), Kind: c.err}
}

// valuesEqual compares numbers by value and everything else with
// reflect.DeepEqual.
func valuesEqual(a, b any) bool {
	if cmp, ok := compareNumbers(a, b); ok {
		return cmp == 0
	}
	return reflect.DeepEqual(a, b)
}

// compareOrdered returns -1, 0 or +1 for a<b, a==b, a>b. ok is false when
// the operands are not both numbers or both strings.
func compareOrdered(a, b any) (int, bool) {
	if cmp, ok := compareNumbers(a, b); ok {
		return cmp, true
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

// number is a widened numeric value.
type number struct {
	kind reflect.Kind // Int64, Uint64 or Float64
	i    int64
	u    uint64
	f    float64
}

func toNumber(v any) (number, bool) {
	if n, ok := v.(interface{ Float64() (float64, error) }); ok {
		// json.Number and friends
		if s, isStr := v.(fmt.Stringer); isStr {
			if i, err := strconv.ParseInt(s.String(), 10, 64); err == nil {
				return number{kind: reflect.Int64, i: i}, true
			}
		}
		f, err := n.Float64()
		if err != nil {
			return number{}, false
		}
		return number{kind: reflect.Float64, f: f}, true
	}
	rv := reflect.ValueOf(v)
	switch {
	case !rv.IsValid():
		return number{}, false
	case isIntLike(rv.Kind()):
		return number{kind: reflect.Int64, i: rv.Int()}, true
	case isUintLike(rv.Kind()):
		return number{kind: reflect.Uint64, u: rv.Uint()}, true
	case isFloatLike(rv.Kind()):
		return number{kind: reflect.Float64, f: rv.Float()}, true
	}
	return number{}, false
}

func compareNumbers(a, b any) (int, bool) {
	x, ok := toNumber(a)
	if !ok {
		return 0, false
	}
	y, ok := toNumber(b)
	if !ok {
		return 0, false
	}
	switch {
	case x.kind == reflect.Int64 && y.kind == reflect.Int64:
		return cmp3(x.i < y.i, x.i > y.i), true
	case x.kind == reflect.Uint64 && y.kind == reflect.Uint64:
		return cmp3(x.u < y.u, x.u > y.u), true
	case x.kind == reflect.Int64 && y.kind == reflect.Uint64:
		if x.i < 0 {
			return -1, true
		}
		return cmp3(uint64(x.i) < y.u, uint64(x.i) > y.u), true
	case x.kind == reflect.Uint64 && y.kind == reflect.Int64:
		if y.i < 0 {
			return 1, true
		}
		return cmp3(x.u < uint64(y.i), x.u > uint64(y.i)), true
	}
	xf, yf := x.float(), y.float()
	if math.IsNaN(xf) || math.IsNaN(yf) {
		return 0, false
	}
	return cmp3(xf < yf, xf > yf), true
}

func (n number) float() float64 {
	switch n.kind {
	case reflect.Int64:
		return float64(n.i)
	case reflect.Uint64:
		return float64(n.u)
	default:
		return n.f
	}
}

func cmp3(lt, gt bool) int {
	switch {
	case lt:
		return -1
	case gt:
		return 1
	default:
		return 0
	}
}

func isIntLike(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUintLike(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isFloatLike(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
