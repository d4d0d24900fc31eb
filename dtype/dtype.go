// Package dtype describes the primitive element type and width of a data
// buffer ("32-bit float", "64-bit signed integer", ...).
//
// A Descriptor can be parsed from the usual spellings:
//
//	dtype.Parse("float32")      // by name
//	dtype.Parse("<f4")          // array-protocol code with byte order
//	dtype.Parse(reflect.TypeOf(int16(0)))
//	dtype.Parse(reflect.Float64)
//
// Parse is also the validity test used by argument contracts: a value is a
// valid element-type descriptor iff Parse accepts it.
package dtype

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the element family of a Descriptor.
type Kind int

const (
	Invalid Kind = iota
	Bool
	Int
	Uint
	Float
	Complex
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Complex:
		return "complex"
	default:
		return "invalid"
	}
}

// Descriptor is an element-type descriptor. The zero value is invalid.
type Descriptor struct {
	kind Kind
	bits int
}

// Predefined descriptors.
var (
	Bool8      = Descriptor{Bool, 8}
	Int8       = Descriptor{Int, 8}
	Int16      = Descriptor{Int, 16}
	Int32      = Descriptor{Int, 32}
	Int64      = Descriptor{Int, 64}
	Uint8      = Descriptor{Uint, 8}
	Uint16     = Descriptor{Uint, 16}
	Uint32     = Descriptor{Uint, 32}
	Uint64     = Descriptor{Uint, 64}
	Float32    = Descriptor{Float, 32}
	Float64    = Descriptor{Float, 64}
	Complex64  = Descriptor{Complex, 64}
	Complex128 = Descriptor{Complex, 128}
)

// ErrInvalid is returned (wrapped) by Parse for values that do not describe
// an element type.
var ErrInvalid = errors.New("dtype: invalid element-type descriptor")

// Kind returns the element family.
func (d Descriptor) Kind() Kind { return d.kind }

// Bits returns the element width in bits.
func (d Descriptor) Bits() int { return d.bits }

// ItemSize returns the element width in bytes.
func (d Descriptor) ItemSize() int { return d.bits / 8 }

// Valid reports whether d is one of the supported descriptors.
func (d Descriptor) Valid() bool {
	_, ok := goTypes[d]
	return ok
}

// String renders the canonical name, e.g. "float32" or "bool".
func (d Descriptor) String() string {
	if !d.Valid() {
		return "invalid"
	}
	if d.kind == Bool {
		return "bool"
	}
	return d.kind.String() + strconv.Itoa(d.bits)
}

// Code renders the array-protocol code, e.g. "f4", "i8", "b1".
func (d Descriptor) Code() string {
	if !d.Valid() {
		return ""
	}
	c := map[Kind]string{Bool: "b", Int: "i", Uint: "u", Float: "f", Complex: "c"}[d.kind]
	return c + strconv.Itoa(d.ItemSize())
}

// GoType returns the Go element type backing d.
func (d Descriptor) GoType() reflect.Type { return goTypes[d] }

// MarshalText implements encoding.TextMarshaler.
func (d Descriptor) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, ErrInvalid
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Descriptor) UnmarshalText(b []byte) error {
	nd, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = nd
	return nil
}

var goTypes = map[Descriptor]reflect.Type{
	Bool8:      reflect.TypeOf(false),
	Int8:       reflect.TypeOf(int8(0)),
	Int16:      reflect.TypeOf(int16(0)),
	Int32:      reflect.TypeOf(int32(0)),
	Int64:      reflect.TypeOf(int64(0)),
	Uint8:      reflect.TypeOf(uint8(0)),
	Uint16:     reflect.TypeOf(uint16(0)),
	Uint32:     reflect.TypeOf(uint32(0)),
	Uint64:     reflect.TypeOf(uint64(0)),
	Float32:    reflect.TypeOf(float32(0)),
	Float64:    reflect.TypeOf(float64(0)),
	Complex64:  reflect.TypeOf(complex64(0)),
	Complex128: reflect.TypeOf(complex128(0)),
}

var names = map[string]Descriptor{
	"bool": Bool8, "bool_": Bool8, "bool8": Bool8, "?": Bool8,
	"int": Int64, "int_": Int64, "long": Int64, "intp": Int64,
	"int8": Int8, "byte": Int8, "int16": Int16, "short": Int16,
	"int32": Int32, "intc": Int32, "int64": Int64, "longlong": Int64,
	"uint": Uint64, "uint8": Uint8, "ubyte": Uint8, "uint16": Uint16,
	"ushort": Uint16, "uint32": Uint32, "uintc": Uint32, "uint64": Uint64,
	"uintp": Uint64, "ulonglong": Uint64,
	"float": Float64, "float_": Float64, "double": Float64, "single": Float32,
	"float32": Float32, "float64": Float64,
	"complex": Complex128, "complex_": Complex128, "cfloat": Complex128,
	"complex64": Complex64, "complex128": Complex128, "csingle": Complex64,
	"cdouble": Complex128,
}

// one-letter type characters
var chars = map[byte]Descriptor{
	'b': Int8, 'B': Uint8, 'h': Int16, 'H': Uint16, 'i': Int32, 'I': Uint32,
	'l': Int64, 'L': Uint64, 'q': Int64, 'Q': Uint64, 'f': Float32,
	'd': Float64, 'F': Complex64, 'D': Complex128,
}

// Parse interprets v as an element-type descriptor. Accepted forms:
// Descriptor, *Descriptor, string names and codes, reflect.Type and
// reflect.Kind of a supported element type. A nil value yields Float64, the
// conventional default element type.
func Parse(v any) (Descriptor, error) {
	switch t := v.(type) {
	case nil:
		return Float64, nil
	case Descriptor:
		if t.Valid() {
			return t, nil
		}
	case *Descriptor:
		if t != nil && t.Valid() {
			return *t, nil
		}
	case string:
		return parseString(t)
	case reflect.Type:
		if t != nil {
			return FromKind(t.Kind())
		}
	case reflect.Kind:
		return FromKind(t)
	}
	return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalid, v)
}

// MustParse is like Parse but panics on error. Intended for package-level
// variables.
func MustParse(v any) Descriptor {
	d, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return d
}

// Valid reports whether v can be interpreted as an element-type descriptor.
func Valid(v any) bool {
	_, err := Parse(v)
	return err == nil
}

// FromKind maps a Go reflect.Kind to its descriptor. Platform-sized int and
// uint map to their 64-bit forms.
func FromKind(k reflect.Kind) (Descriptor, error) {
	switch k {
	case reflect.Bool:
		return Bool8, nil
	case reflect.Int, reflect.Int64:
		return Int64, nil
	case reflect.Int8:
		return Int8, nil
	case reflect.Int16:
		return Int16, nil
	case reflect.Int32:
		return Int32, nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return Uint64, nil
	case reflect.Uint8:
		return Uint8, nil
	case reflect.Uint16:
		return Uint16, nil
	case reflect.Uint32:
		return Uint32, nil
	case reflect.Float32:
		return Float32, nil
	case reflect.Float64:
		return Float64, nil
	case reflect.Complex64:
		return Complex64, nil
	case reflect.Complex128:
		return Complex128, nil
	}
	return Descriptor{}, fmt.Errorf("%w: kind %s", ErrInvalid, k)
}

func parseString(s string) (Descriptor, error) {
	raw := s
	s = strings.TrimSpace(s)
	if d, ok := names[strings.ToLower(s)]; ok {
		return d, nil
	}
	if s == "" {
		return Descriptor{}, fmt.Errorf("%w: empty string", ErrInvalid)
	}
	// byte-order prefix: native, little, big, not-applicable
	switch s[0] {
	case '=', '<', '>', '|':
		s = s[1:]
	}
	if len(s) == 1 {
		if d, ok := chars[s[0]]; ok {
			return d, nil
		}
		if s[0] == '?' {
			return Bool8, nil
		}
	}
	if len(s) >= 2 {
		n, err := strconv.Atoi(s[1:])
		if err == nil {
			var d Descriptor
			switch s[0] {
			case 'b':
				d = Descriptor{Bool, 8}
				if n != 1 {
					d = Descriptor{}
				}
			case 'i':
				d = Descriptor{Int, n * 8}
			case 'u':
				d = Descriptor{Uint, n * 8}
			case 'f':
				d = Descriptor{Float, n * 8}
			case 'c':
				d = Descriptor{Complex, n * 8}
			}
			if d.Valid() {
				return d, nil
			}
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
}
