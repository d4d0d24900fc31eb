// Package ndarray provides the normalized container produced by Verify: a
// contiguous, row-major buffer with a fixed element-type descriptor and shape.
package ndarray

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"slices"

	json "github.com/goccy/go-json"

	"github.com/reoring/argcheck/dtype"
)

// Array is an n-dimensional container. Its descriptor and shape never change
// after construction; Reshape returns a new view over the same storage.
//
// The zero value is an empty array without a descriptor. Build real arrays
// with Verify, Empty or FromSlice.
type Array struct {
	dt    dtype.Descriptor
	shape []int
	data  reflect.Value // slice of dt.GoType()
}

// Empty returns a zero-length one-dimensional array of dt.
func Empty(dt dtype.Descriptor) *Array {
	return &Array{dt: dt, shape: []int{0}, data: reflect.MakeSlice(reflect.SliceOf(dt.GoType()), 0, 0)}
}

// FromSlice wraps a typed slice (e.g. []float32) as a one-dimensional array
// without copying. It panics if the element type has no descriptor.
func FromSlice[T any](s []T) *Array {
	var zero T
	dt := dtype.MustParse(reflect.TypeOf(zero))
	return &Array{dt: dt, shape: []int{len(s)}, data: reflect.ValueOf(s)}
}

// DType returns the element-type descriptor.
func (a *Array) DType() dtype.Descriptor { return a.dt }

// Shape returns a copy of the array's shape.
func (a *Array) Shape() []int { return slices.Clone(a.shape) }

// NDim returns the number of dimensions.
func (a *Array) NDim() int { return len(a.shape) }

// Size returns the total number of elements.
func (a *Array) Size() int {
	if !a.data.IsValid() {
		return 0
	}
	return a.data.Len()
}

// Data returns the backing slice, typed per DType (for example []float64).
// The slice aliases the array's storage.
func (a *Array) Data() any {
	if !a.data.IsValid() {
		return nil
	}
	return a.data.Interface()
}

// Values returns the backing slice when T matches the array's element type.
func Values[T any](a *Array) ([]T, bool) {
	s, ok := a.Data().([]T)
	return s, ok
}

// At returns the element at the given multi-index.
func (a *Array) At(idx ...int) (any, error) {
	if len(idx) != len(a.shape) {
		return nil, fmt.Errorf("ndarray: got %d indices for %d-dimensional array", len(idx), len(a.shape))
	}
	off := 0
	for i, n := range a.shape {
		if idx[i] < 0 || idx[i] >= n {
			return nil, fmt.Errorf("ndarray: index %d out of range for axis %d with size %d", idx[i], i, n)
		}
		off = off*n + idx[i]
	}
	if off >= a.Size() {
		return nil, fmt.Errorf("ndarray: index %v out of range for array of size %d", idx, a.Size())
	}
	return a.data.Index(off).Interface(), nil
}

// Reshape reinterprets the storage with a new shape. It never copies, so the
// element count must match exactly.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	n, err := product(shape)
	if err != nil {
		return nil, err
	}
	if n != a.Size() {
		return nil, fmt.Errorf("ndarray: cannot reshape array of size %d into shape %v", a.Size(), shape)
	}
	return &Array{dt: a.dt, shape: slices.Clone(shape), data: a.data}, nil
}

// Equal reports whether both arrays have the same descriptor, shape and
// elements.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.dt == b.dt && slices.Equal(a.shape, b.shape) && reflect.DeepEqual(a.Data(), b.Data())
}

func (a *Array) String() string {
	if !a.data.IsValid() {
		return "array([])"
	}
	return fmt.Sprintf("array(%v, dtype=%s, shape=%v)", a.Data(), a.dt, a.shape)
}

type wireArray struct {
	DType dtype.Descriptor `json:"dtype"`
	Shape []int            `json:"shape"`
	Data  json.RawMessage  `json:"data"`
}

// MarshalJSON encodes the array as {"dtype":..,"shape":..,"data":[..]} with
// data flattened in row-major order. Complex elements are not supported.
func (a *Array) MarshalJSON() ([]byte, error) {
	if a.dt.Kind() == dtype.Complex {
		return nil, fmt.Errorf("ndarray: cannot encode %s as JSON", a.dt)
	}
	data, err := json.Marshal(a.Data())
	if err != nil {
		return nil, err
	}
	if a.dt == dtype.Uint8 {
		// []uint8 encodes as base64; force a number list
		nums := make([]uint16, a.Size())
		for i, v := range a.Data().([]uint8) {
			nums[i] = uint16(v)
		}
		if data, err = json.Marshal(nums); err != nil {
			return nil, err
		}
	}
	return json.Marshal(wireArray{DType: a.dt, Shape: a.shape, Data: data})
}

// UnmarshalJSON decodes the form written by MarshalJSON and runs it through
// Verify so the result honors the encoded descriptor and shape.
func (a *Array) UnmarshalJSON(b []byte) error {
	var w wireArray
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	var raw []any
	dec := json.NewDecoder(bytes.NewReader(w.Data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	shape := w.Shape
	if shape == nil {
		shape = []int{len(raw)}
	}
	out, err := Verify(raw, w.DType, shape)
	if err != nil {
		return err
	}
	*a = *out
	return nil
}

func product(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("ndarray: negative dimension %d in shape %v", d, shape)
		}
		if d != 0 && n > math.MaxInt/d {
			return 0, fmt.Errorf("ndarray: shape %v overflows the element count", shape)
		}
		n *= d
	}
	return n, nil
}
