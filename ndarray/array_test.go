package ndarray_test

import (
	"slices"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/reoring/argcheck/dtype"
	"github.com/reoring/argcheck/ndarray"
)

func TestArray_ReshapeSharesStorage(t *testing.T) {
	a := ndarray.FromSlice([]float64{1, 2, 3, 4, 5, 6})
	b, err := a.Reshape(3, 2)
	if err != nil {
		t.Fatalf("reshape: %v", err)
	}
	vals, _ := ndarray.Values[float64](b)
	vals[5] = 60
	if v, _ := a.At(5); v != float64(60) {
		t.Fatalf("expected shared storage, got %v", v)
	}
	if !slices.Equal(a.Shape(), []int{6}) {
		t.Fatalf("original shape changed: %v", a.Shape())
	}
	if _, err := a.Reshape(4, 2); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func TestArray_ShapeIsCopied(t *testing.T) {
	a := ndarray.FromSlice([]int64{1, 2})
	s := a.Shape()
	s[0] = 99
	if a.Shape()[0] != 2 {
		t.Fatalf("shape mutated through accessor")
	}
}

func TestArray_AtBounds(t *testing.T) {
	a := ndarray.FromSlice([]int64{1, 2})
	if _, err := a.At(2); err == nil {
		t.Fatalf("expected out of range error")
	}
	if _, err := a.At(0, 0); err == nil {
		t.Fatalf("expected dimensionality error")
	}
}

func TestArray_JSON(t *testing.T) {
	a, err := ndarray.Verify([]int{1, 2, 3, 4}, dtype.Uint8, []int{2, 2})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"dtype":"uint8","shape":[2,2],"data":[1,2,3,4]}` {
		t.Fatalf("unexpected encoding %s", b)
	}
	var back ndarray.Array
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(a) {
		t.Fatalf("round trip mismatch: %v vs %v", &back, a)
	}

	var bad ndarray.Array
	if err := json.Unmarshal([]byte(`{"dtype":"float32","shape":[3],"data":[1,2]}`), &bad); err == nil {
		t.Fatalf("expected shape mismatch on decode")
	}
}

func TestEmpty(t *testing.T) {
	e := ndarray.Empty(dtype.Bool8)
	if e.Size() != 0 || !slices.Equal(e.Shape(), []int{0}) {
		t.Fatalf("got %v", e)
	}
	if _, ok := e.Data().([]bool); !ok {
		t.Fatalf("expected []bool storage, got %T", e.Data())
	}
}

func TestArray_ZeroValue(t *testing.T) {
	var a ndarray.Array
	if a.Size() != 0 || a.Data() != nil {
		t.Fatalf("zero array: size=%d data=%v", a.Size(), a.Data())
	}
	if got := a.String(); got != "array([])" {
		t.Fatalf("String: %q", got)
	}
	if _, ok := ndarray.Values[int64](&a); ok {
		t.Fatalf("zero array has no typed storage")
	}
	if _, err := a.At(); err == nil {
		t.Fatalf("expected At on zero array to fail")
	}
}

func TestArray_ReshapeOverflow(t *testing.T) {
	a := ndarray.FromSlice([]int64{1, 2, 3, 4})
	if _, err := a.Reshape(1<<62+1, 4); err == nil {
		t.Fatalf("expected overflowing reshape to fail")
	}
}
