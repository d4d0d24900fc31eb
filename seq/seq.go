// Package seq holds small sequence helpers used when normalizing loosely
// typed arguments.
package seq

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/reoring/argcheck"
)

// TupleOpt configures AsTuple.
type TupleOpt func(*tupleConfig)

type tupleConfig struct {
	length int
	typ    reflect.Type
	gate   argcheck.Gate
}

// Length sets the expected length. A scalar item is repeated n times.
func Length(n int) TupleOpt { return func(c *tupleConfig) { c.length = n } }

// Elem sets the required element type (an interface type matches
// implementations).
func Elem(t reflect.Type) TupleOpt { return func(c *tupleConfig) { c.typ = t } }

// WithGate makes the length and element checks conditional on g.
func WithGate(g argcheck.Gate) TupleOpt { return func(c *tupleConfig) { c.gate = g } }

// AsTuple converts item into a fresh []any: nil becomes empty, a slice or
// array is copied element-wise, and anything else is repeated Length times
// (once when no length is set). When the gate is enabled (the default), a
// length mismatch or an element of the wrong type is reported as Issues.
func AsTuple(item any, opts ...TupleOpt) ([]any, error) {
	cfg := tupleConfig{gate: argcheck.StaticGate(true)}
	for _, o := range opts {
		o(&cfg)
	}
	var out []any
	switch rv := reflect.ValueOf(item); {
	case item == nil:
		out = []any{}
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		out = make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
	default:
		n := max(cfg.length, 1)
		out = make([]any, n)
		for i := range out {
			out[i] = item
		}
	}
	if !cfg.gate.Enabled() {
		return out, nil
	}
	if cfg.length > 0 && len(out) != cfg.length {
		code := argcheck.CodeTooShort
		if len(out) > cfg.length {
			code = argcheck.CodeTooLong
		}
		return nil, argcheck.Issues{argcheck.Root().Issue(code,
			fmt.Sprintf("Tuple needs to be of length %d", cfg.length), "expected", cfg.length, "got", len(out))}
	}
	if cfg.typ != nil {
		var iss argcheck.Issues
		for i, v := range out {
			if !isInstance(v, cfg.typ) {
				iss = argcheck.AppendIssues(iss, argcheck.Root().Index(i).Issue(argcheck.CodeInvalidType,
					fmt.Sprintf("Items need to be of type %s", cfg.typ), "expected", cfg.typ.String(), "got", fmt.Sprintf("%T", v)))
			}
		}
		if len(iss) > 0 {
			return nil, iss
		}
	}
	return out, nil
}

func isInstance(v any, t reflect.Type) bool {
	if v == nil {
		return false
	}
	vt := reflect.TypeOf(v)
	return vt == t || (t.Kind() == reflect.Interface && vt.Implements(t))
}

// Flatten yields the elements of each inner slice in order.
func Flatten[T any](nested [][]T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, inner := range nested {
			for _, v := range inner {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Uniquify yields the elements of s with duplicates removed, keeping first
// occurrences in order.
func Uniquify[T comparable](s iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		seen := make(map[T]struct{})
		for v := range s {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			if !yield(v) {
				return
			}
		}
	}
}

// DefaultAlignment is the alignment used by Align when none is given.
const DefaultAlignment = 16

// Align rounds n up to a multiple of alignment (DefaultAlignment when
// alignment <= 0).
func Align(n, alignment int) int {
	if alignment <= 0 {
		alignment = DefaultAlignment
	}
	return ((n + alignment - 1) / alignment) * alignment
}
