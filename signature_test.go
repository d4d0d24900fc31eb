package argcheck_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/reoring/argcheck"
)

func TestSignature_Bind(t *testing.T) {
	sig := argcheck.MustSignature(argcheck.Arg("a"), argcheck.Opt("b", 2))
	c := argcheck.Call{Args: []any{1}}

	if v, st := sig.Bind(c, "a"); st != argcheck.Supplied || v != 1 {
		t.Fatalf("a: %v %v", v, st)
	}
	if _, st := sig.Bind(c, "b"); st != argcheck.Unsupplied {
		t.Fatalf("b: expected unsupplied, got %v", st)
	}
	if _, st := sig.Bind(c, "zzz"); st != argcheck.Unknown {
		t.Fatalf("zzz: expected unknown, got %v", st)
	}
	// supplying the default is still "supplied"
	if v, st := sig.Bind(c.With("b", 2), "b"); st != argcheck.Supplied || v != 2 {
		t.Fatalf("b by keyword: %v %v", v, st)
	}
	p, ok := sig.Lookup("b")
	if !ok || p.Position != 1 || !p.HasDefault || p.Default != 2 {
		t.Fatalf("lookup: %+v", p)
	}
}

func TestSignature_Invalid(t *testing.T) {
	if _, err := argcheck.NewSignature(argcheck.Arg("a"), argcheck.Arg("a")); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if _, err := argcheck.NewSignature(argcheck.Opt("a", 1), argcheck.Arg("b")); err == nil {
		t.Fatalf("expected ordering error")
	}
	if _, err := argcheck.NewSignature(argcheck.Arg("")); err == nil {
		t.Fatalf("expected empty-name error")
	}
}

func TestSignature_Resolve(t *testing.T) {
	sig := argcheck.MustSignature(argcheck.Arg("a"), argcheck.Opt("b", "B"), argcheck.Opt("c", nil))
	got, err := sig.Resolve(argcheck.Positional(1).With("c", 3))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if fmt.Sprint(got) != "[1 B 3]" {
		t.Fatalf("got %v", got)
	}
	bad := []argcheck.Call{
		{},
		argcheck.Positional(1, 2, 3, 4),
		argcheck.Positional(1).With("x", 1),
		argcheck.Positional(1).With("a", 1),
	}
	for _, c := range bad {
		if _, err := sig.Resolve(c); err == nil {
			t.Fatalf("Resolve(%+v): expected error", c)
		}
	}
}

var errSize = errors.New("size error")

func scale(n int, factor float64) (float64, error) {
	if n == 0 {
		return 0, errors.New("zero")
	}
	return float64(n) * factor, nil
}

func TestFromFunc(t *testing.T) {
	f, err := argcheck.FromFunc(scale, argcheck.Arg("n"), argcheck.Opt("factor", 1.0))
	if err != nil {
		t.Fatalf("FromFunc: %v", err)
	}
	out, err := f.Call(3)
	if err != nil || len(out) != 1 || out[0] != 3.0 {
		t.Fatalf("call: %v %v", out, err)
	}
	out, err = f.Invoke(argcheck.Positional(int8(2)).With("factor", 2))
	if err != nil || out[0] != 4.0 {
		t.Fatalf("keyword call: %v %v", out, err)
	}
	if _, err := f.Call(0); err == nil || err.Error() != "zero" {
		t.Fatalf("expected function error, got %v", err)
	}
	if _, err := f.Call("three"); err == nil {
		t.Fatalf("expected conversion error")
	}

	b := argcheck.NewBinder(nil)
	checked := argcheck.Attach[[]any](b, argcheck.Within("n", errSize, 1, 10))(f)
	_, err = checked.Call(11)
	if !errors.Is(err, errSize) {
		t.Fatalf("expected errSize, got %v", err)
	}
	// the location is the wrapped function's definition
	if !strings.Contains(err.Error(), "signature_test.go:") {
		t.Fatalf("expected source location, got %q", err.Error())
	}
}

func TestFromFunc_Rejects(t *testing.T) {
	if _, err := argcheck.FromFunc(42); err == nil {
		t.Fatalf("expected error for non-function")
	}
	if _, err := argcheck.FromFunc(fmt.Sprintf, argcheck.Arg("format"), argcheck.Arg("a")); err == nil {
		t.Fatalf("expected error for variadic function")
	}
	if _, err := argcheck.FromFunc(scale, argcheck.Arg("n")); err == nil {
		t.Fatalf("expected arity error")
	}
}
