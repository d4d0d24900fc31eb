package argcheck

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// Outcome is the result of evaluating one check declaration for one call.
type Outcome string

const (
	OutcomePassed            Outcome = "passed"
	OutcomeFailed            Outcome = "failed"
	OutcomeSkippedUnknown    Outcome = "skipped_unknown"
	OutcomeSkippedUnsupplied Outcome = "skipped_unsupplied"
	OutcomeSkippedDefault    Outcome = "skipped_default"
)

// Observer receives one notification per evaluated declaration. It must be
// safe for concurrent use.
type Observer interface {
	ObserveCheck(kind Kind, outcome Outcome)
}

// gateObserver is optionally implemented by an Observer that counts calls
// made while the gate is disabled.
type gateObserver interface {
	ObserveGateDisabled()
}

// Binder enforces check declarations against call arguments. A Binder is
// immutable after construction and safe for concurrent use.
type Binder struct {
	gate           Gate
	logger         *slog.Logger
	observer       Observer
	strictDefaults bool
}

// Option configures a Binder.
type Option func(*Binder)

// WithLogger sets the logger used for skip and violation diagnostics (Debug
// level).
func WithLogger(l *slog.Logger) Option {
	return func(b *Binder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithObserver registers an Observer such as *metrics.Metrics.
func WithObserver(o Observer) Option {
	return func(b *Binder) { b.observer = o }
}

// WithStrictDefaults disables the default-value exemption: an explicitly
// supplied argument is checked even when it equals the parameter's default.
func WithStrictDefaults() Option {
	return func(b *Binder) { b.strictDefaults = true }
}

// NewBinder returns a Binder reading gate before every call. A nil gate
// enables enforcement unconditionally.
func NewBinder(gate Gate, opts ...Option) *Binder {
	if gate == nil {
		gate = StaticGate(true)
	}
	b := &Binder{gate: gate, logger: slog.Default()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Enabled reports the current gate value.
func (b *Binder) Enabled() bool { return b.gate.Enabled() }

// Enforce evaluates checks in order against one call and returns the first
// violation. Declarations naming an unknown parameter, an argument not
// supplied in this call, or an argument equal to its declared default are
// skipped without error. Nothing runs while the gate is disabled.
func (b *Binder) Enforce(sig *Signature, c Call, checks []Check) error {
	if !b.gate.Enabled() {
		if g, ok := b.observer.(gateObserver); ok {
			g.ObserveGateDisabled()
		}
		return nil
	}
	for _, chk := range checks {
		v, state := sig.Bind(c, chk.param)
		switch state {
		case Unknown:
			b.skip(chk, OutcomeSkippedUnknown)
			continue
		case Unsupplied:
			b.skip(chk, OutcomeSkippedUnsupplied)
			continue
		}
		if !b.strictDefaults {
			if p, _ := sig.Lookup(chk.param); p.HasDefault && valuesEqual(v, p.Default) {
				b.skip(chk, OutcomeSkippedDefault)
				continue
			}
		}
		if chk.Eval(v) {
			b.observe(chk.kind, OutcomePassed)
			continue
		}
		b.observe(chk.kind, OutcomeFailed)
		err := chk.violation(sig.source, v)
		b.logger.LogAttrs(context.Background(), slog.LevelDebug, "argument contract violated",
			slog.String("source", sig.source),
			slog.String("param", chk.param),
			slog.String("check", chk.kind.String()),
			slog.Any("value", v),
			slog.String("domain", err.Domain))
		return err
	}
	return nil
}

func (b *Binder) skip(chk Check, o Outcome) {
	b.observe(chk.kind, o)
	b.logger.LogAttrs(context.Background(), slog.LevelDebug, "argument check skipped",
		slog.String("param", chk.param),
		slog.String("check", chk.kind.String()),
		slog.String("reason", string(o)))
}

func (b *Binder) observe(k Kind, o Outcome) {
	if b.observer != nil {
		b.observer.ObserveCheck(k, o)
	}
}

// ErrUndefined is returned when calling a zero Function.
var ErrUndefined = errors.New("argcheck: function is not defined")

// Function is a callable with a declared Signature. Checked variants are
// produced by Attach and share the Signature of the function they wrap.
type Function[R any] struct {
	sig  *Signature
	impl func(Call) (R, error)
}

// Define pairs an implementation with its Signature.
func Define[R any](sig *Signature, impl func(Call) (R, error)) Function[R] {
	return Function[R]{sig: sig, impl: impl}
}

// Signature returns the function's signature descriptor.
func (f Function[R]) Signature() *Signature { return f.sig }

// Invoke runs the function with a full Call.
func (f Function[R]) Invoke(c Call) (R, error) {
	if f.impl == nil || f.sig == nil {
		var zero R
		return zero, ErrUndefined
	}
	return f.impl(c)
}

// Call runs the function with positional arguments.
func (f Function[R]) Call(args ...any) (R, error) { return f.Invoke(Call{Args: args}) }

// Attach returns a decorator that runs checks (in order) before delegating to
// the wrapped function. Stacked decorators run outermost first. The
// declarations are copied; later changes to the caller's slice have no
// effect.
func Attach[R any](b *Binder, checks ...Check) func(Function[R]) Function[R] {
	cs := slices.Clone(checks)
	return func(f Function[R]) Function[R] {
		inner := f
		return Function[R]{sig: f.sig, impl: func(c Call) (R, error) {
			if inner.sig == nil {
				var zero R
				return zero, ErrUndefined
			}
			if err := b.Enforce(inner.sig, c, cs); err != nil {
				var zero R
				return zero, err
			}
			return inner.Invoke(c)
		}}
	}
}
