package argcheck

// Gate reports whether contract enforcement is enabled. It is read on every
// call of a checked Function and never written by this package.
type Gate interface {
	Enabled() bool
}

// StaticGate is a Gate with a fixed value.
type StaticGate bool

func (g StaticGate) Enabled() bool { return bool(g) }

// GateFunc adapts a function to a Gate.
type GateFunc func() bool

func (f GateFunc) Enabled() bool { return f() }
