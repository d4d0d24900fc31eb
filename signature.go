package argcheck

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
)

// Param declares one formal parameter of a checked function.
type Param struct {
	Name       string
	HasDefault bool
	Default    any
	Position   int
}

// Arg declares a parameter without a default value.
func Arg(name string) Param { return Param{Name: name} }

// Opt declares a parameter whose default value is def.
func Opt(name string, def any) Param { return Param{Name: name, HasDefault: true, Default: def} }

// Signature is the immutable descriptor of a function's formal parameters,
// built once when a Function is defined.
type Signature struct {
	params []Param
	index  map[string]int
	source string
}

// NewSignature builds a Signature and records the caller's file:line as the
// source location used in contract messages. Positions are assigned in
// declaration order. Duplicate names and non-default parameters following a
// defaulted one are rejected.
func NewSignature(params ...Param) (*Signature, error) {
	return newSignature(callerSource(2), params)
}

// MustSignature is like NewSignature but panics on error.
func MustSignature(params ...Param) *Signature {
	s, err := newSignature(callerSource(2), params)
	if err != nil {
		panic(err)
	}
	return s
}

func newSignature(source string, params []Param) (*Signature, error) {
	s := &Signature{params: make([]Param, len(params)), index: make(map[string]int, len(params)), source: source}
	seenDefault := false
	for i, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("argcheck: parameter %d has no name", i)
		}
		if _, dup := s.index[p.Name]; dup {
			return nil, fmt.Errorf("argcheck: duplicate parameter %q", p.Name)
		}
		if seenDefault && !p.HasDefault {
			return nil, fmt.Errorf("argcheck: parameter %q without default follows a defaulted parameter", p.Name)
		}
		seenDefault = seenDefault || p.HasDefault
		p.Position = i
		s.params[i] = p
		s.index[p.Name] = i
	}
	return s, nil
}

// Source returns the file:line where the signature was declared.
func (s *Signature) Source() string { return s.source }

// Len returns the number of formal parameters.
func (s *Signature) Len() int { return len(s.params) }

// Params returns a copy of the parameter list.
func (s *Signature) Params() []Param { return append([]Param(nil), s.params...) }

// Lookup returns the parameter with the given name.
func (s *Signature) Lookup(name string) (Param, bool) {
	i, ok := s.index[name]
	if !ok {
		return Param{}, false
	}
	return s.params[i], true
}

// BindState describes how a formal parameter was resolved for one call.
type BindState int

const (
	// Unknown: the name is not a formal parameter.
	Unknown BindState = iota
	// Unsupplied: the call passed neither a keyword nor a positional value.
	Unsupplied
	// Supplied: a value was passed, possibly equal to the default.
	Supplied
)

func (b BindState) String() string {
	switch b {
	case Unsupplied:
		return "unsupplied"
	case Supplied:
		return "supplied"
	default:
		return "unknown"
	}
}

// Bind resolves a formal parameter against a call: keyword first, then
// positional index.
func (s *Signature) Bind(c Call, name string) (any, BindState) {
	i, ok := s.index[name]
	if !ok {
		return nil, Unknown
	}
	if v, ok := c.Kwargs[name]; ok {
		return v, Supplied
	}
	if i >= len(c.Args) {
		return nil, Unsupplied
	}
	return c.Args[i], Supplied
}

// Resolve maps a call onto the full positional parameter list, filling
// defaults. It fails on unknown keywords, a keyword repeating a positional
// value, too many positional values, or a missing required parameter.
func (s *Signature) Resolve(c Call) ([]any, error) {
	if len(c.Args) > len(s.params) {
		return nil, fmt.Errorf("argcheck: %s takes %d arguments, got %d", s.source, len(s.params), len(c.Args))
	}
	out := make([]any, len(s.params))
	copy(out, c.Args)
	for k, v := range c.Kwargs {
		i, ok := s.index[k]
		if !ok {
			return nil, fmt.Errorf("argcheck: %s got an unexpected keyword argument %q", s.source, k)
		}
		if i < len(c.Args) {
			return nil, fmt.Errorf("argcheck: %s got multiple values for argument %q", s.source, k)
		}
		out[i] = v
	}
	for i := len(c.Args); i < len(s.params); i++ {
		p := s.params[i]
		if _, ok := c.Kwargs[p.Name]; ok {
			continue
		}
		if !p.HasDefault {
			return nil, fmt.Errorf("argcheck: %s missing required argument %q", s.source, p.Name)
		}
		out[i] = p.Default
	}
	return out, nil
}

// Call holds the actual arguments of one invocation.
type Call struct {
	Args   []any
	Kwargs map[string]any
}

// Positional builds a Call from positional arguments only.
func Positional(args ...any) Call { return Call{Args: args} }

// With returns a copy of c with an added keyword argument.
func (c Call) With(name string, v any) Call {
	kw := make(map[string]any, len(c.Kwargs)+1)
	for k, x := range c.Kwargs {
		kw[k] = x
	}
	kw[name] = v
	return Call{Args: c.Args, Kwargs: kw}
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "???:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// funcSource returns the file:line of a Go function value's entry point.
func funcSource(fn reflect.Value) string {
	rf := runtime.FuncForPC(fn.Pointer())
	if rf == nil {
		return "???:0"
	}
	file, line := rf.FileLine(rf.Entry())
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
