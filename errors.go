package argcheck

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes.
const (
	CodeInvalidType       = "invalid_type"
	CodeInvalidEnum       = "invalid_enum"
	CodeDomainRange       = "domain_range"
	CodeInvalidDType      = "invalid_dtype"
	CodeRequired          = "required"
	CodeInvalidConversion = "invalid_conversion"
	CodeShapeMismatch     = "shape_mismatch"
	CodeTooShort          = "too_short"
	CodeTooLong           = "too_long"
	CodeDuplicateKey      = "duplicate_key"
	CodeTruncated         = "truncated"
)

// Fixed error kinds raised by the coercion/shape verifier. Match them with
// errors.Is.
var (
	// ErrDataType reports an invalid element-type descriptor.
	ErrDataType = errors.New("argcheck: invalid data type")
	// ErrDataValue reports absent, inconvertible or mis-shaped data.
	ErrDataValue = errors.New("argcheck: invalid data value")
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /dtype or /data/3).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error kind.
	// Params carries structured parameters (e.g., {"expected":4, "got":3}).
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Message != "" {
			b.WriteString(it.Message)
			continue
		}
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes of all issues so errors.Is can match
// ErrDataType, ErrDataValue or a caller-supplied kind.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally. A
// *ContractError is reported as a single-entry Issues.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var ce *ContractError
	if errors.As(err, &ce) {
		return Issues{ce.Issue}, true
	}
	return nil, false
}

// ContractError is returned by a checked Function when a supplied argument
// violates its declared domain. It wraps the caller-chosen error kind.
type ContractError struct {
	Issue
	Source string // file:line of the checked function's definition.
	Param  string
	Value  any
	Domain string
	Kind   error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s %s", e.Source, e.Message)
}

func (e *ContractError) Unwrap() error { return e.Kind }

// dataIssue builds the single-issue error returned by the verifier.
func dataIssue(p PathRef, cause error, code, msg string, kv ...any) Issues {
	it := p.Issue(code, msg, kv...)
	it.Cause = cause
	return Issues{it}
}

// DataTypeError builds an ErrDataType failure at path p.
func DataTypeError(p PathRef, msg string, kv ...any) error {
	return dataIssue(p, ErrDataType, CodeInvalidDType, msg, kv...)
}

// DataValueError builds an ErrDataValue failure at path p with the given code.
func DataValueError(p PathRef, code, msg string, kv ...any) error {
	return dataIssue(p, ErrDataValue, code, msg, kv...)
}
