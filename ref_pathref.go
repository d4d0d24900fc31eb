package argcheck

import (
	"fmt"
	"strconv"
	"strings"
)

// PathRef is an immutable JSON Pointer (RFC 6901) used to place Issues.
// Field and Index return extended copies, so a PathRef can be shared.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code, msg string, kv ...any) Issue
}

// Root returns the empty path ("/").
func Root() PathRef { return pointer(nil) }

// At parses a JSON Pointer such as "/data/2" or "/a~1b". Escapes are decoded,
// so At(p.Pointer()) and p address the same location.
func At(path string) PathRef {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s == "" {
			continue
		}
		segs = append(segs, pointerUnescaper.Replace(s))
	}
	return pointer(segs)
}

// pointer holds the unescaped reference tokens.
type pointer []string

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func (p pointer) extend(seg string) pointer {
	out := make(pointer, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

func (p pointer) Field(name string) PathRef {
	if name == "" {
		return p
	}
	return p.extend(name)
}

func (p pointer) Index(i int) PathRef { return p.extend(strconv.Itoa(i)) }

func (p pointer) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p {
		b.WriteByte('/')
		pointerEscaper.WriteString(&b, s)
	}
	return b.String()
}

// Issue creates an Issue at this path. kv holds alternating param names and
// values; a trailing unpaired entry is ignored.
func (p pointer) Issue(code, msg string, kv ...any) Issue {
	params := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		params[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: params}
}
