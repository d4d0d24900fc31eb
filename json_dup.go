package argcheck

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// dupFrame tracks one open JSON container while scanning tokens.
type dupFrame struct {
	object       bool
	keys         map[string]struct{}
	key          string
	expectingKey bool
	index        int
	path         PathRef
}

// DuplicateKeys scans a JSON document and reports every object member whose
// key already appeared in the same object. Each issue points at the repeated
// member. maxIssues < 0 means unlimited and 0 disables reporting; when the
// limit is reached a final "truncated" issue is appended. Malformed JSON is
// returned as an error.
func DuplicateKeys(data []byte, maxIssues int) (Issues, error) {
	if maxIssues == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var (
		iss   Issues
		stack []*dupFrame
	)
	valuePath := func() PathRef {
		if len(stack) == 0 {
			return Root()
		}
		top := stack[len(stack)-1]
		if top.object {
			return top.path.Field(top.key)
		}
		return top.path.Index(top.index)
	}
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		if top.object {
			top.expectingKey = true
		} else {
			top.index++
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return iss, io.ErrUnexpectedEOF
			}
			return iss, nil
		}
		if err != nil {
			return iss, err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				stack = append(stack, &dupFrame{
					object:       v == '{',
					keys:         map[string]struct{}{},
					expectingKey: v == '{',
					path:         valuePath(),
				})
			case '}', ']':
				stack = stack[:len(stack)-1]
				valueDone()
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectingKey {
				top := stack[n-1]
				if _, dup := top.keys[v]; dup {
					iss = AppendIssues(iss, top.path.Field(v).Issue(CodeDuplicateKey, "key '"+v+"' duplicated", "key", v))
					if maxIssues > 0 && len(iss) >= maxIssues {
						return AppendIssues(iss, Root().Issue(CodeTruncated, "max issues reached")), nil
					}
				}
				top.keys[v] = struct{}{}
				top.key = v
				top.expectingKey = false
				continue
			}
			valueDone()
		default:
			valueDone()
		}
	}
}
