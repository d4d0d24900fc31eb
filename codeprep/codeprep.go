// Package codeprep cleans up generated C source text before it is handed to
// a compiler backend.
package codeprep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// TrimDoc normalizes the indentation of a documentation block: tabs are
// expanded, the common indentation of all but the first line is removed,
// trailing whitespace is stripped, and leading/trailing blank lines are
// dropped.
func TrimDoc(doc string) string {
	if doc == "" {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(expandTabs(doc, 8), "\r\n", "\n"), "\n")
	indent := -1
	for _, l := range lines[1:] {
		s := strings.TrimLeft(l, " ")
		if s == "" {
			continue
		}
		if n := len(l) - len(s); indent < 0 || n < indent {
			indent = n
		}
	}
	out := []string{strings.TrimSpace(lines[0])}
	if indent >= 0 {
		for _, l := range lines[1:] {
			if len(l) > indent {
				l = l[indent:]
			} else {
				l = ""
			}
			out = append(out, strings.TrimRight(l, " \t"))
		}
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	return strings.Join(out, "\n")
}

func expandTabs(s string, size int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := size - col%size
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n', '\r':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// Strip removes blank lines and lines holding only a semicolon.
func Strip(code string) string {
	var kept []string
	for _, l := range strings.Split(code, "\n") {
		l = strings.TrimSuffix(l, "\r")
		if s := strings.TrimSpace(l); s != "" && s != ";" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

// Command is the preprocessor invocation; tests may replace it.
var Command = []string{"cpp", "-std=c99", "-E"}

// ErrNoCommand is returned by Preprocess when Command is empty.
var ErrNoCommand = errors.New("codeprep: no preprocessor command configured")

// Preprocess runs text through the C preprocessor with the given include
// directories, then drops blank lines and every directive except #pragma.
func Preprocess(ctx context.Context, text string, includeDirs ...string) (string, error) {
	if len(Command) == 0 || Command[0] == "" {
		return "", ErrNoCommand
	}
	args := append([]string{}, Command[1:]...)
	for _, d := range includeDirs {
		args = append(args, "-I"+d)
	}
	cmd := exec.CommandContext(ctx, Command[0], args...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("codeprep: %s: %w: %s", Command[0], err, strings.TrimSpace(stderr.String()))
	}
	var kept []string
	for _, l := range strings.Split(stdout.String(), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if strings.HasPrefix(l, "#") && !strings.HasPrefix(l, "#pragma") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n"), nil
}
