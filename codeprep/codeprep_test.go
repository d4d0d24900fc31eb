package codeprep

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimDoc(t *testing.T) {
	assert.Equal(t, "", TrimDoc(""))
	doc := "  Summary line.\n\n      Indented body\n        nested   \n\n"
	assert.Equal(t, "Summary line.\n\nIndented body\n  nested", TrimDoc(doc))
	assert.Equal(t, "one", TrimDoc("\n   one\n"))
	assert.Equal(t, "a\nb\n  c", TrimDoc("a\n\tb\n\t  c"))
}

func TestStrip(t *testing.T) {
	code := "int x;\n\n  ;\n   \nx = 1;\n"
	assert.Equal(t, "int x;\nx = 1;", Strip(code))
}

func TestPreprocess(t *testing.T) {
	if _, err := exec.LookPath(Command[0]); err != nil {
		t.Skip("C preprocessor not available")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dim.h"), []byte("#define DIM 3\n"), 0o644))

	src := "#include \"dim.h\"\n#pragma omp parallel\n\nint a[DIM];\n"
	out, err := Preprocess(context.Background(), src, dir)
	require.NoError(t, err)
	assert.Equal(t, "#pragma omp parallel\nint a[3];", out)
}

func TestPreprocessFailure(t *testing.T) {
	if _, err := exec.LookPath(Command[0]); err != nil {
		t.Skip("C preprocessor not available")
	}
	_, err := Preprocess(context.Background(), "#include \"missing_header.h\"\n")
	assert.Error(t, err)
}

func TestPreprocessEmptyCommand(t *testing.T) {
	saved := Command
	t.Cleanup(func() { Command = saved })

	Command = nil
	_, err := Preprocess(context.Background(), "int x;\n")
	assert.ErrorIs(t, err, ErrNoCommand)
}
