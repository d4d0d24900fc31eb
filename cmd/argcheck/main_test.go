package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/argcheck"
	"github.com/reoring/argcheck/config"
)

// run executes the CLI with args and stdin, returning stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	for _, k := range []string{config.EnvBackend, config.EnvDebug, config.EnvLogLevel, config.EnvTypeCheck} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	root, _ := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestVerifyStdinJSON(t *testing.T) {
	out, _, err := run(t, `[[1, 2], [3, 4]]`, "verify", "--dtype", "int32", "--shape", "2,2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"dtype":"int32","shape":[2,2],"data":[1,2,3,4]}`, out)
}

func TestVerifyDocumentFields(t *testing.T) {
	out, _, err := run(t, `{"data": [1.5, 2.5], "dtype": "float64", "shape": [2]}`, "verify")
	require.NoError(t, err)
	assert.JSONEq(t, `{"dtype":"float64","shape":[2],"data":[1.5,2.5]}`, out)
}

func TestVerifyYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data: [1, 2, 3]\nshape: [3]\n"), 0o644))
	out, _, err := run(t, "", "verify", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dtype":"int64","shape":[3],"data":[1,2,3]}`, out)
}

func TestVerifyShapeMismatch(t *testing.T) {
	_, _, err := run(t, `[1, 2, 3]`, "verify", "--shape", "2")
	require.Error(t, err)
	iss, ok := argcheck.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, argcheck.CodeShapeMismatch, iss[0].Code)
	assert.Equal(t, exitInvalid, exitCode(err))
}

func TestVerifyAbsent(t *testing.T) {
	_, _, err := run(t, "", "verify", "--shape", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, argcheck.ErrDataValue)

	out, _, err := run(t, "", "verify", "--shape", "0", "--allow-absent")
	require.NoError(t, err)
	assert.JSONEq(t, `{"dtype":"float64","shape":[0],"data":[]}`, out)
}

func TestVerifyRequiresShape(t *testing.T) {
	_, _, err := run(t, `[1]`, "verify")
	assert.ErrorIs(t, err, errNoShape)
	assert.Equal(t, exitError, exitCode(err))
}

func TestCheckDType(t *testing.T) {
	out, _, err := run(t, "", "check-dtype", "f4", "<i8")
	require.NoError(t, err)
	assert.Equal(t, "f4\tfloat32\tf4\t4\n<i8\tint64\ti8\t8\n", out)

	out, _, err = run(t, "", "check-dtype", "int32", "bogus")
	assert.ErrorIs(t, err, argcheck.ErrDataType)
	assert.Contains(t, out, "bogus\tinvalid")
}

func TestConfigCommand(t *testing.T) {
	out, _, err := run(t, "", "--backend", "openmp", "-d", "3", "--no-type-check", "config", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"backend":"openmp","debug":3,"log_level":"WARN","type_check":false}`, out)

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: cuda\nlog_level: debug\n"), 0o644))
	out, _, err = run(t, "", "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "backend: cuda")
	assert.Contains(t, out, "log_level: DEBUG")
}

func TestInvalidFlags(t *testing.T) {
	_, _, err := run(t, "", "--backend", "fortran", "config")
	assert.Error(t, err)
	_, _, err = run(t, "", "-d", "9", "config")
	assert.Error(t, err)
}

func TestDebugLogging(t *testing.T) {
	_, stderr, err := run(t, `[1, 2]`, "-l", "DEBUG", "verify", "--shape", "2")
	require.NoError(t, err)
	assert.Contains(t, stderr, "data verified")
	assert.Contains(t, stderr, "argcheck_verify_success_total")
}

func TestVerifyRejectsDuplicateKeys(t *testing.T) {
	_, _, err := run(t, `{"data": [1], "shape": [1], "data": [2]}`, "verify")
	iss, ok := argcheck.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, argcheck.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/data", iss[0].Path)
}

func TestVerifyRejectsNonIntegerShape(t *testing.T) {
	for _, doc := range []string{
		`{"data": [1, 2, 3, 4], "dtype": "int64", "shape": [2.9, 2]}`,
		`{"data": [1, 2, 3, 4], "dtype": "int64", "shape": ["x"]}`,
		`{"data": [1, 2, 3, 4], "dtype": "int64", "shape": 4}`,
	} {
		out, _, err := run(t, doc, "verify")
		require.ErrorIs(t, err, errInvalidShape, doc)
		assert.NotErrorIs(t, err, errNoShape)
		assert.Empty(t, out)
	}

	_, _, err := run(t, `[1, 2]`, "verify", "--shape", "2.5")
	assert.ErrorIs(t, err, errInvalidShape)

	out, _, err := run(t, "data: [1, 2, 3, 4]\nshape: [2.0, 2]\n", "verify", "--format", "yaml")
	require.NoError(t, err)
	assert.JSONEq(t, `{"dtype":"int64","shape":[2,2],"data":[1,2,3,4]}`, out)
}

func TestNormalizeYAML(t *testing.T) {
	in := map[string]any{
		"shape": []any{2, 2},
		"meta":  map[any]any{1: "one", "k": []any{map[any]any{true: "yes"}}},
	}
	got := normalizeYAML(in)
	assert.Equal(t, map[string]any{
		"shape": []any{2, 2},
		"meta":  map[string]any{"1": "one", "k": []any{map[string]any{"true": "yes"}}},
	}, got)
	assert.Equal(t, 3, normalizeYAML(3))
}
