package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reoring/argcheck"
	"github.com/reoring/argcheck/dtype"
	"github.com/reoring/argcheck/ndarray"
)

var (
	errNoShape      = errors.New("argcheck: a shape is required (--shape or a \"shape\" field)")
	errInvalidShape = errors.New("argcheck: invalid shape")
)

func newVerifyCmd(a *app) *cobra.Command {
	var (
		dt          string
		shape       string
		format      string
		allowAbsent bool
	)
	cmd := &cobra.Command{
		Use:   "verify [file]",
		Short: "Coerce data to a dtype and check it against a shape",
		Long: `Reads a JSON or YAML document from file (or stdin) and prints the verified
array as JSON. The document is either the bare data or an object with
"data", "dtype" and "shape" fields; flags override document fields.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			doc, err := readDocument(cmd.InOrStdin(), name, format)
			if err != nil {
				return err
			}
			in, err := splitDocument(doc)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dtype") {
				in.dtype = dt
			}
			if cmd.Flags().Changed("shape") {
				if in.shape, err = parseShape(shape); err != nil {
					return err
				}
			}
			if in.shape == nil {
				return errNoShape
			}
			var dtArg any
			if in.dtype != "" {
				dtArg = in.dtype
			}
			opts := []ndarray.VerifyOpt{ndarray.Observe(a.metrics.ObserveVerify)}
			if allowAbsent {
				opts = append(opts, ndarray.AllowAbsent())
			}
			arr, err := ndarray.Verify(in.data, dtArg, in.shape, opts...)
			if err != nil {
				a.logger.Debug("verification failed", slog.Any("error", err))
				return err
			}
			a.logger.Info("data verified",
				slog.String("dtype", arr.DType().String()),
				slog.Any("shape", arr.Shape()))
			out, err := json.Marshal(arr)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&dt, "dtype", "", "target dtype (inferred from the data when empty)")
	f.StringVar(&shape, "shape", "", "comma-separated expected shape, e.g. 2,3")
	f.StringVar(&format, "format", "auto", "input format: auto, json or yaml")
	f.BoolVar(&allowAbsent, "allow-absent", false, "accept missing data and return an empty array")
	return cmd
}

func newCheckDTypeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-dtype <spelling>...",
		Short: "Report whether each argument names a valid dtype",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			var bad []string
			for _, s := range args {
				d, err := dtype.Parse(s)
				if err != nil {
					bad = append(bad, s)
					fmt.Fprintf(w, "%s\tinvalid\n", s)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", s, d, d.Code(), d.ItemSize())
			}
			if len(bad) > 0 {
				a.logger.Debug("invalid dtypes", slog.Any("spellings", bad))
				return fmt.Errorf("%w: %s", argcheck.ErrDataType, strings.Join(bad, ", "))
			}
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := a.cfg.Options()
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(opts)
			}
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(opts); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON instead of YAML")
	return cmd
}

// verifyInput is the data, dtype and shape extracted from one document.
type verifyInput struct {
	data  any
	dtype string
	shape []int
}

func readDocument(stdin io.Reader, name, format string) (any, error) {
	var (
		raw []byte
		err error
	)
	if name == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}
	if format == "auto" {
		format = "json"
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			format = "yaml"
		}
	}
	switch format {
	case "json":
		iss, err := argcheck.DuplicateKeys(raw, -1)
		if err != nil {
			return nil, fmt.Errorf("argcheck: decode JSON: %w", err)
		}
		if len(iss) > 0 {
			return nil, iss
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("argcheck: decode JSON: %w", err)
		}
		return v, nil
	case "yaml":
		var v any
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("argcheck: decode YAML: %w", err)
		}
		return normalizeYAML(v), nil
	default:
		return nil, fmt.Errorf("argcheck: unknown format %q", format)
	}
}

// splitDocument treats an object with a "data" key as a full request and any
// other value as bare data.
func splitDocument(doc any) (verifyInput, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return verifyInput{data: doc}, nil
	}
	if _, ok := m["data"]; !ok {
		return verifyInput{data: doc}, nil
	}
	in := verifyInput{data: m["data"]}
	if s, ok := m["dtype"].(string); ok {
		in.dtype = s
	}
	if raw, ok := m["shape"]; ok && raw != nil {
		shape, err := documentShape(raw)
		if err != nil {
			return verifyInput{}, err
		}
		in.shape = shape
	}
	return in, nil
}

// documentShape accepts a list of whole numbers. Fractional, non-numeric or
// out-of-range entries are rejected rather than truncated.
func documentShape(raw any) ([]int, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: shape must be a list, got %v", errInvalidShape, raw)
	}
	out := make([]int, len(list))
	for i, v := range list {
		n, ok := wholeNumber(v)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d of %v is not an integer", errInvalidShape, i, list)
		}
		out[i] = n
	}
	return out, nil
}

func wholeNumber(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), t == int64(int(t))
	case uint64:
		return int(t), t <= math.MaxInt
	case float64:
		if t != math.Trunc(t) || math.Abs(t) > 1<<53 {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := strconv.ParseInt(t.String(), 10, 0)
		return int(n), err == nil
	}
	return 0, false
}

func parseShape(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", errInvalidShape, s, err)
		}
		out[i] = n
	}
	return out, nil
}

// normalizeYAML rewrites a yaml.v3 value into the shape encoding/json would
// produce: maps get string keys (non-string keys are formatted with %v) and
// nested lists are normalized in place.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			t[k] = normalizeYAML(vv)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		for i, vv := range t {
			t[i] = normalizeYAML(vv)
		}
		return t
	}
	return v
}
