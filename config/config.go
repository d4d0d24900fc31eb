// Package config holds the process-wide options consulted by argcheck: the
// type-checking gate, the logging level and the backend selection.
//
// Options load from YAML or JSON, then ARGCHECK_* environment variables
// override them, then the result is validated.
package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Options is the serializable configuration.
type Options struct {
	Backend   string `yaml:"backend" json:"backend" validate:"oneof=sequential openmp opencl cuda"`
	Debug     int    `yaml:"debug" json:"debug" validate:"gte=0,lte=7"`
	LogLevel  string `yaml:"log_level" json:"log_level" validate:"oneof=CRITICAL ERROR WARN INFO DEBUG"`
	TypeCheck *bool  `yaml:"type_check" json:"type_check"`
}

// Defaults returns the built-in options.
func Defaults() Options {
	on := true
	return Options{Backend: "sequential", LogLevel: "WARN", TypeCheck: &on}
}

var validate = validator.New()

// Validate checks option values.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Config is the live configuration. The type-check gate can be flipped at
// run time; every other field is fixed after Load.
type Config struct {
	opts      Options
	typeCheck atomic.Bool
}

// New validates opts and returns a Config. A nil TypeCheck means enabled.
func New(opts Options) (*Config, error) {
	opts.LogLevel = strings.ToUpper(opts.LogLevel)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &Config{opts: opts}
	c.typeCheck.Store(opts.TypeCheck == nil || *opts.TypeCheck)
	return c, nil
}

// Default returns a Config built from Defaults.
func Default() *Config {
	c, err := New(Defaults())
	if err != nil {
		panic(err)
	}
	return c
}

// Enabled implements argcheck.Gate.
func (c *Config) Enabled() bool { return c.typeCheck.Load() }

// SetTypeCheck turns contract enforcement on or off.
func (c *Config) SetTypeCheck(on bool) { c.typeCheck.Store(on) }

// Backend returns the selected backend name.
func (c *Config) Backend() string { return c.opts.Backend }

// Debug returns the debug level (0-7).
func (c *Config) Debug() int { return c.opts.Debug }

// LogLevel returns the configured level name.
func (c *Config) LogLevel() string { return c.opts.LogLevel }

// Options returns a snapshot of the current options.
func (c *Config) Options() Options {
	o := c.opts
	on := c.Enabled()
	o.TypeCheck = &on
	return o
}

// Level maps LogLevel to a slog.Level. CRITICAL has no slog equivalent and
// maps above Error.
func (c *Config) Level() slog.Level {
	switch c.opts.LogLevel {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	case "CRITICAL":
		return slog.LevelError + 4
	default:
		return slog.LevelWarn
	}
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Level()}))
}

// Load reads options from path (YAML for .yaml/.yml, JSON for .json),
// applies environment overrides and validates. An empty path starts from
// Defaults.
func Load(path string) (*Config, error) {
	opts := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			err = DecodeJSON(data, &opts)
		default:
			err = DecodeYAML(data, &opts)
		}
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := ApplyEnv(&opts, os.LookupEnv); err != nil {
		return nil, err
	}
	return New(opts)
}

// DecodeYAML decodes YAML into opts, keeping fields the document omits.
// Unknown keys are rejected.
func DecodeYAML(data []byte, opts *Options) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// DecodeJSON decodes JSON into opts, keeping fields the document omits.
// Unknown keys are rejected.
func DecodeJSON(data []byte, opts *Options) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(opts)
}

// Environment variable names.
const (
	EnvBackend   = "ARGCHECK_BACKEND"
	EnvDebug     = "ARGCHECK_DEBUG"
	EnvLogLevel  = "ARGCHECK_LOG_LEVEL"
	EnvTypeCheck = "ARGCHECK_TYPE_CHECK"
)

// ApplyEnv overrides opts from the environment using lookup.
func ApplyEnv(opts *Options, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBackend); ok {
		opts.Backend = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		opts.LogLevel = v
	}
	if v, ok := lookup(EnvDebug); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvDebug, v, err)
		}
		opts.Debug = n
	}
	if v, ok := lookup(EnvTypeCheck); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvTypeCheck, v, err)
		}
		opts.TypeCheck = &b
	}
	return nil
}
