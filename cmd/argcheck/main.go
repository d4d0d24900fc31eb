// Command argcheck verifies array data against a dtype and shape and
// inspects the runtime configuration that gates argument checking.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/reoring/argcheck"
	"github.com/reoring/argcheck/config"
	"github.com/reoring/argcheck/metrics"
)

const (
	exitSuccess = 0
	exitInvalid = 1
	exitError   = 2
)

// app carries the state shared by all subcommands after the persistent
// flags have been resolved.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics

	configPath  string
	backend     string
	debug       int
	logLevel    string
	noTypeCheck bool
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "argcheck",
		Short:         "Verify array data and inspect argument-check configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.reportMetrics(cmd.Context())
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "configuration file (YAML or JSON)")
	pf.StringVarP(&a.backend, "backend", "b", "", "execution backend: sequential, openmp, opencl or cuda")
	pf.IntVarP(&a.debug, "debug", "d", 0, "debug level (0-7)")
	pf.StringVarP(&a.logLevel, "log-level", "l", "", "log level: CRITICAL, ERROR, WARN, INFO or DEBUG")
	pf.BoolVar(&a.noTypeCheck, "no-type-check", false, "disable argument type checking")

	root.AddCommand(newVerifyCmd(a), newCheckDTypeCmd(a), newConfigCmd(a))
	return root, a
}

// setup layers defaults, the config file, the environment and finally
// explicitly set flags.
func (a *app) setup(cmd *cobra.Command) error {
	base, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	opts := base.Options()
	flags := cmd.Flags()
	if flags.Changed("backend") {
		opts.Backend = a.backend
	}
	if flags.Changed("debug") {
		opts.Debug = a.debug
	}
	if flags.Changed("log-level") {
		opts.LogLevel = a.logLevel
	}
	if a.noTypeCheck {
		off := false
		opts.TypeCheck = &off
	}
	cfg, err := config.New(opts)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Logger(cmd.ErrOrStderr())
	a.reg = prometheus.NewRegistry()
	a.metrics = metrics.New(a.reg)
	a.logger.Debug("configuration loaded",
		slog.String("backend", cfg.Backend()),
		slog.Int("debug", cfg.Debug()),
		slog.Bool("type_check", cfg.Enabled()))
	return nil
}

func (a *app) reportMetrics(ctx context.Context) {
	if a.reg == nil || ctx == nil {
		return
	}
	families, err := a.reg.Gather()
	if err != nil {
		a.logger.Warn("gathering metrics failed", slog.Any("error", err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []slog.Attr{slog.String("metric", mf.GetName()), slog.Float64("value", m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, slog.String(lp.GetName(), lp.GetValue()))
			}
			a.logger.LogAttrs(ctx, slog.LevelDebug, "metric", attrs...)
		}
	}
}

func main() {
	root, _ := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode maps rejected input to exitInvalid and everything else to
// exitError.
func exitCode(err error) int {
	if _, ok := argcheck.AsIssues(err); ok {
		return exitInvalid
	}
	if errors.Is(err, argcheck.ErrDataType) || errors.Is(err, argcheck.ErrDataValue) {
		return exitInvalid
	}
	return exitError
}
