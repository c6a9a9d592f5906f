// Command perfbible runs the log parsing benchmarks, builds the results
// dashboard and parses log files with any of the parser variants.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/perfbible/pkg/config"
	"github.com/ajitpratap0/perfbible/pkg/errors"
	"github.com/ajitpratap0/perfbible/pkg/logger"
	"github.com/ajitpratap0/perfbible/pkg/metrics"
	"github.com/ajitpratap0/perfbible/pkg/observability"
)

var version = "0.1.0"

const (
	envPrefix       = "PERFBIBLE"
	shutdownTimeout = 5 * time.Second
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries state shared by the subcommands of one invocation.
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer

	cfg      *config.Config
	log      *zap.Logger
	registry *metrics.Registry
	shutdown observability.ShutdownFunc
}

// run executes one command line. Tracing and metrics are flushed even when
// the command fails.
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	a := &app{v: viper.New(), out: out, errOut: errOut}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if ferr := a.finish(); err == nil {
		err = ferr
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "perfbible",
		Short: "perfbible - log parsing benchmarks and dashboard",
		Long: `perfbible measures naive, optimized and pool-backed log parsers,
writes the results as JSON and renders them as a static dashboard.

Every flag can also be set through the environment, e.g. PERFBIBLE_LOG_LEVEL=debug.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(a.versionCmd(), a.benchCmd(), a.dashboardCmd(), a.parseCmd(), a.profileCmd())
	return root
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "perfbible v%s\n", version)
			fmt.Fprintf(a.out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(a.out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// setup loads the configuration, applies flag and environment overrides and
// starts logging, tracing and metrics.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to bind flags")
	}

	cfg, err := config.LoadFile(a.v.GetString("config"))
	if err != nil {
		return err
	}
	if err := a.applyOverrides(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(cfg.Log); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to initialize logger")
	}
	ctx := context.WithValue(cmd.Context(), logger.RunIDKey, uuid.NewString())
	ctx = context.WithValue(ctx, logger.ComponentKey, cmd.Name())
	cmd.SetContext(ctx)
	a.log = logger.WithContext(ctx)

	observability.Version = version
	shutdown, err := observability.InitTracing(cfg.Tracing, a.errOut)
	if err != nil {
		return err
	}
	a.shutdown = shutdown

	if cfg.Metrics.Enabled {
		a.registry = metrics.NewRegistry(cfg.Metrics.Namespace)
	}

	a.log.Debug("configuration loaded",
		zap.String("config", a.v.GetString("config")),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled))
	return nil
}

// applyOverrides copies every flag or PERFBIBLE_* variable that was set
// into cfg. Keys are the flag names.
func (a *app) applyOverrides(cfg *config.Config) error {
	if a.isSet("log-level") {
		cfg.Log.Level = a.v.GetString("log-level")
	}

	if a.isSet("sizes") {
		sizes, err := a.intList("sizes")
		if err != nil {
			return err
		}
		cfg.Bench.Sizes = sizes
	}
	if a.isSet("variants") {
		cfg.Bench.Variants = a.stringList("variants")
	}
	if a.isSet("generator") {
		cfg.Bench.Generator = a.v.GetString("generator")
	}
	if a.isSet("results") {
		cfg.Bench.ResultsDir = a.v.GetString("results")
	}
	if a.isSet("benchtime") {
		cfg.Bench.BenchTime = a.v.GetDuration("benchtime")
	}
	if a.isSet("pool-capacity") {
		cfg.Bench.PoolCapacity = a.v.GetInt("pool-capacity")
	}

	if a.isSet("input") {
		cfg.Dashboard.InputDirs = a.stringList("input")
	}
	if a.isSet("output") {
		cfg.Dashboard.OutputDir = a.v.GetString("output")
	}
	if a.isSet("compress") {
		cfg.Dashboard.Compression = a.v.GetString("compress")
	}
	if a.isSet("title") {
		cfg.Dashboard.Title = a.v.GetString("title")
	}
	if a.isSet("workers") {
		cfg.Dashboard.Workers = a.v.GetInt("workers")
	}

	if a.isSet("metrics-file") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.TextfilePath = a.v.GetString("metrics-file")
	}
	if a.isSet("trace") {
		cfg.Tracing.Enabled = a.v.GetBool("trace")
	}
	return nil
}

// isSet reports whether key was given on the command line or in the
// environment. Flag defaults do not count.
func (a *app) isSet(key string) bool {
	return a.v.IsSet(key)
}

// stringList accepts repeated flags as well as comma or space separated
// environment values.
func (a *app) stringList(key string) []string {
	var out []string
	for _, item := range a.v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (a *app) intList(key string) ([]int, error) {
	items := a.stringList(key)
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, err := strconv.Atoi(item)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid integer list").
				WithDetail(key, item)
		}
		out = append(out, n)
	}
	return out, nil
}

// finish flushes tracing, writes the metrics textfile and syncs the logger.
func (a *app) finish() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		keep(a.shutdown(ctx))
		cancel()
	}
	if a.registry != nil && a.cfg.Metrics.TextfilePath != "" {
		err := a.registry.WriteTextfile(a.cfg.Metrics.TextfilePath)
		if err == nil {
			a.log.Info("metrics written", zap.String("path", a.cfg.Metrics.TextfilePath))
		}
		keep(err)
	}
	if a.log != nil {
		_ = logger.Sync()
	}
	return firstErr
}
