package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/perfbible/internal/bench"
	"github.com/ajitpratap0/perfbible/pkg/config"
	"github.com/ajitpratap0/perfbible/pkg/dashboard"
	"github.com/ajitpratap0/perfbible/pkg/errors"
	"github.com/ajitpratap0/perfbible/pkg/logparse"
	"github.com/ajitpratap0/perfbible/pkg/metrics"
	"github.com/ajitpratap0/perfbible/pkg/mmap"
	"github.com/ajitpratap0/perfbible/pkg/pool"
	stringpool "github.com/ajitpratap0/perfbible/pkg/strings"
)

func (a *app) benchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the log parser variants",
		Long: `Benchmark the naive, optimized and pooled log parsers over generated
log data and write <results>/<group>.json for the dashboard.

Example:
  perfbible bench --sizes 100,1000 --variants naive,pooled --benchtime 500ms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBench(cmd)
		},
	}

	cmd.Flags().StringSlice("sizes", nil, "Log line counts to benchmark")
	cmd.Flags().StringSlice("variants", nil, "Parser variants (naive, optimized, pooled)")
	cmd.Flags().String("generator", "", "Log data generator (mixed, uniform)")
	cmd.Flags().String("results", "", "Directory receiving the result file")
	cmd.Flags().Duration("benchtime", 0, "Minimum run time per case")
	cmd.Flags().Int("pool-capacity", 0, "Slot count of the pooled parser")
	a.addObservabilityFlags(cmd)
	return cmd
}

func (a *app) runBench(cmd *cobra.Command) error {
	opts := []bench.Option{bench.WithLogger(a.log)}
	if a.registry != nil {
		opts = append(opts,
			bench.WithGauges(a.registry.BenchGauges()),
			bench.WithPoolObserver(a.registry.PoolObserver("bench")),
		)
	}

	runner, err := bench.NewRunner(a.cfg.Bench, opts...)
	if err != nil {
		return err
	}

	a.log.Info("running benchmarks",
		zap.Ints("sizes", a.cfg.Bench.Sizes),
		zap.Strings("variants", a.cfg.Bench.Variants),
		zap.Duration("bench_time", a.cfg.Bench.BenchTime))

	report, runErr := runner.Run(cmd.Context())
	if report == nil || len(report.Benchmarks) == 0 {
		return runErr
	}

	path, err := report.Save(a.cfg.Bench.ResultsDir)
	if err != nil {
		return err
	}
	report.Print(a.out)
	a.log.Info("results written", zap.String("path", path), zap.Int("cases", len(report.Benchmarks)))
	return runErr
}

func (a *app) dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Build the static benchmark dashboard",
		Long: `Collect result files from the input directories and write index.html,
README.md and data/benchmarks.json to the output directory.

Example:
  perfbible dashboard --input benchmark-results --output dashboard --compress zstd`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDashboard(cmd)
		},
	}

	cmd.Flags().StringSlice("input", nil, "Directories searched for result files")
	cmd.Flags().String("output", "", "Dashboard output directory")
	cmd.Flags().String("compress", "", "Also archive benchmarks.json (none, zstd, lz4)")
	cmd.Flags().String("title", "", "Page title")
	cmd.Flags().Int("workers", 0, "Files processed in parallel")
	a.addObservabilityFlags(cmd)
	return cmd
}

func (a *app) runDashboard(cmd *cobra.Command) error {
	timer := metrics.NewTimer("dashboard")
	opts, err := dashboard.OptionsFromConfig(a.cfg.Dashboard, a.log)
	if err != nil {
		return err
	}

	summary, err := dashboard.Generate(cmd.Context(), opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Processed %d of %d benchmark files into %s\n",
		len(summary.Benchmarks), len(summary.Files), a.cfg.Dashboard.OutputDir)
	if summary.Archive != "" {
		fmt.Fprintf(a.out, "Archive: %s\n", summary.Archive)
	}
	if summary.Failures != nil {
		fmt.Fprintf(a.out, "Skipped files:\n%v\n", summary.Failures)
	}
	a.logElapsed(timer)
	return nil
}

func (a *app) parseCmd() *cobra.Command {
	var variant string
	var capacity int
	var useMmap bool

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a log file and print a summary",
		Long: `Parse a timestamp|LEVEL|message[|key=value...] log file with one of the
parser variants and print the entry count and level histogram.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(args[0], variant, capacity, useMmap)
		},
	}

	cmd.Flags().StringVar(&variant, "variant", config.VariantOptimized, "Parser variant (naive, optimized, pooled)")
	cmd.Flags().IntVar(&capacity, "capacity", 1, "Slot count of the pooled parser")
	cmd.Flags().BoolVar(&useMmap, "mmap", false, "Memory-map the file instead of reading it")
	a.addObservabilityFlags(cmd)
	return cmd
}

func (a *app) runParse(path, variant string, capacity int, useMmap bool) error {
	timer := metrics.NewTimer("parse")
	data, release, err := readLog(path, useMmap)
	if err != nil {
		return err
	}

	// The summary interns what it keeps, so it outlives the mapping.
	summary, err := a.summarize(data, variant, capacity)
	if rerr := release(); err == nil {
		err = rerr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Entries: %d\n", summary.Entries)
	fmt.Fprintf(a.out, "Metadata pairs: %d\n", summary.MetadataPairs)
	fmt.Fprintln(a.out, "Levels:")
	for _, level := range summary.LevelNames() {
		fmt.Fprintf(a.out, "  %-8s %d\n", level, summary.Levels[level])
	}
	a.log.Info("log parsed",
		zap.String("path", path),
		zap.String("variant", variant),
		zap.Int("entries", summary.Entries))
	a.logElapsed(timer)
	return nil
}

func (a *app) logElapsed(timer *metrics.Timer) {
	a.log.Info("command finished", zap.String("timer", timer.Name()), zap.Duration("elapsed", timer.Stop()))
}

// readLog returns the file content and a func that releases it.
func readLog(path string, useMmap bool) ([]byte, func() error, error) {
	if useMmap {
		m, err := mmap.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return m.Bytes(), m.Close, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the command argument
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read log file").WithDetail("path", path)
	}
	return data, func() error { return nil }, nil
}

func (a *app) summarize(data []byte, variant string, capacity int) (*logparse.Summary, error) {
	summary := logparse.NewSummary()

	switch variant {
	case config.VariantNaive:
		for _, r := range logparse.ParseNaive(stringpool.BytesToString(data)) {
			r := r
			summary.AddRecord(&r)
		}

	case config.VariantOptimized:
		for _, e := range logparse.ParseBytes(data) {
			e := e
			summary.Add(&e)
		}

	case config.VariantPooled:
		if capacity < 1 {
			return nil, errors.Newf(errors.ErrorTypeValidation, "pooled parser capacity must be positive, got %d", capacity)
		}
		var opts []pool.Option[logparse.Entry]
		if a.registry != nil {
			opts = append(opts, pool.WithObserver[logparse.Entry](a.registry.PoolObserver("parse")))
		}
		parser := logparse.NewParser(capacity, opts...)
		_, err := parser.ParseInto(stringpool.BytesToString(data), func(e *logparse.Entry) error {
			summary.Add(e)
			return nil
		})
		a.log.Debug("pooled parse finished", zap.Int64("allocations", parser.Stats().Allocations))
		if cerr := parser.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Newf(errors.ErrorTypeValidation, "unknown variant %q", variant)
	}
	return summary, nil
}

func (a *app) addObservabilityFlags(cmd *cobra.Command) {
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().Bool("trace", false, "Export OpenTelemetry spans to stderr")
}
