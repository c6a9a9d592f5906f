// Package config provides the configuration system for perfbible.
// A single Config structure covers every command, organized into sections:
//   - Log: zap logger settings
//   - Bench: benchmark sizes, parser variants and result location
//   - Dashboard: where results are read from and the dashboard is written
//   - Metrics: Prometheus collection and textfile export
//   - Tracing: OpenTelemetry spans around long running operations
//
// Example usage:
//
//	cfg := config.Default()
//	cfg.Bench.Sizes = []int{100, 1000}
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/ajitpratap0/perfbible/pkg/compression"
	"github.com/ajitpratap0/perfbible/pkg/errors"
	"github.com/ajitpratap0/perfbible/pkg/logger"
)

// Parser variants understood by the benchmark harness.
const (
	VariantNaive     = "naive"
	VariantOptimized = "optimized"
	VariantPooled    = "pooled"
)

// Log data generators.
const (
	GeneratorMixed   = "mixed"
	GeneratorUniform = "uniform"
)

// Config is the top level configuration.
type Config struct {
	// Log configures the global zap logger
	Log logger.Config `yaml:"log" json:"log"`

	// Bench configures `perfbible bench`
	Bench BenchConfig `yaml:"bench" json:"bench"`

	// Dashboard configures `perfbible dashboard`
	Dashboard DashboardConfig `yaml:"dashboard" json:"dashboard"`

	// Metrics configures Prometheus collection
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Tracing configures OpenTelemetry tracing
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
}

// BenchConfig contains benchmark harness settings.
type BenchConfig struct {
	// Sizes are the log line counts to benchmark
	Sizes []int `yaml:"sizes" json:"sizes"`
	// Variants selects parser implementations
	Variants []string `yaml:"variants" json:"variants"`
	// Generator picks the log data shape (mixed or uniform)
	Generator string `yaml:"generator" json:"generator"`
	// PoolCapacity is the slot count of the pooled parser
	PoolCapacity int `yaml:"pool_capacity" json:"pool_capacity"`
	// BenchTime is the minimum run time per case
	BenchTime time.Duration `yaml:"bench_time" json:"bench_time"`
	// ResultsDir receives one JSON file per group
	ResultsDir string `yaml:"results_dir" json:"results_dir"`
	// Group names the result file
	Group string `yaml:"group" json:"group"`
}

// DashboardConfig contains dashboard generation settings.
type DashboardConfig struct {
	// InputDirs are searched recursively for result files
	InputDirs []string `yaml:"input_dirs" json:"input_dirs"`
	// OutputDir receives index.html, README.md and data/
	OutputDir string `yaml:"output_dir" json:"output_dir"`
	// Title is shown in the page header
	Title string `yaml:"title" json:"title"`
	// Compression archives benchmarks.json (none, zstd, lz4)
	Compression string `yaml:"compression" json:"compression"`
	// Workers bounds parallel file processing
	Workers int `yaml:"workers" json:"workers"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	// TextfilePath, when set, receives the metrics in text exposition format
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate"`
	Pretty      bool    `yaml:"pretty" json:"pretty"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Log: logger.DefaultConfig(),
		Bench: BenchConfig{
			Sizes:        []int{100, 1_000, 10_000, 100_000},
			Variants:     []string{VariantNaive, VariantOptimized, VariantPooled},
			Generator:    GeneratorMixed,
			PoolCapacity: 1,
			BenchTime:    time.Second,
			ResultsDir:   "benchmark-results",
			Group:        "log_parsing",
		},
		Dashboard: DashboardConfig{
			InputDirs:   []string{"benchmark-results", "benchmark-results/benchmark-results"},
			OutputDir:   "dashboard",
			Title:       "Performance Bible",
			Compression: string(compression.None),
			Workers:     4,
		},
		Metrics: MetricsConfig{
			Namespace: "perfbible",
		},
		Tracing: TracingConfig{
			ServiceName: "perfbible",
			SampleRate:  1.0,
		},
	}
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if len(c.Bench.Sizes) == 0 {
		result = multierror.Append(result, fmt.Errorf("bench.sizes must not be empty"))
	}
	for _, s := range c.Bench.Sizes {
		if s <= 0 {
			result = multierror.Append(result, fmt.Errorf("bench.sizes: %d is not positive", s))
		}
	}
	if len(c.Bench.Variants) == 0 {
		result = multierror.Append(result, fmt.Errorf("bench.variants must not be empty"))
	}
	for _, v := range c.Bench.Variants {
		switch v {
		case VariantNaive, VariantOptimized, VariantPooled:
		default:
			result = multierror.Append(result, fmt.Errorf("bench.variants: unknown variant %q", v))
		}
	}
	switch c.Bench.Generator {
	case GeneratorMixed, GeneratorUniform:
	default:
		result = multierror.Append(result, fmt.Errorf("bench.generator: unknown generator %q", c.Bench.Generator))
	}
	if c.Bench.PoolCapacity <= 0 {
		result = multierror.Append(result, fmt.Errorf("bench.pool_capacity must be positive"))
	}
	if c.Bench.BenchTime <= 0 {
		result = multierror.Append(result, fmt.Errorf("bench.bench_time must be positive"))
	}
	if c.Bench.ResultsDir == "" {
		result = multierror.Append(result, fmt.Errorf("bench.results_dir is required"))
	}
	if c.Bench.Group == "" {
		result = multierror.Append(result, fmt.Errorf("bench.group is required"))
	}

	if c.Dashboard.OutputDir == "" {
		result = multierror.Append(result, fmt.Errorf("dashboard.output_dir is required"))
	}
	if _, err := compression.ParseAlgorithm(c.Dashboard.Compression); err != nil {
		result = multierror.Append(result, fmt.Errorf("dashboard.compression: %w", err))
	}
	if c.Dashboard.Workers <= 0 {
		result = multierror.Append(result, fmt.Errorf("dashboard.workers must be positive"))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		result = multierror.Append(result, fmt.Errorf("tracing.sample_rate must be within [0, 1]"))
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid configuration")
	}
	return nil
}
