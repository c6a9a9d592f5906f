// Package bench runs the log parsing benchmarks outside `go test` and
// writes result files in the format pkg/dashboard consumes.
package bench

import (
	"context"
	"flag"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/perfbible/internal/benchdata"
	"github.com/ajitpratap0/perfbible/pkg/config"
	"github.com/ajitpratap0/perfbible/pkg/errors"
	"github.com/ajitpratap0/perfbible/pkg/logparse"
	"github.com/ajitpratap0/perfbible/pkg/metrics"
	"github.com/ajitpratap0/perfbible/pkg/observability"
	"github.com/ajitpratap0/perfbible/pkg/pool"
)

// Parser variants.
const (
	VariantNaive     = config.VariantNaive
	VariantOptimized = config.VariantOptimized
	VariantPooled    = config.VariantPooled
)

// Runner measures every configured size and variant in turn. It is not
// safe for concurrent use; testing.Benchmark is process global.
type Runner struct {
	cfg      config.BenchConfig
	generate func(int) string
	logger   *zap.Logger
	gauges   *metrics.BenchGauges
	observer pool.Observer
	measure  func(func(*testing.B)) testing.BenchmarkResult
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithGauges publishes each finished case.
func WithGauges(g *metrics.BenchGauges) Option {
	return func(r *Runner) {
		r.gauges = g
	}
}

// WithPoolObserver attaches o to the pooled parser. The observer runs on
// the measured path, so it adds to the pooled timings.
func WithPoolObserver(o pool.Observer) Option {
	return func(r *Runner) {
		r.observer = o
	}
}

// NewRunner validates cfg and returns a runner.
func NewRunner(cfg config.BenchConfig, opts ...Option) (*Runner, error) {
	generate, ok := benchdata.Generator(cfg.Generator)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeValidation, "unknown generator %q", cfg.Generator)
	}
	for _, v := range cfg.Variants {
		switch v {
		case VariantNaive, VariantOptimized, VariantPooled:
		default:
			return nil, errors.Newf(errors.ErrorTypeValidation, "unknown variant %q", v)
		}
	}
	if cfg.PoolCapacity <= 0 {
		cfg.PoolCapacity = 1
	}

	r := &Runner{
		cfg:      cfg,
		generate: generate,
		logger:   zap.NewNop(),
		measure:  testing.Benchmark,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

var benchTimeMu sync.Mutex

// setBenchTime points testing.Benchmark at d. testing.Init is idempotent
// and only registers the test flags on first use.
func setBenchTime(d time.Duration) error {
	benchTimeMu.Lock()
	defer benchTimeMu.Unlock()

	testing.Init()
	return flag.Set("test.benchtime", d.String())
}

// Run executes all cases. Cancellation is checked between cases; a
// cancelled run returns the cases finished so far together with the
// context error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.cfg.BenchTime > 0 {
		if err := setBenchTime(r.cfg.BenchTime); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to set benchmark time")
		}
	}

	ctx, span := observability.StartSpan(ctx, "bench.run",
		attribute.String("group", r.cfg.Group),
		attribute.String("generator", r.cfg.Generator),
	)

	report := &Report{
		Group:     r.cfg.Group,
		Generator: r.cfg.Generator,
		Timestamp: time.Now().UTC(),
		Host:      CollectHost(ctx, r.logger),
	}

	err := r.runAll(ctx, report)
	span.SetAttribute("cases", len(report.Benchmarks))
	span.Finish(err)
	return report, err
}

func (r *Runner) runAll(ctx context.Context, report *Report) error {
	for _, size := range r.cfg.Sizes {
		input := r.generate(size)

		for _, variant := range r.cfg.Variants {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := r.runCase(ctx, variant, size, input)
			if err != nil {
				return err
			}
			report.Benchmarks = append(report.Benchmarks, res)
		}
	}
	return nil
}

func (r *Runner) runCase(ctx context.Context, variant string, size int, input string) (Result, error) {
	_, span := observability.StartSpan(ctx, "bench.case",
		attribute.String("variant", variant),
		attribute.Int("size", size),
	)

	fn, cleanup := r.caseFunc(variant, input)
	br := r.measure(fn)
	err := cleanup()

	res := newResult(variant, size, len(input), br)
	span.SetAttribute("ns_per_op", res.NsPerOp())
	span.SetAttribute("allocs_per_op", res.AllocsPerOp)
	span.Finish(err)
	if err != nil {
		return res, err
	}

	if r.gauges != nil {
		r.gauges.Observe(r.cfg.Group, variant, size, res.NsPerOp(), res.AllocsPerOp)
	}
	r.logger.Info("benchmark case finished",
		zap.String("name", res.Name),
		zap.Float64("ns_per_op", res.NsPerOp()),
		zap.Int64("allocs_per_op", res.AllocsPerOp),
		zap.Int("iterations", res.Iterations))
	return res, nil
}

var sink int

// caseFunc returns the benchmark body for variant and a cleanup that
// reports pool misuse detected after the run.
func (r *Runner) caseFunc(variant string, input string) (func(*testing.B), func() error) {
	noCleanup := func() error { return nil }

	switch variant {
	case VariantNaive:
		return func(b *testing.B) {
			b.SetBytes(int64(len(input)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				sink = len(logparse.ParseNaive(input))
			}
		}, noCleanup

	case VariantOptimized:
		return func(b *testing.B) {
			b.SetBytes(int64(len(input)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				sink = len(logparse.Parse(input))
			}
		}, noCleanup

	default:
		var opts []pool.Option[logparse.Entry]
		if r.observer != nil {
			opts = append(opts, pool.WithObserver[logparse.Entry](r.observer))
		}
		parser := logparse.NewParser(r.cfg.PoolCapacity, opts...)

		return func(b *testing.B) {
			b.SetBytes(int64(len(input)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				n, err := parser.Count(input)
				if err != nil {
					b.Fatal(err)
				}
				sink = n
			}
		}, parser.Close
	}
}

func newResult(variant string, size, inputBytes int, br testing.BenchmarkResult) Result {
	res := Result{
		Name:        variant + "/" + strconv.Itoa(size),
		Variant:     variant,
		Size:        size,
		InputBytes:  inputBytes,
		Iterations:  br.N,
		BytesPerOp:  br.AllocedBytesPerOp(),
		AllocsPerOp: br.AllocsPerOp(),
	}
	if br.N == 0 {
		return res
	}

	ns := float64(br.T.Nanoseconds()) / float64(br.N)
	res.Mean = &Estimate{PointEstimate: ns, Unit: "ns"}
	if ns > 0 {
		opsPerSec := 1e9 / ns
		res.Throughput = &opsPerSec
		res.BytesPerSecond = float64(inputBytes) * opsPerSec
	}
	return res
}
