// Package perfbible is a set of performance patterns for Go, measured
// against each other: a fixed-capacity slot pool, three log parsers built
// on progressively fewer allocations, a single-pass flat JSON scanner, and
// the tooling that benchmarks them and publishes the results.
//
// # Architecture
//
// The project is built around one question: what does a line of parsing
// cost, and where do the allocations go?
//
// 1. Slot pool: pool.Pool[T] owns every slot up front and hands out
// value-typed guards. Allocation never grows the heap, exhaustion is a
// normal outcome, and a stale or double release is caught by a
// per-slot generation counter.
//
// 2. Parser variants: logparse.ParseNaive splits, copies and builds maps;
// logparse.Parse returns substrings of its input; logparse.Parser reuses a
// single pooled Entry per line and allocates nothing in steady state.
//
// 3. Measurement: internal/bench drives testing.Benchmark outside go test,
// records host information, spans and Prometheus gauges, and writes result
// files that pkg/dashboard renders as a static page.
//
// # Quick Start
//
// Parse a log file with the pooled parser:
//
//	parser := logparse.NewParser(1)
//	defer parser.Close()
//
//	summary := logparse.NewSummary()
//	n, err := parser.ParseInto(input, func(e *logparse.Entry) error {
//	    summary.Add(e)
//	    return nil
//	})
//
// Or from the command line:
//
//	perfbible bench --sizes 100,10000 --benchtime 1s
//	perfbible dashboard --output dashboard --compress zstd
//	perfbible parse app.log --variant pooled --mmap
//	perfbible profile --variant naive --types cpu,memory
//
// # Key Packages
//
//	pkg/pool          - Fixed-capacity slot pool with typed guards
//	pkg/logparse      - Naive, optimized and pooled log parsers
//	pkg/jsonscan      - Allocation-free flat JSON object scanner
//	pkg/dashboard     - Static benchmark dashboard generator
//	pkg/mmap          - Read-only memory-mapped files
//	pkg/strings       - Zero-copy conversions, pooled builders, interning
//	pkg/json          - goccy/go-json with pooled buffers
//	pkg/compression   - zstd and lz4 codecs
//	pkg/config        - YAML configuration with ${VAR} substitution
//	pkg/errors        - Typed errors
//	pkg/logger        - zap structured logging
//	pkg/metrics       - Prometheus pool and benchmark collectors
//	pkg/observability - OpenTelemetry tracing
//	internal/bench    - Benchmark runner and result files
//
// # Configuration
//
// Every command reads one YAML file (--config) layered over defaults:
//
//	type Config struct {
//	    Log       logger.Config   // level, encoding, outputs
//	    Bench     BenchConfig     // sizes, variants, bench time, results dir
//	    Dashboard DashboardConfig // inputs, output, compression, workers
//	    Metrics   MetricsConfig   // Prometheus textfile export
//	    Tracing   TracingConfig   // OpenTelemetry stdout exporter
//	}
//
// Flags override the file, and every flag can be set as PERFBIBLE_<FLAG>.
//
// # Development
//
//	go test ./...                 # Unit tests
//	go test -short ./...          # Skip real benchmark runs
//	go test -bench . ./pkg/...    # Package benchmarks
package perfbible
