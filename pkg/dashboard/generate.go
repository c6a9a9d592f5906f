package dashboard

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	concpool "github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/perfbible/pkg/compression"
	"github.com/ajitpratap0/perfbible/pkg/config"
	"github.com/ajitpratap0/perfbible/pkg/errors"
	perfjson "github.com/ajitpratap0/perfbible/pkg/json"
	"github.com/ajitpratap0/perfbible/pkg/observability"
	stringpool "github.com/ajitpratap0/perfbible/pkg/strings"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// Options controls Generate.
type Options struct {
	// InputDirs are searched recursively for result files.
	InputDirs []string
	// OutputDir receives index.html, README.md and data/.
	OutputDir string
	// Title heads the page.
	Title string
	// Compression, when not None, also writes data/benchmarks.json<ext>.
	Compression compression.Algorithm
	// Workers bounds parallel file processing. Values below 1 mean 1.
	Workers int
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Now stamps the page. Defaults to time.Now.
	Now func() time.Time
}

// OptionsFromConfig converts the dashboard configuration section.
func OptionsFromConfig(cfg config.DashboardConfig, logger *zap.Logger) (Options, error) {
	alg, err := compression.ParseAlgorithm(cfg.Compression)
	if err != nil {
		return Options{}, err
	}
	return Options{
		InputDirs:   cfg.InputDirs,
		OutputDir:   cfg.OutputDir,
		Title:       cfg.Title,
		Compression: alg,
		Workers:     cfg.Workers,
		Logger:      logger,
	}, nil
}

// Summary describes a finished generation.
type Summary struct {
	// Benchmarks are the processed result sets in discovery order.
	Benchmarks []Benchmark
	// Files are the result files that were found.
	Files []string
	// Failures aggregates the per-file errors; nil when every file was
	// processed.
	Failures error
	// Archive is the compressed copy of benchmarks.json, if one was written.
	Archive string
}

// Generate builds the dashboard described by opts. Per-file failures are
// logged and reported in Summary.Failures; only output errors and context
// cancellation fail the run.
func Generate(ctx context.Context, opts Options) (*Summary, error) {
	opts = withDefaults(opts)
	log := opts.Logger

	ctx, span := observability.StartSpan(ctx, "dashboard.generate",
		attribute.String("output_dir", opts.OutputDir),
	)
	summary, err := generate(ctx, opts, log, span)
	if summary != nil {
		span.SetAttribute("files", len(summary.Files))
		span.SetAttribute("benchmarks", len(summary.Benchmarks))
	}
	span.Finish(err)
	return summary, err
}

func withDefaults(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Title == "" {
		opts.Title = "Performance Bible"
	}
	if opts.Compression == "" {
		opts.Compression = compression.None
	}
	return opts
}

func generate(ctx context.Context, opts Options, log *zap.Logger, span *observability.Span) (*Summary, error) {
	log.Info("starting dashboard generation", zap.String("output_dir", opts.OutputDir))

	dataDir := filepath.Join(opts.OutputDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil { //nolint:gosec // dashboard output is public
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create dashboard directory").
			WithDetail("dir", dataDir)
	}

	summary := &Summary{Files: FindResults(opts.InputDirs)}
	if len(summary.Files) == 0 {
		log.Warn("no benchmark files found", zap.Strings("input_dirs", opts.InputDirs))
	}

	benchmarks, failures := processAll(ctx, summary.Files, dataDir, opts.Workers, log, span)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	summary.Benchmarks = benchmarks
	summary.Failures = failures

	if err := writeIndex(opts); err != nil {
		return summary, err
	}
	archive, err := writeData(dataDir, benchmarks, opts.Compression)
	if err != nil {
		return summary, err
	}
	summary.Archive = archive
	if err := writeReadme(opts.OutputDir, benchmarks); err != nil {
		return summary, err
	}

	log.Info("dashboard generated",
		zap.Int("benchmark_sets", len(benchmarks)),
		zap.Int("failed_files", len(summary.Files)-len(benchmarks)))
	return summary, nil
}

// processAll runs Process over files with at most workers goroutines. The
// returned benchmarks keep the order of files; the error aggregates the
// files that failed. Each file is recorded as an event on span.
func processAll(ctx context.Context, files []string, dataDir string, workers int, log *zap.Logger, span *observability.Span) ([]Benchmark, error) {
	results := make([]*Benchmark, len(files))
	errs := make([]error, len(files))

	p := concpool.New().WithMaxGoroutines(workers)
	for i, path := range files {
		i, path := i, path
		p.Go(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			bm, err := Process(path, dataDir)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = &bm
		})
	}
	p.Wait()

	benchmarks := make([]Benchmark, 0, len(files))
	var failures *multierror.Error
	for i, path := range files {
		if errs[i] != nil {
			log.Error("failed to process benchmark file", zap.String("path", path), zap.Error(errs[i]))
			span.AddEvent("benchmark file failed",
				attribute.String("path", path),
				attribute.String("error", errs[i].Error()))
			failures = multierror.Append(failures, errs[i])
			continue
		}
		log.Debug("processed benchmark file", zap.String("path", path))
		span.AddEvent("benchmark file processed",
			attribute.String("path", path),
			attribute.Int("results", len(results[i].Results)))
		benchmarks = append(benchmarks, *results[i])
	}
	return benchmarks, failures.ErrorOrNil()
}

type indexData struct {
	Title     string
	Timestamp string
	Version   string
}

func writeIndex(opts Options) error {
	path := filepath.Join(opts.OutputDir, "index.html")
	f, err := os.Create(path) //nolint:gosec // G304: output path from configuration
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create index.html").WithDetail("path", path)
	}

	err = indexTemplate.Execute(f, indexData{
		Title:     opts.Title,
		Timestamp: opts.Now().UTC().Format(time.RFC3339),
		Version:   observability.Version,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write index.html").WithDetail("path", path)
	}
	return nil
}

// writeData writes benchmarks.json and, if alg is not None, a compressed
// copy. It returns the archive path or "".
func writeData(dataDir string, benchmarks []Benchmark, alg compression.Algorithm) (string, error) {
	buf := perfjson.GetBuffer()
	defer perfjson.PutBuffer(buf)

	if err := perfjson.MarshalToWriter(buf, benchmarks, "  "); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeData, "failed to encode benchmarks")
	}

	path := filepath.Join(dataDir, "benchmarks.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // dashboard output is public
		return "", errors.Wrap(err, errors.ErrorTypeFile, "failed to write benchmarks.json").WithDetail("path", path)
	}

	if alg == compression.None {
		return "", nil
	}
	packed, err := compression.Compress(alg, buf.Bytes())
	if err != nil {
		return "", err
	}
	archive := path + compression.Extension(alg)
	if err := os.WriteFile(archive, packed, 0o644); err != nil { //nolint:gosec // dashboard output is public
		return "", errors.Wrap(err, errors.ErrorTypeFile, "failed to write archive").WithDetail("path", archive)
	}
	return archive, nil
}

func writeReadme(outDir string, benchmarks []Benchmark) error {
	readme := stringpool.BuildWith(stringpool.Small, func(b *stringpool.Builder) {
		b.WriteString(readmeHeader)
		if len(benchmarks) > 0 {
			b.WriteString("\n## Result Sets\n\n")
			for _, bm := range benchmarks {
				fmt.Fprintf(b, "- %s (`%s`): %d results\n", bm.Name, bm.ID, len(bm.Results))
			}
		}
		b.WriteString(readmeFooter)
	})

	path := filepath.Join(outDir, "README.md")
	if err := os.WriteFile(path, stringpool.StringToBytes(readme), 0o644); err != nil { //nolint:gosec // dashboard output is public
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write README.md").WithDetail("path", path)
	}
	return nil
}

const readmeHeader = "# Performance Dashboard\n" +
	"\n" +
	"This dashboard displays benchmark results produced by `perfbible bench`.\n" +
	"\n" +
	"## How It Works\n" +
	"\n" +
	"1. Benchmarks are run with `perfbible bench`, which drives `testing.Benchmark`\n" +
	"2. Results are stored as JSON, one file per benchmark group\n" +
	"3. `perfbible dashboard` collects them and this page renders them with Chart.js\n"

const readmeFooter = "\n## Local Development\n" +
	"\n" +
	"Serve the directory with any static file server:\n" +
	"\n" +
	"```bash\n" +
	"python3 -m http.server 8000\n" +
	"open http://localhost:8000/\n" +
	"```\n" +
	"\n" +
	"## Data Structure\n" +
	"\n" +
	"`data/benchmarks.json` is an array of result sets:\n" +
	"\n" +
	"```json\n" +
	"{\n" +
	"  \"id\": \"benchmark-id\",\n" +
	"  \"name\": \"Benchmark Name\",\n" +
	"  \"results\": [\n" +
	"    {\n" +
	"      \"name\": \"test_name\",\n" +
	"      \"mean\": 123.45,\n" +
	"      \"unit\": \"ns\",\n" +
	"      \"throughput\": 1000000\n" +
	"    }\n" +
	"  ]\n" +
	"}\n" +
	"```\n"
