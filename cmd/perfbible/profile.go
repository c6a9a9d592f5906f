package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/perfbible/internal/benchdata"
	"github.com/ajitpratap0/perfbible/pkg/config"
	"github.com/ajitpratap0/perfbible/pkg/errors"
	"github.com/ajitpratap0/perfbible/pkg/logparse"
)

type profileOptions struct {
	Variant   string
	Size      int
	Duration  time.Duration
	OutputDir string
	Types     string
}

func (a *app) profileCmd() *cobra.Command {
	var opts profileOptions

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile a parser variant with pprof",
		Long: `Parse generated log data in a loop for the given duration and write pprof
profiles of the run.

Example:
  perfbible profile --variant pooled --size 10000 --duration 10s --types cpu,memory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runProfile(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Variant, "variant", config.VariantOptimized, "Parser variant (naive, optimized, pooled)")
	cmd.Flags().IntVar(&opts.Size, "size", 10_000, "Log lines per iteration")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 10*time.Second, "Profiling duration")
	cmd.Flags().StringVar(&opts.OutputDir, "profile-dir", "profiles", "Output directory for profiles")
	cmd.Flags().StringVar(&opts.Types, "types", "cpu,memory", "Profile types (cpu,memory,block,mutex,goroutine,all)")
	return cmd
}

func (a *app) runProfile(ctx context.Context, opts profileOptions) error {
	types := parseProfileTypes(opts.Types)
	if len(types) == 0 {
		return errors.Newf(errors.ErrorTypeValidation, "no known profile type in %q", opts.Types)
	}
	if opts.Size <= 0 || opts.Duration <= 0 {
		return errors.New(errors.ErrorTypeValidation, "size and duration must be positive")
	}
	work, done, err := profileWork(opts.Variant, benchdata.Logs(opts.Size))
	if err != nil {
		return err
	}
	defer func() { _ = done() }()

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil { //nolint:gosec // profiles are shared
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create profile directory").
			WithDetail("dir", opts.OutputDir)
	}

	var written []string
	if slices.Contains(types, "block") {
		runtime.SetBlockProfileRate(1)
		defer runtime.SetBlockProfileRate(0)
	}
	if slices.Contains(types, "mutex") {
		prev := runtime.SetMutexProfileFraction(1)
		defer runtime.SetMutexProfileFraction(prev)
	}

	var stopCPU func() error
	if slices.Contains(types, "cpu") {
		path := filepath.Join(opts.OutputDir, "cpu.prof")
		stopCPU, err = startCPUProfile(path)
		if err != nil {
			return err
		}
		written = append(written, path)
	}

	a.log.Info("profiling",
		zap.String("variant", opts.Variant),
		zap.Int("size", opts.Size),
		zap.Duration("duration", opts.Duration),
		zap.Strings("types", types))

	runCtx, cancel := context.WithTimeout(ctx, opts.Duration)
	iterations := 0
	start := time.Now()
	for runCtx.Err() == nil {
		if err := work(); err != nil {
			cancel()
			if stopCPU != nil {
				_ = stopCPU()
			}
			return err
		}
		iterations++
	}
	elapsed := time.Since(start)
	cancel()

	if stopCPU != nil {
		if err := stopCPU(); err != nil {
			return err
		}
	}

	for _, name := range types {
		var path string
		switch name {
		case "memory":
			path = filepath.Join(opts.OutputDir, "mem.prof")
			runtime.GC()
			err = writeProfile("heap", path)
		case "block", "mutex", "goroutine":
			path = filepath.Join(opts.OutputDir, name+".prof")
			err = writeProfile(name, path)
		default:
			continue
		}
		if err != nil {
			return err
		}
		written = append(written, path)
	}

	fmt.Fprintf(a.out, "Ran %d iterations of %s/%d in %v\n", iterations, opts.Variant, opts.Size, elapsed.Round(time.Millisecond))
	for _, path := range written {
		fmt.Fprintf(a.out, "  %s\n", path)
	}
	return nil
}

// profileWork returns one iteration of the variant over input and a func
// that releases what the variant holds.
func profileWork(variant, input string) (func() error, func() error, error) {
	none := func() error { return nil }

	switch variant {
	case config.VariantNaive:
		return func() error {
			sink = len(logparse.ParseNaive(input))
			return nil
		}, none, nil
	case config.VariantOptimized:
		return func() error {
			sink = len(logparse.Parse(input))
			return nil
		}, none, nil
	case config.VariantPooled:
		parser := logparse.NewParser(1)
		return func() error {
			n, err := parser.Count(input)
			sink = n
			return err
		}, parser.Close, nil
	default:
		return nil, nil, errors.Newf(errors.ErrorTypeValidation, "unknown variant %q", variant)
	}
}

var sink int

func startCPUProfile(path string) (func() error, error) {
	f, err := os.Create(path) //nolint:gosec // G304: path from flags
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create CPU profile").WithDetail("path", path)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to start CPU profile")
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to close CPU profile").WithDetail("path", path)
		}
		return nil
	}, nil
}

// writeProfile writes a specific profile type to file
func writeProfile(name, path string) error {
	profile := pprof.Lookup(name)
	if profile == nil {
		return errors.Newf(errors.ErrorTypeInternal, "profile %s not found", name)
	}

	f, err := os.Create(path) //nolint:gosec // G304: path from flags
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create profile").WithDetail("path", path)
	}
	err = profile.WriteTo(f, 0)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write profile").WithDetail("path", path)
	}
	return nil
}

// parseProfileTypes parses the profile types string
func parseProfileTypes(typesStr string) []string {
	if strings.TrimSpace(typesStr) == "all" {
		return []string{"cpu", "memory", "block", "mutex", "goroutine"}
	}

	parts := strings.Split(typesStr, ",")
	types := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "cpu", "memory", "mem", "block", "mutex", "goroutine":
			if part == "mem" {
				part = "memory"
			}
			if !slices.Contains(types, part) {
				types = append(types, part)
			}
		}
	}

	return types
}
