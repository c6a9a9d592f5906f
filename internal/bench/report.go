package bench

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ajitpratap0/perfbible/pkg/errors"
	perfjson "github.com/ajitpratap0/perfbible/pkg/json"
)

// Estimate is a measured value and its unit.
type Estimate struct {
	PointEstimate float64 `json:"point_estimate"`
	Unit          string  `json:"unit"`
}

// Result is one benchmark case. Name, Mean and Throughput are what the
// dashboard reads; the rest is kept for humans and later tooling.
type Result struct {
	Name       string    `json:"name"`
	Mean       *Estimate `json:"mean,omitempty"`
	Throughput *float64  `json:"throughput,omitempty"`

	Variant        string  `json:"variant"`
	Size           int     `json:"size"`
	InputBytes     int     `json:"input_bytes"`
	Iterations     int     `json:"iterations"`
	BytesPerSecond float64 `json:"bytes_per_second"`
	BytesPerOp     int64   `json:"bytes_per_op"`
	AllocsPerOp    int64   `json:"allocs_per_op"`
}

// NsPerOp returns the mean in nanoseconds, or 0 when unset.
func (r Result) NsPerOp() float64 {
	if r.Mean == nil {
		return 0
	}
	return r.Mean.PointEstimate
}

// Host describes the machine a report was produced on.
type Host struct {
	Hostname    string `json:"hostname,omitempty"`
	OS          string `json:"os"`
	Platform    string `json:"platform,omitempty"`
	Arch        string `json:"arch"`
	CPUModel    string `json:"cpu_model,omitempty"`
	LogicalCPUs int    `json:"logical_cpus"`
	MemoryTotal uint64 `json:"memory_total_bytes,omitempty"`
	GoVersion   string `json:"go_version"`
}

// Report is the result file of one benchmark group.
type Report struct {
	Group      string    `json:"group"`
	Generator  string    `json:"generator"`
	Timestamp  time.Time `json:"timestamp"`
	Benchmarks []Result  `json:"benchmarks"`
	Host       Host      `json:"host"`
}

// Path returns the result file location inside dir.
func (r *Report) Path(dir string) string {
	return filepath.Join(dir, r.Group+".json")
}

// Save writes the report to <dir>/<group>.json and returns the path.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // result directories are shared
		return "", errors.Wrap(err, errors.ErrorTypeFile, "failed to create results directory").
			WithDetail("dir", dir)
	}
	path := r.Path(dir)
	if err := perfjson.WriteFile(path, r); err != nil {
		return "", err
	}
	return path, nil
}

// LoadReport reads a report written by Save.
func LoadReport(path string) (*Report, error) {
	var r Report
	if err := perfjson.ReadFile(path, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Speedup is how many times faster a variant ran than the baseline at one
// size.
type Speedup struct {
	Variant string
	Size    int
	Factor  float64
}

// Speedups compares every variant against baseline, ordered by size then
// variant. Sizes without a baseline measurement are skipped.
func (r *Report) Speedups(baseline string) []Speedup {
	base := make(map[int]float64)
	for _, res := range r.Benchmarks {
		if res.Variant == baseline && res.NsPerOp() > 0 {
			base[res.Size] = res.NsPerOp()
		}
	}

	var out []Speedup
	for _, res := range r.Benchmarks {
		b, ok := base[res.Size]
		if !ok || res.Variant == baseline || res.NsPerOp() == 0 {
			continue
		}
		out = append(out, Speedup{Variant: res.Variant, Size: res.Size, Factor: b / res.NsPerOp()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size < out[j].Size
		}
		return out[i].Variant < out[j].Variant
	})
	return out
}

// Print writes the report in a human-readable format
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 80))
	fmt.Fprintf(w, "%s\n", strings.ToUpper(strings.ReplaceAll(r.Group, "_", " ")))
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 80))
	fmt.Fprintf(w, "Generated: %s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "Host: %s/%s, %d CPUs %s\n\n", r.Host.OS, r.Host.Arch, r.Host.LogicalCPUs, r.Host.CPUModel)

	fmt.Fprintf(w, "%-24s %-16s %-14s %-12s %-10s\n", "Benchmark", "ns/op", "MB/s", "B/op", "allocs/op")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 80))
	for _, res := range r.Benchmarks {
		fmt.Fprintf(w, "%-24s %-16.0f %-14.1f %-12d %-10d\n",
			res.Name,
			res.NsPerOp(),
			res.BytesPerSecond/1e6,
			res.BytesPerOp,
			res.AllocsPerOp)
	}

	if speedups := r.Speedups(VariantNaive); len(speedups) > 0 {
		fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 80))
		fmt.Fprintf(w, "SPEEDUP VS %s\n", strings.ToUpper(VariantNaive))
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", 80))
		for _, s := range speedups {
			fmt.Fprintf(w, "  - %s/%d: %.2fx\n", s.Variant, s.Size, s.Factor)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 80))
}
