package dashboard

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ajitpratap0/perfbible/pkg/errors"
	perfjson "github.com/ajitpratap0/perfbible/pkg/json"
)

// reportMarker excludes rendered reports that share a results directory.
const reportMarker = "benchmark-report"

// Result is one benchmark case as shown on the dashboard.
type Result struct {
	Name       string   `json:"name"`
	Mean       float64  `json:"mean"`
	Unit       string   `json:"unit"`
	Throughput *float64 `json:"throughput"`
}

// Benchmark is the processed content of one result file.
type Benchmark struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Results []Result `json:"results"`
}

type rawFile struct {
	Benchmarks []rawResult `json:"benchmarks"`
}

type rawResult struct {
	Name       string   `json:"name"`
	Mean       *rawMean `json:"mean"`
	Throughput *float64 `json:"throughput"`
}

type rawMean struct {
	PointEstimate float64 `json:"point_estimate"`
	Unit          string  `json:"unit"`
}

// FindResults walks dirs for *.json files, skipping any path that contains
// "benchmark-report". Missing directories and unreadable entries are
// ignored. A file reachable from several dirs is returned once, at its
// first position.
func FindResults(dirs []string) []string {
	var files []string
	seen := make(map[string]struct{})

	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if filepath.Ext(path) != ".json" || strings.Contains(path, reportMarker) {
				return nil
			}
			clean := filepath.Clean(path)
			if _, dup := seen[clean]; dup {
				return nil
			}
			seen[clean] = struct{}{}
			files = append(files, path)
			return nil
		})
	}
	return files
}

// Process decodes the result file at path and copies it unchanged to
// dataDir/<stem>.json.
func Process(path, dataDir string) (Benchmark, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: paths come from FindResults
	if err != nil {
		return Benchmark{}, errors.Wrap(err, errors.ErrorTypeFile, "failed to read result file").
			WithDetail("path", path)
	}

	var raw rawFile
	if err := perfjson.Unmarshal(data, &raw); err != nil {
		return Benchmark{}, errors.Wrap(err, errors.ErrorTypeData, "failed to parse result file").
			WithDetail("path", path)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	bm := Benchmark{
		ID:      benchmarkID(stem),
		Name:    displayName(stem),
		Results: make([]Result, 0, len(raw.Benchmarks)),
	}
	for _, r := range raw.Benchmarks {
		res := Result{Name: r.Name, Unit: "ns", Throughput: r.Throughput}
		if r.Mean != nil {
			res.Mean = r.Mean.PointEstimate
			if r.Mean.Unit != "" {
				res.Unit = r.Mean.Unit
			}
		}
		bm.Results = append(bm.Results, res)
	}

	dest := filepath.Join(dataDir, stem+".json")
	if err := os.WriteFile(dest, data, 0o644); err != nil { //nolint:gosec // dashboard output is public
		return Benchmark{}, errors.Wrap(err, errors.ErrorTypeFile, "failed to copy result file").
			WithDetail("path", dest)
	}
	return bm, nil
}

// displayName turns "log_parsing" into "Log Parsing".
func displayName(stem string) string {
	words := strings.Fields(strings.ReplaceAll(stem, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func benchmarkID(stem string) string {
	return strings.ReplaceAll(strings.ToLower(stem), " ", "-")
}
