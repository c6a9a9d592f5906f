package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/perfbible/pkg/errors"
	"github.com/ajitpratap0/perfbible/pkg/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), append([]string{"--log-level", "error"}, args...), &out, &errOut)
	return out.String(), err
}

func TestParse_LogsRunContext(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "perfbible.log")
	cfgPath := testutil.WriteFile(t, filepath.Join(dir, "perfbible.yaml"), `
log:
  level: info
  encoding: json
  output_paths: ["`+logPath+`"]
`)

	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"--config", cfgPath, "parse", testutil.LogFile(t, 3)}, &out, &errOut)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	logs := string(data)
	assert.Contains(t, logs, `"message":"log parsed"`)
	assert.Contains(t, logs, `"component":"parse"`)
	assert.Contains(t, logs, `"run_id":"`)
	assert.Contains(t, logs, `"timer":"parse"`)
	assert.Contains(t, logs, `"elapsed":`)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "perfbible v"+version)
	assert.Contains(t, out, "OS/Arch:")
}

func TestParse_AllVariantsAgree(t *testing.T) {
	path := testutil.LogFile(t, 8)

	var outputs []string
	for _, variant := range []string{"naive", "optimized", "pooled"} {
		out, err := execute(t, "parse", path, "--variant", variant)
		require.NoError(t, err, variant)
		outputs = append(outputs, out)
	}

	assert.Contains(t, outputs[0], "Entries: 8\n")
	assert.Contains(t, outputs[0], "Metadata pairs: 13\n")
	assert.Contains(t, outputs[0], "  INFO     6\n")
	assert.Contains(t, outputs[0], "  ERROR    2\n")
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[0], outputs[2])
}

func TestParse_Errors(t *testing.T) {
	path := testutil.LogFile(t, 2)

	_, err := execute(t, "parse", path, "--variant", "simd")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = execute(t, "parse", path, "--variant", "pooled", "--capacity", "0")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = execute(t, "parse", filepath.Join(t.TempDir(), "missing.log"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	_, err = execute(t, "parse")
	assert.Error(t, err)
}

func TestParse_PooledMetricsFile(t *testing.T) {
	path := testutil.LogFile(t, 5)
	metricsFile := filepath.Join(t.TempDir(), "perfbible.prom")

	_, err := execute(t, "parse", path, "--variant", "pooled", "--metrics-file", metricsFile)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `perfbible_pool_allocations_total{pool="parse"} 5`)
	assert.Contains(t, string(data), `perfbible_pool_in_use{pool="parse"} 0`)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("PERFBIBLE_LOG_LEVEL", "loud")

	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"version"}, &out, &errOut)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "results")
	require.NoError(t, os.MkdirAll(in, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "log_parsing.json"),
		[]byte(`{"benchmarks":[{"name":"naive/10","mean":{"point_estimate":10,"unit":"ns"}}]}`), 0o644))

	cfgPath := filepath.Join(dir, "perfbible.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
dashboard:
  input_dirs: ["`+in+`"]
  output_dir: "`+filepath.Join(dir, "from-file")+`"
  compression: zstd
`), 0o644))

	out, err := execute(t, "--config", cfgPath, "dashboard", "--output", filepath.Join(dir, "from-flag"), "--compress", "lz4")
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 1 of 1 benchmark files")

	assert.FileExists(t, filepath.Join(dir, "from-flag", "index.html"))
	assert.FileExists(t, filepath.Join(dir, "from-flag", "data", "benchmarks.json.lz4"))
	assert.NoDirExists(t, filepath.Join(dir, "from-file"))
}

func TestInvalidConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("bench:\n  sizes: [0]\n"), 0o644))

	_, err := execute(t, "--config", cfgPath, "version")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestBench_WritesResultsAndMetrics(t *testing.T) {
	if testing.Short() {
		t.Skip("runs real benchmarks")
	}
	dir := t.TempDir()
	results := filepath.Join(dir, "results")
	metricsFile := filepath.Join(dir, "bench.prom")

	out, err := execute(t, "bench",
		"--sizes", "5",
		"--variants", "naive,pooled",
		"--benchtime", "5ms",
		"--results", results,
		"--metrics-file", metricsFile,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "pooled/5")
	assert.Contains(t, out, "SPEEDUP VS NAIVE")
	assert.FileExists(t, filepath.Join(results, "log_parsing.json"))

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "perfbible_bench_ns_per_op")
	assert.Contains(t, string(data), `perfbible_pool_allocations_total{pool="bench"}`)

	out, err = execute(t, "dashboard", "--input", results, "--output", filepath.Join(dir, "dashboard"))
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 1 of 1")
}

func TestParse_Mmap(t *testing.T) {
	path := testutil.LogFile(t, 20)

	plain, err := execute(t, "parse", path)
	require.NoError(t, err)
	for _, variant := range []string{"naive", "optimized", "pooled"} {
		mapped, err := execute(t, "parse", path, "--mmap", "--variant", variant)
		require.NoError(t, err, variant)
		assert.Equal(t, plain, mapped, variant)
	}
}

func TestProfile_WritesProfiles(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "profile",
		"--variant", "pooled",
		"--size", "50",
		"--duration", "50ms",
		"--profile-dir", dir,
		"--types", "mem,goroutine",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "iterations of pooled/50")
	assert.FileExists(t, filepath.Join(dir, "mem.prof"))
	assert.FileExists(t, filepath.Join(dir, "goroutine.prof"))
	assert.NoFileExists(t, filepath.Join(dir, "cpu.prof"))
}

func TestProfile_Validation(t *testing.T) {
	_, err := execute(t, "profile", "--types", "disk", "--profile-dir", t.TempDir())
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = execute(t, "profile", "--variant", "simd", "--profile-dir", t.TempDir())
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestParseProfileTypes(t *testing.T) {
	assert.Equal(t, []string{"cpu", "memory", "block", "mutex", "goroutine"}, parseProfileTypes("all"))
	assert.Equal(t, []string{"memory", "cpu"}, parseProfileTypes(" mem, cpu ,memory,disk"))
	assert.Empty(t, parseProfileTypes(""))
}
