package json

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/perfbible/pkg/errors"
)

type estimate struct {
	PointEstimate float64 `json:"point_estimate"`
	Unit          string  `json:"unit"`
}

type result struct {
	Name       string    `json:"name"`
	Mean       *estimate `json:"mean,omitempty"`
	Throughput []string  `json:"throughput"`
}

func sampleResults(n int) []result {
	out := make([]result, n)
	for i := range out {
		out[i] = result{
			Name:       "parse/<optimized>",
			Mean:       &estimate{PointEstimate: float64(i) * 1.5, Unit: "ns"},
			Throughput: []string{"lines"},
		}
	}
	return out
}

func TestMarshal_MatchesStdlib(t *testing.T) {
	in := sampleResults(3)

	got, err := Marshal(in)
	require.NoError(t, err)
	want, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	var back []result
	require.NoError(t, Unmarshal(got, &back))
	assert.Equal(t, in, back)
}

func TestMarshalToWriter_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarshalToWriter(&buf, sampleResults(1)[0], ""))
	assert.Contains(t, buf.String(), "<optimized>")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestMarshalToWriter_Indent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarshalToWriter(&buf, map[string]int{"a": 1}, "  "))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	in := sampleResults(2)
	require.NoError(t, WriteFile(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))

	var back []result
	require.NoError(t, ReadFile(path, &back))
	assert.Equal(t, in, back)
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	err := ReadFile(filepath.Join(dir, "missing.json"), &struct{}{})
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	err = ReadFile(bad, &struct{}{})
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestPutBuffer_DropsLargeBuffers(t *testing.T) {
	buf := GetBuffer()
	buf.Grow(maxPooledBuffer * 2)
	PutBuffer(buf)

	next := GetBuffer()
	assert.Zero(t, next.Len())
	PutBuffer(next)
}

func BenchmarkStdMarshal(b *testing.B) {
	records := sampleResults(100)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := json.Marshal(records); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGoccyMarshal(b *testing.B) {
	records := sampleResults(100)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Marshal(records); err != nil {
			b.Fatal(err)
		}
	}
}
