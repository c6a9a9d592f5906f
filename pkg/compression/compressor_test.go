package compression

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/perfbible/pkg/errors"
)

var sample = []byte(strings.Repeat(`{"name":"Log Parsing","mean":{"point_estimate":1234.5,"unit":"ns"}}`, 64))

func TestCompressor_RoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{None, LZ4, Zstd} {
		for _, level := range []Level{Fastest, Default, Better, Best} {
			t.Run(string(alg), func(t *testing.T) {
				c, err := NewCompressor(&Config{Algorithm: alg, Level: level})
				require.NoError(t, err)
				assert.Equal(t, alg, c.Algorithm())
				assert.Equal(t, level, c.Level())

				compressed, err := c.Compress(sample)
				require.NoError(t, err)
				if alg != None {
					assert.Less(t, len(compressed), len(sample))
				}

				out, err := c.Decompress(compressed)
				require.NoError(t, err)
				assert.Equal(t, sample, out)
			})
		}
	}
}

func TestCompressor_Stream(t *testing.T) {
	for _, alg := range []Algorithm{None, LZ4, Zstd} {
		t.Run(string(alg), func(t *testing.T) {
			c, err := NewCompressor(&Config{Algorithm: alg, Level: Default})
			require.NoError(t, err)

			var compressed bytes.Buffer
			require.NoError(t, c.CompressStream(&compressed, bytes.NewReader(sample)))

			var out bytes.Buffer
			require.NoError(t, c.DecompressStream(&out, &compressed))
			assert.Equal(t, sample, out.Bytes())
		})
	}
}

func TestCompressor_EmptyInput(t *testing.T) {
	for _, alg := range []Algorithm{None, LZ4} {
		out, err := Compress(alg, nil)
		require.NoError(t, err)
		back, err := Decompress(alg, out)
		require.NoError(t, err)
		assert.Empty(t, back)
	}
}

func TestNewCompressor_Defaults(t *testing.T) {
	c, err := NewCompressor(nil)
	require.NoError(t, err)
	assert.Equal(t, Zstd, c.Algorithm())

	_, err = NewCompressor(&Config{Algorithm: "snappy"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]Algorithm{
		"":      None,
		"none":  None,
		"ZSTD":  Zstd,
		" lz4 ": LZ4,
	}
	for in, want := range cases {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseAlgorithm("gzip")
	assert.Error(t, err)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".zst", Extension(Zstd))
	assert.Equal(t, ".lz4", Extension(LZ4))
	assert.Equal(t, "", Extension(None))
}

func TestDecompress_CorruptInput(t *testing.T) {
	_, err := Decompress(Zstd, []byte("not zstd"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func BenchmarkCompress(b *testing.B) {
	for _, alg := range []Algorithm{LZ4, Zstd} {
		b.Run(string(alg), func(b *testing.B) {
			b.SetBytes(int64(len(sample)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Compress(alg, sample); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
