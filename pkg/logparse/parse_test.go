package logparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/perfbible/internal/benchdata"
)

func TestParse_Fields(t *testing.T) {
	entries := Parse("2024-01-01T12:00:00|ERROR|disk full|host=db1|retry=3\n")
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "2024-01-01T12:00:00", e.Timestamp)
	assert.Equal(t, "ERROR", e.Level)
	assert.Equal(t, "disk full", e.Message)
	assert.Equal(t, []Pair{{"host", "db1"}, {"retry", "3"}}, e.Metadata)

	v, ok := e.Get("retry")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	_, ok = e.Get("missing")
	assert.False(t, ok)
}

func TestParse_FirstMetadataPairKept(t *testing.T) {
	entries := Parse("ts|INFO|msg|only=one")
	require.Len(t, entries, 1)
	assert.Equal(t, []Pair{{"only", "one"}}, entries[0].Metadata)
}

func TestParse_LineRules(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []Entry
	}{
		{"empty input", "", []Entry{}},
		{"too few fields", "ts|INFO\nplain text\n", []Entry{}},
		{"blank lines skipped", "\n\nts|INFO|m\n\n", []Entry{{Timestamp: "ts", Level: "INFO", Message: "m"}}},
		{"crlf", "ts|INFO|m\r\nts2|WARN|n\r\n", []Entry{
			{Timestamp: "ts", Level: "INFO", Message: "m"},
			{Timestamp: "ts2", Level: "WARN", Message: "n"},
		}},
		{"no trailing newline", "ts|INFO|m", []Entry{{Timestamp: "ts", Level: "INFO", Message: "m"}}},
		{"empty message", "ts|INFO|", []Entry{{Timestamp: "ts", Level: "INFO"}}},
		{"items without equals ignored", "ts|INFO|m|noise||k=v", []Entry{
			{Timestamp: "ts", Level: "INFO", Message: "m", Metadata: []Pair{{"k", "v"}}},
		}},
		{"trailing pipe", "ts|INFO|m|", []Entry{{Timestamp: "ts", Level: "INFO", Message: "m"}}},
		{"equals splits once", "ts|INFO|m|url=a=b", []Entry{
			{Timestamp: "ts", Level: "INFO", Message: "m", Metadata: []Pair{{"url", "a=b"}}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.input))
		})
	}
}

func TestParse_NoMetadataIsNil(t *testing.T) {
	entries := Parse("ts|INFO|m\n")
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Metadata)
}

func TestParseBytes_AliasesInput(t *testing.T) {
	buf := []byte("ts|INFO|m\n")
	entries := ParseBytes(buf)
	require.Len(t, entries, 1)

	buf[3] = 'X'
	assert.Equal(t, "XNFO", entries[0].Level)
}

func TestParseNaive_OwnsMemory(t *testing.T) {
	buf := []byte("ts|INFO|m|k=v\n")
	records := ParseNaive(string(buf))
	require.Len(t, records, 1)

	assert.Equal(t, Record{
		Timestamp: "ts",
		Level:     "INFO",
		Message:   "m",
		Metadata:  map[string]string{"k": "v"},
	}, records[0])
}

func TestParseNaive_EmptyMetadataMap(t *testing.T) {
	records := ParseNaive("ts|INFO|m")
	require.Len(t, records, 1)
	assert.NotNil(t, records[0].Metadata)
	assert.Empty(t, records[0].Metadata)

	assert.Nil(t, ParseNaive("nothing here"))
}

func TestVariantsAgree(t *testing.T) {
	for _, input := range []string{benchdata.Logs(500), benchdata.UniformLogs(50)} {
		naive := ParseNaive(input)
		optimized := Parse(input)
		require.Len(t, optimized, len(naive))

		var pooled []Record
		p := NewParser(1)
		n, err := p.ParseInto(input, func(e *Entry) error {
			pooled = append(pooled, e.Record())
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, len(naive), n)
		require.NoError(t, p.Close())

		for i := range naive {
			assert.Equal(t, naive[i], optimized[i].Record(), "line %d", i)
			assert.Equal(t, naive[i], pooled[i], "line %d", i)
		}
	}
}

func TestRecord_EntryRoundTrip(t *testing.T) {
	r := ParseNaive("t|INFO|m|b=2|a=1")[0]
	e := r.Entry()
	assert.Equal(t, []Pair{{"a", "1"}, {"b", "2"}}, e.Metadata)
	assert.Equal(t, r, e.Record())

	bare := ParseNaive("t|INFO|m")[0]
	assert.Nil(t, bare.Entry().Metadata)
}

func TestParse_MixedDataMetadataCounts(t *testing.T) {
	entries := Parse(benchdata.Logs(10))
	require.Len(t, entries, 10)
	for i, e := range entries {
		assert.Len(t, e.Metadata, i%5, "line %d", i)
	}
}

func TestSummary(t *testing.T) {
	s := NewSummary()
	for _, e := range Parse(benchdata.Logs(8)) {
		e := e
		s.Add(&e)
	}

	assert.Equal(t, 8, s.Entries)
	assert.Equal(t, 0+1+2+3+4+0+1+2, s.MetadataPairs)
	assert.Equal(t, map[string]int{"ERROR": 2, "INFO": 6}, s.Levels)
	assert.Equal(t, []string{"INFO", "ERROR"}, s.LevelNames())
}

func TestSummary_SurvivesInputMutation(t *testing.T) {
	buf := []byte("ts|CUSTOM|m\n")
	s := NewSummary()
	for _, e := range ParseBytes(buf) {
		e := e
		s.Add(&e)
	}
	buf[3] = 'X'
	assert.Equal(t, 1, s.Levels["CUSTOM"])
}

func TestSummary_RecordsMatchEntries(t *testing.T) {
	input := benchdata.Logs(12)

	fromEntries := NewSummary()
	for _, e := range Parse(input) {
		e := e
		fromEntries.Add(&e)
	}
	fromRecords := NewSummary()
	for _, r := range ParseNaive(input) {
		r := r
		fromRecords.AddRecord(&r)
	}

	assert.Equal(t, fromEntries.Entries, fromRecords.Entries)
	assert.Equal(t, fromEntries.MetadataPairs, fromRecords.MetadataPairs)
	assert.Equal(t, fromEntries.Levels, fromRecords.Levels)
}
