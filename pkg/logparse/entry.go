package logparse

import (
	"slices"
	"strings"

	stringpool "github.com/ajitpratap0/perfbible/pkg/strings"
)

// Pair is one metadata item.
type Pair struct {
	Key   string
	Value string
}

// Entry is a parsed line whose fields may alias the parsed input.
type Entry struct {
	Timestamp string
	Level     string
	Message   string
	// Metadata is nil when the line has no metadata fields.
	Metadata []Pair
}

// Get returns the value of the first metadata pair named key.
func (e *Entry) Get(key string) (string, bool) {
	for _, p := range e.Metadata {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Record copies the entry into an owned Record. Later pairs win on
// duplicate keys.
func (e *Entry) Record() Record {
	md := make(map[string]string, len(e.Metadata))
	for _, p := range e.Metadata {
		md[stringpool.Clone(p.Key)] = stringpool.Clone(p.Value)
	}
	return Record{
		Timestamp: stringpool.Clone(e.Timestamp),
		Level:     stringpool.Clone(e.Level),
		Message:   stringpool.Clone(e.Message),
		Metadata:  md,
	}
}

func (e *Entry) reset() {
	e.Timestamp = ""
	e.Level = ""
	e.Message = ""
	clear(e.Metadata)
	e.Metadata = e.Metadata[:0]
}

// Record is a parsed line that owns its memory.
type Record struct {
	Timestamp string
	Level     string
	Message   string
	Metadata  map[string]string
}

// Entry converts the record, with metadata sorted by key. The result
// aliases the record's strings.
func (r *Record) Entry() Entry {
	e := Entry{Timestamp: r.Timestamp, Level: r.Level, Message: r.Message}
	if len(r.Metadata) == 0 {
		return e
	}
	e.Metadata = make([]Pair, 0, len(r.Metadata))
	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		e.Metadata = append(e.Metadata, Pair{Key: k, Value: r.Metadata[k]})
	}
	return e
}

// nextLine splits off the first line of s, dropping the '\n' and a
// trailing '\r'.
func nextLine(s string) (line, rest string) {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		line, rest = s[:i], s[i+1:]
	} else {
		line = s
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, rest
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if s[len(s)-1] != '\n' {
		n++
	}
	return n
}
