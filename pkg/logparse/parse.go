package logparse

import (
	"strings"

	stringpool "github.com/ajitpratap0/perfbible/pkg/strings"
)

// Parse returns one Entry per valid line. Entry fields alias input.
func Parse(input string) []Entry {
	entries := make([]Entry, 0, countLines(input))
	for input != "" {
		var line string
		line, input = nextLine(input)

		var e Entry
		if parseEntry(line, &e) {
			entries = append(entries, e)
		}
	}
	return entries
}

// ParseBytes is Parse over a byte buffer. Entry fields alias input, which
// must not be modified while the entries are in use.
func ParseBytes(input []byte) []Entry {
	return Parse(stringpool.BytesToString(input))
}

// parseEntry fills e from line, appending metadata to e.Metadata. It
// reports false for lines with fewer than three fields.
func parseEntry(line string, e *Entry) bool {
	timestamp, rest, ok := strings.Cut(line, "|")
	if !ok {
		return false
	}
	level, rest, ok := strings.Cut(rest, "|")
	if !ok {
		return false
	}
	message, rest, more := strings.Cut(rest, "|")

	e.Timestamp = timestamp
	e.Level = level
	e.Message = message

	for more {
		var item string
		item, rest, more = strings.Cut(rest, "|")
		if key, value, ok := strings.Cut(item, "="); ok {
			e.Metadata = append(e.Metadata, Pair{Key: key, Value: value})
		}
	}
	return true
}
