package logparse

import (
	"strings"

	stringpool "github.com/ajitpratap0/perfbible/pkg/strings"
)

// ParseNaive parses input the straightforward way: split, copy, map.
func ParseNaive(input string) []Record {
	var records []Record
	for input != "" {
		var line string
		line, input = nextLine(input)
		if r, ok := parseRecord(line); ok {
			records = append(records, r)
		}
	}
	return records
}

func parseRecord(line string) (Record, bool) {
	parts := strings.Split(line, "|")
	if len(parts) < 3 {
		return Record{}, false
	}

	metadata := make(map[string]string)
	for _, item := range parts[3:] {
		if key, value, ok := strings.Cut(item, "="); ok {
			metadata[stringpool.Clone(key)] = stringpool.Clone(value)
		}
	}

	return Record{
		Timestamp: stringpool.Clone(parts[0]),
		Level:     stringpool.Clone(parts[1]),
		Message:   stringpool.Clone(parts[2]),
		Metadata:  metadata,
	}, true
}
