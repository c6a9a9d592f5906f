package logparse

import (
	"sort"

	stringpool "github.com/ajitpratap0/perfbible/pkg/strings"
)

// Summary aggregates parsed entries.
type Summary struct {
	Entries       int
	MetadataPairs int
	Levels        map[string]int

	intern *stringpool.InternPool
}

// NewSummary returns an empty summary. Level names are interned, so the
// summary stays valid after the parsed input is gone.
func NewSummary() *Summary {
	return &Summary{
		Levels: make(map[string]int),
		intern: stringpool.NewInternPool(1024, "ERROR", "WARN", "INFO", "DEBUG"),
	}
}

// Add counts one entry.
func (s *Summary) Add(e *Entry) {
	s.Entries++
	s.MetadataPairs += len(e.Metadata)
	s.Levels[s.intern.Intern(e.Level)]++
}

// AddRecord counts one record from ParseNaive.
func (s *Summary) AddRecord(r *Record) {
	s.Entries++
	s.MetadataPairs += len(r.Metadata)
	s.Levels[s.intern.Intern(r.Level)]++
}

// LevelNames returns the seen levels sorted by descending count, then name.
func (s *Summary) LevelNames() []string {
	names := make([]string, 0, len(s.Levels))
	for name := range s.Levels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := s.Levels[names[i]], s.Levels[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names
}
