package logparse

import (
	"github.com/ajitpratap0/perfbible/pkg/errors"
	"github.com/ajitpratap0/perfbible/pkg/pool"
)

// Parser parses lines into Entries borrowed from a fixed pool. A Parser is
// not safe for concurrent use.
type Parser struct {
	pool *pool.Pool[Entry]
}

// NewParser creates a parser backed by capacity pooled entries. Extra
// options, such as pool.WithObserver, are applied after the reset hook.
// Sequential parsing needs a capacity of one.
func NewParser(capacity int, opts ...pool.Option[Entry]) *Parser {
	opts = append([]pool.Option[Entry]{pool.WithReset((*Entry).reset)}, opts...)
	return &Parser{pool: pool.New[Entry](capacity, opts...)}
}

// ParseInto parses input and calls fn with each valid line. The Entry and
// its fields are only valid during the call; copy what must be kept, for
// example with Entry.Record. It returns the number of entries passed to fn
// and stops at the first error fn returns.
func (p *Parser) ParseInto(input string, fn func(*Entry) error) (int, error) {
	n := 0
	for input != "" {
		var line string
		line, input = nextLine(input)

		ok, err := p.parseLine(line, fn)
		if ok {
			n++
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Count parses input and returns the number of valid lines.
func (p *Parser) Count(input string) (int, error) {
	return p.ParseInto(input, func(*Entry) error { return nil })
}

func (p *Parser) parseLine(line string, fn func(*Entry) error) (bool, error) {
	g, ok := p.pool.Allocate()
	if !ok {
		return false, errors.New(errors.ErrorTypeExhausted, "no free entry in parser pool").
			WithDetail("capacity", p.pool.Cap())
	}
	defer g.Release()

	e := g.Emplace()
	if !parseEntry(line, e) {
		return false, nil
	}
	return true, fn(e)
}

// Stats returns the underlying pool statistics.
func (p *Parser) Stats() pool.Stats {
	return p.pool.Stats()
}

// Close releases the pooled entries. It reports entries still on loan,
// which can only happen if fn retained and released nothing.
func (p *Parser) Close() error {
	return p.pool.Close()
}
