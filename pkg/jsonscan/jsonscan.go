// Package jsonscan scans flat JSON objects in a single pass without
// copying. Keys and string values are substrings of the input; escape
// sequences are kept verbatim. Nested objects and arrays are rejected.
//
// Use it on hot paths that read small, known-flat documents. Anything else
// belongs to pkg/json.
package jsonscan

import (
	"strconv"
)

// Kind is the type of a scanned value.
type Kind uint8

const (
	String Kind = iota
	Number
	Bool
	Null
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Null:
		return "null"
	default:
		return "unknown"
	}
}

// Value is one scanned value. Only the field matching Kind is set.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
}

// Pair is a key and its value in document order.
type Pair struct {
	Key   string
	Value Value
}

// Object is a scanned flat object.
type Object struct {
	pairs []Pair
}

// Len returns the number of pairs.
func (o *Object) Len() int {
	return len(o.pairs)
}

// Pairs returns the pairs in document order. The slice is owned by o.
func (o *Object) Pairs() []Pair {
	return o.pairs
}

// Lookup returns the value of the first pair named key.
func (o *Object) Lookup(key string) (Value, bool) {
	for i := range o.pairs {
		if o.pairs[i].Key == key {
			return o.pairs[i].Value, true
		}
	}
	return Value{}, false
}

// ParseObject scans input as a flat JSON object.
func ParseObject(input string) (Object, bool) {
	var o Object
	ok := ParseObjectInto(input, &o)
	return o, ok
}

// ParseObjectInto scans input into o, reusing its pair storage. On failure
// o is left empty.
func ParseObjectInto(input string, o *Object) bool {
	clear(o.pairs)
	o.pairs = o.pairs[:0]

	s := scanner{in: input}
	if !s.object(o) {
		clear(o.pairs)
		o.pairs = o.pairs[:0]
		return false
	}
	return true
}

type scanner struct {
	in  string
	pos int
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.in) {
		switch s.in[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) peek() (byte, bool) {
	if s.pos >= len(s.in) {
		return 0, false
	}
	return s.in[s.pos], true
}

func (s *scanner) object(o *Object) bool {
	s.skipSpace()
	if c, ok := s.peek(); !ok || c != '{' {
		return false
	}
	s.pos++

	s.skipSpace()
	if c, ok := s.peek(); ok && c == '}' {
		s.pos++
		return s.end()
	}

	for {
		s.skipSpace()
		key, ok := s.str()
		if !ok {
			return false
		}

		s.skipSpace()
		if c, ok := s.peek(); !ok || c != ':' {
			return false
		}
		s.pos++
		s.skipSpace()

		v, ok := s.value()
		if !ok {
			return false
		}
		o.pairs = append(o.pairs, Pair{Key: key, Value: v})

		s.skipSpace()
		c, ok := s.peek()
		if !ok {
			return false
		}
		s.pos++
		switch c {
		case ',':
			continue
		case '}':
			return s.end()
		default:
			return false
		}
	}
}

// end accepts only trailing whitespace.
func (s *scanner) end() bool {
	s.skipSpace()
	return s.pos == len(s.in)
}

// str scans a quoted string and returns its raw contents.
func (s *scanner) str() (string, bool) {
	if c, ok := s.peek(); !ok || c != '"' {
		return "", false
	}
	start := s.pos + 1
	for i := start; i < len(s.in); i++ {
		switch s.in[i] {
		case '\\':
			i++
		case '"':
			s.pos = i + 1
			return s.in[start:i], true
		}
	}
	return "", false
}

func (s *scanner) value() (Value, bool) {
	c, ok := s.peek()
	if !ok {
		return Value{}, false
	}

	switch {
	case c == '"':
		str, ok := s.str()
		return Value{Kind: String, Str: str}, ok
	case c == 't':
		return Value{Kind: Bool, Bool: true}, s.literal("true")
	case c == 'f':
		return Value{Kind: Bool}, s.literal("false")
	case c == 'n':
		return Value{Kind: Null}, s.literal("null")
	case c == '-' || (c >= '0' && c <= '9'):
		return s.number()
	default:
		// '{', '[' and anything else
		return Value{}, false
	}
}

func (s *scanner) literal(word string) bool {
	end := s.pos + len(word)
	if end > len(s.in) || s.in[s.pos:end] != word {
		return false
	}
	s.pos = end
	return true
}

func (s *scanner) number() (Value, bool) {
	start := s.pos
	for s.pos < len(s.in) {
		c := s.in[s.pos]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			s.pos++
			continue
		}
		break
	}
	n, err := strconv.ParseFloat(s.in[start:s.pos], 64)
	if err != nil {
		return Value{}, false
	}
	return Value{Kind: Number, Num: n}, true
}
