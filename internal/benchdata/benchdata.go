// Package benchdata generates deterministic log input for benchmarks.
package benchdata

import (
	"strconv"
	"strings"
)

// Logs returns lines of mixed shape: every fourth line is an ERROR, and
// line i carries i%5 metadata pairs key{j}=value{i}.
func Logs(lines int) string {
	var b strings.Builder
	b.Grow(lines * 100)

	for i := 0; i < lines; i++ {
		b.WriteString("2024-01-01T12:00:")
		sec := i % 60
		if sec < 10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.Itoa(sec))
		if i%4 == 0 {
			b.WriteString("|ERROR")
		} else {
			b.WriteString("|INFO")
		}
		b.WriteString("|Request processed")

		value := strconv.Itoa(i)
		for j := 0; j < i%5; j++ {
			b.WriteString("|key")
			b.WriteString(strconv.Itoa(j))
			b.WriteString("=value")
			b.WriteString(value)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// UniformLogs returns identical ERROR lines with five metadata pairs that
// differ only in the retry counter.
func UniformLogs(lines int) string {
	var b strings.Builder
	b.Grow(lines * 110)

	for i := 0; i < lines; i++ {
		b.WriteString("2025-01-01T12:00:00|ERROR|Database connection failed|retry=")
		b.WriteString(strconv.Itoa(i))
		b.WriteString("|timeout=30|attempt=1|user=admin|ip=127.0.0.1\n")
	}
	return b.String()
}

// Generator returns the generator registered under name.
func Generator(name string) (func(int) string, bool) {
	switch name {
	case "mixed":
		return Logs, true
	case "uniform":
		return UniformLogs, true
	default:
		return nil, false
	}
}
