// Package csvio reads and writes the CSV documents quicklog exchanges: the
// entry log, the tag catalog with its links, and the location log.
//
// The dialect is line oriented. A record never spans lines, fields that
// contain a comma or a double quote are quoted and quotes inside them are
// doubled.
package csvio

import (
	"fmt"
	"strings"
)

// ParseError describes a row that was skipped.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("csvio: line %d: %s", e.Line, e.Reason)
}

// Escape quotes value when it contains a comma or a double quote.
func Escape(value string) string {
	if !strings.ContainsAny(value, `,"`) {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// Quote always wraps value in quotes, doubling inner quotes.
func Quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// SplitLine splits one record into fields. Quotes toggle quoting, a doubled
// quote inside quotes is a literal quote, and commas only separate fields
// outside quotes.
func SplitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(fields, current.String())
}

func joinRecord(fields ...string) string {
	return strings.Join(fields, ",")
}

// flatten replaces line breaks so a value stays on its record's line.
func flatten(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(value)
}

// lines splits text into lines, dropping a trailing carriage return.
func lines(text string) []string {
	raw := strings.Split(text, "\n")
	for i, l := range raw {
		raw[i] = strings.TrimSuffix(l, "\r")
	}
	return raw
}

func splitList(value, sep string) []string {
	var out []string
	for _, part := range strings.Split(value, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
