// Package ticketcsv reads the help desk's ticket export: line splitting, the
// quote-toggling field parser, date and number parsing, and row-to-ticket
// construction over the fixed 21-column layout.
//
// The field parser is deliberately simpler than RFC 4180. A double quote only
// flips the in-quotes state and is never kept, so `""` does not produce a
// literal quote, and quoted fields cannot span lines.
package ticketcsv

import "strings"

// SplitLines splits raw document text into lines on "\n".
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// ParseLine splits one CSV line into trimmed fields.
func ParseLine(line string) []string {
	fields := make([]string, 0, ColumnCount)
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}
