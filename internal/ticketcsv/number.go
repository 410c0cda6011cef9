package ticketcsv

import (
	"regexp"
	"strconv"
	"strings"
)

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the longest numeric prefix of raw, so "45", "45.5" and
// "45 min" all yield a value. It reports false when raw has no numeric prefix.
func ParseNumber(raw string) (float64, bool) {
	match := numericPrefix.FindString(strings.TrimSpace(raw))
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
