package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PriorityNone is the key for tickets without an assigned priority.
const PriorityNone = "none"

// PriorityDisplayOrder is the fixed order priorities are presented in.
var PriorityDisplayOrder = []string{PriorityNone, "low", "medium", "high"}

// PriorityKey normalizes a raw priority into its bucket key.
func PriorityKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return PriorityNone
	}
	return key
}

// PriorityLabel returns the human label for a priority key.
func PriorityLabel(key string) string {
	if key == PriorityNone {
		return "None (Unassigned)"
	}
	return cases.Title(language.English).String(key)
}

// OrderedPriorityKeys returns the keys present in the set, fixed order first and
// any other keys alphabetically after them.
func OrderedPriorityKeys[V any](set map[string]V) []string {
	keys := make([]string, 0, len(set))
	known := make(map[string]struct{}, len(PriorityDisplayOrder))
	for _, key := range PriorityDisplayOrder {
		known[key] = struct{}{}
		if _, ok := set[key]; ok {
			keys = append(keys, key)
		}
	}
	extra := make([]string, 0)
	for key := range set {
		if _, ok := known[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
