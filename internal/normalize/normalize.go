// Package normalize holds the pure name-comparison rules for tags: the
// comparison key, tag-list deduplication for ingestion, and display formatters.
//
// Nothing in this package touches storage; every function is safe for
// concurrent use.
package normalize

import (
	"strings"
)

// Name returns the comparison key for a tag name: trimmed and lower-cased.
// It is never written back as a display name.
func Name(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Equal reports whether two names collide under the uniqueness rule.
func Equal(a, b string) bool {
	return Name(a) == Name(b)
}

// MergeTagLists combines two tag-name lists, dropping blanks and
// case-insensitive duplicates.
//
// Primary is walked first, so on a collision the casing from primary wins;
// within a list the first occurrence wins. Entries are returned trimmed.
// The result is never nil.
//
// Examples:
//
//	MergeTagLists([]string{"Preeclampsia"}, []string{"preeclampsia", "HELLP"})
//	  → ["Preeclampsia", "HELLP"]
//	MergeTagLists([]string{"  "}, []string{"\t"})
//	  → []
func MergeTagLists(primary, secondary []string) []string {
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	result := make([]string, 0, len(primary)+len(secondary))

	for _, list := range [][]string{primary, secondary} {
		for _, raw := range list {
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				continue
			}
			key := strings.ToLower(trimmed)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// HasDuplicate reports whether any normalized name appears in both lists.
// Blank entries never match.
func HasDuplicate(a, b []string) bool {
	// Index the shorter list.
	if len(b) < len(a) {
		a, b = b, a
	}

	keys := make(map[string]struct{}, len(a))
	for _, name := range a {
		if key := Name(name); key != "" {
			keys[key] = struct{}{}
		}
	}
	if len(keys) == 0 {
		return false
	}

	for _, name := range b {
		if _, ok := keys[Name(name)]; ok {
			return true
		}
	}
	return false
}
