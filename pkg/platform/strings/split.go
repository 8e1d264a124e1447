// Package strings provides string list utilities shared by parsers.
package strings

import (
	"strings"
)

// SplitDedupe splits every value on sep, trims whitespace from each part,
// and drops empty parts and repeats. First-seen order is preserved.
//
// Example:
//
//	SplitDedupe([]string{" a,b ", "a,,c"}, ",")
//	// Returns: []string{"a", "b", "c"}
func SplitDedupe(values []string, sep string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var result []string
	for _, v := range values {
		for _, part := range strings.Split(v, sep) {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if _, ok := seen[trimmed]; ok {
				continue
			}
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}
