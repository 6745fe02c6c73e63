// Package strings provides small string helpers shared by the relay packages
package strings

import std "strings"

// FirstNonEmpty returns the first value with non whitespace content, trimmed
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = std.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Truncate cuts s to at most n bytes and appends "..." when anything was cut
func Truncate(s string, n int) string {
	if n < 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// NullIfBlank returns nil for blank strings so JSON encodes them as null
func NullIfBlank(s string) any {
	if std.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// Set builds a lookup set from trimmed non-empty values
func Set(vals []string) map[string]struct{} {
	out := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		if v = std.TrimSpace(v); v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}
