// Package util provides common string helpers used across the review core.
package util

import "strings"

// Basename returns the portion of a file name before its last extension
// separator. A name without a separator is returned unchanged.
func Basename(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx == -1 {
		return name
	}
	return name[:idx]
}

// TruncateString shortens s to at most length runes, appending "..." when
// anything was cut off.
func TruncateString(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length]) + "..."
}

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}
