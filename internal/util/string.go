package util

import "strings"

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// ContainsAny reports whether s contains at least one of the tokens.
func ContainsAny(s string, tokens ...string) bool {
	for _, token := range tokens {
		if token != "" && strings.Contains(s, token) {
			return true
		}
	}
	return false
}
