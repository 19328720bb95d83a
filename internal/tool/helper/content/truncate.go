package content

import "unicode/utf8"

// LineTruncatedSuffix marks a line cut at the configured maximum length.
const LineTruncatedSuffix = "...[truncated]"

// TruncateLine cuts line to at most maxChars runes, appending LineTruncatedSuffix when cut.
func TruncateLine(line string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(line) <= maxChars {
		return line
	}
	n := 0
	for i := range line {
		if n == maxChars {
			return line[:i] + LineTruncatedSuffix
		}
		n++
	}
	return line
}

// TruncateBytes cuts s to at most maxBytes bytes without splitting a UTF-8 sequence.
// The second result reports whether anything was removed.
func TruncateBytes(s string, maxBytes int) (string, bool) {
	if maxBytes < 0 || len(s) <= maxBytes {
		return s, false
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}
