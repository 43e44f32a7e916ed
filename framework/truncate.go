package framework

import "unicode/utf8"

const (
	// DefaultMaxContentLength caps how much of a document body is embedded in
	// an extraction prompt. Large uploads otherwise blow the prompt budget and
	// trip provider rate limits.
	DefaultMaxContentLength = 80000

	// TruncationMarker is appended whenever document content was cut to fit.
	TruncationMarker = "\n\n[Content truncated due to length...]"
)

// TruncateDocument cuts text to max characters, appending the truncation
// marker when anything was removed. A non-positive max applies the default.
func TruncateDocument(text string, max int) (string, bool) {
	if max <= 0 {
		max = DefaultMaxContentLength
	}
	if len(text) <= max {
		return text, false
	}
	return text[:runeBoundary(text, max)] + TruncationMarker, true
}

// Clip shortens a string for display, appending an ellipsis when cut. Unlike
// TruncateDocument this is purely cosmetic and never feeds back into prompts.
func Clip(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:runeBoundary(s, max)] + "..."
}

// runeBoundary backs max off to the nearest rune start so a cut never leaves
// a partial UTF-8 sequence behind.
func runeBoundary(s string, max int) int {
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return max
}
