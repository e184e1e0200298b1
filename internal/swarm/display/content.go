package display

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxToolOutput caps tool output shown in a single block.
const DefaultMaxToolOutput = 500

// TruncationMarker is appended to output cut at the cap.
const TruncationMarker = "… [truncated]"

// Truncate cuts s to at most max runes, appending TruncationMarker when it
// had to cut. A max of zero or less disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + TruncationMarker
}

// compactArgs renders tool call arguments for a single summary line.
func compactArgs(args string) string {
	args = strings.TrimSpace(args)
	if args == "" || args == "{}" || args == "null" {
		return ""
	}
	return strings.Join(strings.Fields(args), " ")
}
