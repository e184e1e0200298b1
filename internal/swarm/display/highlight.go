package display

import (
	"strings"
)

// DefaultHighlightPatterns selects the Codex tool family.
var DefaultHighlightPatterns = []string{"codex"}

// Highlighter decides which tools get their output streamed in place
// instead of shown as one block when the call completes.
type Highlighter struct {
	Enabled  bool
	Patterns []string
}

// NewHighlighter returns a Highlighter. Without patterns it falls back to
// DefaultHighlightPatterns.
func NewHighlighter(enabled bool, patterns ...string) Highlighter {
	var ps []string
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			ps = append(ps, p)
		}
	}
	if len(ps) == 0 {
		ps = append(ps, DefaultHighlightPatterns...)
	}
	return Highlighter{Enabled: enabled, Patterns: ps}
}

// Match reports whether a tool with the given name, served by server (which
// may be empty), belongs to the highlighted family.
func (h Highlighter) Match(name, server string) bool {
	if !h.Enabled {
		return false
	}
	name, server = strings.ToLower(name), strings.ToLower(server)
	for _, p := range h.Patterns {
		p = strings.ToLower(p)
		if p == "" {
			continue
		}
		if strings.Contains(name, p) || (server != "" && strings.Contains(server, p)) {
			return true
		}
	}
	return false
}
