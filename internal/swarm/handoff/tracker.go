// Package handoff keeps the ledger of agent-to-agent handoffs observed during
// a swarm run and checks it against the handoff counts each role is required
// to reach.
package handoff

import (
	"fmt"
	"iter"
)

// Requirement is the minimum number of outgoing handoffs Role must make.
type Requirement struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// Handoff is one recorded transfer of control.
type Handoff struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Tracker counts outgoing handoffs per source role.
//
// It is owned by the single goroutine consuming a run's event stream and is
// not safe for concurrent use.
type Tracker struct {
	required []Requirement
	counts   map[string]int
	history  []Handoff
}

// NewTracker returns a tracker for the given requirements. Their order is the
// order in which Missing reports unmet roles.
func NewTracker(required ...Requirement) *Tracker {
	return &Tracker{
		required: append([]Requirement(nil), required...),
		counts:   make(map[string]int),
	}
}

// Record counts one handoff from source to target. Roles are not validated;
// a source without a requirement is counted but never satisfies anything.
// Calling Record twice for the same handoff counts it twice.
func (t *Tracker) Record(source, target string) {
	t.counts[source]++
	t.history = append(t.history, Handoff{Source: source, Target: target})
}

// Missing yields one reminder per role whose count is below its requirement,
// in requirement order. The sequence reads the current state on every
// iteration and can be ranged over any number of times.
func (t *Tracker) Missing() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, req := range t.required {
			have := t.counts[req.Role]
			if have >= req.Count {
				continue
			}
			if !yield(missingMessage(req, have)) {
				return
			}
		}
	}
}

func missingMessage(req Requirement, have int) string {
	remaining := req.Count - have
	noun := "handoffs"
	if remaining == 1 {
		noun = "handoff"
	}
	return fmt.Sprintf("%s: needs %d more %s (%d/%d completed)", req.Role, remaining, noun, have, req.Count)
}

// RequirementsMet reports whether Missing yields nothing.
func (t *Tracker) RequirementsMet() bool {
	for range t.Missing() {
		return false
	}
	return true
}

// Count returns the recorded handoffs from role.
func (t *Tracker) Count(role string) int {
	return t.counts[role]
}

// Counts returns a copy of the per-role counts.
func (t *Tracker) Counts() map[string]int {
	out := make(map[string]int, len(t.counts))
	for role, n := range t.counts {
		out[role] = n
	}
	return out
}

// History returns a copy of the recorded handoffs in arrival order.
func (t *Tracker) History() []Handoff {
	return append([]Handoff(nil), t.history...)
}

// Requirements returns a copy of the configured requirements.
func (t *Tracker) Requirements() []Requirement {
	return append([]Requirement(nil), t.required...)
}
