package entity

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// RunStatus represents the lifecycle state of a Run.
//
// State machine: Created → InProgress → Completed | Failed | Cancelled
type RunStatus string

const (
	RunStatusCreated    RunStatus = "created"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
	RunStatusCancelled  RunStatus = "cancelled"
)

// IsTerminal returns true if the run has reached a terminal state.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusCancelled
}

// Run is the record of one rendered swarm run.
type Run struct {
	// ID is the unique run identifier.
	ID string `json:"id"`

	// Source describes where the events came from (a file, a URL, "stdin").
	Source string `json:"source"`

	// Status is the current lifecycle state.
	Status RunStatus `json:"status"`

	// Requirements are the expected outgoing handoffs per role, in report order.
	Requirements []Requirement `json:"requirements,omitempty"`

	// Counts holds the recorded outgoing handoffs per role.
	Counts map[string]int `json:"counts,omitempty"`

	// Handoffs lists every recorded handoff in order.
	Handoffs []Handoff `json:"handoffs,omitempty"`

	// Missing holds one message per unmet requirement.
	Missing []string `json:"missing,omitempty"`

	// EventCount is the number of events consumed from the source.
	EventCount int `json:"event_count"`

	// ToolCallCount is the number of tool calls seen during the run.
	ToolCallCount int `json:"tool_call_count,omitempty"`

	// Error holds error details if the run failed.
	Error *RunError `json:"error,omitempty"`

	// CreatedAt is when this run was created.
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is when this run reached a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RequirementsMet reports whether the run reached every handoff requirement.
func (r *Run) RequirementsMet() bool {
	return len(r.Missing) == 0
}

// Clone returns a copy of r that shares no slices or maps with it.
func (r *Run) Clone() *Run {
	cp := *r
	cp.Requirements = slices.Clone(r.Requirements)
	cp.Counts = maps.Clone(r.Counts)
	cp.Handoffs = slices.Clone(r.Handoffs)
	cp.Missing = slices.Clone(r.Missing)
	if r.Error != nil {
		e := *r.Error
		cp.Error = &e
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// Requirement is the minimum number of outgoing handoffs expected from Role.
type Requirement struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// Handoff is one recorded transfer of control.
type Handoff struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// RunError holds structured error information for a failed run.
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
