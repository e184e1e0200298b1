// Package event defines the closed set of stream events a swarm run emits
// and decodes them from the agent runtime's JSON representation.
//
// Decoding happens once, at the boundary. Everything downstream switches on
// the concrete variant instead of probing attribute names.
package event

// Envelope types.
const (
	TypeRawResponse  = "raw_response_event"
	TypeRunItem      = "run_item_stream_event"
	TypeAgentUpdated = "agent_updated_stream_event"
)

// Run item names.
const (
	NameMessageOutputCreated = "message_output_created"
	NameToolCalled           = "tool_called"
	NameToolOutput           = "tool_output"
	NameHandoffRequested     = "handoff_requested"
	NameHandoffOccurred      = "handoff_occurred"
	NameReasoningCreated     = "reasoning_item_created"
	NameMCPListTools         = "mcp_list_tools"

	// the agent SDK emits this spelling
	nameHandoffOccured = "handoff_occured"
)

// Raw response delta kinds.
const (
	DeltaOutputText       = "response.output_text.delta"
	DeltaReasoningSummary = "response.reasoning_summary_text.delta"
	DeltaReasoningText    = "response.reasoning_text.delta"
	DeltaToolOutput       = "response.tool_output.delta"
)

// Event is one decoded stream event. The set of implementations is closed.
type Event interface {
	Meta() Envelope
	isEvent()
}

// Envelope carries what every event has regardless of its variant.
type Envelope struct {
	// Type is the coarse category ("raw_response_event", ...).
	Type string `json:"type"`
	// Name is the run item name, empty for non item events.
	Name string `json:"name,omitempty"`
	// Keys lists the attribute paths present in the payload.
	Keys []string `json:"keys,omitempty"`
}

func (e Envelope) Meta() Envelope { return e }

// TextDelta is a fragment of regular assistant text.
type TextDelta struct {
	Envelope
	Delta string
}

// ReasoningDelta is a fragment of model reasoning text.
type ReasoningDelta struct {
	Envelope
	Delta string
}

// ToolOutputDelta is a fragment of a tool's output, streamed while it runs.
type ToolOutputDelta struct {
	Envelope
	CallID string
	Delta  string
}

// RawResponse is a raw runtime event without displayable text
// (response.created, response.completed, ...).
type RawResponse struct {
	Envelope
	Kind string
}

// MessageOutputCreated carries a complete assistant message.
type MessageOutputCreated struct {
	Envelope
	Agent string
	Text  string
}

// ToolCalled is emitted when an agent invokes a tool.
type ToolCalled struct {
	Envelope
	Agent     string
	CallID    string
	Name      string
	Server    string
	Arguments string
}

// ToolOutput carries the final output of a tool call.
type ToolOutput struct {
	Envelope
	Agent  string
	CallID string
	Name   string
	Server string
	Output string
}

// HandoffRequested is emitted when an agent asks to transfer control.
type HandoffRequested struct {
	Envelope
	Source    string
	Target    string
	Arguments string
}

// HandoffOccurred is emitted once control has moved from Source to Target.
type HandoffOccurred struct {
	Envelope
	Source string
	Target string
}

// ReasoningCreated carries a complete reasoning item.
type ReasoningCreated struct {
	Envelope
	Agent string
	Text  string
}

// MCPListTools reports the tools an MCP server exposes.
type MCPListTools struct {
	Envelope
	Agent  string
	Server string
	Tools  []string
}

// AgentUpdated is emitted when a different agent becomes active.
type AgentUpdated struct {
	Envelope
	Name string
}

// Unknown is any event this package does not model.
type Unknown struct {
	Envelope
}

func (TextDelta) isEvent()            {}
func (ReasoningDelta) isEvent()       {}
func (ToolOutputDelta) isEvent()      {}
func (RawResponse) isEvent()          {}
func (MessageOutputCreated) isEvent() {}
func (ToolCalled) isEvent()           {}
func (ToolOutput) isEvent()           {}
func (HandoffRequested) isEvent()     {}
func (HandoffOccurred) isEvent()      {}
func (ReasoningCreated) isEvent()     {}
func (MCPListTools) isEvent()         {}
func (AgentUpdated) isEvent()         {}
func (Unknown) isEvent()              {}

// IsToolCallLike reports whether ev opens a tool invocation: a tool call or a
// handoff request, which the runtime also models as a function call.
func IsToolCallLike(ev Event) bool {
	switch ev.(type) {
	case ToolCalled, HandoffRequested:
		return true
	}
	return false
}

// IsReasoningCreated reports whether ev is a complete reasoning item.
func IsReasoningCreated(ev Event) bool {
	_, ok := ev.(ReasoningCreated)
	return ok
}
