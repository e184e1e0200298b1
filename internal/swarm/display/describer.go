// Package display turns decoded stream events into terminal output.
//
// A Describer owns the streaming state of exactly one run. Token deltas are
// echoed as they arrive and collected until a boundary event (or a delta of a
// different kind) closes the span and the collected text is shown again as
// one panel.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/swarm/event"
	"github.com/kiosk404/swarmscope/internal/swarm/handoff"
)

// State is the span a Describer is currently accumulating.
type State int

const (
	StateIdle State = iota
	StateStreamingReasoning
	StateStreamingToolOutput
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreamingReasoning:
		return "streaming-reasoning"
	case StateStreamingToolOutput:
		return "streaming-tool-output"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options tune a Describer.
type Options struct {
	Highlight     Highlighter
	DebugEvents   bool
	CatchAll      bool
	MaxToolOutput int
}

// Describer classifies events and renders them. It is not safe for
// concurrent use; create one per run.
type Describer struct {
	opts Options
	r    *Renderer
	diag io.Writer

	state State
	agent string

	reasoning  strings.Builder
	toolOutput strings.Builder
	openCall   event.ToolCalled

	// reasoningShown is set once a streamed reasoning span has been rendered.
	// It only covers the reasoning item that directly follows the span, so any
	// other item event or a new span clears it.
	reasoningShown bool
	lastReasoning  string

	// textOpen is set while plain text deltas are being echoed on a line.
	textOpen bool
	// echoed holds the text deltas echoed since the last message item.
	echoed strings.Builder

	calls  map[string]event.ToolCalled
	deltas map[string]*strings.Builder
}

// NewDescriber returns a Describer rendering through r. Diagnostics (the
// event dump and unhandled notices) go to diag, which may be nil.
func NewDescriber(r *Renderer, diag io.Writer, opts Options) *Describer {
	if opts.MaxToolOutput == 0 {
		opts.MaxToolOutput = DefaultMaxToolOutput
	}
	if diag == nil {
		diag = io.Discard
	}
	return &Describer{
		opts:   opts,
		r:      r,
		diag:   diag,
		calls:  make(map[string]event.ToolCalled),
		deltas: make(map[string]*strings.Builder),
	}
}

// State returns the current streaming state.
func (d *Describer) State() State { return d.state }

// Agent returns the name of the agent currently producing output.
func (d *Describer) Agent() string { return d.agent }

// Deltas returns the tool output collected so far for a call id.
func (d *Describer) Deltas(callID string) string {
	if b, ok := d.deltas[callID]; ok {
		return b.String()
	}
	return ""
}

// Describe renders ev. Handoffs are recorded into tracker, which may be nil.
func (d *Describer) Describe(ev event.Event, tracker *handoff.Tracker) {
	if d.opts.DebugEvents {
		d.dump(ev)
	}

	switch ev.(type) {
	case event.ToolCalled, event.ToolOutput, event.MessageOutputCreated,
		event.HandoffRequested, event.HandoffOccurred:
		d.reasoningShown = false
	}

	switch e := ev.(type) {
	case event.ReasoningDelta:
		d.onReasoningDelta(e)
	case event.TextDelta:
		d.onTextDelta(e)
	case event.ToolOutputDelta:
		d.onToolOutputDelta(e)
	case event.ToolCalled:
		d.onToolCalled(e)
	case event.ToolOutput:
		d.onToolOutput(e)
	case event.MessageOutputCreated:
		d.onMessage(e)
	case event.ReasoningCreated:
		d.onReasoningCreated(e)
	case event.HandoffRequested:
		d.onHandoffRequested(e)
	case event.HandoffOccurred:
		d.onHandoffOccurred(e, tracker)
	case event.AgentUpdated:
		d.onAgentUpdated(e)
	case event.MCPListTools:
		d.onListTools(e)
	default:
		d.unhandled(ev)
	}
}

// Finish closes whatever span is still open at the end of the stream.
func (d *Describer) Finish() {
	switch d.state {
	case StateStreamingReasoning:
		d.closeReasoning()
	case StateStreamingToolOutput:
		d.closeToolOutput("")
	}
	d.endText()
}

// Summary reports the recorded handoffs and any unmet requirement.
// It never fails; unmet requirements are warnings only.
func (d *Describer) Summary(tracker *handoff.Tracker) {
	if tracker == nil {
		return
	}
	d.endText()
	history := tracker.History()
	d.r.Line(LineNotice, "%d handoff(s) recorded", len(history))
	for _, req := range tracker.Requirements() {
		d.r.Line(LineNotice, "  %s: %d/%d", req.Role, tracker.Count(req.Role), req.Count)
	}

	met := true
	for msg := range tracker.Missing() {
		met = false
		d.r.Line(LineWarn, "⚠ %s", msg)
	}
	if met {
		d.r.Line(LineSuccess, "✓ all handoff requirements met")
	}
}

func (d *Describer) onReasoningDelta(e event.ReasoningDelta) {
	if d.state == StateStreamingToolOutput {
		d.closeToolOutput("")
	}
	if d.state != StateStreamingReasoning {
		d.openReasoning()
	}
	d.reasoning.WriteString(e.Delta)
	d.r.Fragment(KindReasoning, e.Delta)
}

func (d *Describer) onTextDelta(e event.TextDelta) {
	switch d.state {
	case StateStreamingToolOutput:
		d.toolOutput.WriteString(e.Delta)
		d.r.Fragment(KindToolOutput, e.Delta)
		return
	case StateStreamingReasoning:
		d.closeReasoning()
	}
	if e.Delta == "" {
		return
	}
	if !d.textOpen {
		d.r.Label(d.agent, "")
		d.textOpen = true
	}
	d.echoed.WriteString(e.Delta)
	d.r.Fragment(KindText, e.Delta)
}

func (d *Describer) onToolOutputDelta(e event.ToolOutputDelta) {
	b, ok := d.deltas[e.CallID]
	if !ok {
		b = &strings.Builder{}
		d.deltas[e.CallID] = b
	}
	b.WriteString(e.Delta)

	if d.state == StateStreamingToolOutput && d.belongsToOpenCall(e.CallID) {
		d.toolOutput.WriteString(e.Delta)
		d.r.Fragment(KindToolOutput, e.Delta)
	}
}

func (d *Describer) onToolCalled(e event.ToolCalled) {
	d.closeReasoningIfOpen()
	d.endText()
	if e.Agent != "" {
		d.agent = e.Agent
	}
	if e.CallID != "" {
		d.calls[e.CallID] = e
	}

	if d.opts.Highlight.Match(e.Name, e.Server) {
		if d.state == StateStreamingToolOutput {
			d.closeToolOutput("")
		}
		d.openToolOutput(e)
		return
	}

	line := fmt.Sprintf("→ %s calls %s", agentOr(d.agent), e.Name)
	if args := compactArgs(e.Arguments); args != "" {
		line += " " + Truncate(args, d.opts.MaxToolOutput)
	}
	d.r.Line(LineTool, "%s", line)
}

func (d *Describer) onToolOutput(e event.ToolOutput) {
	name, server := e.Name, e.Server
	if call, ok := d.calls[e.CallID]; ok {
		if name == "" {
			name = call.Name
		}
		if server == "" {
			server = call.Server
		}
	}

	if d.opts.Highlight.Match(name, server) {
		if d.state == StateStreamingToolOutput && d.belongsToOpenCall(e.CallID) {
			d.closeToolOutput(e.Output)
			return
		}
		// never streamed
		d.closeReasoningIfOpen()
		d.endText()
		d.r.Panel(KindToolOutput, toolTitle(name, server, "output"), Truncate(e.Output, d.opts.MaxToolOutput))
		return
	}

	d.closeReasoningIfOpen()
	d.endText()
	output := e.Output
	if output == "" {
		output = d.Deltas(e.CallID)
	}
	if output == "" {
		output = "(no output)"
	}
	d.r.Panel(KindToolOutput, toolTitle(name, server, "output"), Truncate(output, d.opts.MaxToolOutput))
}

func (d *Describer) onMessage(e event.MessageOutputCreated) {
	if e.Agent != "" {
		d.agent = e.Agent
	}
	spanOpen := d.state != StateIdle
	switch d.state {
	case StateStreamingReasoning:
		d.closeReasoning()
	case StateStreamingToolOutput:
		d.closeToolOutput("")
	}
	echoed := strings.TrimSpace(d.echoed.String())
	d.echoed.Reset()
	d.endText()
	text := strings.TrimSpace(e.Text)
	if spanOpen || text == "" {
		return
	}
	if echoed != "" && echoed == text {
		return
	}
	d.r.Message(d.agent, e.Text)
}

func (d *Describer) onReasoningCreated(e event.ReasoningCreated) {
	if e.Agent != "" {
		d.agent = e.Agent
	}
	if d.state == StateStreamingReasoning {
		d.closeReasoning()
	}
	if d.reasoningShown {
		d.reasoningShown = false
		if strings.TrimSpace(e.Text) != "" && strings.TrimSpace(e.Text) != strings.TrimSpace(d.lastReasoning) {
			logger.Debug("[Describer] reasoning item differs from streamed reasoning (%d vs %d chars)",
				len(e.Text), len(d.lastReasoning))
		}
		return
	}
	if strings.TrimSpace(e.Text) == "" {
		return
	}
	d.endText()
	d.r.Panel(KindReasoning, agentOr(d.agent)+" reasoning", e.Text)
}

func (d *Describer) onHandoffRequested(e event.HandoffRequested) {
	d.closeReasoningIfOpen()
	d.endText()
	line := fmt.Sprintf("⇢ %s requests handoff to %s", agentOr(e.Source), agentOr(e.Target))
	if args := compactArgs(e.Arguments); args != "" {
		line += " " + args
	}
	d.r.Line(LineHandoff, "%s", line)
}

func (d *Describer) onHandoffOccurred(e event.HandoffOccurred, tracker *handoff.Tracker) {
	if e.Source == "" || e.Target == "" {
		logger.Debug("[Describer] handoff without source or target, not recorded: %q -> %q", e.Source, e.Target)
		return
	}
	d.closeReasoningIfOpen()
	d.endText()
	if tracker != nil {
		tracker.Record(e.Source, e.Target)
	}
	d.r.Line(LineHandoff, "✓ handoff %s → %s", e.Source, e.Target)
}

func (d *Describer) onAgentUpdated(e event.AgentUpdated) {
	if e.Name == "" || e.Name == d.agent {
		return
	}
	d.closeReasoningIfOpen()
	d.endText()
	d.agent = e.Name
	d.r.Line(LineAgent, "▸ %s is now active", e.Name)
}

func (d *Describer) onListTools(e event.MCPListTools) {
	d.endText()
	names := make([]string, 0, len(e.Tools))
	for _, t := range e.Tools {
		if d.opts.Highlight.Match(t, e.Server) {
			t += "*"
		}
		names = append(names, t)
	}
	server := e.Server
	if server == "" {
		server = "mcp"
	}
	d.r.Line(LineNotice, "%s tools: %s", server, strings.Join(names, ", "))
}

func (d *Describer) unhandled(ev event.Event) {
	if !d.opts.CatchAll {
		return
	}
	meta := ev.Meta()
	name := meta.Name
	if kind, ok := ev.(event.RawResponse); ok && kind.Kind != "" {
		name = kind.Kind
	}
	fmt.Fprintf(d.diag, "unhandled event: type=%s name=%s\n", meta.Type, name)
}

func (d *Describer) dump(ev event.Event) {
	meta := ev.Meta()
	fmt.Fprintf(d.diag, "[event] %T type=%s name=%s keys=%s\n",
		ev, meta.Type, meta.Name, strings.Join(meta.Keys, ","))
}

func (d *Describer) openReasoning() {
	d.endText()
	d.reasoningShown = false
	d.reasoning.Reset()
	d.state = StateStreamingReasoning
	d.r.Label(d.agent, "is thinking")
}

// closeReasoning renders the collected reasoning as one panel.
func (d *Describer) closeReasoning() {
	d.r.Newline()
	text := d.reasoning.String()
	d.reasoning.Reset()
	d.state = StateIdle
	if strings.TrimSpace(text) == "" {
		return
	}
	d.r.Panel(KindReasoning, agentOr(d.agent)+" reasoning", text)
	d.reasoningShown = true
	d.lastReasoning = text
}

func (d *Describer) closeReasoningIfOpen() {
	if d.state == StateStreamingReasoning {
		d.closeReasoning()
	}
}

func (d *Describer) openToolOutput(call event.ToolCalled) {
	d.toolOutput.Reset()
	d.openCall = call
	d.state = StateStreamingToolOutput

	d.r.Line(LineTool, "→ %s calls %s", agentOr(d.agent), toolTitle(call.Name, call.Server, ""))
	if args := strings.TrimSpace(call.Arguments); args != "" && args != "{}" {
		d.r.Panel(KindArguments, "arguments", args)
	}
}

// closeToolOutput renders the streamed output as one panel. When nothing was
// streamed it falls back to final, truncated.
func (d *Describer) closeToolOutput(final string) {
	call := d.openCall
	text := d.toolOutput.String()
	d.toolOutput.Reset()
	d.openCall = event.ToolCalled{}
	d.state = StateIdle

	title := toolTitle(call.Name, call.Server, "output")
	if text != "" {
		d.r.Newline()
		d.r.Panel(KindToolOutput, title, text)
		return
	}
	if final != "" {
		d.r.Panel(KindToolOutput, title, Truncate(final, d.opts.MaxToolOutput))
	}
}

func (d *Describer) belongsToOpenCall(callID string) bool {
	return callID == "" || d.openCall.CallID == "" || callID == d.openCall.CallID
}

func (d *Describer) endText() {
	if d.textOpen {
		d.r.Newline()
		d.textOpen = false
	}
}

func toolTitle(name, server, suffix string) string {
	if name == "" {
		name = "tool"
	}
	if server != "" && !strings.EqualFold(server, name) {
		name = server + "/" + name
	}
	if suffix != "" {
		name += " " + suffix
	}
	return name
}

func agentOr(name string) string {
	if name == "" {
		return "assistant"
	}
	return name
}
