package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
)

func TestDecodeVariants(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Event
	}{
		{
			name: "text delta",
			line: `{"type":"raw_response_event","data":{"type":"response.output_text.delta","delta":"Hel"}}`,
			want: TextDelta{Delta: "Hel"},
		},
		{
			name: "reasoning summary delta",
			line: `{"type":"raw_response_event","data":{"type":"response.reasoning_summary_text.delta","delta":"think"}}`,
			want: ReasoningDelta{Delta: "think"},
		},
		{
			name: "tool output delta by call id",
			line: `{"type":"raw_response_event","data":{"type":"response.mcp_call.progress","call_id":"c1","delta":"out"}}`,
			want: ToolOutputDelta{CallID: "c1", Delta: "out"},
		},
		{
			name: "raw response without delta",
			line: `{"type":"raw_response_event","data":{"type":"response.completed"}}`,
			want: RawResponse{Kind: "response.completed"},
		},
		{
			name: "message output",
			line: `{"type":"run_item_stream_event","name":"message_output_created","item":{"agent":{"name":"Coder"},"raw_item":{"content":[{"type":"output_text","text":"Done."}]}}}`,
			want: MessageOutputCreated{Agent: "Coder", Text: "Done."},
		},
		{
			name: "message refusal",
			line: `{"type":"run_item_stream_event","name":"message_output_created","item":{"raw_item":{"content":[{"type":"refusal","refusal":"No."}]}}}`,
			want: MessageOutputCreated{Text: "No."},
		},
		{
			name: "mcp tool call",
			line: `{"type":"run_item_stream_event","name":"tool_called","item":{"agent":{"name":"Coder"},"raw_item":{"type":"mcp_call","id":"m1","name":"codex","server_label":"codex","arguments":"{\"prompt\":\"x\"}"}}}`,
			want: ToolCalled{Agent: "Coder", CallID: "m1", Name: "codex", Server: "codex", Arguments: `{"prompt":"x"}`},
		},
		{
			name: "tool call with object arguments",
			line: `{"type":"run_item_stream_event","name":"tool_called","item":{"raw_item":{"call_id":"c2","name":"grep","arguments":{"q":"x"}}}}`,
			want: ToolCalled{CallID: "c2", Name: "grep", Arguments: `{"q":"x"}`},
		},
		{
			name: "tool output",
			line: `{"type":"run_item_stream_event","name":"tool_output","item":{"agent":{"name":"Coder"},"output":"ok","raw_item":{"call_id":"c2"}}}`,
			want: ToolOutput{Agent: "Coder", CallID: "c2", Output: "ok"},
		},
		{
			name: "handoff requested",
			line: `{"type":"run_item_stream_event","name":"handoff_requested","item":{"agent":{"name":"Task Master"},"raw_item":{"name":"transfer_to_Auditor","arguments":"{}"}}}`,
			want: HandoffRequested{Source: "Task Master", Target: "Auditor", Arguments: "{}"},
		},
		{
			name: "handoff occurred",
			line: `{"type":"run_item_stream_event","name":"handoff_occurred","item":{"source_agent":{"name":"Task Master"},"target_agent":{"name":"Coder"}}}`,
			want: HandoffOccurred{Source: "Task Master", Target: "Coder"},
		},
		{
			name: "reasoning item",
			line: `{"type":"run_item_stream_event","name":"reasoning_item_created","item":{"agent":{"name":"Auditor"},"raw_item":{"summary":[{"text":"a"},{"text":"b"}]}}}`,
			want: ReasoningCreated{Agent: "Auditor", Text: "a\n\nb"},
		},
		{
			name: "mcp list tools",
			line: `{"type":"run_item_stream_event","name":"mcp_list_tools","item":{"raw_item":{"server_label":"codex","tools":[{"name":"codex"},{"name":"codex-reply"}]}}}`,
			want: MCPListTools{Server: "codex", Tools: []string{"codex", "codex-reply"}},
		},
		{
			name: "agent updated",
			line: `{"type":"agent_updated_stream_event","new_agent":{"name":"Auditor"}}`,
			want: AgentUpdated{Name: "Auditor"},
		},
		{
			name: "unknown type",
			line: `{"type":"heartbeat"}`,
			want: Unknown{},
		},
		{
			name: "unknown item name",
			line: `{"type":"run_item_stream_event","name":"tool_approval_requested","item":{}}`,
			want: Unknown{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.line))
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
			assert.Equal(t, tt.want, stripEnvelope(got))
		})
	}
}

func TestDecodeEnvelope(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"run_item_stream_event","name":"tool_called","item":{"agent":{"name":"Coder"},"raw_item":{"name":"grep","arguments":"{}"}}}`))
	require.NoError(t, err)

	meta := ev.Meta()
	assert.Equal(t, TypeRunItem, meta.Type)
	assert.Equal(t, NameToolCalled, meta.Name)
	assert.Contains(t, meta.Keys, "item.agent.name")
	assert.Contains(t, meta.Keys, "item.raw_item.arguments")
}

func TestDecodeNormalizesHandoffSpelling(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"run_item_stream_event","name":"handoff_occured","item":{"source_agent":{"name":"Coder"},"target_agent":{"name":"Auditor"}}}`))
	require.NoError(t, err)

	h, ok := ev.(HandoffOccurred)
	require.True(t, ok)
	assert.Equal(t, NameHandoffOccurred, h.Name)
	assert.Equal(t, "Coder", h.Source)
}

func TestDecodeMalformed(t *testing.T) {
	for _, line := range []string{``, `not json`, `[1,2]`, `"text"`, `{"type":`} {
		_, err := Decode([]byte(line))
		assert.True(t, errors.Is(err, errno.ErrMalformedEvent), "line %q", line)
	}
}

func TestDecodeMissingAttributes(t *testing.T) {
	lines := []string{
		`{}`,
		`{"type":"raw_response_event"}`,
		`{"type":"raw_response_event","data":"oops"}`,
		`{"type":"run_item_stream_event","name":"tool_called"}`,
		`{"type":"run_item_stream_event","name":"tool_output","item":{"raw_item":null}}`,
		`{"type":"run_item_stream_event","name":"message_output_created","item":{"raw_item":{"content":42}}}`,
		`{"type":"agent_updated_stream_event","new_agent":null}`,
	}
	for _, line := range lines {
		ev, err := Decode([]byte(line))
		require.NoError(t, err, line)
		assert.NotNil(t, ev, line)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	events := []Event{
		TextDelta{Delta: "hi"},
		ToolOutputDelta{CallID: "c1", Delta: "line\n"},
		ToolCalled{Agent: "Coder", CallID: "c1", Name: "codex", Server: "codex", Arguments: `{"a":1}`},
		ToolOutput{Agent: "Coder", CallID: "c1", Output: "done"},
		HandoffRequested{Source: "Task Master", Target: "Task Master", Arguments: "{}"},
		HandoffOccurred{Source: "Coder", Target: "Auditor"},
		ReasoningCreated{Agent: "Auditor", Text: "hmm"},
		AgentUpdated{Name: "Coder"},
	}
	for _, ev := range events {
		data, err := Marshal(ev)
		require.NoError(t, err)

		got, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, ev, stripEnvelope(got))
	}
}

func TestDecodeNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		typ := rapid.SampledFrom([]string{TypeRawResponse, TypeRunItem, TypeAgentUpdated, "x"}).Draw(t, "type")
		name := rapid.SampledFrom([]string{NameToolCalled, NameToolOutput, NameHandoffRequested, NameMessageOutputCreated, ""}).Draw(t, "name")
		body := rapid.SampledFrom([]string{`null`, `1`, `"s"`, `[]`, `{}`, `{"raw_item":[]}`, `{"delta":{}}`}).Draw(t, "body")

		line := `{"type":"` + typ + `","name":"` + name + `","item":` + body + `,"data":` + body + `}`
		ev, err := Decode([]byte(line))
		if err != nil {
			t.Fatalf("decode %s: %v", line, err)
		}
		if ev.Meta().Type != typ {
			t.Fatalf("type %q, want %q", ev.Meta().Type, typ)
		}
	})
}

// stripEnvelope zeroes the envelope so tests can compare payload fields only.
func stripEnvelope(ev Event) Event {
	switch e := ev.(type) {
	case TextDelta:
		e.Envelope = Envelope{}
		return e
	case ReasoningDelta:
		e.Envelope = Envelope{}
		return e
	case ToolOutputDelta:
		e.Envelope = Envelope{}
		return e
	case RawResponse:
		e.Envelope = Envelope{}
		return e
	case MessageOutputCreated:
		e.Envelope = Envelope{}
		return e
	case ToolCalled:
		e.Envelope = Envelope{}
		return e
	case ToolOutput:
		e.Envelope = Envelope{}
		return e
	case HandoffRequested:
		e.Envelope = Envelope{}
		return e
	case HandoffOccurred:
		e.Envelope = Envelope{}
		return e
	case ReasoningCreated:
		e.Envelope = Envelope{}
		return e
	case MCPListTools:
		e.Envelope = Envelope{}
		return e
	case AgentUpdated:
		e.Envelope = Envelope{}
		return e
	case Unknown:
		return Unknown{}
	}
	return ev
}
