package source

import (
	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/swarmscope/internal/swarm/event"
)

// EinoSource adapts an eino message stream, as produced by a streaming chat
// model or agent, into stream events attributed to one agent.
type EinoSource struct {
	sr      *schema.StreamReader[*schema.Message]
	agent   string
	pending []event.Event
}

// NewEinoSource wraps sr. agent names the producer when a message carries no
// name of its own.
func NewEinoSource(sr *schema.StreamReader[*schema.Message], agent string) *EinoSource {
	return &EinoSource{sr: sr, agent: agent}
}

func (s *EinoSource) Recv() (event.Event, error) {
	for len(s.pending) == 0 {
		msg, err := s.sr.Recv()
		if err != nil {
			return nil, err
		}
		s.pending = append(s.pending, s.convert(msg)...)
	}
	ev := s.pending[0]
	s.pending = s.pending[1:]
	return ev, nil
}

func (s *EinoSource) Close() error {
	s.sr.Close()
	return nil
}

// convert maps one message chunk to zero or more events.
func (s *EinoSource) convert(msg *schema.Message) []event.Event {
	if msg == nil {
		return nil
	}
	agent := s.agent
	if msg.Name != "" && msg.Role != schema.Tool {
		agent = msg.Name
	}

	if msg.Role == schema.Tool {
		return []event.Event{event.ToolOutput{
			Envelope: runItem(event.NameToolOutput),
			Agent:    agent,
			CallID:   msg.ToolCallID,
			Name:     msg.ToolName,
			Output:   msg.Content,
		}}
	}

	var out []event.Event
	if msg.ReasoningContent != "" {
		out = append(out, event.ReasoningDelta{
			Envelope: rawResponse(),
			Delta:    msg.ReasoningContent,
		})
	}
	if msg.Content != "" {
		out = append(out, event.TextDelta{
			Envelope: rawResponse(),
			Delta:    msg.Content,
		})
	}
	for _, tc := range msg.ToolCalls {
		// argument fragments of a streamed call carry no name
		if tc.Function.Name == "" {
			continue
		}
		if target := event.HandoffTarget(tc.Function.Name); target != "" {
			out = append(out, event.HandoffRequested{
				Envelope:  runItem(event.NameHandoffRequested),
				Source:    agent,
				Target:    target,
				Arguments: tc.Function.Arguments,
			})
			continue
		}
		out = append(out, event.ToolCalled{
			Envelope:  runItem(event.NameToolCalled),
			Agent:     agent,
			CallID:    tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}

func rawResponse() event.Envelope {
	return event.Envelope{Type: event.TypeRawResponse}
}

func runItem(name string) event.Envelope {
	return event.Envelope{Type: event.TypeRunItem, Name: name}
}
