package event

import (
	"strings"

	"github.com/kiosk404/swarmscope/internal/pkg/utils/json"
)

type object = map[string]any

// Marshal encodes ev in the runtime's wire shape, so that Decode(Marshal(ev))
// yields an event of the same variant with the same fields (Keys aside).
func Marshal(ev Event) ([]byte, error) {
	return json.Marshal(wire(ev))
}

func wire(ev Event) object {
	switch e := ev.(type) {
	case TextDelta:
		return rawEvent(object{"type": DeltaOutputText, "delta": e.Delta})
	case ReasoningDelta:
		return rawEvent(object{"type": DeltaReasoningSummary, "delta": e.Delta})
	case ToolOutputDelta:
		return rawEvent(object{"type": DeltaToolOutput, "call_id": e.CallID, "delta": e.Delta})
	case RawResponse:
		return rawEvent(object{"type": e.Kind})
	case MessageOutputCreated:
		return itemEvent(NameMessageOutputCreated, object{
			"type":  "message_output_item",
			"agent": agentRef(e.Agent),
			"raw_item": object{
				"type":    "message",
				"role":    "assistant",
				"content": []object{{"type": "output_text", "text": e.Text}},
			},
		})
	case ToolCalled:
		raw := object{"type": "function_call", "call_id": e.CallID, "name": e.Name, "arguments": e.Arguments}
		if e.Server != "" {
			raw["type"] = "mcp_call"
			raw["server_label"] = e.Server
		}
		return itemEvent(NameToolCalled, object{"type": "tool_call_item", "agent": agentRef(e.Agent), "raw_item": raw})
	case ToolOutput:
		raw := object{"type": "function_call_output", "call_id": e.CallID, "output": e.Output}
		if e.Name != "" {
			raw["name"] = e.Name
		}
		if e.Server != "" {
			raw["server_label"] = e.Server
		}
		return itemEvent(NameToolOutput, object{
			"type":     "tool_call_output_item",
			"agent":    agentRef(e.Agent),
			"output":   e.Output,
			"raw_item": raw,
		})
	case HandoffRequested:
		return itemEvent(NameHandoffRequested, object{
			"type":  "handoff_call_item",
			"agent": agentRef(e.Source),
			"raw_item": object{
				"type":      "function_call",
				"name":      "transfer_to_" + strings.ReplaceAll(e.Target, " ", "_"),
				"arguments": e.Arguments,
			},
		})
	case HandoffOccurred:
		return itemEvent(NameHandoffOccurred, object{
			"type":         "handoff_output_item",
			"source_agent": agentRef(e.Source),
			"target_agent": agentRef(e.Target),
		})
	case ReasoningCreated:
		return itemEvent(NameReasoningCreated, object{
			"type":  "reasoning_item",
			"agent": agentRef(e.Agent),
			"raw_item": object{
				"type":    "reasoning",
				"summary": []object{{"type": "summary_text", "text": e.Text}},
			},
		})
	case MCPListTools:
		tools := make([]object, 0, len(e.Tools))
		for _, t := range e.Tools {
			tools = append(tools, object{"name": t})
		}
		return itemEvent(NameMCPListTools, object{
			"type":     "mcp_list_tools_item",
			"agent":    agentRef(e.Agent),
			"raw_item": object{"type": "mcp_list_tools", "server_label": e.Server, "tools": tools},
		})
	case AgentUpdated:
		return object{"type": TypeAgentUpdated, "new_agent": agentRef(e.Name)}
	default:
		meta := ev.Meta()
		out := object{"type": meta.Type}
		if meta.Name != "" {
			out["name"] = meta.Name
		}
		return out
	}
}

func rawEvent(data object) object {
	return object{"type": TypeRawResponse, "data": data}
}

func itemEvent(name string, item object) object {
	return object{"type": TypeRunItem, "name": name, "item": item}
}

func agentRef(name string) object {
	return object{"name": name}
}
