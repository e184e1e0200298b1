package event

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"

	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
)

// maxKeyDepth bounds how deep Decode walks the payload to collect Keys.
const maxKeyDepth = 4

// Decode turns one JSON-encoded stream event into its variant.
//
// It fails only when line is not a JSON object. Missing or oddly shaped
// attributes below the envelope decode as empty values, and unrecognized
// types or names decode as Unknown.
func Decode(line []byte) (Event, error) {
	if !sonic.Valid(line) {
		return nil, fmt.Errorf("%w: invalid JSON", errno.ErrMalformedEvent)
	}
	root := ast.NewRaw(string(line))
	if typeOf(&root) != ast.V_OBJECT {
		return nil, fmt.Errorf("%w: not a JSON object", errno.ErrMalformedEvent)
	}

	env := Envelope{
		Type: str(root.Get("type")),
		Name: str(root.Get("name")),
		Keys: collectKeys(&root),
	}

	switch env.Type {
	case TypeRawResponse:
		return decodeRaw(env, root.Get("data")), nil
	case TypeRunItem:
		return decodeItem(env, root.Get("item")), nil
	case TypeAgentUpdated:
		return AgentUpdated{Envelope: env, Name: str(root.GetByPath("new_agent", "name"))}, nil
	default:
		return Unknown{Envelope: env}, nil
	}
}

func decodeRaw(env Envelope, data *ast.Node) Event {
	kind := str(data.Get("type"))
	delta := data.Get("delta")
	if typeOf(delta) != ast.V_STRING {
		return RawResponse{Envelope: env, Kind: kind}
	}
	text := str(delta)

	switch {
	case kind == DeltaReasoningSummary || kind == DeltaReasoningText:
		return ReasoningDelta{Envelope: env, Delta: text}
	case kind == DeltaToolOutput,
		strings.Contains(kind, "tool_output"),
		strings.Contains(kind, "function_call_output"),
		data.Get("call_id").Exists():
		return ToolOutputDelta{Envelope: env, CallID: str(data.Get("call_id")), Delta: text}
	default:
		return TextDelta{Envelope: env, Delta: text}
	}
}

func decodeItem(env Envelope, item *ast.Node) Event {
	raw := item.Get("raw_item")
	agent := str(item.GetByPath("agent", "name"))

	switch env.Name {
	case NameMessageOutputCreated:
		return MessageOutputCreated{Envelope: env, Agent: agent, Text: contentText(raw.Get("content"))}

	case NameToolCalled:
		return ToolCalled{
			Envelope:  env,
			Agent:     agent,
			CallID:    firstNonEmpty(str(raw.Get("call_id")), str(raw.Get("id"))),
			Name:      str(raw.Get("name")),
			Server:    str(raw.Get("server_label")),
			Arguments: text(raw.Get("arguments")),
		}

	case NameToolOutput:
		return ToolOutput{
			Envelope: env,
			Agent:    agent,
			CallID:   firstNonEmpty(str(raw.Get("call_id")), str(raw.Get("id"))),
			Name:     str(raw.Get("name")),
			Server:   str(raw.Get("server_label")),
			Output:   firstNonEmpty(text(item.Get("output")), text(raw.Get("output"))),
		}

	case NameHandoffRequested:
		target := str(item.GetByPath("target_agent", "name"))
		if target == "" {
			target = HandoffTarget(str(raw.Get("name")))
		}
		return HandoffRequested{
			Envelope:  env,
			Source:    firstNonEmpty(str(item.GetByPath("source_agent", "name")), agent),
			Target:    target,
			Arguments: text(raw.Get("arguments")),
		}

	case NameHandoffOccurred, nameHandoffOccured:
		env.Name = NameHandoffOccurred
		return HandoffOccurred{
			Envelope: env,
			Source:   str(item.GetByPath("source_agent", "name")),
			Target:   str(item.GetByPath("target_agent", "name")),
		}

	case NameReasoningCreated:
		body := joinTexts(raw.Get("summary"))
		if body == "" {
			body = joinTexts(raw.Get("content"))
		}
		return ReasoningCreated{Envelope: env, Agent: agent, Text: body}

	case NameMCPListTools:
		var tools []string
		_ = raw.Get("tools").ForEach(func(_ ast.Sequence, n *ast.Node) bool {
			if name := str(n.Get("name")); name != "" {
				tools = append(tools, name)
			}
			return true
		})
		return MCPListTools{Envelope: env, Agent: agent, Server: str(raw.Get("server_label")), Tools: tools}

	default:
		return Unknown{Envelope: env}
	}
}

// HandoffTarget derives the target agent from a "transfer_to_<agent>" tool
// name, returning "" for any other tool.
func HandoffTarget(tool string) string {
	target, ok := strings.CutPrefix(tool, "transfer_to_")
	if !ok {
		return ""
	}
	return strings.ReplaceAll(target, "_", " ")
}

// contentText flattens message content: a bare string, or the text (or
// refusal) of every block of a content array.
func contentText(content *ast.Node) string {
	if typeOf(content) == ast.V_STRING {
		return str(content)
	}
	var b strings.Builder
	_ = content.ForEach(func(_ ast.Sequence, block *ast.Node) bool {
		if t := str(block.Get("text")); t != "" {
			b.WriteString(t)
		} else if r := str(block.Get("refusal")); r != "" {
			b.WriteString(r)
		}
		return true
	})
	return b.String()
}

// joinTexts joins the "text" of every element of an array with blank lines.
func joinTexts(arr *ast.Node) string {
	var parts []string
	_ = arr.ForEach(func(_ ast.Sequence, n *ast.Node) bool {
		if t := str(n.Get("text")); t != "" {
			parts = append(parts, t)
		}
		return true
	})
	return strings.Join(parts, "\n\n")
}

func typeOf(n *ast.Node) int {
	if !n.Exists() {
		return ast.V_NONE
	}
	return n.TypeSafe()
}

// str returns n as a string when it is one, "" otherwise.
func str(n *ast.Node) string {
	if typeOf(n) != ast.V_STRING {
		return ""
	}
	s, err := n.StrictString()
	if err != nil {
		return ""
	}
	return s
}

// text returns a string value as is and any other non-null value as raw JSON.
func text(n *ast.Node) string {
	switch typeOf(n) {
	case ast.V_NONE, ast.V_NULL, ast.V_ERROR:
		return ""
	case ast.V_STRING:
		return str(n)
	}
	raw, err := n.Raw()
	if err != nil {
		return ""
	}
	return raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// collectKeys lists the dotted attribute paths of root, arrays marked "[]".
func collectKeys(root *ast.Node) []string {
	var keys []string
	var walk func(prefix string, n *ast.Node, depth int)
	walk = func(prefix string, n *ast.Node, depth int) {
		if depth > maxKeyDepth {
			return
		}
		switch typeOf(n) {
		case ast.V_OBJECT:
			_ = n.ForEach(func(path ast.Sequence, child *ast.Node) bool {
				if path.Key == nil {
					return true
				}
				key := *path.Key
				if prefix != "" {
					key = prefix + "." + key
				}
				keys = append(keys, key)
				walk(key, child, depth+1)
				return true
			})
		case ast.V_ARRAY:
			first := n.Index(0)
			if typeOf(first) == ast.V_OBJECT {
				walk(prefix+"[]", first, depth+1)
			}
		}
	}
	walk("", root, 1)
	return keys
}
