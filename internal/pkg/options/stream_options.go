package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

const (
	DefaultBufferSize    = 5
	DefaultMaxToolOutput = 500
)

// StreamOptions holds the toggles of the event display pipeline.
//
// Each of the first four fields can also be set from the environment:
// SWARM_DEBUG_EVENTS, SWARM_EVENT_BUFFERING, SWARM_EVENT_BUFFER_SIZE and
// SWARM_HIGHLIGHT_CODEX.
type StreamOptions struct {
	// DebugEvents dumps every event's type, name and attribute keys.
	DebugEvents bool `json:"debug-events" mapstructure:"debug-events"`
	// Buffering routes events through the reordering window.
	Buffering bool `json:"buffering" mapstructure:"buffering"`
	// BufferSize is the reordering window capacity.
	BufferSize int `json:"buffer-size" mapstructure:"buffer-size"`
	// Highlight enables streamed display for the highlighted tool family.
	Highlight bool `json:"highlight" mapstructure:"highlight"`
	// HighlightPatterns are matched against tool and server names.
	HighlightPatterns []string `json:"highlight-patterns" mapstructure:"highlight-patterns"`
	// CatchAll prints a notice for events the describer does not handle.
	CatchAll bool `json:"catch-all" mapstructure:"catch-all"`
	// Markdown renders final agent messages as markdown.
	Markdown bool `json:"markdown" mapstructure:"markdown"`
	// MaxToolOutput caps non-streamed tool output, in characters.
	MaxToolOutput int `json:"max-tool-output" mapstructure:"max-tool-output"`
}

func NewStreamOptions() *StreamOptions {
	return &StreamOptions{
		DebugEvents:       false,
		Buffering:         true,
		BufferSize:        DefaultBufferSize,
		Highlight:         true,
		HighlightPatterns: []string{"codex"},
		MaxToolOutput:     DefaultMaxToolOutput,
	}
}

func (o *StreamOptions) Validate() []error {
	var errs []error
	if o.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("stream.buffer-size must be positive, got %d", o.BufferSize))
	}
	if o.MaxToolOutput <= 0 {
		errs = append(errs, fmt.Errorf("stream.max-tool-output must be positive, got %d", o.MaxToolOutput))
	}
	return errs
}

func (o *StreamOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.DebugEvents, "stream.debug-events", o.DebugEvents, "Dump the raw type, name and attribute keys of every event.")
	fs.BoolVar(&o.Buffering, "stream.buffering", o.Buffering, "Buffer events so reasoning is shown before the tool call it explains.")
	fs.IntVar(&o.BufferSize, "stream.buffer-size", o.BufferSize, "Size of the event reordering window.")
	fs.BoolVar(&o.Highlight, "stream.highlight", o.Highlight, "Stream the output of highlighted tools (codex) as it arrives.")
	fs.StringSliceVar(&o.HighlightPatterns, "stream.highlight-patterns", o.HighlightPatterns, "Tool or server name fragments that select highlighted tools.")
	fs.BoolVar(&o.CatchAll, "stream.catch-all", o.CatchAll, "Print a notice for events that are not displayed.")
	fs.BoolVar(&o.Markdown, "stream.markdown", o.Markdown, "Render agent messages as markdown.")
	fs.IntVar(&o.MaxToolOutput, "stream.max-tool-output", o.MaxToolOutput, "Maximum characters of tool output shown when it was not streamed.")
}
