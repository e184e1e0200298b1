package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	mobyterm "github.com/moby/term"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const defaultWidth = 80

// Kind selects how a fragment or panel is styled.
type Kind int

const (
	KindText Kind = iota
	KindReasoning
	KindArguments
	KindToolOutput
)

// LineStyle selects the color of a single status line.
type LineStyle int

const (
	LineAgent LineStyle = iota
	LineTool
	LineHandoff
	LineNotice
	LineWarn
	LineSuccess
)

// RenderOptions controls the terminal output.
type RenderOptions struct {
	Color    bool
	Width    int
	Markdown bool
}

// DetectTerminal reports whether w is a terminal and, if so, its width.
func DetectTerminal(w io.Writer) (bool, int) {
	fd, isTerminal := mobyterm.GetFdInfo(w)
	if !isTerminal {
		return false, defaultWidth
	}
	cols, _, err := term.GetSize(int(fd))
	if err != nil || cols <= 0 {
		return true, defaultWidth
	}
	return true, cols
}

// Renderer writes styled fragments, lines and panels to a single writer.
type Renderer struct {
	out      io.Writer
	width    int
	markdown *glamour.TermRenderer

	panels map[Kind]lipgloss.Style
	title  lipgloss.Style
	lines  map[LineStyle]*color.Color
	dim    *color.Color
}

// NewRenderer returns a Renderer writing to out.
func NewRenderer(out io.Writer, opts RenderOptions) *Renderer {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}

	lr := lipgloss.NewRenderer(out)
	profile := termenv.Ascii
	if opts.Color {
		profile = termenv.ANSI256
	}
	lr.SetColorProfile(profile)

	panel := func(c string) lipgloss.Style {
		return lr.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c)).
			Padding(0, 1).
			Width(width - 2)
	}

	newColor := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}

	r := &Renderer{
		out:   out,
		width: width,
		panels: map[Kind]lipgloss.Style{
			KindText:       panel("39"),
			KindReasoning:  panel("241"),
			KindArguments:  panel("208"),
			KindToolOutput: panel("42"),
		},
		title: lr.NewStyle().Bold(true),
		lines: map[LineStyle]*color.Color{
			LineAgent:   newColor(color.FgMagenta, color.Bold),
			LineTool:    newColor(color.FgYellow),
			LineHandoff: newColor(color.FgCyan, color.Bold),
			LineNotice:  newColor(color.FgHiBlack),
			LineWarn:    newColor(color.FgYellow, color.Bold),
			LineSuccess: newColor(color.FgGreen, color.Bold),
		},
		dim: newColor(color.Faint, color.Italic),
	}

	if opts.Markdown {
		style := "notty"
		if opts.Color {
			style = "dark"
		}
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithColorProfile(profile),
			glamour.WithWordWrap(width-4),
		)
		if err == nil {
			r.markdown = md
		}
	}
	return r
}

// Width returns the configured output width.
func (r *Renderer) Width() int { return r.width }

// Fragment writes a streamed token as is, without a trailing newline.
func (r *Renderer) Fragment(kind Kind, s string) {
	if kind == KindReasoning {
		r.dim.Fprint(r.out, s)
		return
	}
	fmt.Fprint(r.out, s)
}

// Newline ends the current line.
func (r *Renderer) Newline() {
	fmt.Fprintln(r.out)
}

// Line writes one colored status line.
func (r *Renderer) Line(style LineStyle, format string, args ...any) {
	c, ok := r.lines[style]
	if !ok {
		c = r.lines[LineNotice]
	}
	c.Fprintln(r.out, fmt.Sprintf(format, args...))
}

// Label writes the attribution line shown above a streamed span or message.
func (r *Renderer) Label(agent, suffix string) {
	if agent == "" {
		agent = "assistant"
	}
	if suffix != "" {
		agent += " " + suffix
	}
	r.lines[LineAgent].Fprintln(r.out, agent)
}

// Panel writes body in a bordered box with a bold title line.
func (r *Renderer) Panel(kind Kind, title, body string) {
	style, ok := r.panels[kind]
	if !ok {
		style = r.panels[KindText]
	}
	body = wordwrap.WrapString(strings.TrimRight(body, "\n"), uint(r.width-6))
	content := body
	if title != "" {
		content = r.title.Render(title) + "\n" + body
	}
	fmt.Fprintln(r.out, style.Render(content))
}

// Message writes a complete assistant message attributed to agent.
func (r *Renderer) Message(agent, text string) {
	r.Label(agent, "")
	fmt.Fprintln(r.out, r.renderBody(text))
}

func (r *Renderer) renderBody(text string) string {
	if r.markdown != nil {
		rendered, err := r.markdown.Render(text)
		if err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	return wordwrap.WrapString(strings.TrimRight(text, "\n"), uint(r.width))
}
