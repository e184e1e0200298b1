// Package templates formats cobra help text and groups subcommands.
package templates

import (
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const indentation = `  `

// LongDesc normalizes a command's long description to follow the conventions.
func LongDesc(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.TrimSpace(heredoc.Doc(s))
}

// Examples normalizes a command's examples to follow the conventions.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}
	trimmed := strings.TrimSpace(heredoc.Doc(s))
	lines := strings.Split(trimmed, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indentation + line
		}
	}
	return strings.Join(lines, "\n")
}

// CommandGroup is a titled set of subcommands shown together in help output.
type CommandGroup struct {
	Message  string
	Commands []*cobra.Command
}

type CommandGroups []CommandGroup

// Add registers every group on c as a cobra group and attaches its commands.
func (g CommandGroups) Add(c *cobra.Command) {
	for _, group := range g {
		id := groupID(group.Message)
		c.AddGroup(&cobra.Group{ID: id, Title: group.Message})
		for _, sub := range group.Commands {
			sub.GroupID = id
			c.AddCommand(sub)
		}
	}
}

// Has reports whether c belongs to one of the groups.
func (g CommandGroups) Has(c *cobra.Command) bool {
	for _, group := range g {
		for _, command := range group.Commands {
			if command == c {
				return true
			}
		}
	}
	return false
}

func groupID(message string) string {
	id := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(message), ":"))
	id = strings.ReplaceAll(id, " ", "-")
	if id == "" {
		id = "group"
	}
	return id
}
