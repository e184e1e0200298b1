package tools

import (
	"context"
	"fmt"

	"github.com/bytedance/gg/gslice"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kiosk404/swarmscope/internal/pkg/cli/genericclioptions"
	"github.com/kiosk404/swarmscope/internal/pkg/templates"
	"github.com/kiosk404/swarmscope/internal/swarm/mcp"
	cmdutil "github.com/kiosk404/swarmscope/internal/swarmctl/cmd/util"
)

var toolsExample = templates.Examples(`
		# List the tools of every server in ./mcp.json
		swarmctl tools

		# Use another MCP configuration file
		swarmctl tools --mcp.config-file=$HOME/.swarmscope/mcp.json

		# Only show the highlighted tool family
		swarmctl tools --highlighted`)

// ToolsOptions is an options struct to support 'tools' sub command.
type ToolsOptions struct {
	Highlighted bool

	factory cmdutil.Factory
	genericclioptions.IOStreams
}

// NewToolsOptions returns an initialized ToolsOptions instance.
func NewToolsOptions(f cmdutil.Factory, ioStreams genericclioptions.IOStreams) *ToolsOptions {
	return &ToolsOptions{
		factory:   f,
		IOStreams: ioStreams,
	}
}

// NewCmdTools returns new initialized instance of 'tools' sub command.
func NewCmdTools(f cmdutil.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewToolsOptions(f, ioStreams)

	cmd := &cobra.Command{
		Use:                   "tools",
		DisableFlagsInUseLine: true,
		Short:                 "List the tools of the configured MCP servers",
		Long: templates.LongDesc(`
		Connect to every MCP server in the MCP configuration file and list the
		tools it exposes. Tools matching the highlight patterns
		(--stream.highlight-patterns) are marked; their output is streamed live
		during a run.`),
		Example: toolsExample,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.CheckErr(o.Run(cmd.Context(), args))
		},
	}

	cmd.Flags().BoolVar(&o.Highlighted, "highlighted", o.Highlighted, "Only list highlighted tools.")

	return cmd
}

// Run executes a tools sub command using the specified options.
func (o *ToolsOptions) Run(ctx context.Context, args []string) error {
	manager, err := o.factory.MCPManager()
	if err != nil {
		return err
	}
	defer manager.Close()

	results, err := manager.Discover(ctx)
	if len(results) == 0 && err == nil {
		fmt.Fprintf(o.Out, "No MCP servers configured in %s.\n", o.factory.Options().MCP.ConfigFile)
		return nil
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("SERVER", "TOOL", "HIGHLIGHTED", "DESCRIPTION")
	for _, res := range results {
		for _, tool := range filter(res.Tools, o.Highlighted) {
			mark := ""
			if tool.Highlighted {
				mark = "*"
			}
			table.AddRow(tool.Server, tool.Name, mark, tool.Description)
		}
	}
	fmt.Fprintln(o.Out, table)

	for _, res := range results {
		if res.Status == mcp.ServerStatusError {
			fmt.Fprintf(o.ErrOut, "server %s (%s): %v\n", res.Server, res.Transport, res.Err)
		}
	}
	return err
}

func filter(tools []mcp.Tool, highlightedOnly bool) []mcp.Tool {
	if !highlightedOnly {
		return tools
	}
	return gslice.Filter(tools, func(t mcp.Tool) bool { return t.Highlighted })
}
