package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiosk404/swarmscope/internal/pkg/cli/genericclioptions"
	"github.com/kiosk404/swarmscope/internal/pkg/templates"
	"github.com/kiosk404/swarmscope/internal/pkg/version"
	cmdutil "github.com/kiosk404/swarmscope/internal/swarmctl/cmd/util"
)

var versionExample = templates.Examples(`
		# Print the swarmctl version
		swarmctl version

		# Print only the version string
		swarmctl version --short

		# Print the build information as JSON
		swarmctl version -o json`)

// VersionOptions is an options struct to support 'version' sub command.
type VersionOptions struct {
	Short  bool
	Output string

	genericclioptions.IOStreams
}

// NewVersionOptions returns an initialized VersionOptions instance.
func NewVersionOptions(ioStreams genericclioptions.IOStreams) *VersionOptions {
	return &VersionOptions{IOStreams: ioStreams}
}

// NewCmdVersion returns new initialized instance of 'version' sub command.
func NewCmdVersion(f cmdutil.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewVersionOptions(ioStreams)

	cmd := &cobra.Command{
		Use:                   "version",
		DisableFlagsInUseLine: true,
		Short:                 "Print the client version information",
		Long:                  "Print the client version information for the current context",
		Example:               versionExample,
		Args:                  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.CheckErr(o.Validate())
			cmdutil.CheckErr(o.Run())
		},
	}

	cmd.Flags().BoolVar(&o.Short, "short", o.Short, "If true, print just the version number.")
	cmd.Flags().StringVarP(&o.Output, "output", "o", o.Output, "One of 'text' or 'json'.")

	return cmd
}

// Validate checks the output format.
func (o *VersionOptions) Validate() error {
	if o.Output != "" && o.Output != "text" && o.Output != "json" {
		return fmt.Errorf("--output must be 'text' or 'json', got %q", o.Output)
	}
	return nil
}

// Run prints the version information.
func (o *VersionOptions) Run() error {
	info := version.Get()
	switch {
	case o.Short:
		fmt.Fprintf(o.Out, "%s\n", info)
	case o.Output == "json":
		fmt.Fprintln(o.Out, info.ToJSON())
	default:
		fmt.Fprintln(o.Out, info.Text())
	}
	return nil
}
