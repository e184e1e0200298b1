package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiosk404/swarmscope/internal/pkg/cli/genericclioptions"
	"github.com/kiosk404/swarmscope/internal/pkg/config"
	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/pkg/templates"
	"github.com/kiosk404/swarmscope/internal/pkg/utils/cliflag"
	"github.com/kiosk404/swarmscope/internal/pkg/version/verflag"
	"github.com/kiosk404/swarmscope/internal/swarmctl/cmd/history"
	"github.com/kiosk404/swarmscope/internal/swarmctl/cmd/replay"
	"github.com/kiosk404/swarmscope/internal/swarmctl/cmd/tools"
	cmdutil "github.com/kiosk404/swarmscope/internal/swarmctl/cmd/util"
	cmdversion "github.com/kiosk404/swarmscope/internal/swarmctl/cmd/version"
	"github.com/kiosk404/swarmscope/internal/swarmctl/cmd/watch"
)

// NewDefaultSwarmCtlCommand creates the `swarmctl` command with default arguments.
func NewDefaultSwarmCtlCommand() *cobra.Command {
	return NewSwarmCtlCommand(os.Stdin, os.Stdout, os.Stderr)
}

// NewSwarmCtlCommand returns new initialized instance of 'swarmctl' root command.
func NewSwarmCtlCommand(in io.Reader, out, err io.Writer) *cobra.Command {
	opts := cmdutil.NewOptions()
	f := cmdutil.NewFactory(opts)
	v := viper.New()

	// Parent command to which all subcommands are added.
	cmds := &cobra.Command{
		Use:   "swarmctl",
		Short: "swarmctl renders multi-agent swarm runs in the terminal",
		Long: templates.LongDesc(fmt.Sprintf(`%s
		swarmctl renders the event stream of a multi-agent swarm run.

		It shows each agent's reasoning, tool calls and messages as they stream,
		streams the output of highlighted tools live, and checks the recorded
		handoffs against the counts each role is required to reach.`, Banner())),
		Run: runHelp,
		// Hook before and after Run initialize and write profiles to disk,
		// respectively.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verflag.PrintAndExitIfRequested(cmd.OutOrStdout())
			if err := config.LoadInto(v, v.GetString(cmdutil.FlagConfig), "swarmctl"); err != nil {
				return err
			}
			if err := initProfiling(); err != nil {
				return err
			}
			return completeOptions(opts, v)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if err := f.Close(); err != nil {
				logger.Warn("[Swarmctl] failed to close run store: %v", err)
			}
			logger.Flush()
			return flushProfiling()
		},
		SilenceUsage: true,
	}
	flags := cmds.PersistentFlags()
	flags.SetNormalizeFunc(cliflag.WarnWordSepNormalizeFunc) // Warn for "_" flags

	// Normalize all flags that are coming from other packages or pre-configurations
	flags.SetNormalizeFunc(cliflag.WordSepNormalizeFunc)

	flags.String(cmdutil.FlagConfig, "", "Read configuration from the specified file, support JSON, TOML, YAML, HCL, or Java properties formats.")
	addProfilingFlags(flags)
	opts.AddFlags(flags)

	_ = v.BindPFlags(cmds.PersistentFlags())

	// From this point and forward we get warnings on flags that contain "_" separators
	cmds.SetGlobalNormalizationFunc(cliflag.WarnWordSepNormalizeFunc)

	ioStreams := genericclioptions.IOStreams{In: in, Out: out, ErrOut: err}

	groups := templates.CommandGroups{
		{
			Message: "Run Commands:",
			Commands: []*cobra.Command{
				replay.NewCmdReplay(f, ioStreams),
				watch.NewCmdWatch(f, ioStreams),
			},
		},
		{
			Message: "Inspection Commands:",
			Commands: []*cobra.Command{
				history.NewCmdHistory(f, ioStreams),
				tools.NewCmdTools(f, ioStreams),
			},
		},
		{
			Message: "Other Commands:",
			Commands: []*cobra.Command{
				cmdversion.NewCmdVersion(f, ioStreams),
			},
		},
	}
	groups.Add(cmds)

	verflag.AddFlags(cmds.PersistentFlags())
	cmds.SetIn(in)
	cmds.SetOut(out)
	cmds.SetErr(err)

	return cmds
}

func completeOptions(opts *cmdutil.Options, v *viper.Viper) error {
	if err := opts.Complete(v); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	return logger.Init(opts.Log)
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}
