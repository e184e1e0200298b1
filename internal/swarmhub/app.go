package swarmhub

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	genericconfig "github.com/kiosk404/swarmscope/internal/pkg/config"
	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/pkg/templates"
	"github.com/kiosk404/swarmscope/internal/pkg/utils/cliflag"
	"github.com/kiosk404/swarmscope/internal/pkg/version/verflag"
	"github.com/kiosk404/swarmscope/internal/swarmhub/config"
	"github.com/kiosk404/swarmscope/internal/swarmhub/options"
)

const (
	// AppName is the binary name and the default config file name.
	AppName = "swarmhub"

	flagConfig = "config"
)

// NewApp returns the swarmhub root command.
func NewApp(basename string) *cobra.Command {
	opts := options.NewOptions()

	cmd := &cobra.Command{
		Use:   basename,
		Short: "swarmhub records swarm runs and relays them to viewers",
		Long: templates.LongDesc(`
		swarmhub keeps the event streams of swarm runs and relays them to
		swarmctl viewers.

		POST a JSONL event stream to /v1/runs to record a run. The handoffs of
		the run are checked against the configured requirements and stored with
		it. GET /v1/runs/:id/events replays the events as server-sent events,
		ending with an "event: done" frame.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if len(arg) > 0 {
					return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			verflag.PrintAndExitIfRequested(cmd.OutOrStdout())

			if err := genericconfig.LoadConfig(viper.GetString(flagConfig), AppName); err != nil {
				return err
			}
			if err := viper.Unmarshal(opts); err != nil {
				return fmt.Errorf("decode configuration: %w", err)
			}
			cfg, err := config.CreateConfigFromOptions(opts)
			if err != nil {
				return err
			}
			if err := logger.Init(opts.Log); err != nil {
				return err
			}
			defer logger.Flush()
			logger.Debug("[Swarmhub] config: %s", opts)

			return Run(cmd.Context(), cfg)
		},
	}

	namedFlagSets := opts.Flags()
	verflag.AddFlags(namedFlagSets.FlagSet("global"))
	namedFlagSets.FlagSet("global").String(flagConfig, "", "Read configuration from the specified file, support JSON, TOML, YAML, HCL, or Java properties formats.")

	fs := cmd.Flags()
	fs.SetNormalizeFunc(cliflag.WordSepNormalizeFunc)
	namedFlagSets.AddTo(fs)
	_ = viper.BindPFlags(fs)

	usageFmt := "Usage:\n  %s\n"
	cols, _, _ := term.GetSize(int(os.Stdout.Fd()))
	cmd.SetUsageFunc(func(cmd *cobra.Command) error {
		fmt.Fprintf(cmd.OutOrStderr(), usageFmt, cmd.UseLine())
		cliflag.PrintSections(cmd.OutOrStderr(), namedFlagSets, cols)
		return nil
	})
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n"+usageFmt, cmd.Long, cmd.UseLine())
		cliflag.PrintSections(cmd.OutOrStdout(), namedFlagSets, cols)
	})

	return cmd
}
