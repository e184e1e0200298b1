package replay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiosk404/swarmscope/internal/pkg/cli/genericclioptions"
	"github.com/kiosk404/swarmscope/internal/pkg/templates"
	"github.com/kiosk404/swarmscope/internal/swarm/pipeline"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
	"github.com/kiosk404/swarmscope/internal/swarm/source"
	"github.com/kiosk404/swarmscope/internal/swarm/store"
	cmdutil "github.com/kiosk404/swarmscope/internal/swarmctl/cmd/util"
)

var replayExample = templates.Examples(`
		# Render a recorded run
		swarmctl replay run.jsonl

		# Render events piped from the agent runtime
		my-swarm --emit-events | swarmctl replay -

		# Follow a file the runtime is still writing, stop after 30s of silence
		swarmctl replay --follow --idle-timeout=30s run.jsonl

		# Render a run kept in the local store
		swarmctl replay --run 5b0c9c7e-4a5e-4a39-8f4e-0f0a5f5b8b51

		# Show reasoning in arrival order
		swarmctl replay --stream.buffering=false run.jsonl`)

// ReplayOptions is an options struct to support 'replay' sub command.
type ReplayOptions struct {
	Follow      bool
	IdleTimeout time.Duration
	Record      bool
	RunID       string

	factory cmdutil.Factory
	genericclioptions.IOStreams
}

// NewReplayOptions returns an initialized ReplayOptions instance.
func NewReplayOptions(f cmdutil.Factory, ioStreams genericclioptions.IOStreams) *ReplayOptions {
	return &ReplayOptions{
		factory:   f,
		IOStreams: ioStreams,
		Record:    true,
	}
}

// NewCmdReplay returns new initialized instance of 'replay' sub command.
func NewCmdReplay(f cmdutil.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewReplayOptions(f, ioStreams)

	cmd := &cobra.Command{
		Use:                   "replay [FILE|-]",
		DisableFlagsInUseLine: true,
		Short:                 "Render a swarm run from a JSONL event stream",
		Long: templates.LongDesc(`
		Render the events of one swarm run, one JSON object per line.

		Reasoning items that arrive after the tool call they explain are moved in
		front of it. When the stream ends the recorded handoffs are checked against
		the required counts (--swarm.require). Missing handoffs are reported as
		warnings and do not change the exit code.

		Without arguments, or with "-", events are read from standard input.`),
		Example: replayExample,
		Args:    cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.CheckErr(o.Validate(cmd, args))
			cmdutil.CheckErr(o.Run(cmd.Context(), args))
		},
	}

	cmd.Flags().BoolVarP(&o.Follow, "follow", "f", o.Follow, "Keep reading the file as it grows, until it is removed or the idle timeout expires.")
	cmd.Flags().DurationVar(&o.IdleTimeout, "idle-timeout", o.IdleTimeout, "Stop following after this long without new events (0 waits forever).")
	cmd.Flags().BoolVar(&o.Record, "record", o.Record, "Keep the events in the run store so the run can be replayed or relayed later.")
	cmd.Flags().StringVar(&o.RunID, "run", o.RunID, "Replay a run from the run store instead of a file.")

	return cmd
}

// Validate checks the flag combination.
func (o *ReplayOptions) Validate(cmd *cobra.Command, args []string) error {
	if o.RunID != "" && len(args) > 0 {
		return cmdutil.UsageErrorf(cmd.CommandPath(), "--run and a FILE argument are mutually exclusive")
	}
	if o.Follow && (len(args) == 0 || args[0] == "-") {
		return cmdutil.UsageErrorf(cmd.CommandPath(), "--follow needs a FILE argument")
	}
	if o.IdleTimeout < 0 {
		return cmdutil.UsageErrorf(cmd.CommandPath(), "--idle-timeout must not be negative")
	}
	return nil
}

// Run executes a replay sub command using the specified options.
func (o *ReplayOptions) Run(ctx context.Context, args []string) error {
	reqs, err := o.factory.Options().Requirements()
	if err != nil {
		return err
	}

	st, err := o.factory.Store()
	if err != nil && !errors.Is(err, errno.ErrStoreDisabled) {
		return err
	}

	src, label, err := o.openSource(ctx, st, args)
	if err != nil {
		return err
	}
	defer src.Close()

	run, err := o.factory.Runner(o.Out, o.ErrOut, st).Run(ctx, src, pipeline.RunRequest{
		Source:       label,
		Requirements: reqs,
		// a stored run is already recorded
		Record: o.Record && o.RunID == "",
	})
	cmdutil.PrintRunFooter(o.ErrOut, run, st != nil)
	return err
}

func (o *ReplayOptions) openSource(ctx context.Context, st *store.Store, args []string) (source.Source, string, error) {
	switch {
	case o.RunID != "":
		if st == nil {
			return nil, "", fmt.Errorf("replay run %s: %w", o.RunID, errno.ErrStoreDisabled)
		}
		if _, err := st.Runs.Get(ctx, o.RunID); err != nil {
			return nil, "", err
		}
		lines, err := st.Events.Events(ctx, o.RunID)
		if err != nil {
			return nil, "", fmt.Errorf("load events of run %s: %w", o.RunID, err)
		}
		label := "run " + o.RunID
		return source.NewReaderSource(label, bytes.NewReader(bytes.Join(lines, []byte("\n")))), label, nil
	case len(args) == 0 || args[0] == "-":
		return source.NewReaderSource("stdin", o.In), "stdin", nil
	case o.Follow:
		src, err := source.NewFileFollower(ctx, args[0], o.IdleTimeout)
		if err != nil {
			return nil, "", err
		}
		return src, args[0], nil
	default:
		f, err := os.Open(args[0])
		if err != nil {
			return nil, "", err
		}
		return source.NewReaderSource(args[0], f), args[0], nil
	}
}
