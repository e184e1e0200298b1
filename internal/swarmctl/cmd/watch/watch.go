package watch

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kiosk404/swarmscope/internal/pkg/cli/genericclioptions"
	"github.com/kiosk404/swarmscope/internal/pkg/templates"
	"github.com/kiosk404/swarmscope/internal/swarm/pipeline"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
	"github.com/kiosk404/swarmscope/internal/swarm/source"
	cmdutil "github.com/kiosk404/swarmscope/internal/swarmctl/cmd/util"
)

const defaultServer = "http://127.0.0.1:11790"

var watchExample = templates.Examples(`
		# Watch a run relayed by swarmhub
		swarmctl watch 5b0c9c7e-4a5e-4a39-8f4e-0f0a5f5b8b51

		# Watch a run on another relay
		swarmctl watch --server=http://swarmhub:11790 5b0c9c7e-4a5e-4a39-8f4e-0f0a5f5b8b51

		# Watch any server-sent event stream of run events
		swarmctl watch http://localhost:8000/runs/latest/events`)

// WatchOptions is an options struct to support 'watch' sub command.
type WatchOptions struct {
	Server string
	Record bool

	factory cmdutil.Factory
	genericclioptions.IOStreams
}

// NewWatchOptions returns an initialized WatchOptions instance.
func NewWatchOptions(f cmdutil.Factory, ioStreams genericclioptions.IOStreams) *WatchOptions {
	return &WatchOptions{
		factory:   f,
		IOStreams: ioStreams,
		Server:    defaultServer,
	}
}

// NewCmdWatch returns new initialized instance of 'watch' sub command.
func NewCmdWatch(f cmdutil.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewWatchOptions(f, ioStreams)

	cmd := &cobra.Command{
		Use:                   "watch (RUN_ID|URL)",
		DisableFlagsInUseLine: true,
		Short:                 "Render a swarm run streamed over server-sent events",
		Long: templates.LongDesc(`
		Connect to a server-sent event stream of run events and render it as it
		arrives.

		A bare run id is resolved against the swarmhub relay given by --server.
		The stream ends on an "event: done" frame, a "data: [DONE]" line or when
		the server closes the connection.`),
		Example: watchExample,
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.CheckErr(o.Complete(cmd, args))
			cmdutil.CheckErr(o.Run(cmd.Context(), args))
		},
	}

	cmd.Flags().StringVar(&o.Server, "server", o.Server, "Address of the swarmhub relay server.")
	cmd.Flags().BoolVar(&o.Record, "record", o.Record, "Keep the events in the local run store.")

	return cmd
}

// Complete normalizes the server address.
func (o *WatchOptions) Complete(cmd *cobra.Command, args []string) error {
	if o.Server == "" {
		return cmdutil.UsageErrorf(cmd.CommandPath(), "--server must not be empty")
	}
	if !strings.HasPrefix(o.Server, "http://") && !strings.HasPrefix(o.Server, "https://") {
		o.Server = "http://" + o.Server
	}
	o.Server = strings.TrimSuffix(o.Server, "/")
	return nil
}

// StreamURL resolves the argument to the URL of an event stream.
func (o *WatchOptions) StreamURL(arg string) string {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return arg
	}
	return o.Server + "/v1/runs/" + url.PathEscape(arg) + "/events"
}

// Run executes a watch sub command using the specified options.
func (o *WatchOptions) Run(ctx context.Context, args []string) error {
	reqs, err := o.factory.Options().Requirements()
	if err != nil {
		return err
	}

	st, err := o.factory.Store()
	if err != nil && !errors.Is(err, errno.ErrStoreDisabled) {
		return err
	}

	target := o.StreamURL(args[0])
	src, err := source.NewSSESource(ctx, o.factory.HTTPClient(), target)
	if err != nil {
		return err
	}
	defer src.Close()

	run, err := o.factory.Runner(o.Out, o.ErrOut, st).Run(ctx, src, pipeline.RunRequest{
		Source:       target,
		Requirements: reqs,
		Record:       o.Record,
	})
	cmdutil.PrintRunFooter(o.ErrOut, run, st != nil)
	return err
}
