package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kiosk404/swarmscope/internal/pkg/cli/genericclioptions"
	"github.com/kiosk404/swarmscope/internal/pkg/templates"
	"github.com/kiosk404/swarmscope/internal/swarm/entity"
	cmdutil "github.com/kiosk404/swarmscope/internal/swarmctl/cmd/util"
)

var historyExample = templates.Examples(`
		# List the stored runs, most recent first
		swarmctl history

		# Show the last 5 runs
		swarmctl history --limit=5

		# Show one run with its handoffs
		swarmctl history --run 5b0c9c7e-4a5e-4a39-8f4e-0f0a5f5b8b51`)

// HistoryOptions is an options struct to support 'history' sub command.
type HistoryOptions struct {
	RunID string
	Limit int

	factory cmdutil.Factory
	genericclioptions.IOStreams
}

// NewHistoryOptions returns an initialized HistoryOptions instance.
func NewHistoryOptions(f cmdutil.Factory, ioStreams genericclioptions.IOStreams) *HistoryOptions {
	return &HistoryOptions{
		factory:   f,
		IOStreams: ioStreams,
		Limit:     20,
	}
}

// NewCmdHistory returns new initialized instance of 'history' sub command.
func NewCmdHistory(f cmdutil.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewHistoryOptions(f, ioStreams)

	cmd := &cobra.Command{
		Use:                   "history",
		DisableFlagsInUseLine: true,
		Aliases:               []string{"runs"},
		Short:                 "List the runs kept in the run store",
		Long:                  "List the runs kept in the run store, or show the details of one run.",
		Example:               historyExample,
		Args:                  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.CheckErr(o.Run(cmd.Context(), args))
		},
	}

	cmd.Flags().StringVar(&o.RunID, "run", o.RunID, "Show the details of one run.")
	cmd.Flags().IntVar(&o.Limit, "limit", o.Limit, "Maximum number of runs to list (0 lists all).")

	return cmd
}

// Run executes a history sub command using the specified options.
func (o *HistoryOptions) Run(ctx context.Context, args []string) error {
	st, err := o.factory.Store()
	if err != nil {
		return err
	}
	if o.RunID != "" {
		run, err := st.Runs.Get(ctx, o.RunID)
		if err != nil {
			return err
		}
		o.printRun(run)
		return nil
	}

	runs, err := st.Runs.List(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(o.Out, "No runs recorded.")
		return nil
	}
	if o.Limit > 0 && len(runs) > o.Limit {
		runs = runs[:o.Limit]
	}

	table := uitable.New()
	table.MaxColWidth = 48
	table.AddRow("ID", "STATUS", "EVENTS", "HANDOFFS", "REQUIREMENTS", "SOURCE", "CREATED")
	for _, run := range runs {
		table.AddRow(run.ID, run.Status, run.EventCount, len(run.Handoffs),
			requirementState(run), run.Source, run.CreatedAt.Format(time.DateTime))
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

func (o *HistoryOptions) printRun(run *entity.Run) {
	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true
	table.AddRow("ID:", run.ID)
	table.AddRow("Source:", run.Source)
	table.AddRow("Status:", run.Status)
	table.AddRow("Created:", run.CreatedAt.Format(time.DateTime))
	if run.CompletedAt != nil {
		table.AddRow("Completed:", run.CompletedAt.Format(time.DateTime))
	}
	table.AddRow("Events:", run.EventCount)
	table.AddRow("Tool calls:", run.ToolCallCount)
	if run.Error != nil {
		table.AddRow("Error:", run.Error.Error())
	}
	fmt.Fprintln(o.Out, table)

	if len(run.Requirements) > 0 {
		reqs := uitable.New()
		reqs.AddRow("ROLE", "HANDOFFS", "REQUIRED")
		for _, r := range run.Requirements {
			reqs.AddRow(r.Role, run.Counts[r.Role], r.Count)
		}
		fmt.Fprintf(o.Out, "\nRequirements:\n%s\n", reqs)
	}

	if extra := unrequiredRoles(run); len(extra) > 0 {
		fmt.Fprintf(o.Out, "\nOther roles: %s\n", strings.Join(extra, ", "))
	}

	if len(run.Handoffs) > 0 {
		hs := uitable.New()
		hs.AddRow("#", "FROM", "TO")
		for i, h := range run.Handoffs {
			hs.AddRow(i+1, h.Source, h.Target)
		}
		fmt.Fprintf(o.Out, "\nHandoffs:\n%s\n", hs)
	}

	for _, msg := range run.Missing {
		fmt.Fprintf(o.Out, "⚠ %s\n", msg)
	}
}

func requirementState(run *entity.Run) string {
	if !run.Status.IsTerminal() {
		return "-"
	}
	if run.RequirementsMet() {
		return "met"
	}
	return fmt.Sprintf("%d missing", len(run.Missing))
}

// unrequiredRoles lists the roles that handed off without a requirement.
func unrequiredRoles(run *entity.Run) []string {
	required := make(map[string]bool, len(run.Requirements))
	for _, r := range run.Requirements {
		required[r.Role] = true
	}
	var roles []string
	for role, n := range run.Counts {
		if !required[role] {
			roles = append(roles, fmt.Sprintf("%s=%d", role, n))
		}
	}
	sort.Strings(roles)
	return roles
}
