package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/swarmscope/internal/pkg/cli/genericclioptions"
	"github.com/kiosk404/swarmscope/internal/swarm/entity"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
	cmdutil "github.com/kiosk404/swarmscope/internal/swarmctl/cmd/util"
)

func seeded(t *testing.T) cmdutil.Factory {
	t.Helper()
	opts := cmdutil.NewOptions()
	opts.Store.Driver = "memory"
	f := cmdutil.NewFactory(opts)
	t.Cleanup(func() { _ = f.Close() })

	st, err := f.Store()
	require.NoError(t, err)
	done := time.Now()
	run := &entity.Run{
		ID:           "run-1",
		Source:       "run.jsonl",
		Status:       entity.RunStatusCompleted,
		Requirements: []entity.Requirement{{Role: "Coder", Count: 2}},
		Counts:       map[string]int{"Coder": 1, "Manager": 1},
		Handoffs:     []entity.Handoff{{Source: "Coder", Target: "Auditor"}, {Source: "Manager", Target: "Coder"}},
		Missing:      []string{"Coder: needs 1 more handoff (1/2 completed)"},
		EventCount:   12,
		CreatedAt:    done.Add(-time.Minute),
		CompletedAt:  &done,
	}
	require.NoError(t, st.Runs.Create(context.Background(), run))
	return f
}

func TestHistory_List(t *testing.T) {
	streams, _, out, _ := genericclioptions.NewTestIOStreams()
	o := NewHistoryOptions(seeded(t), streams)

	require.NoError(t, o.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "run-1")
	assert.Contains(t, out.String(), "1 missing")
}

func TestHistory_Detail(t *testing.T) {
	streams, _, out, _ := genericclioptions.NewTestIOStreams()
	o := NewHistoryOptions(seeded(t), streams)
	o.RunID = "run-1"

	require.NoError(t, o.Run(context.Background(), nil))
	text := out.String()
	assert.Contains(t, text, "Handoffs:")
	assert.Contains(t, text, "Auditor")
	assert.Contains(t, text, "Other roles: Manager=1")
	assert.Contains(t, text, "⚠ Coder: needs 1 more handoff")
}

func TestHistory_Empty(t *testing.T) {
	opts := cmdutil.NewOptions()
	opts.Store.Driver = "memory"
	streams, _, out, _ := genericclioptions.NewTestIOStreams()

	require.NoError(t, NewHistoryOptions(cmdutil.NewFactory(opts), streams).Run(context.Background(), nil))
	assert.Contains(t, out.String(), "No runs recorded.")
}

func TestHistory_StoreDisabled(t *testing.T) {
	opts := cmdutil.NewOptions()
	opts.Store.Driver = "none"
	streams, _, _, _ := genericclioptions.NewTestIOStreams()

	err := NewHistoryOptions(cmdutil.NewFactory(opts), streams).Run(context.Background(), nil)
	assert.ErrorIs(t, err, errno.ErrStoreDisabled)
}

func TestHistory_UnknownRun(t *testing.T) {
	streams, _, _, _ := genericclioptions.NewTestIOStreams()
	o := NewHistoryOptions(seeded(t), streams)
	o.RunID = "nope"

	assert.ErrorIs(t, o.Run(context.Background(), nil), errno.ErrRunNotFound)
}
