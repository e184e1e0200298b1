package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/swarmscope/internal/pkg/cli/genericclioptions"
	"github.com/kiosk404/swarmscope/internal/swarm/entity"
	cmdutil "github.com/kiosk404/swarmscope/internal/swarmctl/cmd/util"
)

const runLines = `{"type":"agent_updated_stream_event","new_agent":{"name":"Task Master"}}
{"type":"run_item_stream_event","name":"handoff_occurred","item":{"source_agent":{"name":"Task Master"},"target_agent":{"name":"Coder"}}}

{"type":"run_item_stream_event","name":"message_output_created","item":{"agent":{"name":"Coder"},"raw_item":{"content":[{"type":"output_text","text":"Patched the parser."}]}}}
not json
{"type":"run_item_stream_event","name":"handoff_occured","item":{"source_agent":{"name":"Coder"},"target_agent":{"name":"Auditor"}}}
`

func newFactory(t *testing.T) cmdutil.Factory {
	t.Helper()
	opts := cmdutil.NewOptions()
	opts.Store.Driver = "memory"
	f := cmdutil.NewFactory(opts)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func writeRun(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(runLines), 0o644))
	return path
}

func TestReplay_File(t *testing.T) {
	f := newFactory(t)
	streams, _, out, errOut := genericclioptions.NewTestIOStreams()
	o := NewReplayOptions(f, streams)

	require.NoError(t, o.Run(context.Background(), []string{writeRun(t)}))

	text := out.String()
	assert.Contains(t, text, "handoff Task Master → Coder")
	assert.Contains(t, text, "handoff Coder → Auditor")
	assert.Contains(t, text, "Patched the parser.")
	assert.Contains(t, text, "2 handoff(s) recorded")
	assert.Contains(t, text, "Task Master: needs 1 more handoff (1/2 completed)")
	assert.Contains(t, errOut.String(), string(entity.RunStatusCompleted))

	st, err := f.Store()
	require.NoError(t, err)
	runs, err := st.Runs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 4, runs[0].EventCount)
	assert.False(t, runs[0].RequirementsMet())
}

func TestReplay_Stdin(t *testing.T) {
	f := newFactory(t)
	streams, in, out, _ := genericclioptions.NewTestIOStreams()
	in.WriteString(runLines)
	o := NewReplayOptions(f, streams)

	require.NoError(t, o.Run(context.Background(), []string{"-"}))
	assert.Contains(t, out.String(), "2 handoff(s) recorded")
}

func TestReplay_StoredRun(t *testing.T) {
	f := newFactory(t)
	streams, _, first, _ := genericclioptions.NewTestIOStreams()
	require.NoError(t, NewReplayOptions(f, streams).Run(context.Background(), []string{writeRun(t)}))

	st, err := f.Store()
	require.NoError(t, err)
	runs, err := st.Runs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)

	streams, _, second, _ := genericclioptions.NewTestIOStreams()
	o := NewReplayOptions(f, streams)
	o.RunID = runs[0].ID
	require.NoError(t, o.Run(context.Background(), nil))

	assert.Equal(t, first.String(), second.String())

	runs, err = st.Runs.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestReplay_UnknownStoredRun(t *testing.T) {
	f := newFactory(t)
	streams, _, _, _ := genericclioptions.NewTestIOStreams()
	o := NewReplayOptions(f, streams)
	o.RunID = "missing"
	assert.Error(t, o.Run(context.Background(), nil))
}

func TestReplay_Validate(t *testing.T) {
	cmd := &cobra.Command{Use: "replay"}
	streams, _, _, _ := genericclioptions.NewTestIOStreams()

	tests := []struct {
		name    string
		mutate  func(*ReplayOptions)
		args    []string
		wantErr string
	}{
		{name: "file", args: []string{"run.jsonl"}},
		{name: "run and file", mutate: func(o *ReplayOptions) { o.RunID = "x" }, args: []string{"run.jsonl"}, wantErr: "mutually exclusive"},
		{name: "follow stdin", mutate: func(o *ReplayOptions) { o.Follow = true }, args: []string{"-"}, wantErr: "needs a FILE"},
		{name: "negative idle", mutate: func(o *ReplayOptions) { o.IdleTimeout = -1 }, args: []string{"run.jsonl"}, wantErr: "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewReplayOptions(nil, streams)
			if tt.mutate != nil {
				tt.mutate(o)
			}
			err := o.Validate(cmd, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}
