package watch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/swarmscope/internal/pkg/cli/genericclioptions"
	cmdutil "github.com/kiosk404/swarmscope/internal/swarmctl/cmd/util"
)

func newFactory(t *testing.T) cmdutil.Factory {
	t.Helper()
	opts := cmdutil.NewOptions()
	opts.Store.Driver = "memory"
	opts.Swarm.Require = []string{"Coder=1"}
	f := cmdutil.NewFactory(opts)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWatchOptions_StreamURL(t *testing.T) {
	streams, _, _, _ := genericclioptions.NewTestIOStreams()
	o := NewWatchOptions(nil, streams)
	o.Server = "swarmhub:11790/"
	require.NoError(t, o.Complete(&cobra.Command{Use: "watch"}, nil))

	assert.Equal(t, "http://swarmhub:11790/v1/runs/abc/events", o.StreamURL("abc"))
	assert.Equal(t, "https://relay/x", o.StreamURL("https://relay/x"))
}

func TestWatch_RendersRelayedRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/runs/r1/events", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, `data: {"type":"raw_response_event","data":{"type":"response.output_text.delta","delta":"working"}}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"run_item_stream_event","name":"handoff_occurred","item":{"source_agent":{"name":"Coder"},"target_agent":{"name":"Auditor"}}}`+"\n\n")
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
	}))
	defer srv.Close()

	streams, _, out, _ := genericclioptions.NewTestIOStreams()
	o := NewWatchOptions(newFactory(t), streams)
	o.Server = srv.URL
	require.NoError(t, o.Complete(&cobra.Command{Use: "watch"}, []string{"r1"}))
	require.NoError(t, o.Run(context.Background(), []string{"r1"}))

	assert.Contains(t, out.String(), "working")
	assert.Contains(t, out.String(), "handoff Coder → Auditor")
	assert.Contains(t, out.String(), "all handoff requirements met")
}

func TestWatch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "run not found", http.StatusNotFound)
	}))
	defer srv.Close()

	streams, _, _, _ := genericclioptions.NewTestIOStreams()
	o := NewWatchOptions(newFactory(t), streams)
	err := o.Run(context.Background(), []string{srv.URL + "/v1/runs/nope/events"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
