package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/swarmscope/internal/swarm/event"
)

const (
	textLine    = `{"type":"raw_response_event","data":{"type":"response.output_text.delta","delta":"hi"}}`
	handoffLine = `{"type":"run_item_stream_event","name":"handoff_occurred","item":{"source_agent":{"name":"Coder"},"target_agent":{"name":"Auditor"}}}`
)

func drain(t *testing.T, src Source) []event.Event {
	t.Helper()
	var out []event.Event
	for {
		ev, err := src.Recv()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, ev)
	}
}

func TestReaderSource_SkipsBlankAndBadLines(t *testing.T) {
	input := strings.Join([]string{textLine, "", "   ", "not json", `[1]`, handoffLine}, "\n")
	src := NewReaderSource("test", strings.NewReader(input))
	defer src.Close()

	got := drain(t, src)
	require.Len(t, got, 2)
	assert.IsType(t, event.TextDelta{}, got[0])
	assert.Equal(t, "Coder", got[1].(event.HandoffOccurred).Source)

	_, err := src.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func largeTextLine(size int) string {
	return `{"type":"raw_response_event","data":{"type":"response.output_text.delta","delta":"` +
		strings.Repeat("x", size) + `"}}`
}

func TestReaderSource_LongLines(t *testing.T) {
	big := largeTextLine(5 << 20)
	input := strings.Join([]string{big, "{" + strings.Repeat("y", 5<<20), handoffLine}, "\n")
	src := NewReaderSource("test", strings.NewReader(input))
	defer src.Close()

	got := drain(t, src)
	require.Len(t, got, 2)
	assert.Len(t, got[0].(event.TextDelta).Delta, 5<<20)
	assert.Equal(t, "Coder", got[1].(event.HandoffOccurred).Source)
}

func TestReaderSource_CRLFAndUnterminatedLastLine(t *testing.T) {
	src := NewReaderSource("test", strings.NewReader(textLine+"\r\n"+handoffLine))
	defer src.Close()

	got := drain(t, src)
	require.Len(t, got, 2)
	assert.IsType(t, event.HandoffOccurred{}, got[1])
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource(event.TextDelta{Delta: "a"}, event.TextDelta{Delta: "b"})
	ev, err := src.Recv()
	require.NoError(t, err)
	assert.Equal(t, event.TextDelta{Delta: "a"}, ev)

	require.NoError(t, src.Close())
	_, err = src.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSSESource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", textLine)
		fmt.Fprintf(w, "data:%s\n\n", handoffLine)
		fmt.Fprint(w, "data: garbage\n\n")
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
		fmt.Fprintf(w, "data: %s\n\n", textLine)
	}))
	defer srv.Close()

	src, err := NewSSESource(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	defer src.Close()

	got := drain(t, src)
	require.Len(t, got, 2)
	assert.IsType(t, event.TextDelta{}, got[0])
	assert.IsType(t, event.HandoffOccurred{}, got[1])
}

func TestSSESource_LongDataLine(t *testing.T) {
	big := largeTextLine(5 << 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "data: %s\n\ndata: %s\n\n", big, handoffLine)
	}))
	defer srv.Close()

	src, err := NewSSESource(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	defer src.Close()

	got := drain(t, src)
	require.Len(t, got, 2)
	assert.IsType(t, event.HandoffOccurred{}, got[1])
}

func TestSSESource_DoneSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "data: %s\n\ndata: [DONE]\n\ndata: %s\n\n", textLine, textLine)
	}))
	defer srv.Close()

	src, err := NewSSESource(context.Background(), nil, srv.URL)
	require.NoError(t, err)
	defer src.Close()

	assert.Len(t, drain(t, src), 1)
}

func TestSSESource_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "run not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewSSESource(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "run not found")
}

func TestEinoSource(t *testing.T) {
	idx := 0
	sr := schema.StreamReaderFromArray([]*schema.Message{
		{Role: schema.Assistant, ReasoningContent: "think", Content: "ok"},
		nil,
		{Role: schema.Assistant, ToolCalls: []schema.ToolCall{
			{Index: &idx, ID: "c1", Function: schema.FunctionCall{Name: "codex", Arguments: `{"p":1}`}},
			{Index: &idx, Function: schema.FunctionCall{Arguments: `more`}},
			{ID: "c2", Function: schema.FunctionCall{Name: "transfer_to_Auditor"}},
		}},
		{Role: schema.Tool, ToolCallID: "c1", ToolName: "codex", Content: "done"},
	})
	src := NewEinoSource(sr, "Coder")
	defer src.Close()

	got := drain(t, src)
	require.Len(t, got, 5)
	assert.Equal(t, "think", got[0].(event.ReasoningDelta).Delta)
	assert.Equal(t, "ok", got[1].(event.TextDelta).Delta)

	call := got[2].(event.ToolCalled)
	assert.Equal(t, "Coder", call.Agent)
	assert.Equal(t, "c1", call.CallID)
	assert.Equal(t, "codex", call.Name)
	assert.Equal(t, event.NameToolCalled, call.Meta().Name)
	assert.True(t, event.IsToolCallLike(call))

	req := got[3].(event.HandoffRequested)
	assert.Equal(t, "Coder", req.Source)
	assert.Equal(t, "Auditor", req.Target)

	out := got[4].(event.ToolOutput)
	assert.Equal(t, "codex", out.Name)
	assert.Equal(t, "done", out.Output)
}

func TestFileFollower_ReadsAppendsUntilRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(textLine+"\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	src, err := NewFileFollower(ctx, path, 0)
	require.NoError(t, err)
	defer src.Close()

	ev, err := src.Recv()
	require.NoError(t, err)
	assert.IsType(t, event.TextDelta{}, ev)

	go func() {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		_, _ = f.WriteString(handoffLine + "\n")
		_ = f.Close()
		time.Sleep(50 * time.Millisecond)
		_ = os.Remove(path)
	}()

	ev, err = src.Recv()
	require.NoError(t, err)
	assert.IsType(t, event.HandoffOccurred{}, ev)

	_, err = src.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFileFollower_IdleTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(textLine+"\n"+textLine), 0o644))

	src, err := NewFileFollower(context.Background(), path, 20*time.Millisecond)
	require.NoError(t, err)
	defer src.Close()

	assert.Len(t, drain(t, src), 2)
}

func TestFileFollower_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	src, err := NewFileFollower(ctx, path, 0)
	require.NoError(t, err)
	defer src.Close()

	time.AfterFunc(20*time.Millisecond, cancel)
	_, err = src.Recv()
	assert.ErrorIs(t, err, context.Canceled)
}
