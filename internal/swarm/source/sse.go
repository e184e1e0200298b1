package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kiosk404/swarmscope/internal/swarm/event"
)

// DoneEvent is the SSE event name that terminates a relayed run.
const DoneEvent = "done"

// SSESource reads events relayed over server-sent events. Each data line
// carries one JSON event; the stream ends on an "event: done" frame, a
// "data: [DONE]" sentinel, or the end of the body.
type SSESource struct {
	url    string
	body   io.ReadCloser
	lines  *lineReader
	lineNo int
	event  string
}

// NewSSESource connects to url. A nil client uses http.DefaultClient.
func NewSSESource(ctx context.Context, client *http.Client, url string) (*SSESource, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return &SSESource{
		url:   url,
		body:  resp.Body,
		lines: newLineReader(resp.Body),
	}, nil
}

func (s *SSESource) Recv() (event.Event, error) {
	for {
		line, err := s.lines.next()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}
		switch {
		case line == "":
			// frame boundary
			s.event = ""
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		case strings.HasPrefix(line, "event:"):
			s.event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			if s.event == DoneEvent {
				return nil, io.EOF
			}
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
			if data == "[DONE]" {
				return nil, io.EOF
			}
			s.lineNo++
			if ev, ok := decodeLine(s.url, s.lineNo, data); ok {
				return ev, nil
			}
		}
	}
}

func (s *SSESource) Close() error {
	return s.body.Close()
}
