// Package source provides the upstream event streams a run is rendered from.
//
// Every Source is read by a single consumer until Recv returns io.EOF.
package source

import (
	"bufio"
	"io"
	"strings"

	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/swarm/event"
)

const initialLineBuffer = 64 * 1024

// Source yields decoded events one at a time. Recv returns io.EOF once the
// stream is exhausted.
type Source interface {
	Recv() (event.Event, error)
	Close() error
}

// lineReader splits a stream into lines of any length. Large tool outputs
// arrive as single lines, so no cap is applied.
type lineReader struct {
	r   *bufio.Reader
	err error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, initialLineBuffer)}
}

// next returns the next line without its terminator. A final unterminated
// line is returned before the error that ended it.
func (l *lineReader) next() (string, error) {
	if l.err != nil {
		return "", l.err
	}
	line, err := l.r.ReadString('\n')
	if err != nil {
		l.err = err
		if line == "" {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// decodeLine decodes one JSONL line. Blank lines and lines that are not a
// JSON object are skipped; the latter are logged.
func decodeLine(origin string, lineNo int, line string) (event.Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}
	ev, err := event.Decode([]byte(line))
	if err != nil {
		logger.Warn("[Source] %s:%d skipped: %v", origin, lineNo, err)
		return nil, false
	}
	return ev, true
}

// SliceSource replays a fixed list of events.
type SliceSource struct {
	events []event.Event
	pos    int
	closed bool
}

// NewSliceSource returns a Source yielding events in order.
func NewSliceSource(events ...event.Event) *SliceSource {
	return &SliceSource{events: events}
}

func (s *SliceSource) Recv() (event.Event, error) {
	if s.closed || s.pos >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func (s *SliceSource) Close() error {
	s.closed = true
	return nil
}
