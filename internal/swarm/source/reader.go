package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/kiosk404/swarmscope/internal/swarm/event"
)

// ReaderSource reads JSON lines from an io.Reader, one event per line.
type ReaderSource struct {
	name   string
	rc     io.Reader
	lines  *lineReader
	lineNo int
}

// NewReaderSource returns a Source over r. name is only used in log lines.
// If r is an io.Closer it is closed by Close.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{
		name:  name,
		rc:    r,
		lines: newLineReader(r),
	}
}

func (s *ReaderSource) Recv() (event.Event, error) {
	for {
		line, err := s.lines.next()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.name, err)
		}
		s.lineNo++
		if ev, ok := decodeLine(s.name, s.lineNo, line); ok {
			return ev, nil
		}
	}
}

func (s *ReaderSource) Close() error {
	if c, ok := s.rc.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
