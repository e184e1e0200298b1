package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/swarm/event"
)

// FileFollower tails a JSONL file that is still being written, like tail -f.
// It ends when ctx is done, the file is removed or renamed, or no new data
// arrives for the idle timeout.
type FileFollower struct {
	ctx     context.Context
	path    string
	file    *os.File
	reader  *bufio.Reader
	watcher *fsnotify.Watcher
	idle    time.Duration

	partial []byte
	lineNo  int
	done    bool
}

// NewFileFollower opens path and starts watching it. An idle timeout of zero
// waits forever.
func NewFileFollower(ctx context.Context, path string, idle time.Duration) (*FileFollower, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// watch the directory: an unlinked file that is still open reports no
	// Remove event of its own
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = f.Close()
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	logger.Debug("[Follow] watching %s", path)

	return &FileFollower{
		ctx:     ctx,
		path:    filepath.Clean(path),
		file:    f,
		reader:  bufio.NewReaderSize(f, initialLineBuffer),
		watcher: watcher,
		idle:    idle,
	}, nil
}

func (f *FileFollower) Recv() (event.Event, error) {
	for {
		if err := f.ctx.Err(); err != nil {
			return nil, err
		}

		chunk, err := f.reader.ReadBytes('\n')
		f.partial = append(f.partial, chunk...)
		if err == nil {
			line := f.partial
			f.partial = nil
			f.lineNo++
			if ev, ok := decodeLine(f.path, f.lineNo, string(line)); ok {
				return ev, nil
			}
			continue
		}
		if !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read %s: %w", f.path, err)
		}
		if f.done {
			return f.flushPartial()
		}
		if err := f.wait(); err != nil {
			return nil, err
		}
	}
}

// wait blocks until the file changes. A removed or renamed file, or an
// expired idle timer, marks the stream done so the remaining bytes are read
// once more before io.EOF.
func (f *FileFollower) wait() error {
	var timeout <-chan time.Time
	if f.idle > 0 {
		timer := time.NewTimer(f.idle)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case <-f.ctx.Done():
			return f.ctx.Err()
		case <-timeout:
			logger.Debug("[Follow] %s idle for %s, stopping", f.path, f.idle)
			f.done = true
			return nil
		case ev, ok := <-f.watcher.Events:
			if !ok {
				f.done = true
				return nil
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				f.done = true
				return nil
			}
			if ev.Has(fsnotify.Write) {
				return nil
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				f.done = true
				return nil
			}
			return fmt.Errorf("watch %s: %w", f.path, err)
		}
	}
}

func (f *FileFollower) flushPartial() (event.Event, error) {
	line := bytes.TrimSpace(f.partial)
	f.partial = nil
	if len(line) == 0 {
		return nil, io.EOF
	}
	f.lineNo++
	if ev, ok := decodeLine(f.path, f.lineNo, string(line)); ok {
		return ev, nil
	}
	return nil, io.EOF
}

func (f *FileFollower) Close() error {
	werr := f.watcher.Close()
	ferr := f.file.Close()
	return errors.Join(werr, ferr)
}
