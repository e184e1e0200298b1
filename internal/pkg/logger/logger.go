// Package logger is the process-wide structured logger.
//
// It keeps the printf-style call sites used across the code base
// (logger.Info("[Component] ...", args...)) on top of logrus, so the
// output format, level and destination are configured in one place.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kiosk404/swarmscope/internal/pkg/options"
)

var (
	mu  sync.RWMutex
	std = newDefault()

	logFile *os.File
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false, FullTimestamp: true})
	return l
}

// Init configures the global logger from opts. It is safe to call more than once;
// a previously opened log file is closed.
func Init(opts *options.LogOptions) error {
	if opts == nil {
		opts = options.NewLogOptions()
	}
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", opts.Level, err)
	}

	var out io.Writer = os.Stderr
	var file *os.File
	switch opts.OutputPath {
	case "", "stderr":
	case "stdout":
		out = os.Stdout
	default:
		if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		file, err = os.OpenFile(opts.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %q: %w", opts.OutputPath, err)
		}
		out = file
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	if opts.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: !opts.EnableColor})
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	std = l
	return nil
}

// SetOutput redirects the global logger, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	std.SetOutput(w)
}

// SetLevel changes the global level ("debug", "info", ...). Unknown levels are ignored.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	std.SetLevel(lvl)
}

// Flush closes the log file, if any.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
		std.SetOutput(os.Stderr)
	}
}

func get() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

func Debug(format string, args ...any) { get().Debugf(format, args...) }
func Info(format string, args ...any)  { get().Infof(format, args...) }
func Warn(format string, args ...any)  { get().Warnf(format, args...) }
func Error(format string, args ...any) { get().Errorf(format, args...) }

// DebugX logs with a module field attached.
func DebugX(module, format string, args ...any) {
	get().WithField("module", module).Debugf(format, args...)
}

// InfoX logs with a module field attached.
func InfoX(module, format string, args ...any) {
	get().WithField("module", module).Infof(format, args...)
}

// WarnX logs with a module field attached.
func WarnX(module, format string, args ...any) {
	get().WithField("module", module).Warnf(format, args...)
}

// ErrorX logs with a module field attached.
func ErrorX(module, format string, args ...any) {
	get().WithField("module", module).Errorf(format, args...)
}
