package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/swarm/entity"
)

const (
	// DefaultErrorExitCode is the exit code used when a command fails.
	DefaultErrorExitCode = 1
)

var fatalErrHandler = fatal

// BehaviorOnFatal allows you to override the default behavior when a fatal
// error occurs, which is to call os.Exit(code). You can pass 'panic' as a function
// here if you prefer the panic() over os.Exit(1).
func BehaviorOnFatal(f func(string, int)) {
	fatalErrHandler = f
}

// DefaultBehaviorOnFatal allows you to undo any previous override.  Useful in
// tests.
func DefaultBehaviorOnFatal() {
	fatalErrHandler = fatal
}

// fatal prints the message (if provided) and then exits.
func fatal(msg string, code int) {
	logger.Flush()
	if len(msg) > 0 {
		// add newline if needed
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
		fmt.Fprint(os.Stderr, msg)
	}
	os.Exit(code)
}

// ErrExit may be passed to CheckErr to instruct it to output nothing but exit with
// status code 1.
var ErrExit = errors.New("exit")

// CheckErr prints a user friendly error to STDERR and exits with a non-zero
// exit code.
func CheckErr(err error) {
	checkErr(err, fatalErrHandler)
}

func checkErr(err error, handleErr func(string, int)) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrExit) {
		handleErr("", DefaultErrorExitCode)
		return
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "error: ") {
		msg = fmt.Sprintf("error: %s", msg)
	}
	handleErr(msg, DefaultErrorExitCode)
}

// UsageErrorf returns an error pointing the user at the command's help.
func UsageErrorf(cmdPath string, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s\nSee '%s -h' for help and examples", msg, cmdPath)
}

// PrintRunFooter writes the one-line reference to the run record after a run.
func PrintRunFooter(w io.Writer, run *entity.Run, stored bool) {
	if run == nil {
		return
	}
	if stored {
		fmt.Fprintf(w, "run %s %s (%d events)\n", run.ID, run.Status, run.EventCount)
		return
	}
	fmt.Fprintf(w, "run %s (%d events)\n", run.Status, run.EventCount)
}
