// Package logger provides leveled logging for the strapisync CLI.
// Info, Warn and Error lines are always written; Debug lines and section
// headers only appear when verbose mode is enabled via the --verbose flag.
package logger

import (
	"io"
	"os"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

var (
	base = charmlog.NewWithOptions(os.Stderr, charmlog.Options{Level: charmlog.InfoLevel})
	out  atomic.Pointer[io.Writer]
)

func init() {
	var w io.Writer = os.Stderr
	out.Store(&w)
}

// L returns the underlying logger, for callers that want structured fields.
func L() *charmlog.Logger {
	return base
}

// SetVerbose switches between debug and info level.
func SetVerbose(v bool) {
	if v {
		base.SetLevel(charmlog.DebugLevel)
		return
	}
	base.SetLevel(charmlog.InfoLevel)
}

// IsVerbose reports whether debug output is enabled.
func IsVerbose() bool {
	return base.GetLevel() <= charmlog.DebugLevel
}

// SetOutput redirects all log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	out.Store(&w)
	base.SetOutput(w)
}

// Debug logs when verbose.
func Debug(format string, args ...any) {
	base.Debugf(format, args...)
}

// Section writes a bare "=== name ===" header in verbose mode, marking a
// phase of a sync run.
func Section(name string) {
	if !IsVerbose() {
		return
	}
	_, _ = io.WriteString(*out.Load(), "\n=== "+name+" ===\n")
}

// Info logs progress a user should see.
func Info(format string, args ...any) {
	base.Infof(format, args...)
}

// Warn logs recoverable failures such as a media asset that did not download.
func Warn(format string, args ...any) {
	base.Warnf(format, args...)
}

// Error logs failures that abort an operation.
func Error(format string, args ...any) {
	base.Errorf(format, args...)
}
