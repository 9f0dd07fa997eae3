// Package logx is a thin wrapper around the standard log package
// carrying the teacher's bracket-tag convention ([INFO], [FAIL],
// [ERROR]) plus color via colorstring, and an optional correlation id
// string (a uuid string per tracker announce, the remote address per
// peer session) prefixed to every line so interleaved per-peer and
// per-tracker output can be grepped back into one session's timeline.
package logx

import (
	"fmt"
	"log"

	"github.com/mitchellh/colorstring"
)

// Logger emits bracket-tagged, colorized lines through the standard
// logger, optionally scoped to a correlation id.
type Logger struct {
	id string
}

// New returns a Logger with no correlation id.
func New() *Logger {
	return &Logger{}
}

// WithID returns a Logger that prefixes every line with id (a session or
// tracker-request correlation id).
func WithID(id string) *Logger {
	return &Logger{id: id}
}

func (l *Logger) prefix() string {
	if l.id == "" {
		return ""
	}
	return fmt.Sprintf("[%s]\t", l.id)
}

// Info logs an [INFO] line.
func (l *Logger) Info(format string, args ...interface{}) {
	log.Print(colorstring.Color(fmt.Sprintf("[green][INFO][reset]\t%s%s", l.prefix(), fmt.Sprintf(format, args...))))
}

// Fail logs a [FAIL] line — a recoverable, per-connection failure.
func (l *Logger) Fail(format string, args ...interface{}) {
	log.Print(colorstring.Color(fmt.Sprintf("[yellow][FAIL][reset]\t%s%s", l.prefix(), fmt.Sprintf(format, args...))))
}

// Error logs an [ERROR] line — a protocol or unexpected-state error.
func (l *Logger) Error(format string, args ...interface{}) {
	log.Print(colorstring.Color(fmt.Sprintf("[red][ERROR][reset]\t%s%s", l.prefix(), fmt.Sprintf(format, args...))))
}
