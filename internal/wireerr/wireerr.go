// Package wireerr defines the terminal error kinds this core can raise
// (§7): ProtocolError, Timeout, Transport, and ChannelClosed. Each wraps
// an underlying cause with fmt.Errorf's %w, in keeping with the plain
// error-wrapping style used throughout the protocol layers.
package wireerr

import (
	"errors"
	"fmt"
)

// Kind identifies which of the four terminal error categories an error
// belongs to.
type Kind int

const (
	KindProtocol Kind = iota
	KindTimeout
	KindTransport
	KindChannelClosed
)

func (k Kind) String() string {
	switch k {
	case KindProtocol:
		return "protocol"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindChannelClosed:
		return "channel closed"
	default:
		return "unknown"
	}
}

// Error is a terminal error tagged with its Kind, confined to the task
// that raised it (§7 — errors never propagate past their owning task).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Protocol wraps err as a ProtocolError raised during op.
func Protocol(op string, err error) error {
	return &Error{Kind: KindProtocol, Op: op, Err: err}
}

// Timeout wraps err as a Timeout error raised during op.
func Timeout(op string, err error) error {
	return &Error{Kind: KindTimeout, Op: op, Err: err}
}

// Transport wraps err as a Transport error raised during op.
func Transport(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// ChannelClosed reports a graceful shutdown: the coordinator dropped this
// session's outbound channel.
func ChannelClosed(op string) error {
	return &Error{Kind: KindChannelClosed, Op: op}
}

// Is reports whether err carries the given Kind, looking through wrapped
// causes via errors.As semantics (callers typically use errors.As
// directly; this helper covers the common check-the-kind case).
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
