package peer

import (
	"net"

	"wm/wire"
)

// EventKind distinguishes the three things a session can report to the
// coordinator on the single shared inbound channel (§4.3, §4.4, §5).
type EventKind int

const (
	// EventRegister is sent once, immediately after a successful
	// handshake, carrying the session's outbound channel.
	EventRegister EventKind = iota
	// EventData carries one decoded Data frame from the peer.
	EventData
	// EventDisconnect is the synthetic "Cancel" a terminating session
	// sends so the coordinator can mark it Disconnected (§4.3, §8).
	EventDisconnect
)

// Event is one entry on the coordinator's shared inbound channel.
// Messages from a single peer arrive in the exact order they were
// produced; messages from distinct peers have no ordering relation (§5).
type Event struct {
	Addr     *net.TCPAddr
	Kind     EventKind
	RemoteID [20]byte        // set on EventRegister
	Outbound chan<- wire.Message // set on EventRegister
	Message  wire.Message    // set on EventData
}
