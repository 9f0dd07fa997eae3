// Package peer implements the per-peer session: TCP connect, handshake,
// frame pump, and the local view of a remote peer's choke/interest state
// and bitfield (§4.3, §3).
package peer

import (
	"net"

	"wm/bitfield"
	"wm/wire"
)

// Status is the coordinator's view of a peer's lifecycle (§3).
type Status int

const (
	Waiting Status = iota
	Downloading
	Disconnected
)

func (s Status) String() string {
	switch s {
	case Waiting:
		return "Waiting"
	case Downloading:
		return "Downloading"
	case Disconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// State is the four boolean flags tracked per peer (§3):
//   - AmChoked: whether the remote is choking us (set by its
//     Choke/Unchoke messages).
//   - Interested: whether the remote has declared interest in us.
//   - AmInterested: whether we have sent Interested to the remote.
//   - Choked: no inbound message changes it.
//
// Initial values: Choked=true, Interested=false, AmChoked=true,
// AmInterested=false.
type State struct {
	Choked      bool
	Interested  bool
	AmChoked    bool
	AmInterested bool
}

// NewState returns the spec-mandated initial state.
func NewState() State {
	return State{Choked: true, AmChoked: true}
}

// Peer is the coordinator's registry entry for one remote (§3). Outbound
// is owned by the coordinator; dropping it signals the peer session to
// terminate (§3, §4.3).
type Peer struct {
	Addr     *net.TCPAddr
	RemoteID [20]byte
	State    State
	Bitfield bitfield.Bitfield
	Status   Status
	Outbound chan<- wire.Message
}
