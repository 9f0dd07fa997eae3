// Package wire implements the BitTorrent peer wire protocol framing:
// the handshake prologue and the length-prefixed message frames that
// follow it (BEP 3).
package wire

import "fmt"

// MessageType is the raw id byte carried by a Data frame (§4.1).
type MessageType uint8

const (
	Choke MessageType = iota
	Unchoke
	Interested
	NotInterested
	Have
	Bitfield
	Request
	Piece
	Cancel
	Port
)

func (m MessageType) String() string {
	switch m {
	case Choke:
		return "Choke"
	case Unchoke:
		return "Unchoke"
	case Interested:
		return "Interested"
	case NotInterested:
		return "NotInterested"
	case Have:
		return "Have"
	case Bitfield:
		return "Bitfield"
	case Request:
		return "Request"
	case Piece:
		return "Piece"
	case Cancel:
		return "Cancel"
	case Port:
		return "Port"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(m))
	}
}

// ValidMessageType reports whether id is one of the known wire ids
// (0..=9). A decoded id outside this range is a protocol error, never a
// silent default (§4.1, §9).
func ValidMessageType(id uint8) bool {
	return id <= uint8(Port)
}

// BlockSize is the canonical request/piece block length, 2**14 bytes
// (§9 resolves the source's `2 ^ 14` as the intended `2**14`, not XOR).
const BlockSize = 1 << 14
