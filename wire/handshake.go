package wire

import (
	"bytes"
	"fmt"
)

const (
	pstr       = "BitTorrent protocol"
	pstrlen    = byte(len(pstr))
	// HandshakeLen is 49 + len(pstr) = 68 bytes (§6).
	HandshakeLen = 49 + len(pstr)
)

// Handshake is the 68-byte prologue exchanged at session start (§3, §4.1).
type Handshake struct {
	InfoHash [20]byte
	PeerID   [20]byte
}

// EncodeHandshake serializes h into the fixed 68-byte wire layout:
// pstrlen(1) | pstr(19) | reserved(8, zero) | info_hash(20) | peer_id(20).
func EncodeHandshake(h Handshake) []byte {
	buf := make([]byte, HandshakeLen)
	buf[0] = pstrlen
	copy(buf[1:20], pstr)
	// buf[20:28] reserved, left zero on write (§4.1).
	copy(buf[28:48], h.InfoHash[:])
	copy(buf[48:68], h.PeerID[:])
	return buf
}

// DecodeHandshake parses a handshake frame from the head of buf.
// It returns the decoded Handshake and the number of bytes consumed.
// A buffer shorter than HandshakeLen is "incomplete": ok is false and
// err is nil. A pstrlen/pstr mismatch is a protocol error (§4.1).
func DecodeHandshake(buf []byte) (h Handshake, n int, ok bool, err error) {
	if len(buf) < HandshakeLen {
		return Handshake{}, 0, false, nil
	}

	if buf[0] != pstrlen {
		return Handshake{}, 0, false, fmt.Errorf("wire: bad pstrlen %d, want %d", buf[0], pstrlen)
	}

	if !bytes.Equal(buf[1:20], []byte(pstr)) {
		return Handshake{}, 0, false, fmt.Errorf("wire: bad pstr %q", buf[1:20])
	}

	copy(h.InfoHash[:], buf[28:48])
	copy(h.PeerID[:], buf[48:68])

	return h, HandshakeLen, true, nil
}
