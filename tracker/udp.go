// Package tracker implements the BEP 15 UDP tracker protocol: a
// timeout-bounded connect -> announce state machine with
// transaction-id correlation (§4.2).
package tracker

import "encoding/binary"

// protocolID is the BEP 15 magic connect-request constant.
const protocolID uint64 = 0x41727101980

// Action codes (§6).
const (
	actionConnect  uint32 = 0
	actionAnnounce uint32 = 1
	actionScrape   uint32 = 2
	actionError    uint32 = 3
)

// Event codes carried in an AnnounceRequest.
const (
	EventNone      uint32 = 0
	EventCompleted uint32 = 1
	EventStarted   uint32 = 2
	EventStopped   uint32 = 3
)

// connectRequestLen, connectResponseLen, announceRequestLen: exact byte
// layouts per §4.2.
const (
	connectRequestLen  = 16
	connectResponseLen = 16
	announceRequestLen = 98
)

// encodeConnectRequest builds the 16-byte ConnectRequest.
func encodeConnectRequest(transactionID uint32) []byte {
	buf := make([]byte, connectRequestLen)
	binary.BigEndian.PutUint64(buf[0:8], protocolID)
	binary.BigEndian.PutUint32(buf[8:12], actionConnect)
	binary.BigEndian.PutUint32(buf[12:16], transactionID)
	return buf
}

type connectResponse struct {
	action        uint32
	transactionID uint32
	connectionID  int64
}

// decodeConnectResponse parses a 16-byte ConnectResponse.
func decodeConnectResponse(buf []byte) (connectResponse, bool) {
	if len(buf) < connectResponseLen {
		return connectResponse{}, false
	}
	return connectResponse{
		action:        binary.BigEndian.Uint32(buf[0:4]),
		transactionID: binary.BigEndian.Uint32(buf[4:8]),
		connectionID:  int64(binary.BigEndian.Uint64(buf[8:16])),
	}, true
}

// announceParams carries the fields needed to build an AnnounceRequest.
type announceParams struct {
	connectionID  int64
	transactionID uint32
	infoHash      [20]byte
	peerID        [20]byte
	downloaded    uint64
	left          uint64
	uploaded      uint64
	event         uint32
	key           uint32
	port          uint16
}

// encodeAnnounceRequest builds the 98-byte AnnounceRequest (§4.2).
func encodeAnnounceRequest(p announceParams) []byte {
	buf := make([]byte, announceRequestLen)
	binary.BigEndian.PutUint64(buf[0:8], uint64(p.connectionID))
	binary.BigEndian.PutUint32(buf[8:12], actionAnnounce)
	binary.BigEndian.PutUint32(buf[12:16], p.transactionID)
	copy(buf[16:36], p.infoHash[:])
	copy(buf[36:56], p.peerID[:])
	binary.BigEndian.PutUint64(buf[56:64], p.downloaded)
	binary.BigEndian.PutUint64(buf[64:72], p.left)
	binary.BigEndian.PutUint64(buf[72:80], p.uploaded)
	binary.BigEndian.PutUint32(buf[80:84], p.event)
	binary.BigEndian.PutUint32(buf[84:88], 0) // ip_address, always 0
	binary.BigEndian.PutUint32(buf[88:92], p.key)
	binary.BigEndian.PutUint32(buf[92:96], uint32(int32(-1))) // num_want
	binary.BigEndian.PutUint16(buf[96:98], p.port)
	return buf
}

// PeerAddr is a compact IPv4 peer endpoint (BEP 15 is IPv4-only; §1 Non-goals).
type PeerAddr struct {
	IP   [4]byte
	Port uint16
}

type announceResponse struct {
	action        uint32
	transactionID uint32
	interval      uint32
	leechers      uint32
	seeders       uint32
	peers         []PeerAddr
	errorText     string
}

// decodeAnnounceResponse parses an AnnounceResponse of at least 20 bytes.
// A peer-list tail whose length is not a multiple of 6 is rejected
// (§4.2, §8). An error-action response (action==3) is decoded into
// errorText rather than a peer list, per §6's "coordinator must accept
// and propagate error-text responses".
func decodeAnnounceResponse(buf []byte) (announceResponse, error) {
	if len(buf) < 20 {
		return announceResponse{}, errShortAnnounceResponse(len(buf))
	}

	action := binary.BigEndian.Uint32(buf[0:4])
	txID := binary.BigEndian.Uint32(buf[4:8])

	if action == actionError {
		return announceResponse{
			action:        action,
			transactionID: txID,
			errorText:     string(buf[8:]),
		}, nil
	}

	interval := binary.BigEndian.Uint32(buf[8:12])
	leechers := binary.BigEndian.Uint32(buf[12:16])
	seeders := binary.BigEndian.Uint32(buf[16:20])

	tail := buf[20:]
	if len(tail)%6 != 0 {
		return announceResponse{}, errMalformedPeerList(len(tail))
	}

	peers := make([]PeerAddr, 0, len(tail)/6)
	for i := 0; i+6 <= len(tail); i += 6 {
		var ip [4]byte
		copy(ip[:], tail[i:i+4])
		port := binary.BigEndian.Uint16(tail[i+4 : i+6])
		peers = append(peers, PeerAddr{IP: ip, Port: port})
	}

	return announceResponse{
		action:        action,
		transactionID: txID,
		interval:      interval,
		leechers:      leechers,
		seeders:       seeders,
		peers:         peers,
	}, nil
}
