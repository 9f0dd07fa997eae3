package core

import (
	"net"

	"wm/tracker"
)

func peerAddrToTCP(pa tracker.PeerAddr) *net.TCPAddr {
	ip := net.IPv4(pa.IP[0], pa.IP[1], pa.IP[2], pa.IP[3])
	return &net.TCPAddr{IP: ip, Port: int(pa.Port)}
}
