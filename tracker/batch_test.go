package tracker

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"
)

// fakeTrackerServer answers exactly one connect and one announce
// request with a fixed peer list, mimicking a real UDP tracker closely
// enough to exercise Endpoint.Announce end-to-end.
func fakeTrackerServer(t *testing.T, peers []PeerAddr) *net.UDPAddr {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listening: %v", err)
	}

	go func() {
		buf := make([]byte, 4096)

		// connect
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		txID := binary.BigEndian.Uint32(buf[12:16])
		_ = n
		resp := make([]byte, connectResponseLen)
		binary.BigEndian.PutUint32(resp[0:4], actionConnect)
		binary.BigEndian.PutUint32(resp[4:8], txID)
		binary.BigEndian.PutUint64(resp[8:16], 777)
		conn.WriteToUDP(resp, from)

		// announce
		n, from, err = conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		announceTx := binary.BigEndian.Uint32(buf[12:16])

		resp2 := make([]byte, 20+6*len(peers))
		binary.BigEndian.PutUint32(resp2[0:4], actionAnnounce)
		binary.BigEndian.PutUint32(resp2[4:8], announceTx)
		binary.BigEndian.PutUint32(resp2[8:12], 1800)
		binary.BigEndian.PutUint32(resp2[12:16], 0)
		binary.BigEndian.PutUint32(resp2[16:20], uint32(len(peers)))
		for i, p := range peers {
			off := 20 + i*6
			copy(resp2[off:off+4], p.IP[:])
			binary.BigEndian.PutUint16(resp2[off+4:off+6], p.Port)
		}
		conn.WriteToUDP(resp2, from)
	}()

	return conn.LocalAddr().(*net.UDPAddr)
}

func TestAnnounceAllDeduplicatesPeers(t *testing.T) {
	shared := PeerAddr{IP: [4]byte{10, 0, 0, 1}, Port: 6881}
	uniqueA := PeerAddr{IP: [4]byte{10, 0, 0, 2}, Port: 6881}
	uniqueB := PeerAddr{IP: [4]byte{10, 0, 0, 3}, Port: 6881}

	addr1 := fakeTrackerServer(t, []PeerAddr{shared, uniqueA})
	addr2 := fakeTrackerServer(t, []PeerAddr{shared, uniqueB})

	ep1 := &Endpoint{URL: "udp://tracker1", addr: addr1}
	ep2 := &Endpoint{URL: "udp://tracker2", addr: addr2}

	swarm, err := AnnounceAll(context.Background(), []*Endpoint{ep1, ep2}, [20]byte{1}, [20]byte{2}, 0, 6881)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(swarm.Peers) != 3 {
		t.Fatalf("expected 3 deduplicated peers, got %d: %+v", len(swarm.Peers), swarm.Peers)
	}
}

func TestAnnounceAllNoPeersIsError(t *testing.T) {
	ep, err := NewEndpoint("udp://127.0.0.1:1")
	if err != nil {
		t.Fatalf("unexpected error building endpoint: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = AnnounceAll(ctx, []*Endpoint{ep}, [20]byte{}, [20]byte{}, 0, 6881)
	if err == nil {
		t.Fatalf("expected an error when no tracker yields any peer")
	}
}
