package peer

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"wm/internal/logx"
	"wm/internal/wireerr"
	"wm/wire"
)

// connectTimeout is the hard TCP connect bound (§4.3, §5).
const connectTimeout = 5 * time.Second

// outboundBacklog sizes the coordinator->session control channel. The
// channel is conceptually unbounded (§5 — low-volume control traffic,
// at most O(peer_count) sends per inbound event), modeled here the way
// _examples/other_examples/0fc28ff2_prxssh-rabbit__internal-peer-peer.go.go
// sizes its outbox: a generous fixed buffer rather than an actually
// unbounded queue, since Go has no built-in unbounded channel.
const outboundBacklog = 256

// readBufSize is the chunk size used for each conn.Read into the
// session's partial-read Buffer.
const readBufSize = 4096

// Run drives one peer session's full lifecycle (§4.3): connect,
// handshake, register, pump, and — on any terminal condition — a
// synthetic disconnect event followed by cleanup. It blocks until the
// session terminates and always returns a non-nil error describing why,
// even on a clean coordinator-initiated shutdown (wireerr ChannelClosed).
func Run(ctx context.Context, addr *net.TCPAddr, infoHash, localPeerID [20]byte, inbound chan<- Event) error {
	log := logx.WithID(addr.String())

	conn, err := net.DialTimeout("tcp", addr.String(), connectTimeout)
	if err != nil {
		return wireerr.Transport("peer.connect", err)
	}

	remoteID, err := exchangeHandshake(conn, infoHash, localPeerID)
	if err != nil {
		conn.Close()
		log.Fail("handshake failed: %v", err)
		return err
	}

	log.Info("handshake ok, remote_peer_id=%x", remoteID)

	outbound := make(chan wire.Message, outboundBacklog)
	inbound <- Event{Addr: addr, Kind: EventRegister, RemoteID: remoteID, Outbound: outbound}

	err = pump(ctx, conn, addr, inbound, outbound, log)

	conn.Close()
	inbound <- Event{Addr: addr, Kind: EventDisconnect}

	return err
}

// exchangeHandshake sends the local handshake and reads exactly one
// handshake frame back, verifying the remote's info_hash (§4.3).
func exchangeHandshake(conn net.Conn, infoHash, localPeerID [20]byte) (remoteID [20]byte, err error) {
	conn.SetWriteDeadline(time.Now().Add(connectTimeout))
	_, err = conn.Write(wire.EncodeHandshake(wire.Handshake{InfoHash: infoHash, PeerID: localPeerID}))
	if err != nil {
		return remoteID, wireerr.Transport("peer.handshake.send", err)
	}

	conn.SetReadDeadline(time.Now().Add(connectTimeout))
	buf := make([]byte, wire.HandshakeLen)
	if _, err := readFull(conn, buf); err != nil {
		return remoteID, wireerr.Transport("peer.handshake.recv", err)
	}
	// The handshake deadline must not carry over into readLoop.
	conn.SetReadDeadline(time.Time{})

	hs, n, ok, err := wire.DecodeHandshake(buf)
	if err != nil {
		return remoteID, wireerr.Protocol("peer.handshake.decode", err)
	}
	if !ok || n != wire.HandshakeLen {
		return remoteID, wireerr.Protocol("peer.handshake.decode", fmt.Errorf("short handshake"))
	}

	if hs.InfoHash != infoHash {
		return remoteID, wireerr.Protocol("peer.handshake", fmt.Errorf("info_hash mismatch"))
	}

	return hs.PeerID, nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// pump runs the read loop (decode inbound frames, forward to the
// coordinator) and the write loop (drain the outbound channel, encode
// to the wire) concurrently, per §4.3 step 5 and §9's errgroup wiring.
// It returns the error that ended the session: a protocol/transport
// error from the read side, or wireerr.ChannelClosed if the coordinator
// dropped the outbound channel.
func pump(ctx context.Context, conn net.Conn, addr *net.TCPAddr, inbound chan<- Event, outbound chan wire.Message, log *logx.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return readLoop(gctx, conn, addr, inbound, log)
	})

	g.Go(func() error {
		return writeLoop(gctx, conn, outbound, log)
	})

	// readLoop has no read deadline (§5), so once either loop ends and
	// cancels gctx, close conn to unblock a readLoop sitting in conn.Read.
	g.Go(func() error {
		<-gctx.Done()
		conn.Close()
		return nil
	})

	return g.Wait()
}

func readLoop(ctx context.Context, conn net.Conn, addr *net.TCPAddr, inbound chan<- Event, log *logx.Logger) error {
	buf := wire.NewBuffer()
	chunk := make([]byte, readBufSize)

	for {
		select {
		case <-ctx.Done():
			return wireerr.ChannelClosed("peer.read")
		default:
		}

		// No read deadline here: §5 is explicit that there is no
		// per-request timeout on peer data frames. A silent-but-connected
		// peer is detected only by TCP read-zero (EOF), never a timeout.
		n, err := conn.Read(chunk)
		if err != nil {
			return wireerr.Transport("peer.read", err)
		}

		buf.Feed(chunk[:n])

		for {
			msg, ok, err := buf.NextData()
			if err != nil {
				return wireerr.Protocol("peer.read.decode", err)
			}
			if !ok {
				break
			}

			if msg.IsKeepAlive() {
				continue
			}

			select {
			case inbound <- Event{Addr: addr, Kind: EventData, Message: msg}:
			case <-ctx.Done():
				return wireerr.ChannelClosed("peer.read")
			}
		}
	}
}

func writeLoop(ctx context.Context, conn net.Conn, outbound <-chan wire.Message, log *logx.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return wireerr.ChannelClosed("peer.write")

		case msg, ok := <-outbound:
			if !ok {
				return wireerr.ChannelClosed("peer.write")
			}

			conn.SetWriteDeadline(time.Now().Add(60 * time.Second))
			if _, err := conn.Write(wire.EncodeData(msg)); err != nil {
				return wireerr.Transport("peer.write", err)
			}
		}
	}
}
