package swarm

import (
	"encoding/binary"
	"fmt"
	"net"

	"wm/bitfield"
	"wm/internal/logx"
	"wm/internal/wireerr"
	"wm/peer"
	"wm/wire"
)

// BlockWrite is one (piece_index, offset, bytes) triple handed to the
// external storage collaborator (§6 — "Outbound (to storage)").
type BlockWrite struct {
	PieceIndex uint32
	Offset     uint32
	Bytes      []byte
}

// Coordinator owns the peer registry and the piece plan exclusively; no
// other task reads or mutates them (§4.4, §5). It is driven entirely by
// events arriving on a single inbound channel and never sleeps on I/O.
type Coordinator struct {
	registry map[string]*peer.Peer
	plan     Plan
	inbound  chan peer.Event
	blocks   chan<- BlockWrite
	log      *logx.Logger

	// onProgress, if set, is called after every handled event once the
	// plan length is known, with (pieces done, pieces total), so a CLI progress display can
	// subscribe without the coordinator depending on any rendering
	// package directly.
	onProgress func(done, total int)
}

// New returns a Coordinator. blocks receives downloaded blocks; a block
// is dropped when blocks is full. The caller owns its consumption
// (storage is an external collaborator, §1).
func New(blocks chan<- BlockWrite) *Coordinator {
	return &Coordinator{
		registry: make(map[string]*peer.Peer),
		inbound:  make(chan peer.Event, 32), // recommended capacity >= 32, §5
		blocks:   blocks,
		log:      logx.New(),
	}
}

// Inbound returns the shared channel every peer session sends events to.
func (c *Coordinator) Inbound() chan<- peer.Event {
	return c.inbound
}

// OnProgress registers a completion-progress callback (see onProgress).
func (c *Coordinator) OnProgress(fn func(done, total int)) {
	c.onProgress = fn
}

// Run is the coordinator's event loop. It returns once the inbound
// channel is closed and drained — the spec's "no fatal error path"
// policy (§4.4, §7): the coordinator outlives any number of individual
// session failures.
func (c *Coordinator) Run() {
	for ev := range c.inbound {
		c.handle(ev)
	}
}

func (c *Coordinator) handle(ev peer.Event) {
	switch ev.Kind {
	case peer.EventRegister:
		c.register(ev)
	case peer.EventDisconnect:
		c.disconnect(ev.Addr)
	case peer.EventData:
		c.applyMessage(ev.Addr, ev.Message)
		c.negotiateInterest()
		c.selectPieces()
	}

	if c.onProgress != nil && c.plan.Initialized() {
		done := 0
		for _, p := range c.plan.Pieces {
			if p.Status == PieceComplete {
				done++
			}
		}
		c.onProgress(done, len(c.plan.Pieces))
	}
}

func (c *Coordinator) register(ev peer.Event) {
	key := ev.Addr.String()

	c.registry[key] = &peer.Peer{
		Addr:     ev.Addr,
		RemoteID: ev.RemoteID,
		State:    peer.NewState(),
		Status:   peer.Waiting,
		Outbound: ev.Outbound,
	}

	c.log.Info("registered peer %s", key)
}

func (c *Coordinator) disconnect(addr *net.TCPAddr) {
	p, ok := c.registry[addr.String()]
	if !ok {
		return
	}
	p.Status = peer.Disconnected
	c.log.Info("peer %s disconnected", addr)
}

// dropOnProtocolError confines a malformed-payload message to the one
// peer that sent it (§7 — ProtocolError is terminal for the affected
// connection only, never the coordinator). Rather than trust a
// wire-supplied length and index into msg.Payload, the coordinator marks
// the peer Disconnected and closes its outbound channel, which signals
// the owning peer session to terminate (§3, §4.3) instead of panicking
// the one goroutine every peer in the swarm depends on.
func (c *Coordinator) dropOnProtocolError(p *peer.Peer, addr *net.TCPAddr, cause error) {
	if p.Status == peer.Disconnected {
		return
	}
	c.log.Fail("peer %s: %v", addr, wireerr.Protocol("swarm.applyMessage", cause))
	p.Status = peer.Disconnected
	close(p.Outbound)
}

// applyMessage implements the per-message effect table of §4.4.
func (c *Coordinator) applyMessage(addr *net.TCPAddr, msg wire.Message) {
	p, ok := c.registry[addr.String()]
	if !ok {
		// A Data event without a prior Register is impossible under the
		// ordering guarantee of §5 (a single peer's events arrive in
		// send order, and Run always registers before pumping); treat
		// it as a no-op rather than crash the coordinator over another
		// task's bug.
		return
	}

	switch msg.ID {
	case wire.Choke:
		p.State.AmChoked = true

	case wire.Unchoke:
		p.State.AmChoked = false

	case wire.Interested:
		p.State.Interested = true

	case wire.NotInterested:
		p.State.Interested = false

	case wire.Have:
		if len(msg.Payload) < 4 {
			c.dropOnProtocolError(p, addr, fmt.Errorf("Have payload too short: %d bytes", len(msg.Payload)))
			return
		}
		index := int(binary.BigEndian.Uint32(msg.Payload[0:4]))
		p.Bitfield.Set(index) // out-of-range index is a bug in the remote/our parsing, §4.4

	case wire.Bitfield:
		p.Bitfield = bitfield.FromBytes(msg.Payload)
		c.plan.Init(len(msg.Payload) * 8)

	case wire.Piece:
		if len(msg.Payload) < 8 {
			c.dropOnProtocolError(p, addr, fmt.Errorf("Piece payload too short: %d bytes", len(msg.Payload)))
			return
		}
		index := binary.BigEndian.Uint32(msg.Payload[0:4])
		offset := binary.BigEndian.Uint32(msg.Payload[4:8])
		data := msg.Payload[8:]

		select {
		case c.blocks <- BlockWrite{PieceIndex: index, Offset: offset, Bytes: data}:
		default:
			// The storage collaborator has fallen behind (§4.4, §6). The
			// coordinator never sleeps on I/O, so a full blocks channel
			// is dropped rather than blocking every peer in the swarm.
			c.log.Fail("blocks channel full, dropping piece=%d offset=%d", index, offset)
		}

	case wire.Request, wire.Port:
		// Request: not served, this core is download-only (§4.4).
		// Port: ignored, no DHT (§4.4).

	case wire.Cancel:
		// handled via the synthetic EventDisconnect path, not this id.
	}
}

// negotiateInterest sends Interested to every unchoked, non-disconnected
// peer we have not yet declared interest to (§4.4 step 3-4).
func (c *Coordinator) negotiateInterest() {
	for _, p := range c.registry {
		if p.Status == peer.Disconnected || p.State.AmChoked {
			continue
		}

		if !p.State.AmInterested {
			c.send(p, wire.Message{ID: wire.Interested})
			p.State.AmInterested = true
		}
	}
}

// selectPieces implements the piece-assignment pass of §4.4 step 5: the
// first Waiting piece is handed to the first unchoked, Waiting peer whose
// bitfield covers it. Tie-breaking (iteration order of the peer map) is
// implementation-defined, as the spec allows.
func (c *Coordinator) selectPieces() {
	if !c.plan.Initialized() {
		return
	}

	for _, p := range c.registry {
		if p.Status != peer.Waiting || p.State.AmChoked {
			continue
		}

		idx := c.plan.FirstWaiting()
		if idx == -1 {
			return
		}

		if !p.Bitfield.Has(idx) {
			continue
		}

		p.Status = peer.Downloading
		c.plan.Pieces[idx].Status = PieceInProgress

		payload := make([]byte, 12)
		binary.BigEndian.PutUint32(payload[0:4], uint32(idx))
		binary.BigEndian.PutUint32(payload[4:8], 0)
		binary.BigEndian.PutUint32(payload[8:12], wire.BlockSize)

		c.send(p, wire.Message{ID: wire.Request, Payload: payload})
	}
}

func (c *Coordinator) send(p *peer.Peer, msg wire.Message) {
	select {
	case p.Outbound <- msg:
	default:
		// Outbound is sized generously (§5); a full channel here means
		// the session is wedged and about to time out on its own. Drop
		// rather than block the coordinator's single event loop.
		c.log.Fail("peer %s outbound full, dropping %s", p.Addr, msg.ID)
	}
}
