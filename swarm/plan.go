// Package swarm owns the global download plan and peer registry, and
// drives the single-channel event loop that selects pieces and issues
// block requests to peers (§4.4).
package swarm

// PieceStatus is the lifecycle of one piece in the plan (§3).
type PieceStatus int

const (
	PieceWaiting PieceStatus = iota
	PieceInProgress
	PieceComplete
)

// Piece is one entry of the ordered download plan. The coordinator does
// not write block payloads into Bytes; it forwards them as BlockWrite
// values, and full piece assembly, hashing, and persistence are left to
// the external storage collaborator (§1, §6).
type Piece struct {
	Index  uint32
	Bytes  []byte
	Status PieceStatus
}

// Plan is the ordered sequence of pieces, indexed by piece number. Its
// length is learned from the first Bitfield message (= payload length *
// 8), per §3.
type Plan struct {
	Pieces []Piece
}

// Initialized reports whether the plan length has been learned yet.
func (p *Plan) Initialized() bool {
	return len(p.Pieces) > 0
}

// Init sets the plan length the first time a Bitfield arrives. It is a
// no-op if the plan is already initialized (§4.4 — "if the piece plan is
// empty, initialize it").
func (p *Plan) Init(numPieces int) {
	if p.Initialized() {
		return
	}

	p.Pieces = make([]Piece, numPieces)
	for i := range p.Pieces {
		p.Pieces[i] = Piece{Index: uint32(i), Status: PieceWaiting}
	}
}

// FirstWaiting returns the index of the first Waiting piece, or -1 if
// none remain (§4.4 step 5).
func (p *Plan) FirstWaiting() int {
	for i := range p.Pieces {
		if p.Pieces[i].Status == PieceWaiting {
			return i
		}
	}
	return -1
}
