package swarm

import "testing"

func TestPlanInitIsNoOpOnceInitialized(t *testing.T) {
	var p Plan
	if p.Initialized() {
		t.Fatalf("expected a zero-value Plan to be uninitialized")
	}

	p.Init(4)
	if !p.Initialized() || len(p.Pieces) != 4 {
		t.Fatalf("expected 4 pieces after Init, got %d", len(p.Pieces))
	}

	p.Pieces[0].Status = PieceComplete
	p.Init(10) // must be a no-op now
	if len(p.Pieces) != 4 {
		t.Fatalf("Init should be a no-op once initialized, got %d pieces", len(p.Pieces))
	}
	if p.Pieces[0].Status != PieceComplete {
		t.Fatalf("Init must not reset existing piece state")
	}
}

func TestFirstWaiting(t *testing.T) {
	var p Plan
	p.Init(3)

	if idx := p.FirstWaiting(); idx != 0 {
		t.Fatalf("expected 0, got %d", idx)
	}

	p.Pieces[0].Status = PieceInProgress
	if idx := p.FirstWaiting(); idx != 1 {
		t.Fatalf("expected 1, got %d", idx)
	}

	p.Pieces[1].Status = PieceComplete
	p.Pieces[2].Status = PieceComplete
	if idx := p.FirstWaiting(); idx != -1 {
		t.Fatalf("expected -1 when no piece is waiting, got %d", idx)
	}
}
