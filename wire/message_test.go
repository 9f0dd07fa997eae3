package wire

import "testing"

func TestValidMessageType(t *testing.T) {
	for id := uint8(0); id <= uint8(Port); id++ {
		if !ValidMessageType(id) {
			t.Fatalf("id %d should be valid", id)
		}
	}
	if ValidMessageType(uint8(Port) + 1) {
		t.Fatalf("id %d should be invalid", uint8(Port)+1)
	}
}

func TestMessageTypeString(t *testing.T) {
	if got := Piece.String(); got != "Piece" {
		t.Fatalf("Piece.String() = %q", got)
	}
	if got := MessageType(99).String(); got == "" {
		t.Fatalf("unknown message type should stringify to something non-empty")
	}
}
