package wire

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeDataRoundTrip(t *testing.T) {
	cases := []Message{
		{ID: Choke},
		{ID: Unchoke},
		{ID: Interested},
		{ID: NotInterested},
		{ID: Have, Payload: []byte{0, 0, 0, 7}},
		{ID: Bitfield, Payload: []byte{0xff, 0x00}},
		{ID: Request, Payload: []byte{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 64, 0}},
		{ID: Piece, Payload: append([]byte{0, 0, 0, 1, 0, 0, 0, 0}, bytes.Repeat([]byte{0xaa}, 16)...)},
		{ID: Cancel, Payload: []byte{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 64, 0}},
		{ID: Port, Payload: []byte{0x1a, 0xe1}},
	}

	for _, want := range cases {
		want := want
		t.Run(want.ID.String(), func(t *testing.T) {
			buf := EncodeData(want)

			got, n, ok, err := DecodeData(buf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatalf("expected ok=true")
			}
			if n != len(buf) {
				t.Fatalf("consumed %d, want %d", n, len(buf))
			}
			if got.ID != want.ID {
				t.Fatalf("got id %s", got.ID)
			}
			if !bytes.Equal(got.Payload, want.Payload) {
				t.Fatalf("payload mismatch: got %v want %v", got.Payload, want.Payload)
			}
			if got.IsKeepAlive() {
				t.Fatalf("should not decode as keep-alive")
			}
		})
	}
}

func TestDecodeDataKeepAlive(t *testing.T) {
	msg, n, ok, err := DecodeData(EncodeKeepAlive())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if n != 4 {
		t.Fatalf("consumed = %d, want 4", n)
	}
	if !msg.IsKeepAlive() {
		t.Fatalf("expected a keep-alive message")
	}
}

func TestDecodeDataDistinguishesChokeFromKeepAlive(t *testing.T) {
	choke, _, ok, err := DecodeData(EncodeData(Message{ID: Choke}))
	if err != nil || !ok {
		t.Fatalf("decode choke failed: ok=%v err=%v", ok, err)
	}
	if choke.IsKeepAlive() {
		t.Fatalf("a real Choke frame must not be reported as a keep-alive")
	}

	keepAlive, _, ok, err := DecodeData(EncodeKeepAlive())
	if err != nil || !ok {
		t.Fatalf("decode keep-alive failed: ok=%v err=%v", ok, err)
	}
	if !keepAlive.IsKeepAlive() {
		t.Fatalf("a zero-length frame must be reported as a keep-alive")
	}
}

func TestDecodeDataIncompleteFrame(t *testing.T) {
	full := EncodeData(Message{ID: Have, Payload: []byte{0, 0, 0, 1}})

	_, n, ok, err := DecodeData(full[:len(full)-1])
	if err != nil {
		t.Fatalf("unexpected error on truncated frame: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false on a truncated frame")
	}
	if n != 0 {
		t.Fatalf("consumed = %d, want 0", n)
	}
}

func TestDecodeDataUnknownMessageID(t *testing.T) {
	buf := []byte{0, 0, 0, 1, 200}

	_, _, ok, err := DecodeData(buf)
	if ok {
		t.Fatalf("expected ok=false on unknown message id")
	}
	if err == nil {
		t.Fatalf("expected a protocol error on unknown message id")
	}
}

func TestBufferConcatenatedFramesDecodeInOrder(t *testing.T) {
	buf := NewBuffer()
	buf.Feed(EncodeKeepAlive())
	buf.Feed(EncodeData(Message{ID: Unchoke}))
	buf.Feed(EncodeData(Message{ID: Have, Payload: []byte{0, 0, 0, 3}}))

	msg1, ok, err := buf.NextData()
	if err != nil || !ok || !msg1.IsKeepAlive() {
		t.Fatalf("expected keep-alive first, got %+v ok=%v err=%v", msg1, ok, err)
	}

	msg2, ok, err := buf.NextData()
	if err != nil || !ok || msg2.ID != Unchoke {
		t.Fatalf("expected Unchoke second, got %+v ok=%v err=%v", msg2, ok, err)
	}

	msg3, ok, err := buf.NextData()
	if err != nil || !ok || msg3.ID != Have {
		t.Fatalf("expected Have third, got %+v ok=%v err=%v", msg3, ok, err)
	}

	if buf.Len() != 0 {
		t.Fatalf("expected buffer drained, %d bytes remain", buf.Len())
	}

	_, ok, err = buf.NextData()
	if err != nil || ok {
		t.Fatalf("expected no more frames, got ok=%v err=%v", ok, err)
	}
}

func TestBufferNextHandshakeThenData(t *testing.T) {
	buf := NewBuffer()
	buf.Feed(EncodeHandshake(Handshake{PeerID: [20]byte{1}}))
	buf.Feed(EncodeData(Message{ID: Interested}))

	hs, ok, err := buf.NextHandshake()
	if err != nil || !ok {
		t.Fatalf("expected handshake decode to succeed, ok=%v err=%v", ok, err)
	}
	if hs.PeerID[0] != 1 {
		t.Fatalf("unexpected peer id: %v", hs.PeerID)
	}

	msg, ok, err := buf.NextData()
	if err != nil || !ok || msg.ID != Interested {
		t.Fatalf("expected Interested after handshake, got %+v ok=%v err=%v", msg, ok, err)
	}
}
