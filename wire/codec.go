package wire

import (
	"encoding/binary"
	"fmt"
)

// Message is a decoded Data frame. A keep-alive is a zero-length frame
// carrying no message id at all on the wire; it decodes to a Message
// with keepAlive set rather than being conflated with a real Choke,
// which also happens to be id 0 with an empty payload (§4.1).
type Message struct {
	ID        MessageType
	Payload   []byte
	keepAlive bool
}

// IsKeepAlive reports whether msg is a zero-length keep-alive frame.
func (m Message) IsKeepAlive() bool {
	return m.keepAlive
}

// DecodeData parses one length-prefixed Data frame from the head of buf:
// u32 length, followed by length bytes (the first being message_id, the
// rest the payload). length==0 is a keep-alive and decodes to
// {ID: Choke, Payload: nil} with IsKeepAlive()==true.
//
// Returns ok==false with err==nil when buf does not yet hold a full
// frame ("incomplete"); a non-nil err is a permanent protocol error
// (unknown message id).
func DecodeData(buf []byte) (msg Message, n int, ok bool, err error) {
	if len(buf) < 4 {
		return Message{}, 0, false, nil
	}

	length := binary.BigEndian.Uint32(buf[0:4])
	if length == 0 {
		return Message{keepAlive: true}, 4, true, nil
	}

	total := 4 + int(length)
	if len(buf) < total {
		return Message{}, 0, false, nil
	}

	id := buf[4]
	if !ValidMessageType(id) {
		return Message{}, 0, false, fmt.Errorf("wire: unknown message id %d", id)
	}

	payload := append([]byte(nil), buf[5:total]...)

	return Message{ID: MessageType(id), Payload: payload}, total, true, nil
}

// EncodeData serializes msg into its length-prefixed wire form. A zero
// value with ID==Choke and nil Payload is not special-cased here: callers
// that want a keep-alive must use EncodeKeepAlive.
func EncodeData(msg Message) []byte {
	length := uint32(len(msg.Payload) + 1)
	buf := make([]byte, 4+len(msg.Payload)+1)
	binary.BigEndian.PutUint32(buf[0:4], length)
	buf[4] = byte(msg.ID)
	copy(buf[5:], msg.Payload)
	return buf
}

// EncodeKeepAlive returns the 4-byte all-zero keep-alive frame.
func EncodeKeepAlive() []byte {
	return []byte{0, 0, 0, 0}
}

// Buffer accumulates bytes read from a transport and decodes frames off
// its head. It is the "partial-read buffer" of the Framing Codec
// component (§4.1); the decode logic itself (DecodeData/DecodeHandshake)
// is a pure function of a byte slice and never suspends (§9).
type Buffer struct {
	data []byte
}

// NewBuffer returns an empty decode buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Feed appends newly read bytes to the buffer.
func (b *Buffer) Feed(p []byte) {
	b.data = append(b.data, p...)
}

// Len reports the number of unconsumed bytes currently buffered.
func (b *Buffer) Len() int {
	return len(b.data)
}

// NextHandshake attempts to decode a handshake frame from the buffer
// head. ok is false (err nil) when more bytes are needed.
func (b *Buffer) NextHandshake() (h Handshake, ok bool, err error) {
	h, n, ok, err := DecodeHandshake(b.data)
	if err != nil {
		return Handshake{}, false, err
	}
	if !ok {
		return Handshake{}, false, nil
	}

	b.data = b.data[n:]
	return h, true, nil
}

// NextData attempts to decode one Data frame from the buffer head. ok is
// false (err nil) when more bytes are needed.
func (b *Buffer) NextData() (msg Message, ok bool, err error) {
	msg, n, ok, err := DecodeData(b.data)
	if err != nil {
		return Message{}, false, err
	}
	if !ok {
		return Message{}, false, nil
	}

	b.data = b.data[n:]
	return msg, true, nil
}
