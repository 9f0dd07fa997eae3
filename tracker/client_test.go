package tracker

import (
	"context"
	"net"
	"testing"
	"time"

	"wm/internal/wireerr"
)

func mustListenUDP(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listening udp: %v", err)
	}
	return conn
}

func TestSendRecvAtLeastSuccess(t *testing.T) {
	client := mustListenUDP(t)
	defer client.Close()
	server := mustListenUDP(t)
	defer server.Close()

	go func() {
		buf := make([]byte, 4096)
		n, from, err := server.ReadFromUDP(buf)
		if err != nil {
			return
		}
		reply := append([]byte("reply:"), buf[:n]...)
		server.WriteToUDP(reply, from)
	}()

	resp, err := sendRecvAtLeast(context.Background(), client, server.LocalAddr().(*net.UDPAddr), []byte("ping"), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp) != "reply:ping" {
		t.Fatalf("got %q", resp)
	}
}

func TestSendRecvAtLeastIgnoresAlienSource(t *testing.T) {
	client := mustListenUDP(t)
	defer client.Close()
	server := mustListenUDP(t)
	defer server.Close()
	attacker := mustListenUDP(t)
	defer attacker.Close()

	clientAddr := client.LocalAddr().(*net.UDPAddr)

	go func() {
		time.Sleep(20 * time.Millisecond)
		attacker.WriteToUDP([]byte("spoofed"), clientAddr)

		buf := make([]byte, 4096)
		n, from, err := server.ReadFromUDP(buf)
		if err != nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
		server.WriteToUDP(append([]byte("real:"), buf[:n]...), from)
	}()

	resp, err := sendRecvAtLeast(context.Background(), client, server.LocalAddr().(*net.UDPAddr), []byte("ping"), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp) != "real:ping" {
		t.Fatalf("expected the alien datagram to be ignored, got %q", resp)
	}
}

func TestSendRecvAtLeastTimeout(t *testing.T) {
	client := mustListenUDP(t)
	defer client.Close()
	server := mustListenUDP(t)
	defer server.Close()
	// no responder: the server never replies.

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := sendRecvAtLeast(ctx, client, server.LocalAddr().(*net.UDPAddr), []byte("ping"), 1)
	if err == nil {
		t.Fatalf("expected a timeout error")
	}
	if !wireerr.Is(err, wireerr.KindTimeout) {
		t.Fatalf("expected a Timeout-kind error, got %v", err)
	}
}

func TestSameHost(t *testing.T) {
	a := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1000}
	b := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1000}
	c := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1001}

	if !sameHost(a, b) {
		t.Fatalf("expected a and b to match")
	}
	if sameHost(a, c) {
		t.Fatalf("expected a and c to differ")
	}
}
