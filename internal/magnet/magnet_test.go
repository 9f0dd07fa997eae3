package magnet

import "testing"

func TestParseValidMagnet(t *testing.T) {
	hash := "0123456789abcdef0123456789abcdef01234567"[:40]
	uri := "magnet:?xt=urn:btih:" + hash + "&dn=example&tr=udp%3A%2F%2Ftracker.example.org%3A80&tr=udp%3A%2F%2Ftracker2.example.org%3A80"

	info, err := Parse(uri)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.DisplayName != "example" {
		t.Fatalf("display name = %q", info.DisplayName)
	}
	if len(info.TrackerURLs) != 2 {
		t.Fatalf("expected 2 trackers, got %d", len(info.TrackerURLs))
	}
	if len(info.InfoHash) != 20 {
		t.Fatalf("info hash must be 20 bytes")
	}
}

func TestParseMissingPrefix(t *testing.T) {
	_, err := Parse("not-a-magnet")
	if err == nil {
		t.Fatalf("expected an error on a missing magnet:? prefix")
	}
}

func TestParseMissingXT(t *testing.T) {
	_, err := Parse("magnet:?dn=example")
	if err == nil {
		t.Fatalf("expected an error when xt is missing")
	}
}

func TestParseShortHash(t *testing.T) {
	_, err := Parse("magnet:?xt=urn:btih:deadbeef")
	if err == nil {
		t.Fatalf("expected an error on a short info hash")
	}
}

func TestParseNonHexHash(t *testing.T) {
	bad := "zz" + "0123456789abcdef0123456789abcdef012345"
	_, err := Parse("magnet:?xt=urn:btih:" + bad)
	if err == nil {
		t.Fatalf("expected an error on a non-hex info hash")
	}
}
