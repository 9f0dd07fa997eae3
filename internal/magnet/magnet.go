// Package magnet parses a magnet URI into the InfoHash + tracker-URL
// record that is this system's sole inbound contract (§6). Magnet-URI
// parsing itself is named an out-of-scope external collaborator by
// spec.md §1; this package exists only so the CLI entrypoint has
// something real to call, grounded on original_source/src/magnet.rs's
// field extraction (xt=urn:btih:<hex>, repeated tr= params) but using
// net/url's query parser instead of the original's manual split("&").
package magnet

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Info is the external contract spec §6 describes: a 20-byte InfoHash
// plus the tracker URLs listed in the magnet link.
type Info struct {
	InfoHash    [20]byte
	TrackerURLs []string
	DisplayName string
}

// Parse decodes a "magnet:?xt=urn:btih:<40-hex-chars>&tr=...&dn=..." URI.
func Parse(raw string) (Info, error) {
	if !strings.HasPrefix(raw, "magnet:?") {
		return Info{}, fmt.Errorf("magnet: missing magnet:? prefix")
	}

	values, err := url.ParseQuery(raw[len("magnet:?"):])
	if err != nil {
		return Info{}, fmt.Errorf("magnet: parsing query: %w", err)
	}

	xt := values.Get("xt")
	const prefix = "urn:btih:"
	if !strings.HasPrefix(xt, prefix) {
		return Info{}, fmt.Errorf("magnet: missing or malformed xt parameter")
	}

	hexHash := xt[len(prefix):]
	if len(hexHash) != 40 {
		return Info{}, fmt.Errorf("magnet: info hash must be 40 hex chars, got %d", len(hexHash))
	}

	raw20, err := hex.DecodeString(hexHash)
	if err != nil {
		return Info{}, fmt.Errorf("magnet: decoding info hash: %w", err)
	}

	var infoHash [20]byte
	copy(infoHash[:], raw20)

	info := Info{
		InfoHash:    infoHash,
		TrackerURLs: values["tr"],
		DisplayName: values.Get("dn"),
	}

	return info, nil
}
