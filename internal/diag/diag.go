// Package diag records a small per-session diagnostic snapshot — peers
// seen, and each tracker's peer count and last error; the announce
// interval is not recorded — so an
// operator can inspect what happened after a run without re-parsing log
// output. It is bencoded, following the teacher's own wire-decoding
// dependency (github.com/jackpal/bencode-go), generalized here to the
// encode side as well.
package diag

import (
	"bytes"
	"os"

	"github.com/jackpal/bencode-go"
)

// TrackerStatus is one tracker's outcome for a single session.
type TrackerStatus struct {
	URL       string `bencode:"url"`
	PeerCount int    `bencode:"peer_count"`
	LastError string `bencode:"last_error"`
}

// Snapshot is the full recorded session state.
type Snapshot struct {
	InfoHash string          `bencode:"info_hash"`
	Trackers []TrackerStatus `bencode:"trackers"`
	Peers    int             `bencode:"peers"`
}

// WriteFile bencode-encodes snap and writes it to path.
func WriteFile(path string, snap Snapshot) error {
	var buf bytes.Buffer
	if err := bencode.Marshal(&buf, snap); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadFile decodes a previously written snapshot.
func ReadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := bencode.Unmarshal(bytes.NewReader(data), &snap); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}
