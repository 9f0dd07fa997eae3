// Package identity generates the local client's 20-byte PeerId once per
// process, per §3/§6: the ASCII prefix "-WM0001-" followed by 12
// cryptographically random bytes, constant for the process lifetime.
package identity

import (
	crand "crypto/rand"
	"fmt"
)

const prefix = "-WM0001-"

var local = newPeerID()

func newPeerID() [20]byte {
	var id [20]byte
	copy(id[:8], prefix)

	if _, err := crand.Read(id[8:]); err != nil {
		panic(fmt.Sprintf("identity: reading random bytes: %v", err))
	}

	return id
}

// Local returns this process's fixed PeerId.
func Local() [20]byte {
	return local
}
