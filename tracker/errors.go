package tracker

import "fmt"

func errShortAnnounceResponse(n int) error {
	return fmt.Errorf("tracker: announce response too short: %d bytes", n)
}

func errMalformedPeerList(n int) error {
	return fmt.Errorf("tracker: peer list length %d not a multiple of 6", n)
}
