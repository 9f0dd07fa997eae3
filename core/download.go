// Package core wires the tracker client, peer sessions, and swarm
// coordinator together into the control flow described in spec §2:
// contact trackers, spawn one peer session per discovered address, let
// the coordinator drive its event loop, and keep re-announcing in the
// background to pick up peers discovered after the initial batch.
package core

import (
	"context"
	"net"
	"sync"

	"wm/internal/identity"
	"wm/internal/logx"
	"wm/peer"
	"wm/swarm"
	"wm/tracker"
)

// localPort is the port this client reports to trackers (§6). There is
// no inbound TCP listener in this core.
const localPort = 6881

// Session is a running download: the coordinator, the number of peers
// found by the initial batch announce, and each tracker's outcome. It
// does not track or wait for the peer sessions Start spawns.
type Session struct {
	Coordinator     *swarm.Coordinator
	PeerCount       int
	TrackerStatuses []tracker.TrackerStatus
}

// Start contacts every tracker concurrently, spawns one peer session per
// discovered address, and starts the coordinator's event loop in the
// background. blocks receives downloaded blocks (§6); the coordinator
// drops a block when blocks is full.
func Start(ctx context.Context, infoHash [20]byte, trackerURLs []string, totalLeft uint64, blocks chan<- swarm.BlockWrite) (*Session, error) {
	log := logx.New()

	var endpoints []*tracker.Endpoint
	for _, url := range trackerURLs {
		ep, err := tracker.NewEndpoint(url)
		if err != nil {
			log.Fail("skipping tracker %s: %v", url, err)
			continue
		}
		endpoints = append(endpoints, ep)
	}

	peerID := identity.Local()

	result, err := tracker.AnnounceAll(ctx, endpoints, infoHash, peerID, totalLeft, localPort)
	if err != nil {
		return nil, err
	}

	log.Info("discovered %d peers across %d trackers", len(result.Peers), len(endpoints))

	coord := swarm.New(blocks)
	go coord.Run()

	var mu sync.Mutex
	dialed := make(map[string]bool)

	spawn := func(pa tracker.PeerAddr) {
		tcpAddr := peerAddrToTCP(pa)
		key := tcpAddr.String()

		mu.Lock()
		if dialed[key] {
			mu.Unlock()
			return
		}
		dialed[key] = true
		mu.Unlock()

		go func(a *net.TCPAddr) {
			if err := peer.Run(ctx, a, infoHash, peerID, coord.Inbound()); err != nil {
				log.Fail("peer %s session ended: %v", a, err)
			}
		}(tcpAddr)
	}

	for _, addr := range result.Peers {
		spawn(addr)
	}

	if len(endpoints) > 0 {
		go tracker.Watch(ctx, endpoints, infoHash, peerID, totalLeft, localPort, func(sw tracker.Swarm) {
			log.Info("re-announce: %d peers", len(sw.Peers))
			for _, addr := range sw.Peers {
				spawn(addr)
			}
		})
	}

	return &Session{Coordinator: coord, PeerCount: len(result.Peers), TrackerStatuses: result.Statuses}, nil
}
