package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wm/internal/logx"
)

// Swarm is a deduplicated set of peer endpoints gathered from a batch
// announce (§4.2). Deduplication is by socket address; Peers keeps
// first-seen order, and the order across trackers depends on which
// tracker answers first, which is correctness-irrelevant per spec. Interval
// is the shortest refresh interval reported by any tracker that
// answered, used to pace the next re-announce.
type Swarm struct {
	Peers    []PeerAddr
	Interval time.Duration
	Statuses []TrackerStatus
}

// TrackerStatus is one tracker's outcome for a single batch announce:
// how many peers it contributed, or why it failed. Used by callers that
// want to record a per-tracker diagnostic (§7 — "a single diagnostic
// line per failed tracker", surfaced here as structured data instead of
// only a log line).
type TrackerStatus struct {
	URL       string
	PeerCount int
	LastError string
}

// AnnounceAll concurrently announces to every endpoint and flattens the
// results, deduplicating by (IP, port). A tracker that fails connect or
// announce is dropped and logged; the batch succeeds if at least one
// peer address is obtained. Zero peers is a normal but terminal outcome
// (§4.2).
func AnnounceAll(ctx context.Context, endpoints []*Endpoint, infoHash, peerID [20]byte, left uint64, port uint16) (Swarm, error) {
	log := logx.New()

	type result struct {
		peers    []PeerAddr
		interval time.Duration
		err      error
		url      string
	}

	results := make(chan result, len(endpoints))
	var wg sync.WaitGroup

	for _, ep := range endpoints {
		wg.Add(1)
		go func(ep *Endpoint) {
			defer wg.Done()

			res, err := ep.Announce(ctx, infoHash, peerID, left, port)
			if err != nil {
				results <- result{err: err, url: ep.URL}
				return
			}

			results <- result{peers: res.Peers, interval: res.Interval, url: ep.URL}
		}(ep)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	seen := make(map[[6]byte]struct{})
	var peers []PeerAddr
	var statuses []TrackerStatus
	var shortest time.Duration

	for r := range results {
		if r.err != nil {
			log.Fail("tracker %s failed: %v", r.url, r.err)
			statuses = append(statuses, TrackerStatus{URL: r.url, LastError: r.err.Error()})
			continue
		}

		if shortest == 0 || (r.interval > 0 && r.interval < shortest) {
			shortest = r.interval
		}

		statuses = append(statuses, TrackerStatus{URL: r.url, PeerCount: len(r.peers)})

		for _, p := range r.peers {
			var key [6]byte
			copy(key[:4], p.IP[:])
			key[4] = byte(p.Port >> 8)
			key[5] = byte(p.Port)

			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			peers = append(peers, p)
		}
	}

	if len(peers) == 0 {
		return Swarm{Statuses: statuses}, fmt.Errorf("tracker: no peers received from any tracker")
	}

	return Swarm{Peers: peers, Interval: shortest, Statuses: statuses}, nil
}
