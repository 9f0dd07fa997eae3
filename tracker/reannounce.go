package tracker

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// minReannounceInterval floors the gap between successive batch
// announces regardless of what any single tracker reports, so a
// tracker answering with a very small or zero interval cannot drive
// this client into a tight retry loop.
const minReannounceInterval = 30 * time.Second

// Watch re-announces to every endpoint repeatedly, honoring each
// batch's reported interval but never faster than one batch per
// minReannounceInterval, and delivers every successful batch to
// onSwarm. It blocks until ctx is cancelled.
func Watch(ctx context.Context, endpoints []*Endpoint, infoHash, peerID [20]byte, left uint64, port uint16, onSwarm func(Swarm)) {
	limiter := rate.NewLimiter(rate.Every(minReannounceInterval), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		swarm, err := AnnounceAll(ctx, endpoints, infoHash, peerID, left, port)
		if err == nil {
			onSwarm(swarm)
		}

		wait := swarm.Interval
		if wait < minReannounceInterval {
			wait = minReannounceInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}
