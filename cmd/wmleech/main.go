package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"wm/core"
	"wm/internal/diag"
	"wm/internal/magnet"
	"wm/progress"
	"wm/swarm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: ./wmleech <magnet-uri>\n")
		os.Exit(1)
	}

	info, err := magnet.Parse(os.Args[1])
	if err != nil {
		log.Fatalf("%v\n", err)
	}

	log.Printf("[INFO]\tParsed magnet: name=%q info_hash=%x trackers=%d\n",
		info.DisplayName, info.InfoHash, len(info.TrackerURLs))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blocks := make(chan swarm.BlockWrite, 64)
	sess, err := core.Start(ctx, info.InfoHash, info.TrackerURLs, 0, blocks)
	if err != nil {
		log.Fatalf("%v\n", err)
	}

	fmt.Printf("Tracker response - Peers: %d\n", sess.PeerCount)

	bar := progress.New(0, info.DisplayName)
	knownTotal := 0
	sess.Coordinator.OnProgress(func(done, total int) {
		if total == 0 {
			return
		}
		if total != knownTotal {
			bar.SetTotal(total)
			knownTotal = total
		}
		bar.Set(done)
	})

	snapshot := diag.Snapshot{
		InfoHash: fmt.Sprintf("%x", info.InfoHash),
		Peers:    sess.PeerCount,
	}
	for _, ts := range sess.TrackerStatuses {
		snapshot.Trackers = append(snapshot.Trackers, diag.TrackerStatus{
			URL:       ts.URL,
			PeerCount: ts.PeerCount,
			LastError: ts.LastError,
		})
	}

	go func() {
		for range blocks {
			// Writing completed blocks to disk is the external storage
			// collaborator's job (§1, §6); this core only forwards them.
		}
	}()

	<-ctx.Done()

	if path := os.Getenv("WM_DIAG_PATH"); path != "" {
		if err := diag.WriteFile(path, snapshot); err != nil {
			log.Printf("[FAIL]\twriting diagnostic snapshot: %v\n", err)
		}
	}
}
