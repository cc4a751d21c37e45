package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type Sweeper interface {
	Sweep() int
}

// SweepExpiredSessions drops sessions whose cached QR code has outlived the TTL.
func SweepExpiredSessions(store Sweeper) int {
	removed := store.Sweep()
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("Worker: swept expired sessions")
	}
	return removed
}

// RunSessionSweeper calls SweepExpiredSessions every interval until ctx is done.
func RunSessionSweeper(ctx context.Context, store Sweeper, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SweepExpiredSessions(store)
		}
	}
}
