package service

import (
	"context"
	"log"
	"time"
)

// DefaultSweepInterval is how often expired files are reclaimed
const DefaultSweepInterval = 5 * time.Minute

// Purger is the slice of the transfer service the sweeper drives
type Purger interface {
	Purge(ctx context.Context, now time.Time) (int, error)
}

// Sweeper periodically purges expired files. It shares nothing with the
// request path except the stores behind the Purger, so overlapping or
// delayed ticks are safe.
type Sweeper struct {
	purger   Purger
	interval time.Duration
}

// NewSweeper creates a sweeper that purges at the given interval
func NewSweeper(purger Purger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{purger: purger, interval: interval}
}

// Run ticks until ctx is cancelled. Call it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.purger.Purge(ctx, time.Now())
			if err != nil {
				log.Printf("Error purging expired files: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("Expired files deleted: %d", count)
			}
		}
	}
}
