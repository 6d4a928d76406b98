package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"
)

// Evictor is the cache side of the sweep loop.
type Evictor interface {
	Sweep(now time.Time) int
	Len() int
}

// Sweeper periodically evicts expired tokens. It sweeps once on start, then
// waits either a fixed interval or until the next tick of a cron expression.
type Sweeper struct {
	cache    Evictor
	interval time.Duration
	cronExpr string
	now      func() time.Time
}

// NewSweeper creates a Sweeper. cronExpr, when non-empty, takes precedence
// over interval.
func NewSweeper(cache Evictor, interval time.Duration, cronExpr string) *Sweeper {
	return &Sweeper{
		cache:    cache,
		interval: interval,
		cronExpr: cronExpr,
		now:      time.Now,
	}
}

// Run sweeps until ctx is cancelled. Sweep failures are logged and the loop
// carries on with the next cycle.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("dedupe sweeper started", "interval", s.interval, "cron", s.cronExpr)
	defer slog.Info("dedupe sweeper stopped")

	for {
		if _, err := s.SweepOnce(); err != nil {
			slog.Error("error during cleanup", "error", err)
		}

		timer := time.NewTimer(s.nextDelay(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// SweepOnce runs a single eviction pass. A panic inside the cache is reported
// as an error; entries already evicted in that pass stay evicted.
func (s *Sweeper) SweepOnce() (removed int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep panic: %v", r)
		}
	}()
	removed = s.cache.Sweep(s.now())
	slog.Info("cleaned old addresses from dedupe cache", "removed", removed, "remaining", s.cache.Len())
	return removed, nil
}

// nextDelay returns how long to wait after now before the next sweep.
func (s *Sweeper) nextDelay(now time.Time) time.Duration {
	if s.cronExpr != "" {
		next, err := gronx.NextTickAfter(s.cronExpr, now, false)
		if err == nil && next.After(now) {
			return next.Sub(now)
		}
		slog.Warn("invalid sweep cron, falling back to interval", "cron", s.cronExpr, "error", err)
	}
	if s.interval <= 0 {
		return 24 * time.Hour
	}
	return s.interval
}
