package workers

import (
	"context"
	"time"

	"surfari/boardwalk/internal/logging"
	"surfari/boardwalk/internal/metrics"
	"surfari/boardwalk/internal/services"
)

// LiveCounter exposes the live-session count for the gauge refresh.
type LiveCounter interface {
	Count(ctx context.Context) (int, error)
}

// SessionReaper ends live sessions whose heartbeats went quiet. Crashed
// game servers never send an end ping, so without the reaper those rows
// would sit in the live table forever and inflate the live count.
type SessionReaper struct {
	ledger  *services.LedgerService
	live    LiveCounter
	metrics *metrics.MetricsRegistry
	ttl     time.Duration
}

func NewSessionReaper(
	ledger *services.LedgerService,
	live LiveCounter,
	reg *metrics.MetricsRegistry,
	ttl time.Duration,
) *SessionReaper {
	return &SessionReaper{
		ledger:  ledger,
		live:    live,
		metrics: reg,
		ttl:     ttl,
	}
}

// Run performs one reap pass and refreshes the live gauge.
func (w *SessionReaper) Run(ctx context.Context) error {
	reaped, err := w.ledger.ReapStale(ctx, w.ttl)
	if err != nil {
		return err
	}
	if reaped > 0 {
		logging.Info("Reaped stale sessions", "count", reaped)
	}

	count, err := w.live.Count(ctx)
	if err != nil {
		return err
	}
	w.metrics.LiveSessions.Set(float64(count))
	return nil
}

// RunScheduled loops Run on the given interval until ctx is cancelled.
// The first pass runs immediately so a restart clears backlog right away.
func (w *SessionReaper) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := w.Run(ctx); err != nil {
		logging.Error("Reaper initial pass failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := w.Run(ctx); err != nil {
				logging.Error("Reaper pass failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
