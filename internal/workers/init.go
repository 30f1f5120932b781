package workers

import (
	"context"
	"time"

	"surfari/boardwalk/internal/db/repositories"
	"surfari/boardwalk/internal/metrics"
	"surfari/boardwalk/internal/services"
)

// InitializeWorkers starts the background workers and returns the reaper
// so tests and the jobs handler can trigger passes directly.
func InitializeWorkers(
	ctx context.Context,
	ledger *services.LedgerService,
	live *repositories.LiveSessionRepository,
	reg *metrics.MetricsRegistry,
	heartbeatTTL, reapInterval time.Duration,
) *SessionReaper {
	reaper := NewSessionReaper(ledger, live, reg, heartbeatTTL)

	go reaper.RunScheduled(ctx, reapInterval)

	return reaper
}
