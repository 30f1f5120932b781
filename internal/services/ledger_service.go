package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"surfari/boardwalk/internal/common/clock"
	"surfari/boardwalk/internal/logging"
	"surfari/boardwalk/internal/metrics"
	"surfari/boardwalk/internal/models/dtos"
	"surfari/boardwalk/internal/models/entities"
)

// LiveSessionStore is the slice of the live-session repository the ledger
// needs.
type LiveSessionStore interface {
	Upsert(ctx context.Context, userID int64, serverID string, placeID int64, now time.Time) error
	Touch(ctx context.Context, userID int64, serverID string, now time.Time) error
	Get(ctx context.Context, userID int64, serverID string) (*entities.LiveSession, error)
	Delete(ctx context.Context, userID int64, serverID string) error
	ListStale(ctx context.Context, cutoff time.Time) ([]entities.LiveSession, error)
}

// ArchiveWriter appends finalized sessions.
type ArchiveWriter interface {
	Insert(ctx context.Context, s *entities.ArchivedSession) error
}

// LedgerService tracks live play sessions and finalizes them into the
// archive. All three ping handlers are tolerant of the game layer's
// at-least-once, best-effort delivery.
type LedgerService struct {
	live    LiveSessionStore
	archive ArchiveWriter
	clock   clock.Clock
	metrics *metrics.MetricsRegistry
}

func NewLedgerService(live LiveSessionStore, archive ArchiveWriter, clk clock.Clock, reg *metrics.MetricsRegistry) *LedgerService {
	if clk == nil {
		clk = &clock.DefaultClock{}
	}
	return &LedgerService{live: live, archive: archive, clock: clk, metrics: reg}
}

// Start opens (or resets, on reconnect) the live session for the user on
// this game server.
func (s *LedgerService) Start(ctx context.Context, userID int64, serverID string, placeID int64) error {
	if err := s.live.Upsert(ctx, userID, serverID, placeID, s.clock.Now().UTC()); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// Heartbeat refreshes the liveness marker. A missing live row is a silent
// no-op; the game may still be pinging a session the reaper already closed.
func (s *LedgerService) Heartbeat(ctx context.Context, userID int64, serverID string) error {
	if err := s.live.Touch(ctx, userID, serverID, s.clock.Now().UTC()); err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	return nil
}

// End finalizes the live session into the archive. Duration is anchored on
// started_at, not the last heartbeat, so heartbeat gaps don't undercount.
// A second end call finds nothing live and reports archived=false without
// error.
func (s *LedgerService) End(ctx context.Context, userID int64, serverID string) (*dtos.SessionEndResult, error) {
	doc, err := s.live.Get(ctx, userID, serverID)
	if err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	if doc == nil {
		return &dtos.SessionEndResult{OK: true, Archived: false}, nil
	}

	now := s.clock.Now().UTC()
	minutes := elapsedMinutes(doc.StartedAt, now)

	archived := &entities.ArchivedSession{
		UserID:        doc.UserID,
		ServerID:      doc.ServerID,
		PlaceID:       doc.PlaceID,
		StartedAt:     doc.StartedAt,
		LastHeartbeat: doc.LastHeartbeat,
		EndedAt:       now,
		Minutes:       minutes,
	}
	if err := s.archive.Insert(ctx, archived); err != nil {
		return nil, fmt.Errorf("archive session: %w", err)
	}
	if err := s.live.Delete(ctx, userID, serverID); err != nil {
		return nil, fmt.Errorf("delete live session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SessionsArchivedTotal.Inc()
		s.metrics.SessionMinutes.Observe(float64(minutes))
	}
	return &dtos.SessionEndResult{OK: true, Archived: true, Minutes: minutes}, nil
}

// ReapStale archives live sessions whose heartbeat went quiet for longer
// than ttl. The reaped session ends at its last heartbeat rather than now,
// so a crashed client isn't credited for the silent tail.
func (s *LedgerService) ReapStale(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.clock.Now().UTC().Add(-ttl)
	stale, err := s.live.ListStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale sessions: %w", err)
	}

	reaped := 0
	for _, doc := range stale {
		minutes := elapsedMinutes(doc.StartedAt, doc.LastHeartbeat)
		archived := &entities.ArchivedSession{
			UserID:        doc.UserID,
			ServerID:      doc.ServerID,
			PlaceID:       doc.PlaceID,
			StartedAt:     doc.StartedAt,
			LastHeartbeat: doc.LastHeartbeat,
			EndedAt:       doc.LastHeartbeat,
			Minutes:       minutes,
		}
		if err := s.archive.Insert(ctx, archived); err != nil {
			logging.Error("Failed to archive stale session",
				"user_id", doc.UserID, "server_id", doc.ServerID, "error", err.Error())
			continue
		}
		if err := s.live.Delete(ctx, doc.UserID, doc.ServerID); err != nil {
			logging.Error("Failed to delete stale session",
				"user_id", doc.UserID, "server_id", doc.ServerID, "error", err.Error())
			continue
		}
		reaped++
		if s.metrics != nil {
			s.metrics.SessionsReapedTotal.Inc()
		}
	}
	return reaped, nil
}

// elapsedMinutes rounds to the nearest minute and clamps at zero, so a
// 90-second session counts as 2 minutes and an 89-second one as 1.
func elapsedMinutes(from, to time.Time) int {
	ms := to.Sub(from).Milliseconds()
	if ms < 0 {
		return 0
	}
	return int(math.Round(float64(ms) / 60000))
}
