package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"surfari/boardwalk/internal/constants"
	"surfari/boardwalk/internal/models/entities"
)

type ArchiveRepository struct {
	db *sqlx.DB
}

func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db}
}

// Insert appends an archived session. The table is append-only; nothing
// ever updates or deletes these rows.
func (r *ArchiveRepository) Insert(ctx context.Context, s *entities.ArchivedSession) error {
	_, err := r.db.ExecContext(ctx, constants.InsertArchivedSession,
		s.UserID, s.ServerID, s.PlaceID, s.StartedAt, s.LastHeartbeat, s.EndedAt, s.Minutes)
	return err
}

func (r *ArchiveRepository) SumMinutesSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, constants.SumMinutesSince, since); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ArchiveRepository) SumMinutesInWindow(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, constants.SumMinutesInWindow, start, end); err != nil {
		return 0, err
	}
	return n, nil
}

// MinutesPerUser aggregates archived minutes grouped by user inside the
// half-open window [start, end).
func (r *ArchiveRepository) MinutesPerUser(ctx context.Context, start, end time.Time) ([]entities.UserMinutes, error) {
	var rows []entities.UserMinutes
	if err := r.db.SelectContext(ctx, &rows, constants.SumMinutesPerUserInWindow, start, end); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ArchiveRepository) MinutesForUser(ctx context.Context, userID int64, start, end time.Time) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, constants.SumMinutesForUserInWindow, userID, start, end); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ArchiveRepository) Recent(ctx context.Context, limit int) ([]entities.ArchivedSession, error) {
	var rows []entities.ArchivedSession
	if err := r.db.SelectContext(ctx, &rows, constants.ListRecentArchivedSessions, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ArchiveRepository) Leaderboard(ctx context.Context, start, end time.Time, limit int) ([]entities.UserMinutes, error) {
	var rows []entities.UserMinutes
	if err := r.db.SelectContext(ctx, &rows, constants.LeaderboardInWindow, start, end, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ArchiveRepository) CountActiveUsers(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, constants.CountActiveUsersInWindow, start, end); err != nil {
		return 0, err
	}
	return n, nil
}

// ProgressPage returns one page of the per-user directory, minutes
// descending.
func (r *ArchiveRepository) ProgressPage(ctx context.Context, start, end time.Time, offset, limit int) ([]entities.UserMinutes, error) {
	var rows []entities.UserMinutes
	if err := r.db.SelectContext(ctx, &rows, constants.ProgressPageInWindow, start, end, offset, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
