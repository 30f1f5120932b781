package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"surfari/boardwalk/internal/constants"
	"surfari/boardwalk/internal/models/entities"
)

type LiveSessionRepository struct {
	db *sqlx.DB
}

func NewLiveSessionRepository(db *sqlx.DB) *LiveSessionRepository {
	return &LiveSessionRepository{db}
}

// Upsert inserts or resets the live session for (userID, serverID).
// Re-calling on reconnect deliberately resets started_at.
func (r *LiveSessionRepository) Upsert(ctx context.Context, userID int64, serverID string, placeID int64, now time.Time) error {
	_, err := r.db.ExecContext(ctx, constants.UpsertLiveSession, userID, serverID, placeID, now)
	return err
}

// Touch updates last_heartbeat. A missing row is not an error; the game
// client may race with the reaper.
func (r *LiveSessionRepository) Touch(ctx context.Context, userID int64, serverID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, constants.TouchLiveSession, userID, serverID, now)
	return err
}

// Get returns the live session, or (nil, nil) when none exists.
func (r *LiveSessionRepository) Get(ctx context.Context, userID int64, serverID string) (*entities.LiveSession, error) {
	var s entities.LiveSession
	err := r.db.QueryRowxContext(ctx, constants.GetLiveSession, userID, serverID).StructScan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *LiveSessionRepository) Delete(ctx context.Context, userID int64, serverID string) error {
	_, err := r.db.ExecContext(ctx, constants.DeleteLiveSession, userID, serverID)
	return err
}

func (r *LiveSessionRepository) List(ctx context.Context) ([]entities.LiveSession, error) {
	var rows []entities.LiveSession
	if err := r.db.SelectContext(ctx, &rows, constants.ListLiveSessions); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListStale returns live sessions whose last heartbeat is before cutoff.
func (r *LiveSessionRepository) ListStale(ctx context.Context, cutoff time.Time) ([]entities.LiveSession, error) {
	var rows []entities.LiveSession
	if err := r.db.SelectContext(ctx, &rows, constants.ListStaleLiveSessions, cutoff); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LiveSessionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, constants.CountLiveSessions); err != nil {
		return 0, err
	}
	return n, nil
}
