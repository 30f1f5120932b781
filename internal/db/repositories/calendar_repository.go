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

type CalendarRepository struct {
	db *sqlx.DB
}

func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db}
}

// InsertIfAbsent creates a slot stub keyed by its start instant. Existing
// rows keep their claims untouched; publish must never clobber them.
func (r *CalendarRepository) InsertIfAbsent(ctx context.Context, s *entities.CalendarSession) error {
	_, err := r.db.ExecContext(ctx, constants.InsertCalendarSessionIfAbsent,
		s.ID, s.WeekStart, s.StartAt, s.EndAt, s.EstHour, s.Title, s.MaxTrainers)
	return err
}

// Get returns the slot, or (nil, nil) when none exists.
func (r *CalendarRepository) Get(ctx context.Context, id string) (*entities.CalendarSession, error) {
	var s entities.CalendarSession
	err := r.db.QueryRowxContext(ctx, constants.GetCalendarSession, id).StructScan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CalendarRepository) ListWindow(ctx context.Context, start, end time.Time) ([]entities.CalendarSession, error) {
	var rows []entities.CalendarSession
	if err := r.db.SelectContext(ctx, &rows, constants.ListCalendarSessionsInWindow, start, end); err != nil {
		return nil, err
	}
	return rows, nil
}

// ClaimRole performs the conditional update for the given role. It returns
// true when a row changed; false means the guard failed (held by someone
// else, or trainer slots full). The single UPDATE is what closes the
// check-then-act race on concurrent claims.
func (r *CalendarRepository) ClaimRole(ctx context.Context, id string, role constants.ClaimRole, userID string) (bool, error) {
	var query string
	switch role {
	case constants.RoleHost:
		query = constants.ClaimHost
	case constants.RoleCohost:
		query = constants.ClaimCohost
	case constants.RoleTrainer:
		query = constants.ClaimTrainer
	default:
		return false, errors.New("unknown claim role")
	}

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UnclaimRole clears the role only when held by userID (host/cohost) or
// removes userID from the trainer set.
func (r *CalendarRepository) UnclaimRole(ctx context.Context, id string, role constants.ClaimRole, userID string) (bool, error) {
	var query string
	switch role {
	case constants.RoleHost:
		query = constants.UnclaimHost
	case constants.RoleCohost:
		query = constants.UnclaimCohost
	case constants.RoleTrainer:
		query = constants.UnclaimTrainer
	default:
		return false, errors.New("unknown claim role")
	}

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
