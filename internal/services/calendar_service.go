package services

import (
	"context"
	"fmt"
	"time"

	"surfari/boardwalk/internal/common/clock"
	"surfari/boardwalk/internal/constants"
	"surfari/boardwalk/internal/models/dtos"
	"surfari/boardwalk/internal/models/entities"
)

// CalendarStore is the repository slice the claim board needs.
type CalendarStore interface {
	InsertIfAbsent(ctx context.Context, s *entities.CalendarSession) error
	Get(ctx context.Context, id string) (*entities.CalendarSession, error)
	ListWindow(ctx context.Context, start, end time.Time) ([]entities.CalendarSession, error)
	ClaimRole(ctx context.Context, id string, role constants.ClaimRole, userID string) (bool, error)
	UnclaimRole(ctx context.Context, id string, role constants.ClaimRole, userID string) (bool, error)
}

const defaultSessionTitle = "Training Session"

// CalendarService manages the weekly board of claimable training blocks.
// Slot instants are wall-clock hours in the configured zone, converted to
// UTC for storage, so published times stay aligned with the community's
// schedule across DST changes.
type CalendarService struct {
	repo  CalendarStore
	clock clock.Clock
	loc   *time.Location
}

func NewCalendarService(repo CalendarStore, clk clock.Clock, loc *time.Location) *CalendarService {
	if clk == nil {
		clk = &clock.DefaultClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarService{repo: repo, clock: clk, loc: loc}
}

// weekStart returns Monday midnight (in the board's zone) of the week
// containing ref. The claim board is always Monday-anchored regardless of
// the quota week configuration.
func (s *CalendarService) weekStart(ref time.Time) time.Time {
	local := ref.In(s.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	back := (int(midnight.Weekday()) - int(time.Monday) + 7) % 7
	return midnight.AddDate(0, 0, -back)
}

// SlotID derives the stable id for a slot from its start instant.
func SlotID(start time.Time) string {
	return "sess-" + start.UTC().Format(time.RFC3339)
}

// Publish creates slot stubs for weeks ahead: 7 days x the fixed two-hour
// blocks per day. Inserts are keyed on the exact start instant, so
// republishing is idempotent and existing claims are never overwritten.
func (s *CalendarService) Publish(ctx context.Context, startRef time.Time, weeks int, title string, maxTrainers *int) (*dtos.PublishResult, error) {
	if weeks < 1 {
		weeks = 1
	}
	if weeks > constants.MaxPublishWeeks {
		weeks = constants.MaxPublishWeeks
	}
	if title == "" {
		title = defaultSessionTitle
	}
	cap := 4
	if maxTrainers != nil && *maxTrainers >= 0 {
		cap = *maxTrainers
	}

	base := s.weekStart(startRef)
	for w := 0; w < weeks; w++ {
		week := base.AddDate(0, 0, w*7)
		for d := 0; d < 7; d++ {
			day := week.AddDate(0, 0, d)
			for _, hour := range constants.EstSlotHours {
				start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, s.loc)
				slot := &entities.CalendarSession{
					ID:          SlotID(start),
					WeekStart:   week.UTC(),
					StartAt:     start.UTC(),
					EndAt:       start.Add(constants.SlotDurationHours * time.Hour).UTC(),
					EstHour:     hour,
					Title:       title,
					MaxTrainers: cap,
				}
				if err := s.repo.InsertIfAbsent(ctx, slot); err != nil {
					return nil, fmt.Errorf("publish slot %s: %w", slot.ID, err)
				}
			}
		}
	}

	return &dtos.PublishResult{OK: true, WeeksPublished: weeks}, nil
}

// ListWeek returns the board for the week containing ref, ordered by start.
func (s *CalendarService) ListWeek(ctx context.Context, ref time.Time) ([]dtos.CalendarSlot, error) {
	start := s.weekStart(ref)
	end := start.AddDate(0, 0, 7)

	rows, err := s.repo.ListWindow(ctx, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("list calendar week: %w", err)
	}

	out := make([]dtos.CalendarSlot, 0, len(rows))
	for _, r := range rows {
		out = append(out, dtos.CalendarSlot{
			ID:          r.ID,
			WeekStart:   r.WeekStart,
			Start:       r.StartAt,
			End:         r.EndAt,
			EstHour:     r.EstHour,
			Title:       r.Title,
			HostID:      r.HostID,
			CohostID:    r.CohostID,
			TrainerIDs:  append([]string{}, r.TrainerIDs...),
			MaxTrainers: r.MaxTrainers,
			Notes:       r.Notes,
		})
	}
	return out, nil
}

// Claim assigns a role on a slot to userID. The store-side conditional
// update decides the race; the pre-read only supplies error context and
// the past-session guard.
func (s *CalendarService) Claim(ctx context.Context, sessionID string, role constants.ClaimRole, userID string) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}

	slot, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if slot == nil {
		return ErrNotFound
	}
	if slot.EndAt.Before(s.clock.Now().UTC()) {
		return ErrSessionInPast
	}

	changed, err := s.repo.ClaimRole(ctx, sessionID, role, userID)
	if err != nil {
		return fmt.Errorf("claim %s: %w", role, err)
	}
	if changed {
		return nil
	}

	// The conditional update matched nothing; figure out why.
	switch role {
	case constants.RoleHost:
		holder := ""
		if slot.HostID != nil {
			holder = *slot.HostID
		}
		if holder == userID {
			return nil
		}
		return &ConflictError{Role: string(role), Holder: holder}
	case constants.RoleCohost:
		holder := ""
		if slot.CohostID != nil {
			holder = *slot.CohostID
		}
		if holder == userID {
			return nil
		}
		return &ConflictError{Role: string(role), Holder: holder}
	default:
		for _, id := range slot.TrainerIDs {
			if id == userID {
				return nil // already in the set
			}
		}
		return &ConflictError{Role: string(role), Capacity: slot.MaxTrainers}
	}
}

// Unclaim releases a role. Host and co-host only clear when held by the
// caller; anything else is a silent no-op, matching the forgiving contract
// the dashboard expects.
func (s *CalendarService) Unclaim(ctx context.Context, sessionID string, role constants.ClaimRole, userID string) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}

	slot, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if slot == nil {
		return ErrNotFound
	}

	if _, err := s.repo.UnclaimRole(ctx, sessionID, role, userID); err != nil {
		return fmt.Errorf("unclaim %s: %w", role, err)
	}
	return nil
}
