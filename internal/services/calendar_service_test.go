package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfari/boardwalk/internal/common/clock"
	"surfari/boardwalk/internal/constants"
	"surfari/boardwalk/internal/models/entities"
)

// fakeCalendarStore mirrors the conditional-update contract of the SQL
// repository in memory.
type fakeCalendarStore struct {
	slots map[string]*entities.CalendarSession
}

func newFakeCalendarStore() *fakeCalendarStore {
	return &fakeCalendarStore{slots: make(map[string]*entities.CalendarSession)}
}

func (f *fakeCalendarStore) InsertIfAbsent(_ context.Context, s *entities.CalendarSession) error {
	if _, exists := f.slots[s.ID]; exists {
		return nil
	}
	copied := *s
	f.slots[s.ID] = &copied
	return nil
}

func (f *fakeCalendarStore) Get(_ context.Context, id string) (*entities.CalendarSession, error) {
	slot, ok := f.slots[id]
	if !ok {
		return nil, nil
	}
	copied := *slot
	copied.TrainerIDs = append(copied.TrainerIDs[:0:0], slot.TrainerIDs...)
	return &copied, nil
}

func (f *fakeCalendarStore) ListWindow(_ context.Context, start, end time.Time) ([]entities.CalendarSession, error) {
	var out []entities.CalendarSession
	for _, slot := range f.slots {
		if !slot.StartAt.Before(start) && slot.StartAt.Before(end) {
			out = append(out, *slot)
		}
	}
	return out, nil
}

func (f *fakeCalendarStore) ClaimRole(_ context.Context, id string, role constants.ClaimRole, userID string) (bool, error) {
	slot, ok := f.slots[id]
	if !ok {
		return false, nil
	}
	switch role {
	case constants.RoleHost:
		if slot.HostID == nil || *slot.HostID == userID {
			changed := slot.HostID == nil
			slot.HostID = &userID
			return changed, nil
		}
		return false, nil
	case constants.RoleCohost:
		if slot.CohostID == nil || *slot.CohostID == userID {
			changed := slot.CohostID == nil
			slot.CohostID = &userID
			return changed, nil
		}
		return false, nil
	default:
		for _, existing := range slot.TrainerIDs {
			if existing == userID {
				return false, nil
			}
		}
		if len(slot.TrainerIDs) >= slot.MaxTrainers {
			return false, nil
		}
		slot.TrainerIDs = append(slot.TrainerIDs, userID)
		return true, nil
	}
}

func (f *fakeCalendarStore) UnclaimRole(_ context.Context, id string, role constants.ClaimRole, userID string) (bool, error) {
	slot, ok := f.slots[id]
	if !ok {
		return false, nil
	}
	switch role {
	case constants.RoleHost:
		if slot.HostID != nil && *slot.HostID == userID {
			slot.HostID = nil
			return true, nil
		}
	case constants.RoleCohost:
		if slot.CohostID != nil && *slot.CohostID == userID {
			slot.CohostID = nil
			return true, nil
		}
	default:
		for i, existing := range slot.TrainerIDs {
			if existing == userID {
				slot.TrainerIDs = append(slot.TrainerIDs[:i], slot.TrainerIDs[i+1:]...)
				return true, nil
			}
		}
	}
	return false, nil
}

func newTestCalendar(t *testing.T) (*CalendarService, *fakeCalendarStore, *clock.Fixed) {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// A Wednesday; the containing board week starts Monday 2026-03-02.
	clk := &clock.Fixed{Current: time.Date(2026, 3, 4, 12, 0, 0, 0, loc)}
	store := newFakeCalendarStore()
	return NewCalendarService(store, clk, loc), store, clk
}

// futureSlotID picks a published slot that has not ended yet.
func futureSlotID(t *testing.T, store *fakeCalendarStore, clk *clock.Fixed) string {
	t.Helper()
	for id, slot := range store.slots {
		if slot.EndAt.After(clk.Now().UTC()) {
			return id
		}
	}
	t.Fatal("no future slot published")
	return ""
}

func TestPublishCreatesFullWeek(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestCalendar(t)

	result, err := svc.Publish(ctx, clk.Now(), 1, "", nil)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 1, result.WeeksPublished)

	// 7 days x 8 fixed blocks.
	assert.Len(t, store.slots, 56)

	slots, err := svc.ListWeek(ctx, clk.Now())
	require.NoError(t, err)
	assert.Len(t, slots, 56)
	for _, slot := range slots {
		assert.Equal(t, "Training Session", slot.Title)
		assert.Equal(t, 4, slot.MaxTrainers)
		assert.Equal(t, 2*time.Hour, slot.End.Sub(slot.Start))
		assert.Contains(t, constants.EstSlotHours, slot.EstHour)
	}
}

func TestPublishIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestCalendar(t)

	_, err := svc.Publish(ctx, clk.Now(), 1, "", nil)
	require.NoError(t, err)

	// Claim a slot, then republish with a different title.
	anyID := futureSlotID(t, store, clk)
	require.NoError(t, svc.Claim(ctx, anyID, constants.RoleHost, "alice"))

	_, err = svc.Publish(ctx, clk.Now(), 1, "Renamed", nil)
	require.NoError(t, err)

	assert.Len(t, store.slots, 56, "republish adds nothing")
	slot, err := store.Get(ctx, anyID)
	require.NoError(t, err)
	require.NotNil(t, slot.HostID)
	assert.Equal(t, "alice", *slot.HostID, "existing claims survive republish")
	assert.Equal(t, "Training Session", slot.Title, "existing slots keep their title")
}

func TestPublishClampsWeeks(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestCalendar(t)

	result, err := svc.Publish(ctx, clk.Now(), 99, "", nil)
	require.NoError(t, err)
	assert.Equal(t, constants.MaxPublishWeeks, result.WeeksPublished)
	assert.Len(t, store.slots, 56*constants.MaxPublishWeeks)
}

func TestClaimHostConflict(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestCalendar(t)

	_, err := svc.Publish(ctx, clk.Now(), 1, "", nil)
	require.NoError(t, err)
	anyID := futureSlotID(t, store, clk)

	require.NoError(t, svc.Claim(ctx, anyID, constants.RoleHost, "alice"))

	// Same user claiming again is a no-op, not a conflict.
	require.NoError(t, svc.Claim(ctx, anyID, constants.RoleHost, "alice"))

	err = svc.Claim(ctx, anyID, constants.RoleHost, "bob")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "host", conflict.Role)
	assert.Equal(t, "alice", conflict.Holder)

	// Co-host is independent of host.
	require.NoError(t, svc.Claim(ctx, anyID, constants.RoleCohost, "bob"))
}

func TestClaimTrainerCapacity(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestCalendar(t)

	capacity := 2
	_, err := svc.Publish(ctx, clk.Now(), 1, "", &capacity)
	require.NoError(t, err)
	anyID := futureSlotID(t, store, clk)

	require.NoError(t, svc.Claim(ctx, anyID, constants.RoleTrainer, "t1"))
	require.NoError(t, svc.Claim(ctx, anyID, constants.RoleTrainer, "t2"))

	// Already in the set: no-op.
	require.NoError(t, svc.Claim(ctx, anyID, constants.RoleTrainer, "t1"))

	err = svc.Claim(ctx, anyID, constants.RoleTrainer, "t3")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, capacity, conflict.Capacity)
}

func TestClaimPastSession(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestCalendar(t)

	_, err := svc.Publish(ctx, clk.Now(), 1, "", nil)
	require.NoError(t, err)

	// Find a slot that already ended by Wednesday noon.
	var pastID string
	for id, slot := range store.slots {
		if slot.EndAt.Before(clk.Now().UTC()) {
			pastID = id
			break
		}
	}
	require.NotEmpty(t, pastID)

	err = svc.Claim(ctx, pastID, constants.RoleHost, "alice")
	assert.ErrorIs(t, err, ErrSessionInPast)
}

func TestClaimUnknownSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCalendar(t)

	err := svc.Claim(ctx, "sess-2026-03-02T05:00:00Z", constants.RoleHost, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnclaim(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestCalendar(t)

	_, err := svc.Publish(ctx, clk.Now(), 1, "", nil)
	require.NoError(t, err)
	anyID := futureSlotID(t, store, clk)

	require.NoError(t, svc.Claim(ctx, anyID, constants.RoleHost, "alice"))
	require.NoError(t, svc.Unclaim(ctx, anyID, constants.RoleHost, "alice"))

	slot, err := store.Get(ctx, anyID)
	require.NoError(t, err)
	assert.Nil(t, slot.HostID)

	// Releasing a role someone else holds (or nobody holds) is silent.
	require.NoError(t, svc.Claim(ctx, anyID, constants.RoleHost, "bob"))
	assert.NoError(t, svc.Unclaim(ctx, anyID, constants.RoleHost, "alice"))
	slot, err = store.Get(ctx, anyID)
	require.NoError(t, err)
	require.NotNil(t, slot.HostID)
	assert.Equal(t, "bob", *slot.HostID)
}
