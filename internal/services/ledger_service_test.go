package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfari/boardwalk/internal/common/clock"
	"surfari/boardwalk/internal/models/entities"
)

type liveKey struct {
	userID   int64
	serverID string
}

// fakeLiveStore is an in-memory LiveSessionStore.
type fakeLiveStore struct {
	rows map[liveKey]*entities.LiveSession
}

func newFakeLiveStore() *fakeLiveStore {
	return &fakeLiveStore{rows: make(map[liveKey]*entities.LiveSession)}
}

func (f *fakeLiveStore) Upsert(_ context.Context, userID int64, serverID string, placeID int64, now time.Time) error {
	f.rows[liveKey{userID, serverID}] = &entities.LiveSession{
		UserID:        userID,
		ServerID:      serverID,
		PlaceID:       placeID,
		StartedAt:     now,
		LastHeartbeat: now,
	}
	return nil
}

func (f *fakeLiveStore) Touch(_ context.Context, userID int64, serverID string, now time.Time) error {
	if row, ok := f.rows[liveKey{userID, serverID}]; ok {
		row.LastHeartbeat = now
	}
	return nil
}

func (f *fakeLiveStore) Get(_ context.Context, userID int64, serverID string) (*entities.LiveSession, error) {
	row, ok := f.rows[liveKey{userID, serverID}]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeLiveStore) Delete(_ context.Context, userID int64, serverID string) error {
	delete(f.rows, liveKey{userID, serverID})
	return nil
}

func (f *fakeLiveStore) List(_ context.Context) ([]entities.LiveSession, error) {
	out := make([]entities.LiveSession, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeLiveStore) ListStale(_ context.Context, cutoff time.Time) ([]entities.LiveSession, error) {
	var out []entities.LiveSession
	for _, row := range f.rows {
		if row.LastHeartbeat.Before(cutoff) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeLiveStore) Count(_ context.Context) (int, error) {
	return len(f.rows), nil
}

// fakeArchive records inserted sessions.
type fakeArchive struct {
	rows []entities.ArchivedSession
}

func (f *fakeArchive) Insert(_ context.Context, s *entities.ArchivedSession) error {
	f.rows = append(f.rows, *s)
	return nil
}

func newTestLedger() (*LedgerService, *fakeLiveStore, *fakeArchive, *clock.Fixed) {
	live := newFakeLiveStore()
	archive := &fakeArchive{}
	clk := &clock.Fixed{Current: time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)}
	return NewLedgerService(live, archive, clk, nil), live, archive, clk
}

func TestLedgerEndRoundsToNearestMinute(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{89 * time.Second, 1},
		{90 * time.Second, 2},
		{29 * time.Second, 0},
		{30 * time.Second, 1},
		{45 * time.Minute, 45},
	}

	for _, tc := range cases {
		ledger, _, archive, clk := newTestLedger()
		require.NoError(t, ledger.Start(ctx, 42, "srv-1", 1000))

		clk.Advance(tc.elapsed)
		result, err := ledger.End(ctx, 42, "srv-1")
		require.NoError(t, err)
		assert.True(t, result.Archived)
		assert.Equal(t, tc.want, result.Minutes, "elapsed %s", tc.elapsed)
		require.Len(t, archive.rows, 1)
		assert.Equal(t, tc.want, archive.rows[0].Minutes)
	}
}

func TestLedgerDoubleEndIsBenign(t *testing.T) {
	ctx := context.Background()
	ledger, _, archive, clk := newTestLedger()

	require.NoError(t, ledger.Start(ctx, 42, "srv-1", 1000))
	clk.Advance(10 * time.Minute)

	first, err := ledger.End(ctx, 42, "srv-1")
	require.NoError(t, err)
	assert.True(t, first.Archived)

	second, err := ledger.End(ctx, 42, "srv-1")
	require.NoError(t, err)
	assert.True(t, second.OK)
	assert.False(t, second.Archived)
	assert.Len(t, archive.rows, 1)
}

func TestLedgerStartResetsOnReconnect(t *testing.T) {
	ctx := context.Background()
	ledger, live, _, clk := newTestLedger()

	require.NoError(t, ledger.Start(ctx, 42, "srv-1", 1000))
	clk.Advance(30 * time.Minute)
	require.NoError(t, ledger.Start(ctx, 42, "srv-1", 1000))

	row, err := live.Get(ctx, 42, "srv-1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, clk.Now().UTC(), row.StartedAt)

	// The reset start means an immediate end credits zero minutes.
	result, err := ledger.End(ctx, 42, "srv-1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Minutes)
}

func TestLedgerHeartbeatWithoutSession(t *testing.T) {
	ctx := context.Background()
	ledger, _, _, _ := newTestLedger()

	assert.NoError(t, ledger.Heartbeat(ctx, 42, "srv-1"))
}

func TestLedgerReapStale(t *testing.T) {
	ctx := context.Background()
	ledger, live, archive, clk := newTestLedger()

	require.NoError(t, ledger.Start(ctx, 1, "srv-1", 1000))
	require.NoError(t, ledger.Start(ctx, 2, "srv-1", 1000))

	// User 2 keeps beating; user 1 goes quiet.
	clk.Advance(8 * time.Minute)
	require.NoError(t, ledger.Heartbeat(ctx, 2, "srv-1"))
	clk.Advance(4 * time.Minute)

	reaped, err := ledger.ReapStale(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	require.Len(t, archive.rows, 1)
	row := archive.rows[0]
	assert.Equal(t, int64(1), row.UserID)
	// Reaped sessions end at the last heartbeat, not at reap time.
	assert.Equal(t, row.LastHeartbeat, row.EndedAt)
	assert.Equal(t, 0, row.Minutes)

	stillLive, err := live.Get(ctx, 2, "srv-1")
	require.NoError(t, err)
	assert.NotNil(t, stillLive)
}
