package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfari/boardwalk/internal/common"
	"surfari/boardwalk/internal/common/clock"
	"surfari/boardwalk/internal/models/entities"
	"surfari/boardwalk/internal/providers"
)

// fakeArchiveReader serves canned aggregation results.
type fakeArchiveReader struct {
	perUser  []entities.UserMinutes
	forUser  map[int64]int
	recent   []entities.ArchivedSession
	topRows  []entities.UserMinutes
	active   int
	pageRows []entities.UserMinutes
}

func (f *fakeArchiveReader) SumMinutesSince(context.Context, time.Time) (int, error) {
	total := 0
	for _, u := range f.perUser {
		total += u.Minutes
	}
	return total, nil
}

func (f *fakeArchiveReader) SumMinutesInWindow(context.Context, time.Time, time.Time) (int, error) {
	total := 0
	for _, u := range f.perUser {
		total += u.Minutes
	}
	return total, nil
}

func (f *fakeArchiveReader) MinutesPerUser(context.Context, time.Time, time.Time) ([]entities.UserMinutes, error) {
	return f.perUser, nil
}

func (f *fakeArchiveReader) MinutesForUser(_ context.Context, userID int64, _, _ time.Time) (int, error) {
	return f.forUser[userID], nil
}

func (f *fakeArchiveReader) Recent(context.Context, int) ([]entities.ArchivedSession, error) {
	return f.recent, nil
}

func (f *fakeArchiveReader) Leaderboard(context.Context, time.Time, time.Time, int) ([]entities.UserMinutes, error) {
	return f.topRows, nil
}

func (f *fakeArchiveReader) CountActiveUsers(context.Context, time.Time, time.Time) (int, error) {
	return f.active, nil
}

func (f *fakeArchiveReader) ProgressPage(context.Context, time.Time, time.Time, int, int) ([]entities.UserMinutes, error) {
	return f.pageRows, nil
}

type fakeLiveReader struct {
	rows []entities.LiveSession
}

func (f *fakeLiveReader) List(context.Context) ([]entities.LiveSession, error) {
	return f.rows, nil
}

func (f *fakeLiveReader) Count(context.Context) (int, error) {
	return len(f.rows), nil
}

// fakeProfiles answers every lookup with a deterministic profile.
type fakeProfiles struct{}

func (fakeProfiles) GetUser(_ context.Context, userID int64) (*providers.PublicUser, error) {
	return &providers.PublicUser{ID: userID, Name: "name", DisplayName: "display"}, nil
}

func (fakeProfiles) GetHeadshots(_ context.Context, ids []int64, _ string, _ bool) ([]providers.Thumbnail, error) {
	out := make([]providers.Thumbnail, 0, len(ids))
	for _, id := range ids {
		out = append(out, providers.Thumbnail{TargetID: id, State: "Completed", ImageURL: "https://cdn/t.png"})
	}
	return out, nil
}

func newYorkLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func newTestQuota(t *testing.T, archive *fakeArchiveReader, live *fakeLiveReader, clk *clock.Fixed) *QuotaService {
	t.Helper()
	return NewQuotaService(archive, live, fakeProfiles{}, common.NewCacheService(60, 120),
		clk, 30, int(time.Monday), newYorkLocation(t))
}

func TestWeekWindowMondayAnchor(t *testing.T) {
	loc := newYorkLocation(t)
	// Thursday evening, New York time.
	clk := &clock.Fixed{Current: time.Date(2026, 3, 5, 20, 0, 0, 0, loc)}
	quota := newTestQuota(t, &fakeArchiveReader{}, &fakeLiveReader{}, clk)

	start, end := quota.WeekWindow(clk.Now())
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, loc).UTC(), start)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, loc).UTC(), end)
}

func TestWeekWindowSpansDSTChange(t *testing.T) {
	loc := newYorkLocation(t)
	// US DST starts Sunday 2026-03-08; the window straddles it.
	clk := &clock.Fixed{Current: time.Date(2026, 3, 10, 12, 0, 0, 0, loc)}
	quota := newTestQuota(t, &fakeArchiveReader{}, &fakeLiveReader{}, clk)

	start, end := quota.WeekWindow(clk.Now())
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, loc).UTC(), start)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, loc).UTC(), end)
	// Both boundaries are local midnight even though the offsets differ.
	assert.Equal(t, 0, start.In(loc).Hour())
	assert.Equal(t, 0, end.In(loc).Hour())
}

func TestLiveCreditIsConservative(t *testing.T) {
	loc := newYorkLocation(t)
	now := time.Date(2026, 3, 4, 15, 0, 0, 0, loc)
	clk := &clock.Fixed{Current: now}

	live := &fakeLiveReader{rows: []entities.LiveSession{
		{
			// Session where the reported start is newer than the last
			// heartbeat reading. The smaller elapsed measure wins.
			UserID:        1,
			StartedAt:     now.Add(-30 * time.Second).UTC(),
			LastHeartbeat: now.Add(-20 * time.Minute).UTC(),
		},
		{
			// Started 50m ago, heartbeat 40m ago. The quieter measure
			// wins so a stalled client can't keep accruing.
			UserID:        2,
			StartedAt:     now.Add(-50 * time.Minute).UTC(),
			LastHeartbeat: now.Add(-40 * time.Minute).UTC(),
		},
		{
			// Fresh row where the heartbeat still equals the start.
			UserID:        3,
			StartedAt:     now.Add(-20*time.Minute - 30*time.Second).UTC(),
			LastHeartbeat: now.Add(-20*time.Minute - 30*time.Second).UTC(),
		},
	}}

	quota := newTestQuota(t, &fakeArchiveReader{}, live, clk)
	credits, err := quota.liveMinutes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, credits[1], "takes the smaller elapsed measure, floored")
	assert.Equal(t, 40, credits[2], "credit stops growing once heartbeats stall")
	assert.Equal(t, 20, credits[3], "both measures equal credits the full elapsed time")
}

func TestQuotaUserCombinesArchivedAndLive(t *testing.T) {
	loc := newYorkLocation(t)
	now := time.Date(2026, 3, 4, 15, 0, 0, 0, loc)
	clk := &clock.Fixed{Current: now}

	archive := &fakeArchiveReader{forUser: map[int64]int{42: 20}}
	live := &fakeLiveReader{rows: []entities.LiveSession{{
		UserID:        42,
		StartedAt:     now.Add(-15 * time.Minute).UTC(),
		LastHeartbeat: now.Add(-15 * time.Minute).UTC(),
	}}}

	quota := newTestQuota(t, archive, live, clk)
	row, err := quota.QuotaUser(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 35, row.Minutes)
	assert.True(t, row.Met, "20 archived + 15 live beats the 30 minute target")
	assert.Equal(t, 0, row.Remaining)
}

func TestQuotaListOrdering(t *testing.T) {
	loc := newYorkLocation(t)
	clk := &clock.Fixed{Current: time.Date(2026, 3, 4, 15, 0, 0, 0, loc)}

	archive := &fakeArchiveReader{perUser: []entities.UserMinutes{
		{UserID: 1, Minutes: 45}, // met
		{UserID: 2, Minutes: 5},  // unmet, 25 remaining
		{UserID: 3, Minutes: 60}, // met, most minutes
		{UserID: 4, Minutes: 20}, // unmet, 10 remaining
	}}

	quota := newTestQuota(t, archive, &fakeLiveReader{}, clk)
	rows, err := quota.QuotaList(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Unmet first ordered by remaining descending, then met by minutes
	// descending.
	assert.Equal(t, int64(2), rows[0].UserID)
	assert.Equal(t, int64(4), rows[1].UserID)
	assert.Equal(t, int64(3), rows[2].UserID)
	assert.Equal(t, int64(1), rows[3].UserID)

	assert.Equal(t, "name", rows[0].Username)
	assert.NotEmpty(t, rows[0].Thumb)
}

func TestProgressFiltersAndClamps(t *testing.T) {
	loc := newYorkLocation(t)
	clk := &clock.Fixed{Current: time.Date(2026, 3, 4, 15, 0, 0, 0, loc)}

	archive := &fakeArchiveReader{
		active: 3,
		pageRows: []entities.UserMinutes{
			{UserID: 101, Minutes: 50},
			{UserID: 202, Minutes: 40},
			{UserID: 111, Minutes: 30},
		},
	}

	quota := newTestQuota(t, archive, &fakeLiveReader{}, clk)

	page, err := quota.Progress(context.Background(), 0, 0, "1")
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page, "page clamps up to 1")
	assert.Equal(t, 25, page.Limit, "limit falls back to the default")
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Rows, 2, "search filters on the user id digits")
	assert.Equal(t, int64(101), page.Rows[0].UserID)
	assert.Equal(t, int64(111), page.Rows[1].UserID)
}
