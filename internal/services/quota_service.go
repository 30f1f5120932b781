package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"surfari/boardwalk/internal/common"
	"surfari/boardwalk/internal/common/clock"
	"surfari/boardwalk/internal/logging"
	"surfari/boardwalk/internal/models/dtos"
	"surfari/boardwalk/internal/models/entities"
	"surfari/boardwalk/internal/providers"
)

// ArchiveReader is the aggregation slice of the archive repository.
type ArchiveReader interface {
	SumMinutesSince(ctx context.Context, since time.Time) (int, error)
	SumMinutesInWindow(ctx context.Context, start, end time.Time) (int, error)
	MinutesPerUser(ctx context.Context, start, end time.Time) ([]entities.UserMinutes, error)
	MinutesForUser(ctx context.Context, userID int64, start, end time.Time) (int, error)
	Recent(ctx context.Context, limit int) ([]entities.ArchivedSession, error)
	Leaderboard(ctx context.Context, start, end time.Time, limit int) ([]entities.UserMinutes, error)
	CountActiveUsers(ctx context.Context, start, end time.Time) (int, error)
	ProgressPage(ctx context.Context, start, end time.Time, offset, limit int) ([]entities.UserMinutes, error)
}

// LiveReader lists in-progress sessions for on-top-of-archive credit.
type LiveReader interface {
	List(ctx context.Context) ([]entities.LiveSession, error)
	Count(ctx context.Context) (int, error)
}

// ProfileDirectory resolves Roblox profile data for display.
type ProfileDirectory interface {
	GetUser(ctx context.Context, userID int64) (*providers.PublicUser, error)
	GetHeadshots(ctx context.Context, userIDs []int64, size string, circular bool) ([]providers.Thumbnail, error)
}

// QuotaService computes weekly activity totals and quota standings from
// the session ledger.
type QuotaService struct {
	archive  ArchiveReader
	live     LiveReader
	profiles ProfileDirectory
	cache    *common.CacheService
	clock    clock.Clock

	target       int
	weekStartDay time.Weekday
	loc          *time.Location
}

func NewQuotaService(
	archive ArchiveReader,
	live LiveReader,
	profiles ProfileDirectory,
	cache *common.CacheService,
	clk clock.Clock,
	targetMinutes int,
	weekStartDay int,
	loc *time.Location,
) *QuotaService {
	if clk == nil {
		clk = &clock.DefaultClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &QuotaService{
		archive:      archive,
		live:         live,
		profiles:     profiles,
		cache:        cache,
		clock:        clk,
		target:       targetMinutes,
		weekStartDay: time.Weekday(weekStartDay),
		loc:          loc,
	}
}

// WeekWindow returns the half-open UTC interval [weekStart, weekStart+7d)
// containing ref. The boundary is midnight of the configured start-of-week
// day in the configured zone, so the window tracks wall clocks across DST
// transitions instead of drifting with a fixed offset.
func (s *QuotaService) WeekWindow(ref time.Time) (time.Time, time.Time) {
	local := ref.In(s.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	back := (int(midnight.Weekday()) - int(s.weekStartDay) + 7) % 7
	weekStart := midnight.AddDate(0, 0, -back)
	return weekStart.UTC(), weekStart.AddDate(0, 0, 7).UTC()
}

// liveMinutes credits in-progress sessions per user. Each session counts
// the smaller of time-since-start and time-since-last-heartbeat, floored
// to whole minutes, so a stalled heartbeat can't over-credit.
func (s *QuotaService) liveMinutes(ctx context.Context) (map[int64]int, error) {
	rows, err := s.live.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list live sessions: %w", err)
	}

	now := s.clock.Now().UTC()
	credits := make(map[int64]int, len(rows))
	for _, r := range rows {
		sinceStart := now.Sub(r.StartedAt)
		sinceBeat := now.Sub(r.LastHeartbeat)
		elapsed := sinceStart
		if sinceBeat < elapsed {
			elapsed = sinceBeat
		}
		if elapsed < 0 {
			elapsed = 0
		}
		credits[r.UserID] += int(elapsed.Milliseconds() / 60000)
	}
	return credits, nil
}

// Summary produces the dashboard headline numbers. Quota percentage here
// considers archived activity only; the quota endpoints add live credit.
func (s *QuotaService) Summary(ctx context.Context) (*dtos.StatsSummary, error) {
	now := s.clock.Now()
	local := now.In(s.loc)
	todayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc).UTC()
	weekStart, weekEnd := s.WeekWindow(now)

	liveCount, err := s.live.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count live sessions: %w", err)
	}
	todayMinutes, err := s.archive.SumMinutesSince(ctx, todayStart)
	if err != nil {
		return nil, fmt.Errorf("sum today minutes: %w", err)
	}
	weekMinutes, err := s.archive.SumMinutesInWindow(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("sum week minutes: %w", err)
	}
	perUser, err := s.archive.MinutesPerUser(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("aggregate per user: %w", err)
	}

	hit := 0
	for _, u := range perUser {
		if u.Minutes >= s.target {
			hit++
		}
	}
	quotaPct := 0
	if len(perUser) > 0 {
		quotaPct = int(math.Round(float64(hit) / float64(len(perUser)) * 100))
	}

	return &dtos.StatsSummary{
		LiveCount:     liveCount,
		TodayMinutes:  todayMinutes,
		WeekMinutes:   weekMinutes,
		QuotaPct:      quotaPct,
		QuotaTarget:   s.target,
		WeekStart:     weekStart,
		NextWeekStart: weekEnd,
	}, nil
}

// weekTotals merges archived per-user sums with live credit. Users appear
// in the result iff they have at least one session row in-window (live or
// archived); silent users stay out of the denominator.
func (s *QuotaService) weekTotals(ctx context.Context) (map[int64]int, time.Time, time.Time, error) {
	weekStart, weekEnd := s.WeekWindow(s.clock.Now())

	perUser, err := s.archive.MinutesPerUser(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, weekStart, weekEnd, fmt.Errorf("aggregate per user: %w", err)
	}
	liveMap, err := s.liveMinutes(ctx)
	if err != nil {
		return nil, weekStart, weekEnd, err
	}

	totals := make(map[int64]int, len(perUser)+len(liveMap))
	for _, u := range perUser {
		totals[u.UserID] = u.Minutes
	}
	for userID, minutes := range liveMap {
		totals[userID] += minutes
	}
	return totals, weekStart, weekEnd, nil
}

// QuotaSummary reports how many active users met the weekly target,
// counting live credit.
func (s *QuotaService) QuotaSummary(ctx context.Context) (*dtos.QuotaSummary, error) {
	totals, weekStart, weekEnd, err := s.weekTotals(ctx)
	if err != nil {
		return nil, err
	}

	met := 0
	for _, minutes := range totals {
		if minutes >= s.target {
			met++
		}
	}
	quotaPct := 0
	if len(totals) > 0 {
		quotaPct = int(math.Round(float64(met) / float64(len(totals)) * 100))
	}

	return &dtos.QuotaSummary{
		WeekStart:       weekStart,
		WeekEnd:         weekEnd,
		RequiredMinutes: s.target,
		MetCount:        met,
		TotalUsers:      len(totals),
		QuotaPct:        quotaPct,
	}, nil
}

// QuotaList returns the per-user standings for the week, enriched with
// profile data, unmet users first (most behind on top), then met users by
// minutes.
func (s *QuotaService) QuotaList(ctx context.Context) ([]dtos.QuotaRow, error) {
	totals, _, _, err := s.weekTotals(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]dtos.QuotaRow, 0, len(totals))
	for userID, minutes := range totals {
		remaining := s.target - minutes
		if remaining < 0 {
			remaining = 0
		}
		rows = append(rows, dtos.QuotaRow{
			UserID:    userID,
			Minutes:   minutes,
			Remaining: remaining,
			Met:       minutes >= s.target,
		})
	}

	s.enrich(ctx, rows)

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Met != b.Met {
			return !a.Met // unmet first
		}
		if a.Met {
			return a.Minutes > b.Minutes
		}
		return a.Remaining > b.Remaining
	})
	return rows, nil
}

// enrich fills profile names and thumbnails. Failures degrade to
// placeholder names; the quota data itself never depends on Roblox being
// up.
func (s *QuotaService) enrich(ctx context.Context, rows []dtos.QuotaRow) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i := range rows {
		i := i
		g.Go(func() error {
			row := &rows[i]
			fallback := "User_" + strconv.FormatInt(row.UserID, 10)

			cacheKey := "roblox:user:" + strconv.FormatInt(row.UserID, 10)
			val, err := s.cache.GetOrSet(cacheKey, 10*time.Minute, func() (any, error) {
				return s.profiles.GetUser(gctx, row.UserID)
			})
			if err != nil {
				row.Username = fallback
				row.DisplayName = fallback
				return nil
			}
			user := val.(*providers.PublicUser)
			row.Username = user.Name
			row.DisplayName = user.DisplayName
			if row.Username == "" {
				row.Username = fallback
			}
			if row.DisplayName == "" {
				row.DisplayName = row.Username
			}
			return nil
		})
	}
	_ = g.Wait()

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	thumbs, err := s.profiles.GetHeadshots(ctx, ids, "100x100", true)
	if err != nil {
		logging.Warn("Thumbnail enrichment failed", "error", err.Error())
		return
	}
	byID := make(map[int64]string, len(thumbs))
	for _, t := range thumbs {
		byID[t.TargetID] = t.ImageURL
	}
	for i := range rows {
		rows[i].Thumb = byID[rows[i].UserID]
	}
}

// QuotaUser reports one user's standing for the current week.
func (s *QuotaService) QuotaUser(ctx context.Context, userID int64) (*dtos.QuotaUser, error) {
	weekStart, weekEnd := s.WeekWindow(s.clock.Now())

	archived, err := s.archive.MinutesForUser(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("sum user minutes: %w", err)
	}
	liveMap, err := s.liveMinutes(ctx)
	if err != nil {
		return nil, err
	}

	total := archived + liveMap[userID]
	remaining := s.target - total
	if remaining < 0 {
		remaining = 0
	}

	return &dtos.QuotaUser{
		UserID:    userID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Minutes:   total,
		Remaining: remaining,
		Met:       total >= s.target,
	}, nil
}

// Recent returns the latest archived sessions.
func (s *QuotaService) Recent(ctx context.Context, limit int) ([]dtos.RecentSession, error) {
	rows, err := s.archive.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	out := make([]dtos.RecentSession, 0, len(rows))
	for _, r := range rows {
		out = append(out, dtos.RecentSession{
			UserID:        r.UserID,
			Minutes:       r.Minutes,
			StartedAt:     r.StartedAt,
			EndedAt:       r.EndedAt,
			LastHeartbeat: r.LastHeartbeat,
		})
	}
	return out, nil
}

// Leaderboard returns the top archived totals for the current week.
func (s *QuotaService) Leaderboard(ctx context.Context, limit int) ([]dtos.LeaderboardRow, error) {
	weekStart, weekEnd := s.WeekWindow(s.clock.Now())
	rows, err := s.archive.Leaderboard(ctx, weekStart, weekEnd, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	out := make([]dtos.LeaderboardRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, dtos.LeaderboardRow{UserID: r.UserID, Minutes: r.Minutes})
	}
	return out, nil
}

// Progress pages through the per-user weekly directory, minutes
// descending, with an optional substring filter on the user id.
func (s *QuotaService) Progress(ctx context.Context, page, limit int, search string) (*dtos.ProgressPage, error) {
	if limit < 1 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}

	weekStart, weekEnd := s.WeekWindow(s.clock.Now())

	total, err := s.archive.CountActiveUsers(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	rows, err := s.archive.ProgressPage(ctx, weekStart, weekEnd, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("progress page: %w", err)
	}

	search = strings.TrimSpace(strings.ToLower(search))
	out := make([]dtos.ProgressRow, 0, len(rows))
	for _, r := range rows {
		if search != "" && !strings.Contains(strconv.FormatInt(r.UserID, 10), search) {
			continue
		}
		out = append(out, dtos.ProgressRow{UserID: r.UserID, Minutes: r.Minutes})
	}

	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return &dtos.ProgressPage{
		Rows:        out,
		Total:       total,
		Page:        page,
		Pages:       pages,
		Limit:       limit,
		QuotaTarget: s.target,
	}, nil
}
