package dtos

import "time"

// Ingest responses. The game layer fires pings best-effort, so even a
// duplicate end call answers OK.

type IngestAck struct {
	OK bool `json:"ok"`
}

type SessionEndResult struct {
	OK       bool `json:"ok"`
	Archived bool `json:"archived"`
	Minutes  int  `json:"minutes,omitempty"`
}

// Stats responses consumed by the dashboard.

type StatsSummary struct {
	LiveCount     int       `json:"liveCount"`
	TodayMinutes  int       `json:"todayMinutes"`
	WeekMinutes   int       `json:"weekMinutes"`
	QuotaPct      int       `json:"quotaPct"`
	QuotaTarget   int       `json:"quotaTarget"`
	WeekStart     time.Time `json:"weekStart"`
	NextWeekStart time.Time `json:"nextWeekStart"`
}

type RecentSession struct {
	UserID        int64     `json:"userId"`
	Minutes       int       `json:"minutes"`
	StartedAt     time.Time `json:"startedAt"`
	EndedAt       time.Time `json:"endedAt"`
	LastHeartbeat time.Time `json:"lastHeartbeat"`
}

type LeaderboardRow struct {
	UserID  int64 `json:"userId"`
	Minutes int   `json:"minutes"`
}

type QuotaSummary struct {
	WeekStart       time.Time `json:"weekStart"`
	WeekEnd         time.Time `json:"weekEnd"`
	RequiredMinutes int       `json:"requiredMinutes"`
	MetCount        int       `json:"metCount"`
	TotalUsers      int       `json:"totalUsers"`
	QuotaPct        int       `json:"quotaPct"`
}

type QuotaRow struct {
	UserID      int64  `json:"userId"`
	Minutes     int    `json:"minutes"`
	Remaining   int    `json:"remaining"`
	Met         bool   `json:"met"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Thumb       string `json:"thumb,omitempty"`
}

type QuotaUser struct {
	UserID    int64     `json:"userId"`
	WeekStart time.Time `json:"weekStart"`
	WeekEnd   time.Time `json:"weekEnd"`
	Minutes   int       `json:"minutes"`
	Remaining int       `json:"remaining"`
	Met       bool      `json:"met"`
}

type ProgressPage struct {
	Rows        []ProgressRow `json:"rows"`
	Total       int           `json:"total"`
	Page        int           `json:"page"`
	Pages       int           `json:"pages"`
	Limit       int           `json:"limit"`
	QuotaTarget int           `json:"quotaTarget"`
}

type ProgressRow struct {
	UserID  int64 `json:"userId"`
	Minutes int   `json:"minutes"`
}

// Calendar responses.

type CalendarSlot struct {
	ID          string    `json:"id"`
	WeekStart   time.Time `json:"weekStart"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	EstHour     int       `json:"estHour"`
	Title       string    `json:"title"`
	HostID      *string   `json:"hostId"`
	CohostID    *string   `json:"cohostId"`
	TrainerIDs  []string  `json:"trainerIds"`
	MaxTrainers int       `json:"maxTrainers"`
	Notes       string    `json:"notes"`
}

type PublishResult struct {
	OK             bool `json:"ok"`
	WeeksPublished int  `json:"weeksPublished"`
}

type ClaimResult struct {
	OK bool `json:"ok"`
}

// Roblox proxy responses.

type RobloxUser struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type RobloxThumb struct {
	TargetID int64  `json:"targetId"`
	State    string `json:"state"`
	ImageURL string `json:"imageUrl"`
}

type ThumbBatch struct {
	Data []RobloxThumb `json:"data"`
}

// Dashboard auth responses.

type DashboardLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
