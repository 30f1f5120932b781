package entities

import (
	"time"

	"github.com/lib/pq"
)

// CalendarSession is one claimable two-hour training block on the weekly
// board. Rows are created by publish and never deleted; only the claim
// fields mutate.
type CalendarSession struct {
	ID          string         `db:"id"`
	WeekStart   time.Time      `db:"week_start"`
	StartAt     time.Time      `db:"start_at"`
	EndAt       time.Time      `db:"end_at"`
	EstHour     int            `db:"est_hour"`
	Title       string         `db:"title"`
	HostID      *string        `db:"host_id"`
	CohostID    *string        `db:"cohost_id"`
	TrainerIDs  pq.StringArray `db:"trainer_ids"`
	MaxTrainers int            `db:"max_trainers"`
	Notes       string         `db:"notes"`
}
