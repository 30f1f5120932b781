package entities

import "time"

// LiveSession is an in-progress play session. At most one exists per
// (user_id, server_id); a reconnect simply resets it.
type LiveSession struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	ServerID      string    `db:"server_id"`
	PlaceID       int64     `db:"place_id"`
	StartedAt     time.Time `db:"started_at"`
	LastHeartbeat time.Time `db:"last_heartbeat"`
}

// ArchivedSession is the immutable record written when a live session ends.
type ArchivedSession struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	ServerID      string    `db:"server_id"`
	PlaceID       int64     `db:"place_id"`
	StartedAt     time.Time `db:"started_at"`
	LastHeartbeat time.Time `db:"last_heartbeat"`
	EndedAt       time.Time `db:"ended_at"`
	Minutes       int       `db:"minutes"`
}

// UserMinutes is a per-user aggregation row.
type UserMinutes struct {
	UserID  int64 `db:"user_id"`
	Minutes int   `db:"minutes"`
}
