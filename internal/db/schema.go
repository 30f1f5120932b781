package db

// Schema for the sqlx-managed tables. Index layout mirrors the query
// patterns: live sessions are looked up by (user, server) and reaped by
// heartbeat age; the archive is range-scanned on ended_at and grouped by
// user; calendar slots are unique on their start instant so publish can be
// an insert-if-absent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions_live (
		id             BIGSERIAL PRIMARY KEY,
		user_id        BIGINT NOT NULL,
		server_id      TEXT NOT NULL,
		place_id       BIGINT NOT NULL,
		started_at     TIMESTAMPTZ NOT NULL,
		last_heartbeat TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_live_user_server
		ON sessions_live (user_id, server_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_live_heartbeat
		ON sessions_live (last_heartbeat)`,

	`CREATE TABLE IF NOT EXISTS sessions_archive (
		id             BIGSERIAL PRIMARY KEY,
		user_id        BIGINT NOT NULL,
		server_id      TEXT NOT NULL,
		place_id       BIGINT NOT NULL,
		started_at     TIMESTAMPTZ NOT NULL,
		last_heartbeat TIMESTAMPTZ NOT NULL,
		ended_at       TIMESTAMPTZ NOT NULL,
		minutes        INT NOT NULL CHECK (minutes >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_archive_user_ended
		ON sessions_archive (user_id, ended_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_archive_ended
		ON sessions_archive (ended_at)`,

	`CREATE TABLE IF NOT EXISTS calendar_sessions (
		id           TEXT PRIMARY KEY,
		week_start   TIMESTAMPTZ NOT NULL,
		start_at     TIMESTAMPTZ NOT NULL,
		end_at       TIMESTAMPTZ NOT NULL,
		est_hour     INT NOT NULL,
		title        TEXT NOT NULL,
		host_id      TEXT,
		cohost_id    TEXT,
		trainer_ids  TEXT[] NOT NULL DEFAULT '{}',
		max_trainers INT NOT NULL DEFAULT 4,
		notes        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_calendar_sessions_start
		ON calendar_sessions (start_at)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_sessions_week
		ON calendar_sessions (week_start)`,
}
