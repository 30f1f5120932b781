package constants

const (
	UpsertLiveSession = `
	INSERT INTO sessions_live (user_id, server_id, place_id, started_at, last_heartbeat)
	VALUES ($1, $2, $3, $4, $4)
	ON CONFLICT (user_id, server_id)
	DO UPDATE SET place_id = EXCLUDED.place_id,
	              started_at = EXCLUDED.started_at,
	              last_heartbeat = EXCLUDED.last_heartbeat
	`

	TouchLiveSession = `
	UPDATE sessions_live SET last_heartbeat = $3
	WHERE user_id = $1 AND server_id = $2
	`

	GetLiveSession = `
	SELECT * FROM sessions_live WHERE user_id = $1 AND server_id = $2
	`

	DeleteLiveSession = `
	DELETE FROM sessions_live WHERE user_id = $1 AND server_id = $2
	`

	ListLiveSessions = `
	SELECT * FROM sessions_live
	`

	ListStaleLiveSessions = `
	SELECT * FROM sessions_live WHERE last_heartbeat < $1
	`

	CountLiveSessions = `
	SELECT COUNT(*) FROM sessions_live
	`

	InsertArchivedSession = `
	INSERT INTO sessions_archive (user_id, server_id, place_id, started_at, last_heartbeat, ended_at, minutes)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	SumMinutesSince = `
	SELECT COALESCE(SUM(minutes), 0) FROM sessions_archive WHERE ended_at >= $1
	`

	SumMinutesInWindow = `
	SELECT COALESCE(SUM(minutes), 0) FROM sessions_archive
	WHERE ended_at >= $1 AND ended_at < $2
	`

	SumMinutesPerUserInWindow = `
	SELECT user_id, SUM(minutes) AS minutes FROM sessions_archive
	WHERE ended_at >= $1 AND ended_at < $2
	GROUP BY user_id
	`

	SumMinutesForUserInWindow = `
	SELECT COALESCE(SUM(minutes), 0) FROM sessions_archive
	WHERE user_id = $1 AND ended_at >= $2 AND ended_at < $3
	`

	ListRecentArchivedSessions = `
	SELECT user_id, server_id, place_id, started_at, last_heartbeat, ended_at, minutes
	FROM sessions_archive ORDER BY ended_at DESC LIMIT $1
	`

	LeaderboardInWindow = `
	SELECT user_id, SUM(minutes) AS minutes FROM sessions_archive
	WHERE ended_at >= $1 AND ended_at < $2
	GROUP BY user_id ORDER BY minutes DESC LIMIT $3
	`

	CountActiveUsersInWindow = `
	SELECT COUNT(DISTINCT user_id) FROM sessions_archive
	WHERE ended_at >= $1 AND ended_at < $2
	`

	ProgressPageInWindow = `
	SELECT user_id, SUM(minutes) AS minutes FROM sessions_archive
	WHERE ended_at >= $1 AND ended_at < $2
	GROUP BY user_id ORDER BY minutes DESC OFFSET $3 LIMIT $4
	`
)

const (
	InsertCalendarSessionIfAbsent = `
	INSERT INTO calendar_sessions
	  (id, week_start, start_at, end_at, est_hour, title, host_id, cohost_id, trainer_ids, max_trainers, notes)
	VALUES ($1, $2, $3, $4, $5, $6, NULL, NULL, '{}', $7, '')
	ON CONFLICT (start_at) DO NOTHING
	`

	GetCalendarSession = `
	SELECT * FROM calendar_sessions WHERE id = $1
	`

	ListCalendarSessionsInWindow = `
	SELECT * FROM calendar_sessions
	WHERE start_at >= $1 AND start_at < $2
	ORDER BY start_at ASC
	`

	// Claim queries express "set only if unset or already mine" so that a
	// concurrent claim loses by affecting zero rows instead of overwriting.
	ClaimHost = `
	UPDATE calendar_sessions SET host_id = $2
	WHERE id = $1 AND (host_id IS NULL OR host_id = $2)
	`

	ClaimCohost = `
	UPDATE calendar_sessions SET cohost_id = $2
	WHERE id = $1 AND (cohost_id IS NULL OR cohost_id = $2)
	`

	ClaimTrainer = `
	UPDATE calendar_sessions SET trainer_ids = array_append(trainer_ids, $2)
	WHERE id = $1
	  AND NOT ($2 = ANY(trainer_ids))
	  AND COALESCE(array_length(trainer_ids, 1), 0) < max_trainers
	`

	UnclaimHost = `
	UPDATE calendar_sessions SET host_id = NULL
	WHERE id = $1 AND host_id = $2
	`

	UnclaimCohost = `
	UPDATE calendar_sessions SET cohost_id = NULL
	WHERE id = $1 AND cohost_id = $2
	`

	UnclaimTrainer = `
	UPDATE calendar_sessions SET trainer_ids = array_remove(trainer_ids, $2)
	WHERE id = $1
	`
)
