package jobs

import (
	"context"
	"time"

	"surfari/boardwalk/internal/db/repositories"
)

// InitializeJobs starts the scheduled background jobs.
func InitializeJobs(
	ctx context.Context,
	links *repositories.LinkRepository,
	roblox GroupRoleFetcher,
	groupID int64,
	syncInterval time.Duration,
) *RoleSyncJob {
	roleSyncJob := NewRoleSyncJob(links, roblox, groupID)

	go roleSyncJob.RunScheduled(ctx, syncInterval)

	return roleSyncJob
}
