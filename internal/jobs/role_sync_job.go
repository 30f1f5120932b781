package jobs

import (
	"context"
	"time"

	"surfari/boardwalk/internal/db/repositories"
	"surfari/boardwalk/internal/logging"
	"surfari/boardwalk/internal/providers"
)

const roleSyncBatchSize = 50

// GroupRoleFetcher is the slice of the Roblox OAuth provider the job uses.
type GroupRoleFetcher interface {
	FetchGroupRole(ctx context.Context, userID, groupID int64) (*providers.GroupRole, error)
}

// RoleSyncJob refreshes the cached group rank and role name on existing
// identity links. Ranks drift as members get promoted in the Roblox group;
// the link row only captures them at verification time.
type RoleSyncJob struct {
	links   *repositories.LinkRepository
	roblox  GroupRoleFetcher
	groupID int64
}

func NewRoleSyncJob(links *repositories.LinkRepository, roblox GroupRoleFetcher, groupID int64) *RoleSyncJob {
	return &RoleSyncJob{
		links:   links,
		roblox:  roblox,
		groupID: groupID,
	}
}

// Run refreshes one batch of links, oldest snapshot first.
func (j *RoleSyncJob) Run(ctx context.Context) error {
	if j.groupID <= 0 {
		return nil
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	links, err := j.links.ListSyncedBefore(ctx, cutoff, roleSyncBatchSize)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}

	updated := 0
	for _, link := range links {
		role, err := j.roblox.FetchGroupRole(ctx, link.RobloxUserID, j.groupID)
		if err != nil {
			logging.Warn("Role fetch failed during re-sync",
				"error", err, "roblox_user_id", link.RobloxUserID)
			continue
		}
		if err := j.links.UpdateRole(ctx, link.ID, role.Rank, role.Name); err != nil {
			logging.Warn("Role update failed during re-sync",
				"error", err, "link_id", link.ID)
			continue
		}
		updated++
	}

	logging.Info("Role re-sync pass complete", "checked", len(links), "updated", updated)
	return nil
}

// RunScheduled loops Run on the given interval until ctx is cancelled.
func (j *RoleSyncJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		logging.Error("Role re-sync initial pass failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.Error("Role re-sync pass failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
