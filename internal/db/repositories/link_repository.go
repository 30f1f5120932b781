package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	gormModels "surfari/boardwalk/internal/models/gorm"
)

type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Upsert writes the identity link keyed on (discord_id, guild_id). The
// first write stamps verified_at; later writes refresh everything except
// verified_at. Last write wins, the OAuth provider is the source of truth.
func (r *LinkRepository) Upsert(ctx context.Context, link *gormModels.IdentityLink) error {
	now := time.Now().UTC()
	if link.VerifiedAt.IsZero() {
		link.VerifiedAt = now
	}
	link.LastSyncAt = now

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "discord_id"}, {Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"roblox_user_id", "roblox_username", "role_rank", "role_name", "last_sync_at",
		}),
	}).Create(link).Error
}

// FindByDiscord returns the link for a member, or (nil, nil) when the
// member has never verified.
func (r *LinkRepository) FindByDiscord(ctx context.Context, discordID, guildID string) (*gormModels.IdentityLink, error) {
	var link gormModels.IdentityLink
	err := r.db.WithContext(ctx).
		Where("discord_id = ? AND guild_id = ?", discordID, guildID).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ListSyncedBefore returns links whose role snapshot is older than cutoff,
// oldest first, for the background role re-sync job.
func (r *LinkRepository) ListSyncedBefore(ctx context.Context, cutoff time.Time, limit int) ([]gormModels.IdentityLink, error) {
	var links []gormModels.IdentityLink
	err := r.db.WithContext(ctx).
		Where("last_sync_at < ?", cutoff).
		Order("last_sync_at ASC").
		Limit(limit).
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// UpdateRole refreshes the cached group role on an existing link.
func (r *LinkRepository) UpdateRole(ctx context.Context, id uint, roleRank int, roleName string) error {
	return r.db.WithContext(ctx).
		Model(&gormModels.IdentityLink{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"role_rank":    roleRank,
			"role_name":    roleName,
			"last_sync_at": time.Now().UTC(),
		}).Error
}
