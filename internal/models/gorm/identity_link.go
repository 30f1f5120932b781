package gorm

import "time"

// IdentityLink maps a Discord member to a verified Roblox account plus the
// group role captured at verification time. One row per (discord, guild).
type IdentityLink struct {
	ID             uint      `gorm:"column:id;primaryKey"`
	DiscordID      string    `gorm:"column:discord_id;size:32;uniqueIndex:idx_links_discord_guild;not null"`
	GuildID        string    `gorm:"column:guild_id;size:32;uniqueIndex:idx_links_discord_guild;not null"`
	RobloxUserID   int64     `gorm:"column:roblox_user_id;not null"`
	RobloxUsername string    `gorm:"column:roblox_username"`
	RoleRank       int       `gorm:"column:role_rank"`
	RoleName       string    `gorm:"column:role_name"`
	VerifiedAt     time.Time `gorm:"column:verified_at"`
	LastSyncAt     time.Time `gorm:"column:last_sync_at"`
}

// TableName specifies the table name for GORM
func (IdentityLink) TableName() string {
	return "identity_links"
}
