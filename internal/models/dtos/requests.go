package dtos

// Ingest payloads posted by the game servers. Validation tags are enforced
// at the handler boundary before any service code runs.

type SessionStartRequest struct {
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	ServerID string `json:"serverId" validate:"required"`
	PlaceID  int64  `json:"placeId" validate:"required,gt=0"`
}

type SessionHeartbeatRequest struct {
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	ServerID string `json:"serverId" validate:"required"`
}

type SessionEndRequest struct {
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	ServerID string `json:"serverId" validate:"required"`
}

// Calendar board payloads.

type PublishRequest struct {
	StartISO    string `json:"startISO" validate:"omitempty"`
	Weeks       int    `json:"weeks" validate:"omitempty,min=1,max=12"`
	Title       string `json:"title" validate:"omitempty,max=120"`
	MaxTrainers *int   `json:"maxTrainers" validate:"omitempty,min=0,max=20"`
}

type ClaimRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=host cohost trainer"`
}

// Dashboard link issuance, requested by the companion bot.

type DashboardLinkRequest struct {
	DiscordID string `json:"discordId" validate:"required"`
	GuildID   string `json:"guildId" validate:"required"`
}
