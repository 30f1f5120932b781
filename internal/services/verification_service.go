package services

import (
	"context"
	"fmt"

	"surfari/boardwalk/internal/common"
	"surfari/boardwalk/internal/logging"
	gormModels "surfari/boardwalk/internal/models/gorm"
	"surfari/boardwalk/internal/providers"
)

// OAuthMode selects which identity provider a verification round-trip
// runs against. The two flows share this one service; there is no second
// copy of the exchange logic.
type OAuthMode string

const (
	// ModeBotVerify links a Discord member to their Roblox account.
	ModeBotVerify OAuthMode = "bot_verify"
	// ModeSiteLogin signs an already-verified member into the dashboard.
	ModeSiteLogin OAuthMode = "site_login"
)

// RobloxExchanger is the Roblox OAuth surface the service consumes.
type RobloxExchanger interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*providers.RobloxProfile, error)
	FetchGroupRole(ctx context.Context, userID, groupID int64) (*providers.GroupRole, error)
}

// DiscordExchanger is the Discord OAuth surface the service consumes.
type DiscordExchanger interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchMe(ctx context.Context, accessToken string) (*providers.DiscordUser, error)
}

// LinkStore persists identity links.
type LinkStore interface {
	Upsert(ctx context.Context, link *gormModels.IdentityLink) error
	FindByDiscord(ctx context.Context, discordID, guildID string) (*gormModels.IdentityLink, error)
}

// VerifyNotifier pushes the post-verification webhook.
type VerifyNotifier interface {
	NotifyVerified(payload VerifyNotification)
}

// VerificationService runs both OAuth flows end to end: state validation,
// code exchange, profile and group lookup, link persistence, and the
// fire-and-forget bot notification.
type VerificationService struct {
	codec    *common.StateCodec
	roblox   RobloxExchanger
	discord  DiscordExchanger
	links    LinkStore
	notifier VerifyNotifier

	groupID         int64
	fallbackGuildID string
}

func NewVerificationService(
	codec *common.StateCodec,
	roblox RobloxExchanger,
	discord DiscordExchanger,
	links LinkStore,
	notifier VerifyNotifier,
	groupID int64,
	fallbackGuildID string,
) *VerificationService {
	return &VerificationService{
		codec:           codec,
		roblox:          roblox,
		discord:         discord,
		links:           links,
		notifier:        notifier,
		groupID:         groupID,
		fallbackGuildID: fallbackGuildID,
	}
}

// StartURL returns the provider authorize URL for the given mode. The
// state value is passed through opaque; only the callback decodes it.
func (s *VerificationService) StartURL(mode OAuthMode, state string) (string, error) {
	switch mode {
	case ModeBotVerify:
		return s.roblox.AuthorizeURL(state), nil
	case ModeSiteLogin:
		return s.discord.AuthorizeURL(state), nil
	default:
		return "", fmt.Errorf("unknown oauth mode %q", mode)
	}
}

// CompleteRobloxVerification finishes the bot-verification flow: decode
// and check the state token, exchange the code, read the Roblox identity
// and group role, and upsert the link. The bot webhook goes out async
// after the link is durable.
func (s *VerificationService) CompleteRobloxVerification(ctx context.Context, rawState, code string) (*gormModels.IdentityLink, error) {
	st, err := s.codec.Decode(rawState)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	guildID := st.GuildID
	if guildID == "" {
		guildID = s.fallbackGuildID
	}
	if guildID == "" {
		return nil, fmt.Errorf("%w: missing guild context", ErrAuthentication)
	}

	accessToken, err := s.roblox.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	profile, err := s.roblox.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	roleRank, roleName := 0, "Guest"
	if s.groupID > 0 {
		role, err := s.roblox.FetchGroupRole(ctx, profile.UserID, s.groupID)
		if err != nil {
			return nil, fmt.Errorf("fetch group role: %w", err)
		}
		roleRank, roleName = role.Rank, role.Name
	}

	link := &gormModels.IdentityLink{
		DiscordID:      st.DiscordID,
		GuildID:        guildID,
		RobloxUserID:   profile.UserID,
		RobloxUsername: profile.Username,
		RoleRank:       roleRank,
		RoleName:       roleName,
	}
	if err := s.links.Upsert(ctx, link); err != nil {
		return nil, fmt.Errorf("persist link: %w", err)
	}

	logging.Info("Identity link verified",
		"discord_id", st.DiscordID,
		"guild_id", guildID,
		"roblox_user_id", profile.UserID,
		"role_rank", roleRank,
	)

	go s.notifier.NotifyVerified(VerifyNotification{
		State:       rawState,
		RobloxID:    profile.UserID,
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		Roles:       []NotifyRole{{GroupID: s.groupID, RoleID: roleRank, RoleName: roleName}},
	})

	return link, nil
}

// CompleteDiscordLogin finishes the site-login flow: exchange the code,
// read the Discord identity, and resolve the existing link. Members who
// never verified get ErrNotFound and are bounced to the verify flow.
func (s *VerificationService) CompleteDiscordLogin(ctx context.Context, code string) (*common.SessionData, error) {
	accessToken, err := s.discord.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	me, err := s.discord.FetchMe(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch discord user: %w", err)
	}

	link, err := s.links.FindByDiscord(ctx, me.ID, s.fallbackGuildID)
	if err != nil {
		return nil, fmt.Errorf("lookup link: %w", err)
	}
	if link == nil {
		return nil, fmt.Errorf("%w: account not verified", ErrNotFound)
	}

	return &common.SessionData{
		DiscordID:      link.DiscordID,
		GuildID:        link.GuildID,
		RobloxUserID:   link.RobloxUserID,
		RobloxUsername: link.RobloxUsername,
		RoleRank:       link.RoleRank,
	}, nil
}
