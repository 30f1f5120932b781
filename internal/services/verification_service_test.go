package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfari/boardwalk/internal/common"
	"surfari/boardwalk/internal/common/clock"
	gormModels "surfari/boardwalk/internal/models/gorm"
	"surfari/boardwalk/internal/providers"
)

type mockRobloxExchanger struct {
	ExchangeCodeFn   func(ctx context.Context, code string) (string, error)
	FetchProfileFn   func(ctx context.Context, accessToken string) (*providers.RobloxProfile, error)
	FetchGroupRoleFn func(ctx context.Context, userID, groupID int64) (*providers.GroupRole, error)
}

func (m *mockRobloxExchanger) AuthorizeURL(state string) string {
	return "https://apis.roblox.com/oauth/v1/authorize?state=" + state
}

func (m *mockRobloxExchanger) ExchangeCode(ctx context.Context, code string) (string, error) {
	return m.ExchangeCodeFn(ctx, code)
}

func (m *mockRobloxExchanger) FetchProfile(ctx context.Context, accessToken string) (*providers.RobloxProfile, error) {
	return m.FetchProfileFn(ctx, accessToken)
}

func (m *mockRobloxExchanger) FetchGroupRole(ctx context.Context, userID, groupID int64) (*providers.GroupRole, error) {
	return m.FetchGroupRoleFn(ctx, userID, groupID)
}

type mockDiscordExchanger struct {
	ExchangeCodeFn func(ctx context.Context, code string) (string, error)
	FetchMeFn      func(ctx context.Context, accessToken string) (*providers.DiscordUser, error)
}

func (m *mockDiscordExchanger) AuthorizeURL(state string) string {
	return "https://discord.com/oauth2/authorize?state=" + state
}

func (m *mockDiscordExchanger) ExchangeCode(ctx context.Context, code string) (string, error) {
	return m.ExchangeCodeFn(ctx, code)
}

func (m *mockDiscordExchanger) FetchMe(ctx context.Context, accessToken string) (*providers.DiscordUser, error) {
	return m.FetchMeFn(ctx, accessToken)
}

type mockLinkStore struct {
	upserted []*gormModels.IdentityLink
	byKey    map[string]*gormModels.IdentityLink
}

func (m *mockLinkStore) Upsert(_ context.Context, link *gormModels.IdentityLink) error {
	m.upserted = append(m.upserted, link)
	return nil
}

func (m *mockLinkStore) FindByDiscord(_ context.Context, discordID, guildID string) (*gormModels.IdentityLink, error) {
	return m.byKey[discordID+"/"+guildID], nil
}

type mockNotifier struct {
	notified chan VerifyNotification
}

func (m *mockNotifier) NotifyVerified(payload VerifyNotification) {
	m.notified <- payload
}

func newVerifyFixture(t *testing.T) (*VerificationService, *common.StateCodec, *mockLinkStore, *mockNotifier) {
	t.Helper()
	clk := &clock.Fixed{Current: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := common.NewStateCodec("state-secret", clk)

	roblox := &mockRobloxExchanger{
		ExchangeCodeFn: func(_ context.Context, code string) (string, error) {
			require.Equal(t, "good-code", code)
			return "access-token", nil
		},
		FetchProfileFn: func(_ context.Context, accessToken string) (*providers.RobloxProfile, error) {
			require.Equal(t, "access-token", accessToken)
			return &providers.RobloxProfile{UserID: 1001, Username: "surfer", DisplayName: "Surfer"}, nil
		},
		FetchGroupRoleFn: func(_ context.Context, userID, groupID int64) (*providers.GroupRole, error) {
			return &providers.GroupRole{Rank: 10, Name: "Lifeguard"}, nil
		},
	}
	discord := &mockDiscordExchanger{
		ExchangeCodeFn: func(_ context.Context, code string) (string, error) {
			return "discord-token", nil
		},
		FetchMeFn: func(_ context.Context, _ string) (*providers.DiscordUser, error) {
			return &providers.DiscordUser{ID: "d1", Username: "member"}, nil
		},
	}
	links := &mockLinkStore{byKey: make(map[string]*gormModels.IdentityLink)}
	notifier := &mockNotifier{notified: make(chan VerifyNotification, 1)}

	svc := NewVerificationService(codec, roblox, discord, links, notifier, 7, "fallback-guild")
	return svc, codec, links, notifier
}

func TestCompleteRobloxVerification(t *testing.T) {
	svc, codec, links, notifier := newVerifyFixture(t)

	state, err := codec.Encode("d1", "g1", 15*time.Minute)
	require.NoError(t, err)

	link, err := svc.CompleteRobloxVerification(context.Background(), state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "d1", link.DiscordID)
	assert.Equal(t, "g1", link.GuildID)
	assert.Equal(t, int64(1001), link.RobloxUserID)
	assert.Equal(t, 10, link.RoleRank)
	require.Len(t, links.upserted, 1)

	select {
	case payload := <-notifier.notified:
		assert.Equal(t, state, payload.State)
		assert.Equal(t, int64(1001), payload.RobloxID)
		require.Len(t, payload.Roles, 1)
		assert.Equal(t, "Lifeguard", payload.Roles[0].RoleName)
	case <-time.After(2 * time.Second):
		t.Fatal("notification never sent")
	}
}

func TestVerificationFallsBackToConfiguredGuild(t *testing.T) {
	svc, codec, _, notifier := newVerifyFixture(t)

	state, err := codec.Encode("d1", "", 15*time.Minute)
	require.NoError(t, err)

	link, err := svc.CompleteRobloxVerification(context.Background(), state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "fallback-guild", link.GuildID)
	<-notifier.notified
}

func TestVerificationRejectsBadState(t *testing.T) {
	svc, _, links, _ := newVerifyFixture(t)

	_, err := svc.CompleteRobloxVerification(context.Background(), "garbage.token", "good-code")
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Empty(t, links.upserted)
}

func TestDiscordLoginRequiresExistingLink(t *testing.T) {
	svc, _, links, _ := newVerifyFixture(t)

	_, err := svc.CompleteDiscordLogin(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrNotFound)

	links.byKey["d1/fallback-guild"] = &gormModels.IdentityLink{
		DiscordID:      "d1",
		GuildID:        "fallback-guild",
		RobloxUserID:   1001,
		RobloxUsername: "surfer",
		RoleRank:       10,
	}

	data, err := svc.CompleteDiscordLogin(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "d1", data.DiscordID)
	assert.Equal(t, int64(1001), data.RobloxUserID)
	assert.Equal(t, 10, data.RoleRank)
}

func TestStartURLByMode(t *testing.T) {
	svc, _, _, _ := newVerifyFixture(t)

	verifyURL, err := svc.StartURL(ModeBotVerify, "st")
	require.NoError(t, err)
	assert.Contains(t, verifyURL, "roblox.com")

	loginURL, err := svc.StartURL(ModeSiteLogin, "st")
	require.NoError(t, err)
	assert.Contains(t, loginURL, "discord.com")

	_, err = svc.StartURL(OAuthMode("bogus"), "st")
	assert.Error(t, err)
}
