package common

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(t *testing.T) (*SessionService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionService(client), mr
}

func TestSessionLifecycle(t *testing.T) {
	sessions, _ := newTestSessions(t)
	ctx := context.Background()

	id, err := sessions.CreateSession(ctx, SessionData{
		DiscordID:      "d1",
		GuildID:        "g1",
		RobloxUserID:   1001,
		RobloxUsername: "surfer",
		RoleRank:       10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	data, err := sessions.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "d1", data.DiscordID)
	assert.Equal(t, int64(1001), data.RobloxUserID)
	assert.Equal(t, id, data.SessionID)

	require.NoError(t, sessions.DeleteSession(ctx, id))
	_, err = sessions.GetSession(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionExpires(t *testing.T) {
	sessions, mr := newTestSessions(t)
	ctx := context.Background()

	id, err := sessions.CreateSession(ctx, SessionData{DiscordID: "d1"})
	require.NoError(t, err)

	mr.FastForward(8 * 24 * time.Hour) // past the 7 day TTL

	_, err = sessions.GetSession(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionUnknownID(t *testing.T) {
	sessions, _ := newTestSessions(t)

	_, err := sessions.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
