package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired dashboard sessions.
var ErrSessionNotFound = errors.New("session not found")

const dashboardSessionTTL = 7 * 24 * time.Hour

// SessionData is one logged-in dashboard user, stored in Redis.
type SessionData struct {
	SessionID      string    `json:"session_id"`
	DiscordID      string    `json:"discord_id"`
	GuildID        string    `json:"guild_id"`
	RobloxUserID   int64     `json:"roblox_user_id"`
	RobloxUsername string    `json:"roblox_username"`
	RoleRank       int       `json:"role_rank"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// SessionService manages dashboard sessions in Redis
type SessionService struct {
	redis *redis.Client
}

func NewSessionService(redis *redis.Client) *SessionService {
	return &SessionService{redis: redis}
}

// CreateSession stores a new dashboard session and returns its id.
func (s *SessionService) CreateSession(ctx context.Context, data SessionData) (string, error) {
	data.SessionID = uuid.New().String()
	data.CreatedAt = time.Now()
	data.ExpiresAt = data.CreatedAt.Add(dashboardSessionTTL)

	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.redis.Set(ctx, "session:"+data.SessionID, raw, dashboardSessionTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return data.SessionID, nil
}

// GetSession retrieves a session from Redis
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	val, err := s.redis.Get(ctx, "session:"+sessionID).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &data, nil
}

// DeleteSession logs the user out.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, "session:"+sessionID).Err()
}
