package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SignedLink is a validated single-use dashboard link token.
type SignedLink struct {
	DiscordID string
	GuildID   string
	TokenID   string
	ExpiresAt time.Time
}

// URLSignerService issues the signed, single-use tokens the companion bot
// embeds in dashboard links. Tokens are HS256 JWTs; single use is enforced
// through a Redis tombstone per jti.
type URLSignerService struct {
	secretKey []byte
	redis     *redis.Client
}

func NewURLSignerService(secretKey []byte, redis *redis.Client) *URLSignerService {
	return &URLSignerService{
		secretKey: secretKey,
		redis:     redis,
	}
}

// GenerateLinkToken mints a token granting one dashboard login for the
// given member.
func (s *URLSignerService) GenerateLinkToken(discordID, guildID string, ttl time.Duration) (string, time.Time, error) {
	tokenID := uuid.New().String()
	expiresAt := time.Now().Add(ttl)

	claims := jwt.MapClaims{
		"discord_id": discordID,
		"guild_id":   guildID,
		"jti":        tokenID,
		"exp":        expiresAt.Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken parses and verifies a link token and checks it has not
// been redeemed yet.
func (s *URLSignerService) ValidateToken(ctx context.Context, tokenString string) (*SignedLink, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	discordID, ok := (*claims)["discord_id"].(string)
	if !ok {
		return nil, errors.New("missing or invalid discord_id claim")
	}
	guildID, ok := (*claims)["guild_id"].(string)
	if !ok {
		return nil, errors.New("missing or invalid guild_id claim")
	}
	tokenID, ok := (*claims)["jti"].(string)
	if !ok {
		return nil, errors.New("missing or invalid jti claim")
	}
	expFloat, ok := (*claims)["exp"].(float64)
	if !ok {
		return nil, errors.New("missing or invalid exp claim")
	}
	expiresAt := time.Unix(int64(expFloat), 0)

	if time.Now().After(expiresAt) {
		return nil, errors.New("token expired")
	}

	used, err := s.isTokenUsed(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token usage: %w", err)
	}
	if used {
		return nil, errors.New("token already used")
	}

	return &SignedLink{
		DiscordID: discordID,
		GuildID:   guildID,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

// MarkTokenAsUsed burns a token after redemption.
func (s *URLSignerService) MarkTokenAsUsed(ctx context.Context, tokenID string) error {
	ttl := 15 * time.Minute
	if err := s.redis.Set(ctx, "used_token:"+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}
	return nil
}

func (s *URLSignerService) isTokenUsed(ctx context.Context, tokenID string) (bool, error) {
	result, err := s.redis.Get(ctx, "used_token:"+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return result == "1", nil
}
