package common

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"surfari/boardwalk/internal/common/clock"
)

// ErrInvalidState covers every decode failure: bad signature, malformed
// payload, or expiry. Callers must restart the OAuth flow; there is no
// retry path.
var ErrInvalidState = errors.New("invalid or expired state token")

// State is the decoded payload of an OAuth state token.
type State struct {
	DiscordID string
	GuildID   string // empty for legacy tokens; caller applies a fallback
	ExpiresAt time.Time
	Version   int
}

// statePayload is the wire form of the current (v2) format.
type statePayload struct {
	D string `json:"d"`
	G string `json:"g,omitempty"`
	T int64  `json:"t,omitempty"` // expiry, unix millis
	V int    `json:"v,omitempty"`
}

// legacyStateWindow is the fixed acceptance window for v1 tokens, which
// carry an issue timestamp rather than an expiry.
const legacyStateWindow = 10 * time.Minute

// StateCodec signs and verifies the state value round-tripped through the
// OAuth redirect. Two wire formats are accepted on decode:
//
//	v2: base64url(payload) "." base64url(hmac-sha256(payloadB64))
//	v1: hex(hmac-sha256(discordId "." ts)) "." discordId "." ts
//
// Encode always emits v2. v1 support exists only because verification
// links issued by old bot builds stay valid for a while.
type StateCodec struct {
	secret []byte
	clock  clock.Clock
}

func NewStateCodec(secret string, clk clock.Clock) *StateCodec {
	if clk == nil {
		clk = &clock.DefaultClock{}
	}
	return &StateCodec{secret: []byte(secret), clock: clk}
}

// Encode produces a v2 state token binding the Discord user (and guild)
// for ttl.
func (c *StateCodec) Encode(discordID, guildID string, ttl time.Duration) (string, error) {
	if discordID == "" {
		return "", fmt.Errorf("discord id is required")
	}
	payload := statePayload{
		D: discordID,
		G: guildID,
		T: c.clock.Now().Add(ttl).UnixMilli(),
		V: 2,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal state payload: %w", err)
	}
	payloadB64 := base64.RawURLEncoding.EncodeToString(raw)
	sig := c.signB64(payloadB64)
	return payloadB64 + "." + sig, nil
}

// Decode verifies a token in either wire format. Any failure yields
// ErrInvalidState.
func (c *StateCodec) Decode(token string) (*State, error) {
	parts := strings.Split(token, ".")
	switch len(parts) {
	case 2:
		return c.decodeV2(parts[0], parts[1])
	case 3:
		return c.decodeLegacy(parts[0], parts[1], parts[2])
	default:
		return nil, ErrInvalidState
	}
}

func (c *StateCodec) decodeV2(payloadB64, sigB64 string) (*State, error) {
	want := c.signB64(payloadB64)
	if subtle.ConstantTimeCompare([]byte(want), []byte(sigB64)) != 1 {
		return nil, ErrInvalidState
	}

	raw, err := base64.RawURLEncoding.DecodeString(payloadB64)
	if err != nil {
		return nil, ErrInvalidState
	}
	var payload statePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrInvalidState
	}
	if payload.D == "" {
		return nil, ErrInvalidState
	}

	var expiry time.Time
	if payload.T > 0 {
		expiry = time.UnixMilli(payload.T)
		if c.clock.Now().After(expiry) {
			return nil, ErrInvalidState
		}
	}

	version := payload.V
	if version == 0 {
		version = 2
	}
	return &State{
		DiscordID: payload.D,
		GuildID:   payload.G,
		ExpiresAt: expiry,
		Version:   version,
	}, nil
}

func (c *StateCodec) decodeLegacy(hashHex, discordID, tsStr string) (*State, error) {
	body := discordID + "." + tsStr
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(body))
	want := hex.EncodeToString(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(want), []byte(hashHex)) != 1 {
		return nil, ErrInvalidState
	}

	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return nil, ErrInvalidState
	}
	issued := time.UnixMilli(ts)
	if c.clock.Now().Sub(issued) > legacyStateWindow {
		return nil, ErrInvalidState
	}

	// v1 tokens never carried a guild id
	return &State{
		DiscordID: discordID,
		ExpiresAt: issued.Add(legacyStateWindow),
		Version:   1,
	}, nil
}

func (c *StateCodec) signB64(payloadB64 string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payloadB64))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
