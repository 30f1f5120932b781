package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"surfari/boardwalk/internal/constants"
	"surfari/boardwalk/internal/logging"
	"surfari/boardwalk/internal/metrics"
)

// NotifyRole mirrors the role entry the companion bot expects.
type NotifyRole struct {
	GroupID  int64  `json:"groupId"`
	RoleID   int    `json:"roleId"`
	RoleName string `json:"roleName"`
}

// VerifyNotification is the webhook body posted to the bot after a
// successful verification.
type VerifyNotification struct {
	State       string       `json:"state"`
	RobloxID    int64        `json:"robloxId"`
	Username    string       `json:"username"`
	DisplayName string       `json:"displayName"`
	Roles       []NotifyRole `json:"roles"`
}

// NotifierService delivers fire-and-forget webhooks to the companion bot.
// The identity link is already durably persisted before notification, so
// failures are logged and counted but never surfaced to the verifying
// user.
type NotifierService struct {
	botURL  string
	secret  []byte
	client  *http.Client
	metrics *metrics.MetricsRegistry
}

func NewNotifierService(botURL, secret string, reg *metrics.MetricsRegistry) *NotifierService {
	return &NotifierService{
		botURL:  botURL,
		secret:  []byte(secret),
		client:  &http.Client{Timeout: 8 * time.Second},
		metrics: reg,
	}
}

// NotifyVerified posts the verification payload to the bot. Safe to call
// from a goroutine; it owns its own timeout.
func (s *NotifierService) NotifyVerified(payload VerifyNotification) {
	if s.botURL == "" {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal verify notification", "error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.botURL+"/api/discord/verify", bytes.NewReader(body))
	if err != nil {
		logging.Error("Failed to build verify notification request", "error", err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if sig := s.sign(body); sig != "" {
		req.Header.Set(constants.HeaderWebhookSignature, sig)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordFailure()
		logging.Warn("Bot sync warning", "error", err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.recordFailure()
		logging.Warn("Bot sync warning", "status", resp.StatusCode)
	}
}

// sign returns the base64 HMAC-SHA256 of body, or "" when no webhook
// secret is configured.
func (s *NotifierService) sign(body []byte) string {
	if len(s.secret) == 0 {
		return ""
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (s *NotifierService) recordFailure() {
	if s.metrics != nil {
		s.metrics.WebhookFailuresTotal.Inc()
	}
}
