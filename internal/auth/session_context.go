package auth

import (
	"context"

	"surfari/boardwalk/internal/common"
)

type contextKey string

var sessionKey contextKey = "dashboard_session"

// SetSession attaches the authenticated dashboard session to the request
// context.
func SetSession(ctx context.Context, data *common.SessionData) context.Context {
	return context.WithValue(ctx, sessionKey, data)
}

// GetSession returns the dashboard session, or nil when the request is
// unauthenticated.
func GetSession(ctx context.Context) *common.SessionData {
	val := ctx.Value(sessionKey)
	if data, ok := val.(*common.SessionData); ok {
		return data
	}
	return nil
}
