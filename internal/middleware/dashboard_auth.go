package middleware

import (
	"net/http"
	"strings"

	"surfari/boardwalk/internal/auth"
	"surfari/boardwalk/internal/common"
	"surfari/boardwalk/internal/constants"
)

// DashboardAuthMiddleware authenticates dashboard requests against the
// Redis session store. The session id arrives either as a cookie or as a
// bearer token, the SPA uses whichever it has.
func DashboardAuthMiddleware(sessions *common.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""

			if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
				sessionID = cookie.Value
			}
			if sessionID == "" {
				if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
					sessionID = strings.TrimPrefix(header, "Bearer ")
				}
			}
			if sessionID == "" {
				http.Error(w, "Unauthorized. Missing session", http.StatusUnauthorized)
				return
			}

			data, err := sessions.GetSession(r.Context(), sessionID)
			if err != nil {
				http.Error(w, "Unauthorized. Invalid session", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetSession(r.Context(), data)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
