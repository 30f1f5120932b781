package middleware

import (
	"crypto/subtle"
	"net/http"

	"surfari/boardwalk/internal/constants"
)

// GameKeyMiddleware guards the ingest routes with the shared secret only
// the game servers know.
func GameKeyMiddleware(gameKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(constants.HeaderGameKey)
			if gameKey == "" || key == "" ||
				subtle.ConstantTimeCompare([]byte(key), []byte(gameKey)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
