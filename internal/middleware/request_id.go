package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"surfari/boardwalk/internal/constants"
)

// RequestIDMiddleware ensures every request carries an id, generating one
// when the caller didn't send any.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
			r.Header.Set(constants.HeaderRequestID, requestID)
		}
		w.Header().Set(constants.HeaderRequestID, requestID)
		next.ServeHTTP(w, r)
	})
}
