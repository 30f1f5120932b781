package services

import (
	"errors"
	"fmt"
)

// Failure taxonomy shared by the API layer. Handlers map these to HTTP
// statuses; anything unrecognized becomes a 500.
var (
	// ErrAuthentication covers bad or expired state tokens and rejected
	// OAuth codes. Never retried; the caller restarts the flow.
	ErrAuthentication = errors.New("authentication failed")

	// ErrNotFound covers unknown calendar sessions and unverified users.
	ErrNotFound = errors.New("not found")

	// ErrSessionInPast rejects claims on slots that already ended.
	ErrSessionInPast = errors.New("session is in the past")
)

// ConflictError is returned when a claim loses to an existing holder or a
// full trainer set. Holder/Capacity give the caller context for the 409.
type ConflictError struct {
	Role     string
	Holder   string
	Capacity int
}

func (e *ConflictError) Error() string {
	if e.Holder != "" {
		return fmt.Sprintf("%s already claimed by %s", e.Role, e.Holder)
	}
	if e.Capacity > 0 {
		return fmt.Sprintf("%s slots full (capacity %d)", e.Role, e.Capacity)
	}
	return fmt.Sprintf("%s claim conflict", e.Role)
}
