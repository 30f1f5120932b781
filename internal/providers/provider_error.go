package providers

import "fmt"

// ProviderError wraps an upstream API failure. Status carries the HTTP
// status from the remote side when the request got that far; the caller
// surfaces it as a server error and never retries.
type ProviderError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func upstreamError(op string, status int, message string) *ProviderError {
	return &ProviderError{Op: op, Status: status, Message: message}
}
