package relay

import "errors"

// ErrNotConnected is the configuration error raised when no provider
// credential is configured.
var ErrNotConnected = errors.New("engine not connected")

// ValidationError rejects malformed or missing input before any provider call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// RateLimitError reports that a conversation reached its message cap.
type RateLimitError struct {
	Message string
	Count   int
	Cap     int
}

func (e *RateLimitError) Error() string {
	return "conversation message cap reached"
}

const (
	reasonMissingMessage  = "missing message"
	reasonMissingMessages = "missing messages"
	reasonInvalidMessages = "invalid messages"
)
