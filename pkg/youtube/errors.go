package youtube

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents an error response from the YouTube Data API.
//
// It carries the HTTP status and the first reason reported in the error
// body, such as "quotaExceeded" or "keyInvalid".
type Error struct {
	StatusCode int    // HTTP status code
	Reason     string // First error reason from the response body
	Message    string // Human readable message from the response body
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube: %d %s: %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube: %d: %s", e.StatusCode, e.Message)
}

// Is matches another *Error by reason, or by status code when the target
// has no reason. This lets errors.Is(err, ErrQuotaExceeded) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Reason != "" {
		return e.Reason == t.Reason
	}
	return e.StatusCode == t.StatusCode
}

// Temporary returns true if the request should be retried.
//
// Server errors and the per-user rate limit are temporary. Quota
// exhaustion and bad keys are not.
func (e *Error) Temporary() bool {
	if e.StatusCode >= http.StatusInternalServerError {
		return true
	}
	switch e.Reason {
	case ReasonRateLimitExceeded, ReasonBackendError:
		return true
	default:
		return false
	}
}

// Common YouTube error reasons.
const (
	ReasonQuotaExceeded     = "quotaExceeded"
	ReasonRateLimitExceeded = "rateLimitExceeded"
	ReasonKeyInvalid        = "keyInvalid"
	ReasonBackendError      = "backendError"
	ReasonPlaylistNotFound  = "playlistNotFound"
)

// Predefined errors for common cases.
var (
	ErrQuotaExceeded    = &Error{Reason: ReasonQuotaExceeded}
	ErrKeyInvalid       = &Error{Reason: ReasonKeyInvalid}
	ErrPlaylistNotFound = &Error{Reason: ReasonPlaylistNotFound}

	// ErrInvalidConfig is returned when client configuration is invalid.
	ErrInvalidConfig = errors.New("youtube: invalid configuration")
)

// apiErrorBody is the JSON envelope Google APIs use for failures.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func (b apiErrorBody) toError(status int) *Error {
	e := &Error{StatusCode: status, Message: b.Error.Message}
	if len(b.Error.Errors) > 0 {
		e.Reason = b.Error.Errors[0].Reason
		if e.Message == "" {
			e.Message = b.Error.Errors[0].Message
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
