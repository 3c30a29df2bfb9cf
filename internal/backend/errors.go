package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the backend client. Callers classify failures
// with errors.Is or the predicate helpers below; each class maps to its own
// user-facing message in the UI.
var (
	// ErrValidation indicates the request was rejected locally before any
	// network call was made.
	ErrValidation = errors.New("invalid search input")

	// ErrNetwork indicates the backend could not be reached.
	ErrNetwork = errors.New("backend unreachable")

	// ErrTimeout indicates the client-side ceiling elapsed before the
	// backend responded.
	ErrTimeout = errors.New("backend request timed out")

	// ErrDecode indicates the backend answered with a payload the client
	// could not parse.
	ErrDecode = errors.New("unexpected backend response")
)

// ServerError represents a non-2xx response from the backend. Detail carries
// the backend's own explanation when one was provided.
type ServerError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error %s: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend error %s", e.Status)
}

// IsValidation reports whether err was raised by client-side input checks.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsTimeout reports whether err was caused by the configured request ceiling.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsNetwork reports whether err indicates an unreachable backend.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsServer reports whether err carries a non-2xx backend response.
func IsServer(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}

// UserMessage maps an error to the message shown in the UI. Every error class
// keeps a distinct message so a timeout never reads like a crash.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return err.Error()
	case IsTimeout(err):
		return "The backend took too long to respond. Try again in a moment."
	case IsNetwork(err):
		return "Could not reach the search backend. Is it running?"
	case IsServer(err):
		var serverErr *ServerError
		errors.As(err, &serverErr)
		if serverErr.Detail != "" {
			return serverErr.Detail
		}
		return fmt.Sprintf("The backend reported an error (%s).", serverErr.Status)
	default:
		return err.Error()
	}
}
