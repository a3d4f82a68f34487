package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoToken is returned before any network call when no session token is stored
var ErrNoToken = errors.New("no authentication token found")

// ErrorKind classifies a gateway failure
type ErrorKind string

const (
	KindNoCredentials ErrorKind = "no_credentials"
	KindTransport     ErrorKind = "transport"
	KindBackend       ErrorKind = "backend"
	KindDecode        ErrorKind = "decode"
)

// Error is the uniform failure shape of every gateway call
type Error struct {
	Kind      ErrorKind
	Status    int
	Message   string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindBackend:
		return e.Message
	case KindNoCredentials:
		return ErrNoToken.Error()
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	if e.Kind == KindNoCredentials {
		return ErrNoToken
	}
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether the backend rejected the credential
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNoToken) {
		return true
	}
	return StatusCode(err) == http.StatusUnauthorized
}

// errorBody is what the backend sends on failure
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// backendMessage extracts a human readable message from an error response
func backendMessage(status int, payload []byte) string {
	var body errorBody
	if err := json.Unmarshal(payload, &body); err == nil {
		if msg := strings.TrimSpace(body.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(body.Error); msg != "" {
			return msg
		}
	}
	if text := strings.TrimSpace(string(payload)); text != "" && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "<") {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}
