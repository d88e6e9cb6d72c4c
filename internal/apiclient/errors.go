package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrServiceUnavailable = errors.New("quiz service unavailable")

// RequestError is a non-2xx response. Body holds the response text verbatim.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, body)
}

// Detail returns the service's "detail" (or "error") message when the body is
// a JSON error document, and the raw body otherwise.
func (e *RequestError) Detail() string {
	var payload struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil {
		if detail, ok := payload.Detail.(string); ok && strings.TrimSpace(detail) != "" {
			return detail
		}
		if strings.TrimSpace(payload.Error) != "" {
			return payload.Error
		}
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}
	return http.StatusText(e.Status)
}

// TransportError means no HTTP response was obtained.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrServiceUnavailable
}

// StatusCode returns the HTTP status of a RequestError anywhere in err's
// chain, or 0.
func StatusCode(err error) int {
	var requestErr *RequestError
	if errors.As(err, &requestErr) {
		return requestErr.Status
	}
	return 0
}
