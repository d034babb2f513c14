package oanda

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidArgument marks caller input that fails a precondition. It is
// raised before any network call, so callers can map it to a 400 without
// consulting the broker.
var ErrInvalidArgument = errors.New("invalid argument")

// APIError carries a non-2xx broker response through untouched. The body is
// kept verbatim for diagnostics; Message is a best-effort extraction of the
// broker's own error text.
type APIError struct {
	StatusCode int
	Status     string
	Body       []byte
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(string(e.Body))
	}
	if msg == "" {
		return fmt.Sprintf("oanda: upstream error: %s", e.Status)
	}
	return fmt.Sprintf("oanda: upstream error (%s): %s", e.Status, msg)
}

func newAPIError(statusCode int, status string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Status: status, Body: body}
	if gjson.ValidBytes(body) {
		// v20 uses errorMessage; a few older endpoints use message.
		for _, key := range []string{"errorMessage", "message"} {
			if v := gjson.GetBytes(body, key); v.Exists() {
				apiErr.Message = v.String()
				break
			}
		}
	}
	return apiErr
}

// AsAPIError unwraps err to the broker error, if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
