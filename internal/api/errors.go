package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoData is returned when the lesson stream ends without a complete event.
var ErrNoData = errors.New("lesson stream ended with no data received")

// Error is a backend failure carrying the HTTP status.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsAuth reports whether the failure means the token is invalid or
// expired. Callers treat this as fatal to the session and re-authenticate
// instead of retrying in place.
func (e *Error) IsAuth() bool {
	if e.Status == 401 || e.Status == 403 {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "could not validate") ||
		strings.Contains(msg, "unauthorized")
}

// IsAuthError reports whether err is an auth failure.
func IsAuthError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.IsAuth()
}

// errorBody matches the backend's error envelope. The detail field is
// either a bare string or an object with message/code.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type errorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// parseError builds an Error from a non-2xx response body.
func parseError(status int, body []byte) *Error {
	e := &Error{Status: status, Message: fmt.Sprintf("HTTP error %d", status)}

	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return e
	}

	var asString string
	if err := json.Unmarshal(envelope.Detail, &asString); err == nil && asString != "" {
		e.Message = asString
		return e
	}

	var asDetail errorDetail
	if err := json.Unmarshal(envelope.Detail, &asDetail); err == nil && asDetail.Message != "" {
		e.Message = asDetail.Message
		e.Code = asDetail.Code
	}
	return e
}
