package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-2xx response from the Graph API. When the body carries
// the standard Graph error envelope its fields are decoded; otherwise only
// the status and a body snippet are available.
type APIError struct {
	StatusCode int
	Code       int
	Type       string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("graph api status %d: %s (type %s, code %d)", e.StatusCode, e.Message, e.Type, e.Code)
	}
	return fmt.Sprintf("graph api status %d: %s", e.StatusCode, bodySnippet(e.Body))
}

// MissingFieldError reports a response that lacked a field the caller
// required (e.g., PageLikes expecting a likes count).
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("graph response missing field %q", e.Field)
}

// errorEnvelope is the Graph API error body shape.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// newAPIError builds an APIError from a non-2xx response body.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: body}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
		apiErr.Code = env.Error.Code
	}
	return apiErr
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
