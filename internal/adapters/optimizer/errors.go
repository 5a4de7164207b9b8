package optimizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"route-dashboard/internal/ports"
)

// ServerError and TransportError are the port's error types, re-exported for
// callers that only import this adapter.
type (
	ServerError    = ports.ServerError
	TransportError = ports.TransportError
)

type errorBody struct {
	ErrorMessage string `json:"errorMessage"`
	Title        string `json:"title"`
	Detail       string `json:"detail"`
}

// newServerError extracts the most specific message from an error body,
// falling back to a generic status based message.
func newServerError(status int, body []byte) *ServerError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if msg := strings.TrimSpace(eb.ErrorMessage); msg != "" {
			return &ServerError{Status: status, Message: msg}
		}
		if msg := strings.TrimSpace(eb.Title); msg != "" {
			if d := strings.TrimSpace(eb.Detail); d != "" {
				msg += ": " + d
			}
			return &ServerError{Status: status, Message: msg}
		}
	}

	return &ServerError{
		Status:  status,
		Message: fmt.Sprintf("request failed with status %d", status),
	}
}
