package gateway

import (
	"fmt"
)

// APIError is a structured error response from the gateway.
type APIError struct {
	StatusCode int
	Message    string
	UserTitle  string
}

func (e *APIError) Error() string {
	if e.UserTitle != "" {
		return fmt.Sprintf("gateway error (status %d): %s: %s", e.StatusCode, e.UserTitle, e.Message)
	}
	return fmt.Sprintf("gateway error (status %d): %s", e.StatusCode, e.Message)
}
