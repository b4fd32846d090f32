package twilio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned when account credentials are missing
var ErrNotConfigured = errors.New("twilio: credentials not configured")

// Error codes we branch on
const (
	CodeUnauthenticated   = 20003
	CodeInvalidToNumber   = 21606
	CodeNumberNotVerified = 21216
)

// APIError is a non-2xx response from the REST API
type APIError struct {
	Status   int    `json:"status"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("twilio: status %d code %d: %s", e.Status, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("twilio: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("twilio: status %d", e.Status)
}

// ErrorCode extracts the Twilio error code from err, or 0
func ErrorCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{}
	trimmed := strings.TrimSpace(string(body))
	if trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = trimmed
		}
	}
	apiErr.Status = status
	return apiErr
}
