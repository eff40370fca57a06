package coinsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ============================================================================
// Error Codes
// ============================================================================

// Error codes classify every failure the SDK can surface. The session layer
// and the UI branch on the class, not on raw HTTP status codes.
const (
	// ErrorCodeNetwork covers transport failures: DNS, refused connections,
	// timeouts. Transient and retryable.
	ErrorCodeNetwork = "network_error"

	// ErrorCodeUnauthorized covers 401: missing, expired or invalid token,
	// or bad credentials on login.
	ErrorCodeUnauthorized = "unauthorized"

	// ErrorCodeForbidden covers 403: the role is not allowed to do this.
	ErrorCodeForbidden = "forbidden"

	// ErrorCodeNotFound covers 404.
	ErrorCodeNotFound = "not_found"

	// ErrorCodeBusiness covers 400-class rejections of an otherwise valid
	// request: insufficient coins, unavailable item, duplicate email.
	ErrorCodeBusiness = "business_rejection"

	// ErrorCodeValidation covers 422 and malformed server payloads.
	ErrorCodeValidation = "validation_error"

	// ErrorCodeServer covers 5xx and anything unclassifiable.
	ErrorCodeServer = "server_error"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the typed error for every failed backend interaction. A zero
// StatusCode means the request never reached the backend.
type APIError struct {
	// StatusCode is the HTTP status code, or 0 for transport failures
	StatusCode int `json:"-"`

	// Code is one of the ErrorCode* constants
	Code string `json:"code"`

	// Message is the human-readable cause, usually the backend's detail field
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// newNetworkError wraps a transport-level failure.
func newNetworkError(err error) *APIError {
	return &APIError{
		StatusCode: 0,
		Code:       ErrorCodeNetwork,
		Message:    err.Error(),
	}
}

// ============================================================================
// Classification Helpers
// ============================================================================

func codeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// IsNetworkError reports whether err is a transient transport failure.
func IsNetworkError(err error) bool { return codeOf(err) == ErrorCodeNetwork }

// IsUnauthorized reports whether err means the token or credentials were
// rejected. The session layer treats this as "token invalid".
func IsUnauthorized(err error) bool { return codeOf(err) == ErrorCodeUnauthorized }

// IsForbidden reports whether err is a role/permission rejection.
func IsForbidden(err error) bool { return codeOf(err) == ErrorCodeForbidden }

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool { return codeOf(err) == ErrorCodeNotFound }

// IsBusinessRejection reports whether the backend rejected the request on
// business grounds (insufficient balance, unavailable item, duplicate email).
// Optimistic mutations must roll back on these.
func IsBusinessRejection(err error) bool { return codeOf(err) == ErrorCodeBusiness }

// IsValidation reports whether err is a malformed-payload failure, in either
// direction.
func IsValidation(err error) bool {
	return codeOf(err) == ErrorCodeValidation || errors.Is(err, ErrMalformedUser)
}

// ============================================================================
// Error Parsing
// ============================================================================

// parseErrorResponse turns a non-2xx HTTP response into a typed *APIError.
// Returns nil for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := http.StatusText(resp.StatusCode)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		message = errResp.Detail
	} else if detail := parseValidationDetail(body); detail != "" {
		// 422 bodies carry detail as a list of field errors
		message = detail
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       classify(resp.StatusCode),
		Message:    message,
	}
}

// classify maps an HTTP status to an error code.
func classify(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return ErrorCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrorCodeForbidden
	case status == http.StatusNotFound:
		return ErrorCodeNotFound
	case status == http.StatusUnprocessableEntity:
		return ErrorCodeValidation
	case status >= 400 && status < 500:
		return ErrorCodeBusiness
	default:
		return ErrorCodeServer
	}
}

// parseValidationDetail flattens FastAPI's structured 422 detail into a
// single message.
func parseValidationDetail(body []byte) string {
	var payload struct {
		Detail []struct {
			Loc []any  `json:"loc"`
			Msg string `json:"msg"`
		} `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	parts := make([]string, 0, len(payload.Detail))
	for _, d := range payload.Detail {
		parts = append(parts, d.Msg)
	}
	return strings.Join(parts, "; ")
}
