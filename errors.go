package kindle

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	ErrMissingCookie      = errors.New("missing required cookie")
	ErrMissingDeviceToken = errors.New("missing device token")
	ErrMissingTransport   = errors.New("missing transport configuration")
	ErrUnknownProfile     = errors.New("unknown tls client profile")
)

// =============================================================================
// API Errors
// =============================================================================

// AuthSessionError is returned when Amazon answers with its sign-in page
// instead of data, which means the cookies are no longer valid.
type AuthSessionError struct {
	Response *Response
}

func (e *AuthSessionError) Error() string {
	return "Session expired"
}

// IsAuthSessionError reports whether err is (or wraps) an AuthSessionError.
func IsAuthSessionError(err error) bool {
	var ae *AuthSessionError
	return errors.As(err, &ae)
}

// UnexpectedResponseError is returned for any non-200 response that is not a
// sign-in redirect.
type UnexpectedResponseError struct {
	Status   int
	Response *Response
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("Unexpected status code: %d", e.Status)
}

// checkResponse runs the two response checks in order: sign-in redirect
// first, then status.
func checkResponse(resp *Response) error {
	if isSignInRedirect(resp) {
		return &AuthSessionError{Response: resp}
	}
	if resp.Status != 200 {
		return &UnexpectedResponseError{Status: resp.Status, Response: resp}
	}
	return nil
}

// =============================================================================
// Configuration Errors
// =============================================================================

// ConfigError reports configuration that can never work. It is returned before
// any network call is made.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func newConfigError(field string, err error) error {
	return &ConfigError{Field: field, Err: err}
}

// =============================================================================
// Retryable Errors
// =============================================================================

// retryableErrorPatterns contains error message substrings that indicate a
// broken connection rather than a bad request.
var retryableErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"i/o timeout",
	"TLS handshake timeout",
	"EOF",
	"malformed HTTP response",
	"transport connection broken",
	"use of closed network connection",
	"proxy responded with non 200 code",
}

// IsRetryableError checks if the error is a network failure worth retrying on
// another upstream proxy. API errors are never retryable.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var ae *AuthSessionError
	var ue *UnexpectedResponseError
	var ce *ConfigError
	if errors.As(err, &ae) || errors.As(err, &ue) || errors.As(err, &ce) {
		return false
	}

	if isNetworkTimeout(err) {
		return true
	}

	return containsRetryablePattern(err.Error())
}

func isNetworkTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func containsRetryablePattern(errStr string) bool {
	for _, pattern := range retryableErrorPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
