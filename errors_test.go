package kindle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "deadline" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp 1.2.3.4:80: connect: connection refused"), true},
		{"proxy rejected", errors.New("proxy responded with non 200 code: 407"), true},
		{"eof", fmt.Errorf("read: %w", errors.New("unexpected EOF")), true},
		{"net timeout", fmt.Errorf("get: %w", timeoutError{}), true},
		{"auth", &AuthSessionError{Response: &Response{}}, false},
		{"unexpected status", &UnexpectedResponseError{Status: 503}, false},
		{"config", newConfigError("profile", ErrUnknownProfile), false},
		{"canceled", context.Canceled, false},
		{"other", errors.New("json: cannot unmarshal"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err))
		})
	}
}

func TestCheckResponse(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, checkResponse(&Response{Status: 200}))
	})

	t.Run("sign-in wins over status", func(t *testing.T) {
		resp := &Response{Status: 200, Headers: map[string][]string{"location": {"/ap/signin"}}}
		assert.True(t, IsAuthSessionError(checkResponse(resp)))
	})

	t.Run("other redirect", func(t *testing.T) {
		resp := &Response{Status: 302, Headers: map[string][]string{"Location": {"/kindle-library"}}}
		err := checkResponse(resp)
		assert.False(t, IsAuthSessionError(err))
		assert.EqualError(t, err, "Unexpected status code: 302")
	})

	t.Run("wrapped auth error", func(t *testing.T) {
		err := fmt.Errorf("listing: %w", &AuthSessionError{})
		assert.True(t, IsAuthSessionError(err))
	})
}
