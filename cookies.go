package kindle

import (
	"fmt"
	"net/url"
	"strings"
)

// RequiredCookies are the browser cookies the library endpoints need.
type RequiredCookies struct {
	AtMain    string `json:"at-main" yaml:"at-main"`
	SessionID string `json:"session-id" yaml:"session-id"`
	UbidMain  string `json:"ubid-main" yaml:"ubid-main"`
	XMain     string `json:"x-main" yaml:"x-main"`
}

// fields returns the cookies in the order they are serialized.
func (c RequiredCookies) fields() [][2]string {
	return [][2]string{
		{"at-main", c.AtMain},
		{"session-id", c.SessionID},
		{"ubid-main", c.UbidMain},
		{"x-main", c.XMain},
	}
}

// Validate fails with a ConfigError naming the first missing cookie.
func (c RequiredCookies) Validate() error {
	for _, f := range c.fields() {
		if f[1] == "" {
			return newConfigError("cookies", fmt.Errorf("%w: %s", ErrMissingCookie, f[0]))
		}
	}
	return nil
}

// String serializes the cookies into a Cookie header value.
func (c RequiredCookies) String() string {
	parts := make([]string, 0, 4)
	for _, f := range c.fields() {
		parts = append(parts, f[0]+"="+f[1])
	}
	return strings.Join(parts, "; ")
}

// ParseCookies extracts the required cookies from a cookie string copied out
// of a browser ("a=b; c=d"). Keys and values are URL-decoded; unrelated
// cookies are ignored.
func ParseCookies(raw string) (RequiredCookies, error) {
	values := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = decodeCookiePart(key)
		if key == "" {
			continue
		}
		values[key] = decodeCookiePart(value)
	}

	cookies := RequiredCookies{
		AtMain:    values["at-main"],
		SessionID: values["session-id"],
		UbidMain:  values["ubid-main"],
		XMain:     values["x-main"],
	}
	if err := cookies.Validate(); err != nil {
		return RequiredCookies{}, err
	}
	return cookies, nil
}

func decodeCookiePart(s string) string {
	s = strings.TrimSpace(s)
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
