package kindle

import (
	"context"
	"time"
)

// Option configures a client built with New.
type Option func(*Config)

// New bootstraps a client from options. It is FromConfig for callers that
// do not load configuration from the environment.
func New(ctx context.Context, opts ...Option) (*Kindle, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return FromConfig(ctx, cfg)
}

func WithCookies(cookies RequiredCookies) Option {
	return func(c *Config) { c.Cookies = &cookies }
}

// WithCookieString takes the Cookie header of a signed-in browser tab.
func WithCookieString(raw string) Option {
	return func(c *Config) { c.CookieString = raw }
}

func WithDeviceToken(token string) Option {
	return func(c *Config) { c.DeviceToken = token }
}

func WithClientVersion(version string) Option {
	return func(c *Config) { c.ClientVersion = version }
}

// WithTransport makes the client send every request through t.
func WithTransport(t Transport) Option {
	return func(c *Config) {
		c.TransportFactory = func(RequiredCookies, Config) (Transport, error) { return t, nil }
	}
}

// WithTLSServer routes requests through a TLS forwarding service.
func WithTLSServer(url, apiKey string) Option {
	return func(c *Config) { c.TLSServer = TLSServerConfig{URL: url, APIKey: apiKey} }
}

func WithProfile(name string) Option {
	return func(c *Config) { c.Profile = name }
}

func WithProxyFile(path string) Option {
	return func(c *Config) { c.ProxyFile = path }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}
