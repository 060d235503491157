package kindle

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// TLSServerConfig points at a remote TLS forwarding service.
type TLSServerConfig struct {
	URL    string `env:"URL"`
	APIKey string `env:"API_KEY"`
}

// Config is everything FromConfig needs. Cookies may be given either as a
// parsed struct or as a raw cookie string copied from a browser; the struct
// wins when both are set.
type Config struct {
	Cookies       *RequiredCookies
	CookieString  string          `env:"KINDLE_COOKIES"`
	DeviceToken   string          `env:"KINDLE_DEVICE_TOKEN"`
	ClientVersion string          `env:"KINDLE_CLIENT_VERSION"`
	TLSServer     TLSServerConfig `envPrefix:"TLS_SERVER_"`

	// Profile names the browser fingerprint. It is sent to the forwarder as
	// its client identifier, or resolved locally by the direct transport.
	Profile   string        `env:"KINDLE_TLS_PROFILE"`
	UserAgent string        `env:"KINDLE_USER_AGENT"`
	ProxyFile string        `env:"KINDLE_PROXY_FILE"`
	Timeout   time.Duration `env:"KINDLE_TIMEOUT" envDefault:"30s"`

	Logger Logger

	// TransportFactory overrides transport construction.
	TransportFactory func(cookies RequiredCookies, cfg Config) (Transport, error)
}

// LoadConfig reads Config from the environment, loading the given .env files
// first (or ./.env when none are given). Missing .env files are ignored.
func LoadConfig(envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// resolveCookies normalizes the two cookie inputs into RequiredCookies.
func (c Config) resolveCookies() (RequiredCookies, error) {
	if c.Cookies != nil {
		if err := c.Cookies.Validate(); err != nil {
			return RequiredCookies{}, err
		}
		return *c.Cookies, nil
	}
	if c.CookieString == "" {
		return RequiredCookies{}, newConfigError("cookies", ErrMissingCookie)
	}
	return ParseCookies(c.CookieString)
}

func (c Config) validate() error {
	if c.DeviceToken == "" {
		return newConfigError("deviceToken", ErrMissingDeviceToken)
	}
	if c.TransportFactory == nil && c.TLSServer.URL != "" && c.TLSServer.APIKey == "" {
		return newConfigError("tlsServer.apiKey", ErrMissingTransport)
	}
	return nil
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

func (c Config) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	if p, ok := lookupBrowserProfile(c.Profile); ok && p.UserAgent != "" {
		return p.UserAgent
	}
	return DefaultProfile.UserAgent
}

// newTransport picks the factory, the forwarder or the direct transport, in
// that order.
func (c Config) newTransport(cookies RequiredCookies, logger Logger) (Transport, error) {
	if c.TransportFactory != nil {
		return c.TransportFactory(cookies, c)
	}
	if c.TLSServer.URL != "" {
		return NewForwardTransport(ForwardConfig{
			URL:        c.TLSServer.URL,
			APIKey:     c.TLSServer.APIKey,
			Identifier: c.Profile,
			Timeout:    c.timeout(),
		}, logger), nil
	}

	var proxies *ProxyManager
	if c.ProxyFile != "" {
		pm, err := NewProxyManager(c.ProxyFile)
		if err != nil {
			return nil, newConfigError("proxyFile", err)
		}
		proxies = pm
	}
	return NewDirectTransport(DirectConfig{
		Profile: c.Profile,
		Timeout: c.timeout(),
		Proxies: proxies,
	}, logger)
}
