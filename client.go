package kindle

import (
	"fmt"
	"strings"
	"time"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

const defaultTimeout = 30 * time.Second

// BrowserProfile bundles a TLS client profile with the headers of the browser
// it imitates.
type BrowserProfile struct {
	Name       string
	TLSProfile profiles.ClientProfile
	UserAgent  string
	SecChUa    string
	Platform   string
}

// DefaultProfile is used when no profile is configured.
var DefaultProfile = Chrome143Profile

// customProfiles are profiles built in this package, checked before the ones
// tls-client ships.
var customProfiles = map[string]*BrowserProfile{
	Chrome143Profile.Name: Chrome143Profile,
}

// lookupBrowserProfile resolves a tls-client style identifier such as
// "chrome_133" or "firefox_132". Profiles from tls-client carry no headers.
func lookupBrowserProfile(name string) (*BrowserProfile, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultProfile, true
	}
	if p, ok := customProfiles[name]; ok {
		return p, true
	}
	if p, ok := profiles.MappedTLSClients[name]; ok {
		return &BrowserProfile{Name: name, TLSProfile: p}, true
	}
	return nil, false
}

// newTLSClient builds an impersonating HTTP client. Redirects are not
// followed so that a sign-in redirect reaches the caller as-is.
func newTLSClient(profile profiles.ClientProfile, proxyURL string, timeout time.Duration) (tls_client.HttpClient, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(timeout / time.Second)),
		tls_client.WithClientProfile(profile),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithNotFollowRedirects(),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
	}
	if proxyURL != "" {
		options = append(options, tls_client.WithProxyUrl(proxyURL))
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tls client: %w", err)
	}
	return client, nil
}
