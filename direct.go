package kindle

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
)

// maxProxyRetries limits proxy rotations for a single request that keeps
// failing at the connection level.
const maxProxyRetries = 3

// DirectConfig configures a DirectTransport.
type DirectConfig struct {
	Profile string
	Timeout time.Duration
	Proxies *ProxyManager
}

// DirectTransport impersonates a browser in-process with tls-client. With a
// ProxyManager it goes out through upstream proxies and moves to the next one
// when a connection fails.
type DirectTransport struct {
	mu      sync.Mutex
	client  tls_client.HttpClient
	proxies *ProxyManager
	profile *BrowserProfile
	logger  Logger
}

func NewDirectTransport(cfg DirectConfig, logger Logger) (*DirectTransport, error) {
	profile, ok := lookupBrowserProfile(cfg.Profile)
	if !ok {
		return nil, newConfigError("profile", fmt.Errorf("%w: %s", ErrUnknownProfile, cfg.Profile))
	}
	if logger == nil {
		logger = NopLogger{}
	}

	proxyURL := ""
	if cfg.Proxies != nil {
		proxyURL = cfg.Proxies.Current()
	}

	client, err := newTLSClient(profile.TLSProfile, proxyURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &DirectTransport{
		client:  client,
		proxies: cfg.Proxies,
		profile: profile,
		logger:  logger,
	}, nil
}

// Request sends req, rotating to the next proxy on retryable connection
// errors. Responses of any status are returned without retry.
func (d *DirectTransport) Request(ctx context.Context, req *Request) (*Response, error) {
	attempts := 1
	if d.proxies != nil {
		attempts += min(maxProxyRetries, d.proxies.Count()-1)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := d.do(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !IsRetryableError(err) || attempt == attempts-1 {
			break
		}
		if !d.rotateProxy() {
			break
		}
	}
	return nil, lastErr
}

func (d *DirectTransport) do(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header = toFHTTPHeader(req)

	d.mu.Lock()
	client := d.client
	d.mu.Unlock()

	resp, err := client.Do(httpReq)
	if err != nil {
		d.logger.Log("%s %s -> error: %v", method, httpReq.URL.Path, err)
		return nil, err
	}
	defer resp.Body.Close()
	d.logger.Log("%s %s -> %d", method, httpReq.URL.Path, resp.StatusCode)

	bodyBytes, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: map[string][]string(resp.Header),
		Body:    string(bodyBytes),
		Cookies: responseCookies(resp),
		Target:  req.URL,
	}, nil
}

// rotateProxy switches the existing client to the next proxy, keeping its
// cookie jar. Returns true if rotation succeeded.
func (d *DirectTransport) rotateProxy() bool {
	if d.proxies == nil || d.proxies.Count() < 2 {
		return false
	}

	next := d.proxies.Rotate()
	d.mu.Lock()
	err := d.client.SetProxy(next)
	d.mu.Unlock()
	if err != nil {
		d.logger.Log("Failed to set new proxy: %v", err)
		return false
	}

	d.logger.Log("Rotated proxy: %s", d.proxies.CurrentDisplay())
	return true
}

// Profile returns the browser profile the transport presents.
func (d *DirectTransport) Profile() *BrowserProfile {
	return d.profile
}
