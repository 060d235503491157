package kindle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// DefaultForwardIdentifier is the client identifier sent to the forwarder
// when none is configured.
const DefaultForwardIdentifier = "chrome_133"

// ForwardConfig configures a ForwardTransport.
type ForwardConfig struct {
	// URL is the forwarder base URL; requests go to URL + "/api/forward".
	URL        string
	APIKey     string
	Identifier string
	Timeout    time.Duration

	// Client replaces the default fasthttp client.
	Client *fasthttp.Client
}

// ForwardTransport sends requests through a remote TLS forwarding service
// (a tls-client-api deployment). The forwarder performs the impersonated
// request and reports the result as JSON.
type ForwardTransport struct {
	endpoint   string
	apiKey     string
	identifier string
	sessionID  string
	timeout    time.Duration
	client     *fasthttp.Client
	logger     Logger
}

type forwardPayload struct {
	TLSClientIdentifier string            `json:"tlsClientIdentifier"`
	RequestURL          string            `json:"requestUrl"`
	RequestMethod       string            `json:"requestMethod"`
	RequestBody         string            `json:"requestBody,omitempty"`
	Headers             map[string]string `json:"headers"`
	HeaderOrder         []string          `json:"headerOrder,omitempty"`
	SessionID           string            `json:"sessionId"`
	FollowRedirects     bool              `json:"followRedirects"`
	TimeoutSeconds      int               `json:"timeoutSeconds"`
	WithDebug           bool              `json:"withDebug"`
}

type forwardResponse struct {
	ID           string              `json:"id"`
	SessionID    string              `json:"sessionId"`
	Status       int                 `json:"status"`
	Target       string              `json:"target"`
	Body         string              `json:"body"`
	Headers      map[string][]string `json:"headers"`
	Cookies      map[string]string   `json:"cookies"`
	UsedProtocol string              `json:"usedProtocol"`
}

// NewForwardTransport creates a forwarder transport. Every transport gets its
// own forwarder session id so the forwarder keeps one connection and cookie
// jar per client.
func NewForwardTransport(cfg ForwardConfig, logger Logger) *ForwardTransport {
	if logger == nil {
		logger = NopLogger{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	identifier := cfg.Identifier
	if identifier == "" {
		identifier = DefaultForwardIdentifier
	}
	client := cfg.Client
	if client == nil {
		client = &fasthttp.Client{
			Name:         "kindle",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		}
	}

	return &ForwardTransport{
		endpoint:   strings.TrimRight(cfg.URL, "/") + "/api/forward",
		apiKey:     cfg.APIKey,
		identifier: identifier,
		sessionID:  uuid.NewString(),
		timeout:    timeout,
		client:     client,
		logger:     logger,
	}
}

func (f *ForwardTransport) Request(ctx context.Context, r *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	method := r.Method
	if method == "" {
		method = fasthttp.MethodGet
	}

	payload, err := json.Marshal(forwardPayload{
		TLSClientIdentifier: f.identifier,
		RequestURL:          r.URL,
		RequestMethod:       method,
		RequestBody:         r.Body,
		Headers:             r.Headers,
		HeaderOrder:         r.HeaderOrder,
		SessionID:           f.sessionID,
		TimeoutSeconds:      int(f.timeout / time.Second),
		WithDebug:           false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal forward payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("x-api-key", f.apiKey)
	req.SetBody(payload)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(f.timeout + 5*time.Second)
	}
	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		f.logger.Log("%s %s -> forwarder error: %v", method, logPath(r.URL), err)
		return nil, fmt.Errorf("tls forwarder request failed: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("tls forwarder returned status %d: %s", resp.StatusCode(), truncate(string(resp.Body()), 200))
	}

	var fr forwardResponse
	if err := json.Unmarshal(resp.Body(), &fr); err != nil {
		return nil, fmt.Errorf("failed to parse forwarder response: %w", err)
	}

	// The forwarder reports its own failures (dial errors, bad identifiers)
	// with status 0 and the error text as body.
	if fr.Status == 0 {
		f.logger.Log("%s %s -> forwarder error: %s", method, logPath(r.URL), fr.Body)
		return nil, fmt.Errorf("tls forwarder: %s", fr.Body)
	}
	f.logger.Log("%s %s -> %d (%s)", method, logPath(r.URL), fr.Status, fr.UsedProtocol)

	cookies := fr.Cookies
	if cookies == nil {
		cookies = map[string]string{}
	}
	return &Response{
		Status:  fr.Status,
		Headers: fr.Headers,
		Body:    fr.Body,
		Cookies: cookies,
		Target:  fr.Target,
	}, nil
}

// SessionID returns the forwarder session id.
func (f *ForwardTransport) SessionID() string {
	return f.sessionID
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
