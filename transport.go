package kindle

import (
	"context"
	"net/http"
	"strings"
)

// Request is a single logical request handed to a Transport. Headers are sent
// in HeaderOrder when the transport supports ordered headers.
type Request struct {
	Method      string
	URL         string
	Headers     map[string]string
	HeaderOrder []string
	Body        string
}

// Response is the transport-neutral result of a Request. Cookies holds the
// cookies set by the response as a flat name -> value map.
type Response struct {
	Status  int                 `json:"status"`
	Headers map[string][]string `json:"headers"`
	Body    string              `json:"body"`
	Cookies map[string]string   `json:"cookies"`
	Target  string              `json:"target"`
}

// Header returns the first value of the named header, matched case-insensitively.
func (r *Response) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// Transport sends one request through something that looks like a browser to
// the remote end. Implementations own timeouts and any connection-level retry.
type Transport interface {
	Request(ctx context.Context, req *Request) (*Response, error)
}

// InitialSession is what a SessionInitializer hands back in place of the
// default bootstrap sequence.
type InitialSession struct {
	Books      []BookData
	SessionID  string
	DeviceInfo DeviceInfo
}

// SessionInitializer is an optional Transport capability. When the configured
// transport implements it, bootstrap delegates the catalog request and device
// token exchange to it.
type SessionInitializer interface {
	InitializeSession(ctx context.Context, deviceToken string, headers map[string]string) (*InitialSession, error)
}

const signInPath = "/ap/signin"

// isSignInRedirect detects Amazon bouncing the request to its login page,
// either as a redirect or as the final target after redirects were followed.
func isSignInRedirect(resp *Response) bool {
	if strings.Contains(resp.Header("Location"), signInPath) {
		return true
	}
	if strings.Contains(resp.Target, signInPath) {
		return true
	}
	return false
}

// requestHeaderOrder is the order browsers send the headers we set.
var requestHeaderOrder = []string{
	"accept",
	"accept-language",
	"cookie",
	"user-agent",
	"x-amzn-sessionid",
	"x-adp-session-token",
}

func newGetRequest(url string, headers map[string]string) *Request {
	return &Request{
		Method:      http.MethodGet,
		URL:         url,
		Headers:     headers,
		HeaderOrder: requestHeaderOrder,
	}
}
