package kindle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"testing"
)

const testCookieString = "at-main=Atza%7Ctoken; session-id=111-2222222-3333333; ubid-main=131-1111111-2222222; x-main=xmain%3Dvalue"

// stubTransport answers requests from per-path queues and records every
// request it receives.
type stubTransport struct {
	mu        sync.Mutex
	responses map[string][]*Response
	errs      map[string]error
	requests  []*Request
}

func newStubTransport() *stubTransport {
	return &stubTransport{
		responses: make(map[string][]*Response),
		errs:      make(map[string]error),
	}
}

func (s *stubTransport) on(path string, resps ...*Response) *stubTransport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = append(s.responses[path], resps...)
	return s
}

func (s *stubTransport) fail(path string, err error) *stubTransport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[path] = err
	return s
}

func (s *stubTransport) Request(_ context.Context, req *Request) (*Response, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	if err := s.errs[u.Path]; err != nil {
		return nil, err
	}
	queue := s.responses[u.Path]
	if len(queue) == 0 {
		return nil, fmt.Errorf("unexpected request to %s", req.URL)
	}
	s.responses[u.Path] = queue[1:]
	return queue[0], nil
}

func (s *stubTransport) requestsTo(path string) []*Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Request
	for _, r := range s.requests {
		u, _ := url.Parse(r.URL)
		if u.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *stubTransport) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

const (
	libraryPath     = "/kindle-library/search"
	deviceTokenPath = "/service/web/register/getDeviceToken"
	startReadPath   = "/service/mobile/reader/startReading"
)

func strPtr(s string) *string { return &s }

var (
	sampleBook1 = BookData{
		ASIN:         "B000000001",
		Title:        "The First Book",
		Authors:      []string{"Doe, Jane:"},
		ProductURL:   "https://m.media-amazon.com/images/I/first.jpg",
		WebReaderURL: "https://read.amazon.com/?asin=B000000001",
		ResourceType: "EBOOK",
		OriginType:   "PURCHASE",
	}
	sampleBook2 = BookData{
		ASIN:         "B000000002",
		Title:        "The Second Book",
		Authors:      []string{"Roe, Richard:"},
		ProductURL:   "https://m.media-amazon.com/images/I/second.jpg",
		WebReaderURL: "https://read.amazon.com/?asin=B000000002",
		ResourceType: "EBOOK",
		OriginType:   "KINDLE_UNLIMITED",
	}
	sampleBook3 = BookData{
		ASIN:  "B000000003",
		Title: "The Third Book",
	}
)

func libraryPage(t *testing.T, sessionID string, token *string, books ...BookData) *Response {
	t.Helper()
	if books == nil {
		books = []BookData{}
	}
	body, err := json.Marshal(libraryResponse{ItemsList: books, PaginationToken: token})
	if err != nil {
		t.Fatalf("failed to marshal library page: %v", err)
	}
	return &Response{
		Status:  200,
		Headers: map[string][]string{},
		Body:    string(body),
		Cookies: map[string]string{"session-id": sessionID},
	}
}

func deviceTokenResponse(t *testing.T, token string) *Response {
	t.Helper()
	body, err := json.Marshal(DeviceInfo{
		ClientHashID:       "hash",
		DeviceName:         "Kindle Cloud Reader",
		DeviceSessionToken: token,
		EID:                "eid",
	})
	if err != nil {
		t.Fatalf("failed to marshal device info: %v", err)
	}
	return &Response{Status: 200, Body: string(body), Cookies: map[string]string{}}
}

func signInRedirect() *Response {
	return &Response{
		Status: 302,
		Headers: map[string][]string{
			"Location": {"https://www.amazon.com/ap/signin?openid.return_to=https%3A%2F%2Fread.amazon.com"},
		},
		Body:    "",
		Cookies: map[string]string{},
	}
}

func testConfig(transport Transport) Config {
	return Config{
		CookieString: testCookieString,
		DeviceToken:  "device-token",
		TransportFactory: func(RequiredCookies, Config) (Transport, error) {
			return transport, nil
		},
	}
}

// startSession queues a one-page bootstrap: a default listing with books and
// the device token exchange.
func startSession(t *testing.T, stub *stubTransport, books ...BookData) {
	t.Helper()
	stub.on(libraryPath, libraryPage(t, "session-1", nil, books...))
	stub.on(deviceTokenPath, deviceTokenResponse(t, "adp-token"))
}
