package kindle

import "sync"

const acceptLanguage = "en-US,en;q=0.9"

// Session holds the cookies and the two tokens every request carries. The
// library session id changes after each catalog request; the adp session
// token is set once during bootstrap.
type Session struct {
	mu              sync.RWMutex
	cookies         RequiredCookies
	userAgent       string
	sessionID       string
	adpSessionToken string
}

func newSession(cookies RequiredCookies, userAgent string) *Session {
	return &Session{cookies: cookies, userAgent: userAgent}
}

func (s *Session) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
}

func (s *Session) SetADPSessionToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adpSessionToken = token
}

func (s *Session) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

func (s *Session) ADPSessionToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adpSessionToken
}

func (s *Session) Cookies() RequiredCookies {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cookies
}

// Headers returns the headers for the next request using the current
// session id.
func (s *Session) Headers() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.headersLocked(s.sessionID)
}

// HeadersFor is Headers with the session id pinned to id. Books use it so
// their requests carry the session id they were listed with.
func (s *Session) HeadersFor(id string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.headersLocked(id)
}

func (s *Session) headersLocked(sessionID string) map[string]string {
	headers := map[string]string{
		"accept":          "application/json, text/plain, */*",
		"accept-language": acceptLanguage,
		"cookie":          s.cookies.String(),
		"user-agent":      s.userAgent,
	}
	if sessionID != "" {
		headers["x-amzn-sessionid"] = sessionID
	}
	if s.adpSessionToken != "" {
		headers["x-adp-session-token"] = s.adpSessionToken
	}
	return headers
}
