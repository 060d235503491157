package kindle

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionHeaders(t *testing.T) {
	s := newSession(RequiredCookies{AtMain: "a", SessionID: "b", UbidMain: "c", XMain: "d"}, "ua")

	h := s.Headers()
	assert.Equal(t, "at-main=a; session-id=b; ubid-main=c; x-main=d", h["cookie"])
	assert.Equal(t, "ua", h["user-agent"])
	assert.Equal(t, acceptLanguage, h["accept-language"])
	assert.NotContains(t, h, "x-amzn-sessionid")
	assert.NotContains(t, h, "x-adp-session-token")

	s.SetSessionID("s1")
	s.SetADPSessionToken("adp")
	h = s.Headers()
	assert.Equal(t, "s1", h["x-amzn-sessionid"])
	assert.Equal(t, "adp", h["x-adp-session-token"])

	pinned := s.HeadersFor("s0")
	assert.Equal(t, "s0", pinned["x-amzn-sessionid"])
	assert.Equal(t, "adp", pinned["x-adp-session-token"])
}

func TestSessionHeadersAreCopies(t *testing.T) {
	s := newSession(RequiredCookies{}, "ua")
	h := s.Headers()
	h["user-agent"] = "changed"
	assert.Equal(t, "ua", s.Headers()["user-agent"])
}

type bufferLogger struct {
	buf bytes.Buffer
}

func (b *bufferLogger) Log(format string, args ...any) {
	fmt.Fprintf(&b.buf, format+"\n", args...)
}

func TestWithClientID(t *testing.T) {
	assert.Equal(t, NopLogger{}, withClientID(nil))
	assert.Equal(t, NopLogger{}, withClientID(NopLogger{}))

	base := &bufferLogger{}
	logger := withClientID(base)
	logger.Log("GET %s -> %d", "/kindle-library/search", 200)

	line := base.buf.String()
	assert.Regexp(t, `^\[[0-9a-f-]{8}\] GET /kindle-library/search -> 200\n$`, line)
}
