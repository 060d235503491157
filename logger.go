package kindle

import (
	"github.com/google/uuid"
)

// Logger is the minimal printf-style logger used throughout the client.
type Logger interface {
	Log(format string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Log(string, ...any) {}

// prefixLogger tags every line with a short id so that output from several
// clients sharing one writer can be told apart.
type prefixLogger struct {
	id   string
	base Logger
}

func (p *prefixLogger) Log(format string, args ...any) {
	p.base.Log("[%s] "+format, append([]any{p.id}, args...)...)
}

func newClientID() string {
	return uuid.New().String()[:8]
}

func withClientID(base Logger) Logger {
	if base == nil {
		return NopLogger{}
	}
	if _, ok := base.(NopLogger); ok {
		return base
	}
	return &prefixLogger{id: newClientID(), base: base}
}
