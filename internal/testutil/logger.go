// Package testutil holds helpers shared by the shelf test suites.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Log is an slog sink for one test. Records at or above its level go to
// t.Log, so they show only on failure or with -v, and their messages are
// kept for assertions.
type Log struct {
	t     testing.TB
	level slog.Level

	mu   sync.Mutex
	msgs []string
}

// NewLog returns a Log that keeps records at level and above.
func NewLog(t testing.TB, level slog.Level) *Log {
	t.Helper()
	return &Log{t: t, level: level}
}

// NewTestLogger returns a debug-level logger writing to t.Log.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return NewLog(t, slog.LevelDebug).Logger()
}

// Logger returns a logger feeding l.
func (l *Log) Logger() *slog.Logger {
	return slog.New(&logHandler{log: l})
}

// Messages returns the messages recorded so far, oldest first.
func (l *Log) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

// Count returns how many records carried msg.
func (l *Log) Count(msg string) int {
	n := 0
	for _, m := range l.Messages() {
		if m == msg {
			n++
		}
	}
	return n
}

type logHandler struct {
	log    *Log
	attrs  []slog.Attr
	prefix string
}

func (h *logHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.log.level
}

func (h *logHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})

	h.log.mu.Lock()
	h.log.msgs = append(h.log.msgs, r.Message)
	h.log.mu.Unlock()

	h.log.t.Helper()
	h.log.t.Log(b.String())
	return nil
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(a.Value.Resolve().String())
}
