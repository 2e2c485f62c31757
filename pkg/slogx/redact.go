package slogx

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Redaction is the replacement written over redacted values.
const Redaction = "***"

// DefaultRedactFields are the attr keys obfuscated when no explicit list is
// configured. They cover the credential material this module handles plus
// the classic PII fields.
var DefaultRedactFields = []string{
	"email",
	"password",
	"new_password",
	"token",
	"session_token",
	"reset_token",
}

// messageSeparator delimits `field=value` segments inside log messages.
const messageSeparator = ";"

// RedactingHandler wraps another slog.Handler and obfuscates sensitive
// values before they are emitted: attrs whose key matches a configured
// field are replaced wholesale, and `field=value` segments inside the
// message text are rewritten.
type RedactingHandler struct {
	inner   slog.Handler
	fields  map[string]struct{}
	pattern *regexp.Regexp
}

// NewRedactingHandler wraps inner so the given fields never appear in
// output. With no fields it degrades to a transparent wrapper.
func NewRedactingHandler(inner slog.Handler, fields ...string) *RedactingHandler {
	h := &RedactingHandler{
		inner:  inner,
		fields: make(map[string]struct{}, len(fields)),
	}
	if len(fields) > 0 {
		quoted := make([]string, len(fields))
		for i, f := range fields {
			h.fields[f] = struct{}{}
			quoted[i] = regexp.QuoteMeta(f)
		}
		h.pattern = regexp.MustCompile(
			`(` + strings.Join(quoted, "|") + `)=([^` + messageSeparator + `]*)`,
		)
	}
	return h
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redactMessage(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactAttr(a)
	}
	return &RedactingHandler{
		inner:   h.inner.WithAttrs(redacted),
		fields:  h.fields,
		pattern: h.pattern,
	}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{
		inner:   h.inner.WithGroup(name),
		fields:  h.fields,
		pattern: h.pattern,
	}
}

func (h *RedactingHandler) redactMessage(msg string) string {
	if h.pattern == nil {
		return msg
	}
	return h.pattern.ReplaceAllString(msg, "${1}="+Redaction)
}

func (h *RedactingHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		redacted := make([]slog.Attr, len(members))
		for i, m := range members {
			redacted[i] = h.redactAttr(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}
	if _, ok := h.fields[a.Key]; ok {
		return slog.String(a.Key, Redaction)
	}
	return a
}
