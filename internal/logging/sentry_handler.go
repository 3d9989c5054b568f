package logging

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// SentryHandler forwards records at or above its level to Sentry as
// message events. The request hub is used when the context carries one.
type SentryHandler struct {
	level  slog.Level
	attrs  []slog.Attr
	prefix string
}

func NewSentryHandler(level slog.Level) *SentryHandler {
	return &SentryHandler{level: level}
}

func (h *SentryHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *SentryHandler) Handle(ctx context.Context, record slog.Record) error {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return nil
	}

	event := sentry.NewEvent()
	event.Level = sentryLevel(record.Level)
	event.Message = record.Message
	event.Timestamp = record.Time

	for _, a := range h.attrs {
		addExtra(event, "", a)
	}
	record.Attrs(func(a slog.Attr) bool {
		addExtra(event, h.prefix, a)
		return true
	})

	hub.CaptureEvent(event)
	return nil
}

func (h *SentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &next
}

func (h *SentryHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func addExtra(event *sentry.Event, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			addExtra(event, prefix+a.Key+".", ga)
		}
		return
	}
	if err, ok := v.Any().(error); ok {
		event.Extra[prefix+a.Key] = err.Error()
		return
	}
	event.Extra[prefix+a.Key] = v.Any()
}

func sentryLevel(level slog.Level) sentry.Level {
	switch {
	case level >= slog.LevelError:
		return sentry.LevelError
	case level >= slog.LevelWarn:
		return sentry.LevelWarning
	case level >= slog.LevelInfo:
		return sentry.LevelInfo
	}
	return sentry.LevelDebug
}
