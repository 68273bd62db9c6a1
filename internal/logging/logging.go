// Package logging builds the slog loggers used by the server and the CLI.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"taskboard/internal/config"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a level name to slog.Level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	if level, ok := levels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level
	}
	return slog.LevelInfo
}

// New returns a text or JSON logger writing to w. Records for which
// suppress returns true are dropped.
func New(cfg config.LogConfig, w io.Writer, suppress SuppressFunc) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	if suppress != nil {
		h = NewFilterHandler(h, suppress)
	}
	return slog.New(h)
}

// SuppressFunc decides whether a record is dropped.
type SuppressFunc func(r slog.Record) bool

// SuppressMessages drops records whose message equals one of msgs.
func SuppressMessages(msgs ...string) SuppressFunc {
	set := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		set[m] = struct{}{}
	}
	return func(r slog.Record) bool {
		_, ok := set[r.Message]
		return ok
	}
}

// FilterHandler forwards records to the wrapped handler unless suppressed.
type FilterHandler struct {
	next     slog.Handler
	suppress SuppressFunc
}

func NewFilterHandler(next slog.Handler, suppress SuppressFunc) *FilterHandler {
	return &FilterHandler{next: next, suppress: suppress}
}

func (h *FilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *FilterHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.suppress != nil && h.suppress(r) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *FilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &FilterHandler{next: h.next.WithAttrs(attrs), suppress: h.suppress}
}

func (h *FilterHandler) WithGroup(name string) slog.Handler {
	return &FilterHandler{next: h.next.WithGroup(name), suppress: h.suppress}
}

// Discard returns a logger that writes nothing.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
