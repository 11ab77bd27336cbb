package logger

import (
	"context"
	"log/slog"
	"runtime"
)

// sourceHandler attaches the caller's file:line to records at selected
// levels only. The wrapped handler must have AddSource disabled.
type sourceHandler struct {
	handler slog.Handler
	levels  map[slog.Level]bool
}

func newSourceHandler(h slog.Handler, levels ...slog.Level) slog.Handler {
	m := make(map[slog.Level]bool, len(levels))
	for _, l := range levels {
		m[l] = true
	}
	return &sourceHandler{handler: h, levels: m}
}

func (h *sourceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *sourceHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.levels[r.Level] && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		r.AddAttrs(slog.Any(slog.SourceKey, &slog.Source{
			Function: f.Function,
			File:     f.File,
			Line:     f.Line,
		}))
	}
	return h.handler.Handle(ctx, r)
}

func (h *sourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sourceHandler{handler: h.handler.WithAttrs(attrs), levels: h.levels}
}

func (h *sourceHandler) WithGroup(name string) slog.Handler {
	return &sourceHandler{handler: h.handler.WithGroup(name), levels: h.levels}
}
