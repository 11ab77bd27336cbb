// Package logger builds the process-wide slog logger: tint on a terminal,
// plain text or JSON elsewhere, with source locations on warnings and errors.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

type Options struct {
	Level  string // debug | info | warn | error
	Format string // text | json
	// Output defaults to os.Stdout.
	Output io.Writer
	// SourceAll adds source locations at every level, not only warn/error.
	SourceAll bool
}

// New returns a logger plus the LevelVar controlling it, so callers can
// change verbosity at runtime.
func New(opts Options) (*slog.Logger, *slog.LevelVar, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	lv := new(slog.LevelVar)
	lv.Set(level)

	w := opts.Output
	if w == nil {
		w = os.Stdout
	}

	sourceLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	if opts.SourceAll {
		sourceLevels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	}

	var base slog.Handler
	switch strings.ToLower(opts.Format) {
	case "json":
		base = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})
	case "", "text":
		base = tint.NewHandler(w, &tint.Options{
			Level:      lv,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(w),
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == "error" && a.Value.Kind() == slog.KindAny {
					if err, ok := a.Value.Any().(error); ok {
						return tint.Err(err)
					}
				}
				return a
			},
		})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	return slog.New(newSourceHandler(base, sourceLevels...)), lv, nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
