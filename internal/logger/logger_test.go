package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceHandler_Levels(t *testing.T) {
	tests := []struct {
		name       string
		log        func(*slog.Logger)
		levels     []slog.Level
		wantSource bool
	}{
		{"info hidden", func(l *slog.Logger) { l.Info("m") }, []slog.Level{slog.LevelWarn, slog.LevelError}, false},
		{"warn shown", func(l *slog.Logger) { l.Warn("m") }, []slog.Level{slog.LevelWarn, slog.LevelError}, true},
		{"error shown", func(l *slog.Logger) { l.Error("m") }, []slog.Level{slog.LevelWarn, slog.LevelError}, true},
		{"info when requested", func(l *slog.Logger) { l.Info("m") }, []slog.Level{slog.LevelInfo}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newSourceHandler(slog.NewTextHandler(&buf, nil), tt.levels...)
			tt.log(slog.New(h))

			out := buf.String()
			assert.Equal(t, tt.wantSource, strings.Contains(out, "source="), out)
			if tt.wantSource {
				assert.Contains(t, out, "logger_test.go")
			}
		})
	}
}

func TestSourceHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := newSourceHandler(slog.NewTextHandler(&buf, nil), slog.LevelError)
	l := slog.New(h).With("component", "access").WithGroup("scan")

	l.Error("boom", "uid", "M001")

	out := buf.String()
	assert.Contains(t, out, "component=access")
	assert.Contains(t, out, "scan.uid=M001")
	assert.Contains(t, out, "source=")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, lv, err := New(Options{Level: "warn", Format: "json", Output: &buf})
	require.NoError(t, err)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept", "uid", "M002")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "M002", rec["uid"])
	assert.Contains(t, rec, "source")

	buf.Reset()
	lv.Set(slog.LevelDebug)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestNew_TextHasNoColourOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Options{Output: &buf})
	require.NoError(t, err)

	l.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, _, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}
