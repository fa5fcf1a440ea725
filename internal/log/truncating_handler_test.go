package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestTruncatingHandler_ClipsLongValues tests value clipping.
func TestTruncatingHandler_ClipsLongValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{
			name:  "short value is kept",
			value: "Einstein",
			want:  "Einstein",
		},
		{
			name:  "value at limit is kept",
			value: "0123456789",
			want:  "0123456789",
		},
		{
			name:  "long value is clipped",
			value: "0123456789abcdef",
			want:  "0123456789...(6 more bytes)",
		},
		{
			name:  "clip respects rune boundaries",
			value: "ééééééé", // 14 bytes
			want:  "ééééé...(4 more bytes)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewTruncatingHandler(slog.NewJSONHandler(&buf, nil), 10))
			logger.Info("msg", "value", tt.value)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to decode log line: %v", err)
			}
			if got := entry["value"]; got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestTruncatingHandler_Groups tests clipping inside groups and WithAttrs.
func TestTruncatingHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewTruncatingHandler(slog.NewTextHandler(&buf, nil), 4))

	logger.With("page", "abcdefgh").WithGroup("article").Info("loaded",
		slog.Group("body", "markup", "<div>long</div>"),
		"links", 42,
	)

	out := buf.String()
	for _, want := range []string{
		`page="abcd...(4 more bytes)"`,
		`article.body.markup="<div...(11 more bytes)"`,
		"article.links=42",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestNewTruncatingHandler_Defaults(t *testing.T) {
	t.Parallel()

	h := NewTruncatingHandler(nil, 0)
	if h.handler == nil {
		t.Error("expected default handler")
	}
	if h.maxLen != DefaultMaxValueLen {
		t.Errorf("expected default limit %d, got %d", DefaultMaxValueLen, h.maxLen)
	}
}

// TestNewLogger tests logger level selection.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("quiet logger drops info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Info("hidden")
		logger.Warn("shown")

		if strings.Contains(buf.String(), "hidden") {
			t.Error("info should be filtered without verbose")
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Error("warn should be logged")
		}
	})

	t.Run("verbose logger emits debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)
		logger.Debug("details", "markup", strings.Repeat("x", 1000))

		out := buf.String()
		if !strings.Contains(out, "details") {
			t.Error("debug should be logged in verbose mode")
		}
		if !strings.Contains(out, "more bytes") {
			t.Error("long value should be clipped")
		}
	})

	t.Run("json logger", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewJSONLogger(&buf, true).Debug("hello", "n", 1)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if entry["msg"] != "hello" {
			t.Errorf("unexpected entry %v", entry)
		}
	})

	t.Run("discard logger", func(t *testing.T) {
		t.Parallel()

		if Discard().Enabled(t.Context(), slog.LevelError) {
			t.Error("discard logger should not be enabled")
		}
	})
}
