package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSlogManager_FileOutput(t *testing.T) {
	var buf bytes.Buffer

	m := NewSlogManager()
	m.Setup(&buf, "debug")
	m.Logger().Debug("a debug line", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "a debug line") {
		t.Errorf("expected file output to contain log line, got %q", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected attributes in output, got %q", out)
	}
}

func TestSlogManager_DynamicContext(t *testing.T) {
	var buf bytes.Buffer

	m := NewSlogManager()
	m.GetProjectName = func() string { return "scrim-review" }
	m.GetVideoCount = func() int { return 3 }
	m.Setup(&buf, "info")

	buf.Reset()
	m.Logger().Info("tick")

	out := buf.String()
	if !strings.Contains(out, "project=scrim-review") {
		t.Errorf("expected project attribute, got %q", out)
	}
	if !strings.Contains(out, "videos=3") {
		t.Errorf("expected videos attribute, got %q", out)
	}
}

func TestLogFilePath(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	got := LogFilePath("logs", "vodon", start)
	if !strings.Contains(got, "vodon.20240301_123000.log") {
		t.Errorf("unexpected log file path %q", got)
	}
}
