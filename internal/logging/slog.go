package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// SlogManager manages slog-based logging for the review core.
type SlogManager struct {
	logger *slog.Logger

	// Dynamic state callbacks, injected after construction. When set, every
	// record carries the current project name and loaded video count.
	GetProjectName func() string
	GetVideoCount  func() int
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system with console output and an optional
// file output. Safe to call again to re-point the file handler.
func (m *SlogManager) Setup(file io.Writer, level string) {
	lvl := parseLevel(level)

	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	handlers = append(handlers, slog.NewTextHandler(os.Stdout, handlerOpts))
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	}

	var root slog.Handler = NewMultiHandler(handlers...)
	root = NewContextHandler(root, m.dynamicAttrs)

	m.logger = slog.New(root)
	m.logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

func (m *SlogManager) dynamicAttrs() []slog.Attr {
	var attrs []slog.Attr
	if m.GetProjectName != nil {
		if name := m.GetProjectName(); name != "" {
			attrs = append(attrs, slog.String("project", name))
		}
	}
	if m.GetVideoCount != nil {
		attrs = append(attrs, slog.Int("videos", m.GetVideoCount()))
	}
	return attrs
}
