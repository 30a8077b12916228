package logger

import (
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to writer. Format "console" gives human-readable
// colored lines for terminals; anything else gives JSON for log collectors.
func New(writer io.Writer, level slog.Level, format string) *slog.Logger {
	if strings.EqualFold(format, "console") {
		h := charmlog.NewWithOptions(writer, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
		})
		return slog.New(h)
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				a.Key = "timestamp"
			case slog.LevelKey:
				a.Key = "level"
			case slog.MessageKey:
				a.Key = "message"
			}
			return a
		},
	})
	return slog.New(handler)
}

// Init installs the logger as the slog default.
func Init(writer io.Writer, level slog.Level, format string) {
	slog.SetDefault(New(writer, level, format))
}
