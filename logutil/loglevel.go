package logutil

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseZerologLevel maps a level name to a zerolog level. Unknown names fall
// back to info.
func ParseZerologLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger builds a timestamped logger at level writing to out. Console output
// is human readable; otherwise records are JSON.
func NewLogger(out io.Writer, level string, console bool) zerolog.Logger {
	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339} //nolint:exhaustruct
	}

	return zerolog.New(out).Level(ParseZerologLevel(level)).With().Timestamp().Logger()
}
