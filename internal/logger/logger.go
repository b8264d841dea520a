// Package logger builds the JSON line logger shared by every component.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TimestampField is the key holding the event time in every log line.
const TimestampField = "ts"

// New returns a logger writing one JSON object per line to w, timestamped in loc.
func New(w io.Writer, level string, loc *time.Location) zerolog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	zerolog.TimestampFieldName = TimestampField
	zerolog.MessageFieldName = "msg"
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFunc = func() time.Time { return time.Now().In(loc) }

	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

// NewStdout is New writing to os.Stdout.
func NewStdout(level string, loc *time.Location) zerolog.Logger {
	return New(os.Stdout, level, loc)
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
