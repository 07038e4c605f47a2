package log

import (
	"io"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	dslog "github.com/grafana/dskit/log"
)

// ParseLevel turns a level name (debug, info, warn, error) into a dskit level.
func ParseLevel(s string) (dslog.Level, error) {
	var l dslog.Level
	err := l.Set(s)
	return l, err
}

// NewLogger returns a leveled logger writing to w. Report output never goes through
// this logger, so w is normally stderr.
func NewLogger(logFormat string, logLevel dslog.Level, w io.Writer) kitlog.Logger {
	writer := kitlog.NewSyncWriter(w)
	logger := dslog.NewGoKitWithWriter(logFormat, writer)

	// use UTC timestamps and skip 5 stack frames.
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.Caller(5))

	// Must put the level filter last for efficiency.
	return level.NewFilter(logger, logLevel.Option)
}
