package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// elapsed tracks the start time of an operation and logs completion with the
// elapsed duration. It is meant for sequential use by a single goroutine.
type elapsed struct {
	logger *log.Logger
	start  time.Time
}

func newElapsed(l *log.Logger) *elapsed {
	return &elapsed{logger: l, start: time.Now()}
}

// done logs msg at debug level with the elapsed time and key/value pairs.
// Example output: "computed layout nodes=5000 duration=1.234s"
func (e *elapsed) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "duration", time.Since(e.start).Round(time.Millisecond))
	e.logger.Debug(msg, keyvals...)
}
