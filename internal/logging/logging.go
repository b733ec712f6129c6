// Package logging is a small leveled logger modeled on the call shape
// of the teacher's internal/debug.Logf(format, args...) helper, seen
// throughout its cmd/bd sources but whose own implementation was never
// retrieved in the pack. It adds level gating and optional file
// rotation, neither of which the teacher's single Logf needed.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is a logging severity, ordered low to high.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a settings.yaml / MOSTR_LOG_LEVEL string to a Level,
// defaulting to LevelInfo for anything unrecognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Logger writes leveled, timestamped lines to an underlying writer -
// stderr by default, or a rotated file when Path is configured.
type Logger struct {
	min Level
	out *log.Logger
	// closer is non-nil when out writes to a lumberjack-rotated file,
	// so New's caller can release it on shutdown.
	closer io.Closer
}

// New builds a Logger at the given minimum level. If path is empty,
// output goes to stderr (so a misconfigured log file never becomes a
// startup failure, matching §7's error taxonomy: only signature/key
// errors are fatal). If path is set, output rotates through
// lumberjack with the teacher's own conservative defaults.
func New(minLevel Level, path string) *Logger {
	if path == "" {
		return &Logger{min: minLevel, out: log.New(os.Stderr, "", log.LstdFlags)}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return &Logger{min: minLevel, out: log.New(lj, "", log.LstdFlags), closer: lj}
}

// Close releases the rotated log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level < l.min {
		return
	}
	l.out.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }
