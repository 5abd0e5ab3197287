package log

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"time"
)

type Level string

const (
	FatalLevel    Level = "fatal"
	ErrorLevel    Level = "error"
	WarningLevel  Level = "warn"
	InfoLevel     Level = "info"
	DebugLevel    Level = "debug"
	TraceLevel    Level = "trace"
	DisabledLevel Level = "disabled"
)

var ranks = map[Level]int{
	TraceLevel:    5,
	DebugLevel:    4,
	InfoLevel:     3,
	WarningLevel:  2,
	ErrorLevel:    1,
	FatalLevel:    0,
	DisabledLevel: -1,
}

// Low severity goes to stdout, warnings and worse to stderr,
// so that service managers can separate the streams.
var (
	stdout = &sink{log.New(os.Stdout, "", 0), InfoLevel}
	stderr = &sink{log.New(os.Stderr, "", 0), InfoLevel}
)

type sink struct {
	out   *log.Logger
	level Level
}

func (s *sink) println(level Level, args ...any) {
	if !ShouldLog(level, s.level) {
		return
	}
	ts := time.Now().Local()
	prefix := []any{
		fmt.Sprintf("%s.%03d", ts.Format("2006-01-02 15:04:05"), ts.Nanosecond()/1000000),
		fmt.Sprintf("- %5s -", level),
	}
	s.out.Println(append(prefix, args...)...)
}

func (s *sink) printf(level Level, format string, args ...any) {
	if !ShouldLog(level, s.level) {
		return
	}
	s.println(level, fmt.Sprintf(format, args...))
}

// SetLevel changes the verbosity of both output streams.
func SetLevel(level Level) error {
	if !ValidLevel(level) {
		return fmt.Errorf("no such log level: %s", level)
	}
	stdout.level = level
	stderr.level = level
	return nil
}

func ValidLevel(level Level) bool {
	_, ok := ranks[level]
	return ok
}

func ShouldLog(level, enabled Level) bool {
	if !ValidLevel(level) || !ValidLevel(enabled) {
		return false
	}
	return ranks[level] <= ranks[enabled]
}

func Log(level Level, msg string, args ...any) {
	if len(args) > 0 {
		logf(level, msg, args...)
		return
	}
	switch level {
	case TraceLevel:
		Trace(msg)
	case DebugLevel:
		Debug(msg)
	case InfoLevel:
		Info(msg)
	case WarningLevel:
		Warn(msg)
	case ErrorLevel:
		Error(msg)
	case FatalLevel:
		Fatal(msg)
	}
}

func logf(level Level, format string, args ...any) {
	switch level {
	case TraceLevel:
		Tracef(format, args...)
	case DebugLevel:
		Debugf(format, args...)
	case InfoLevel:
		Infof(format, args...)
	case WarningLevel:
		Warnf(format, args...)
	case ErrorLevel:
		Errorf(format, args...)
	case FatalLevel:
		Fatalf(format, args...)
	}
}

func Trace(args ...any) {
	stdout.println(TraceLevel, args...)
}

func Debug(args ...any) {
	stdout.println(DebugLevel, args...)
}

func Info(args ...any) {
	stdout.println(InfoLevel, args...)
}

func Warn(args ...any) {
	stderr.println(WarningLevel, args...)
}

func Error(args ...any) {
	stderr.println(ErrorLevel, args...)
}

func Fatal(args ...any) {
	stderr.println(FatalLevel, args...)
	debug.PrintStack()
	os.Exit(1)
}

func Tracef(format string, args ...any) {
	stdout.printf(TraceLevel, format, args...)
}

func Debugf(format string, args ...any) {
	stdout.printf(DebugLevel, format, args...)
}

func Infof(format string, args ...any) {
	stdout.printf(InfoLevel, format, args...)
}

func Warnf(format string, args ...any) {
	stderr.printf(WarningLevel, format, args...)
}

func Errorf(format string, args ...any) {
	stderr.printf(ErrorLevel, format, args...)
}

func Fatalf(format string, args ...any) {
	stderr.printf(FatalLevel, format, args...)
	debug.PrintStack()
	os.Exit(1)
}

type writeFunc func([]byte) (int, error)

func (fn writeFunc) Write(data []byte) (int, error) {
	return fn(data)
}

// NewLogWriter adapts the logger into an io.Writer, for libraries
// that insist on writing to one.
func NewLogWriter(level Level) io.Writer {
	return writeFunc(func(data []byte) (int, error) {
		Log(level, "%s", data)
		return len(data), nil
	})
}

// DebugError prints an error and each wrapped cause on its own line.
func DebugError(err error) {
	indent := 1

	Debug(err.Error())

	for {
		if err = errors.Unwrap(err); err == nil {
			break
		}

		Debugf("| %d: %s", indent, err.Error())
		indent += 1
	}
}
