// Package logger provides the leveled logging interface used across the
// cropper. Implementations write through the standard library log package.
package logger

import (
	"fmt"
	"log"
	"os"
)

// LogLevel - log level type
type LogLevel int

const (
	// LogDebug - DEBUG log level
	LogDebug LogLevel = iota

	// LogInfo - INFO log level
	LogInfo

	// LogError - ERROR log level (does not call os.Exit!)
	LogError
)

var logLevelPrefix = map[LogLevel]string{
	LogDebug: "DEBUG",
	LogInfo:  "INFO",
	LogError: "ERROR",
}

// ILogger - Generic logger interface
type ILogger interface {
	Printf(level LogLevel, format string, a ...interface{})
	Debugf(format string, a ...interface{})
	Infof(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}

// StdLogger writes leveled lines to a *log.Logger, dropping anything below
// its configured level
type StdLogger struct {
	out      *log.Logger
	logLevel LogLevel
}

// NewStdOutLogger logs to stdout
func NewStdOutLogger(level LogLevel) *StdLogger {
	return &StdLogger{out: log.New(os.Stdout, "", log.LstdFlags), logLevel: level}
}

// NewStdErrLogger logs to stderr
func NewStdErrLogger(level LogLevel) *StdLogger {
	return &StdLogger{out: log.New(os.Stderr, "", log.LstdFlags), logLevel: level}
}

// New wraps an existing *log.Logger
func New(out *log.Logger, level LogLevel) *StdLogger {
	return &StdLogger{out: out, logLevel: level}
}

func (l *StdLogger) Printf(level LogLevel, format string, a ...interface{}) {
	if level < l.logLevel {
		return
	}
	txt := logLevelPrefix[level] + ": " + fmt.Sprintf(format, a...)
	l.out.Println(txt)
}
func (l *StdLogger) Debugf(format string, a ...interface{}) {
	l.Printf(LogDebug, format, a...)
}
func (l *StdLogger) Infof(format string, a ...interface{}) {
	l.Printf(LogInfo, format, a...)
}
func (l *StdLogger) Errorf(format string, a ...interface{}) {
	l.Printf(LogError, format, a...)
}

func (l *StdLogger) SetLogLevel(level LogLevel) {
	l.logLevel = level
}
func (l *StdLogger) GetLogLevel() LogLevel {
	return l.logLevel
}

// NullLogger - For mocking out in tests
type NullLogger struct {
}

func (l *NullLogger) Printf(level LogLevel, format string, a ...interface{}) {}
func (l *NullLogger) Debugf(format string, a ...interface{})                 {}
func (l *NullLogger) Infof(format string, a ...interface{})                  {}
func (l *NullLogger) Errorf(format string, a ...interface{})                 {}
