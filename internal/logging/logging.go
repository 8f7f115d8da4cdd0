package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a leveled logger shared by every component.
type Logger struct {
	entry *logrus.Entry
	file  *lumberjack.Logger
}

// New builds a Logger writing to stdout and, when dir is set, to a rotating file in dir.
func New(dir, level string) (*Logger, error) {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	base.SetLevel(ParseLevel(level))

	var file *lumberjack.Logger
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log dir failed: %w", err)
		}
		file = &lumberjack.Logger{
			Filename:   filepath.Join(dir, "sensor-bot.log"),
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		// Output to both file and console
		base.SetOutput(io.MultiWriter(os.Stdout, file))
	} else {
		base.SetOutput(os.Stdout)
	}

	return &Logger{entry: logrus.NewEntry(base), file: file}, nil
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(base)}
}

// ParseLevel maps debug/info/warning/error to a logrus level. Anything else is warning.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// Named returns a child logger tagged with the component name.
func (l *Logger) Named(component string) *Logger {
	return &Logger{entry: l.entry.WithField("component", component), file: l.file}
}

// With returns a child logger carrying an extra field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value), file: l.file}
}

// SetLevel changes the level of the underlying logger and all of its children.
func (l *Logger) SetLevel(level string) {
	l.entry.Logger.SetLevel(ParseLevel(level))
}

// Level reports the current level name.
func (l *Logger) Level() string {
	return l.entry.Logger.GetLevel().String()
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}

func (l *Logger) Infof(msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	l.entry.Warnf(msg, args...)
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	l.entry.Errorf(msg, args...)
}

// Criticalf logs at the highest severity without terminating the process.
func (l *Logger) Criticalf(msg string, args ...interface{}) {
	l.entry.Logf(logrus.FatalLevel, msg, args...)
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
