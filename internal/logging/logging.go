// Package logging adapts logrus to the key/value Logger used by the store and
// to the printf-style logger badger expects.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger. Its zero value is not usable; call New.
type Logger struct {
	entry *logrus.Entry
}

// Options configure New.
type Options struct {
	Output io.Writer
	// Level is a logrus level name; empty means info.
	Level string
	// JSON switches from the text formatter to JSON lines.
	JSON bool
}

// New builds a logger writing to opts.Output (stderr by default).
func New(opts Options) (*Logger, error) {
	l := logrus.New()
	l.Out = opts.Output
	if l.Out == nil {
		l.Out = os.Stderr
	}
	if opts.JSON {
		l.Formatter = &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	} else {
		l.Formatter = &logrus.TextFormatter{
			DisableLevelTruncation: true,
			PadLevelText:           true,
			TimestampFormat:        "2006/01/02 15:04:05",
			FullTimestamp:          true,
		}
	}
	if opts.Level != "" {
		level, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		l.Level = level
	}
	return &Logger{entry: logrus.NewEntry(l)}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := logrus.New()
	l.Out = io.Discard
	return &Logger{entry: logrus.NewEntry(l)}
}

// With returns a logger that adds the given key/value pairs to every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{entry: l.entry.WithFields(fields(args))}
}

// Logrus exposes the underlying logger.
func (l *Logger) Logrus() *logrus.Logger { return l.entry.Logger }

func (l *Logger) Debug(msg string, args ...any) { l.entry.WithFields(fields(args)).Debug(msg) }
func (l *Logger) Info(msg string, args ...any)  { l.entry.WithFields(fields(args)).Info(msg) }
func (l *Logger) Warn(msg string, args ...any)  { l.entry.WithFields(fields(args)).Warn(msg) }
func (l *Logger) Error(msg string, args ...any) { l.entry.WithFields(fields(args)).Error(msg) }

// Badger's logger interface.

func (l *Logger) Errorf(format string, args ...any)   { l.entry.Errorf(trimNewline(format), args...) }
func (l *Logger) Warningf(format string, args ...any) { l.entry.Warnf(trimNewline(format), args...) }
func (l *Logger) Infof(format string, args ...any)    { l.entry.Debugf(trimNewline(format), args...) }
func (l *Logger) Debugf(format string, args ...any)   { l.entry.Tracef(trimNewline(format), args...) }

func trimNewline(format string) string {
	return strings.TrimSuffix(format, "\n")
}

// fields turns alternating key/value pairs into logrus fields. A trailing key
// without a value is kept under "!BADKEY".
func fields(args []any) logrus.Fields {
	f := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			f["!BADKEY"] = key
			break
		}
		v := args[i+1]
		if err, isErr := v.(error); isErr {
			v = err.Error()
		}
		f[key] = v
	}
	return f
}
