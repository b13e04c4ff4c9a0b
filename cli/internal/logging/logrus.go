// Package logging adapts logrus to the log.Logger interface the library
// logs through.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/grafana/microgit/log"
)

// New returns a log.Logger backed by logrus, writing to stderr at the given
// level (debug, info, warn, error).
func New(level string) log.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.WarnLevel
	}
	l.SetLevel(parsed)

	return &logrusLogger{l: l}
}

type logrusLogger struct {
	l *logrus.Logger
}

func (a *logrusLogger) Debug(msg string, keysAndValues ...any) {
	a.l.WithFields(fields(keysAndValues)).Debug(msg)
}

func (a *logrusLogger) Info(msg string, keysAndValues ...any) {
	a.l.WithFields(fields(keysAndValues)).Info(msg)
}

func (a *logrusLogger) Warn(msg string, keysAndValues ...any) {
	a.l.WithFields(fields(keysAndValues)).Warn(msg)
}

func (a *logrusLogger) Error(msg string, keysAndValues ...any) {
	a.l.WithFields(fields(keysAndValues)).Error(msg)
}

// fields pairs up alternating keys and values. A trailing key without a
// value is kept with a nil value rather than dropped.
func fields(keysAndValues []any) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if i+1 < len(keysAndValues) {
			f[key] = keysAndValues[i+1]
		} else {
			f[key] = nil
		}
	}
	return f
}
