package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-authgate/activitymap"
	"github.com/sirupsen/logrus"
)

// logrusLogger adapts a logrus entry to authgate.Logger
type logrusLogger struct {
	entry *logrus.Entry
}

var _ authgate.Logger = (*logrusLogger)(nil)

func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

func adaptLogger(logger *logrus.Logger, component string) authgate.Logger {
	return &logrusLogger{entry: logger.WithField("component", component)}
}

func (l *logrusLogger) Debug(msg string, args ...any) {
	l.entry.WithFields(fieldsOf(args)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, args ...any) {
	l.entry.WithFields(fieldsOf(args)).Info(msg)
}

func (l *logrusLogger) Warn(msg string, args ...any) {
	l.entry.WithFields(fieldsOf(args)).Warn(msg)
}

func (l *logrusLogger) Error(msg string, args ...any) {
	l.entry.WithFields(fieldsOf(args)).Error(msg)
}

// fieldsOf turns key/value pairs into logrus fields. A trailing key
// without value is kept under "extra".
func fieldsOf(args []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			fields["extra"] = args[i]
			break
		}
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	return fields
}

// newAuditSink writes activity events as structured log lines
func newAuditSink(logger *logrus.Logger) authgate.ActivitySink {
	entry := logger.WithField("component", "audit")
	return authgate.ActivitySinkFunc(func(_ context.Context, event authgate.ActivityEvent) error {
		entry.WithFields(logrus.Fields(activitymap.Normalize(event).Fields())).Info("activity")
		return nil
	})
}
