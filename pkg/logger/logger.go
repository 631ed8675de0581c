// Package logger wraps logrus with context-aware helpers that attach request
// and client identifiers to every entry.
package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/roguepikachu/vanish/pkg/ctxutil"
	"github.com/sirupsen/logrus"
)

// InitLogging configures the logger. It sets the log level from the LOG_LEVEL environment variable if present.
func InitLogging() {
	logrus.Info("....Configuring Logger....")
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "debug" // default if not set
	}
	setLogLevel(logLevel)
	logFormat := os.Getenv("LOG_FORMAT")
	if strings.ToLower(logFormat) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	case "fatal":
		logrus.SetLevel(logrus.FatalLevel)
	case "panic":
		logrus.SetLevel(logrus.PanicLevel)
	default:
		logrus.Infof("NO/Invalid LOGGING_LEVEL is provided, defaulting logging level to DEBUG, provided loggingLevel=[%s]", level)
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.Infof("Setting logging level to %s", level)
}

// entry returns a logrus entry carrying the correlation ids found in ctx.
func entry(ctx context.Context) *logrus.Entry {
	e := logrus.NewEntry(logrus.StandardLogger())
	if rid := ctxutil.RequestID(ctx); rid != "" {
		e = e.WithField("request_id", rid)
	}
	if cid := ctxutil.ClientID(ctx); cid != "" {
		e = e.WithField("client_id", cid)
	}
	return e
}

// With returns an entry with the given fields plus correlation ids from ctx.
func With(ctx context.Context, fields map[string]any) *logrus.Entry {
	e := entry(ctx)
	if len(fields) == 0 {
		return e
	}
	return e.WithFields(logrus.Fields(fields))
}

// WithField is the single-field form of With.
func WithField(ctx context.Context, key string, value any) *logrus.Entry {
	return entry(ctx).WithField(key, value)
}

// Sprintf formats like fmt.Sprintf but leaves an empty format empty.
func Sprintf(format string, args ...any) string {
	if format == "" {
		return ""
	}
	return fmt.Sprintf(format, args...)
}

func Info(ctx context.Context, msg string, args ...interface{}) {
	entry(ctx).Infof(msg, args...)
}

func Debug(ctx context.Context, msg string, args ...any) {
	entry(ctx).Debugf(msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	entry(ctx).Errorf(msg, args...)
}

func Trace(ctx context.Context, msg string, args ...any) {
	entry(ctx).Tracef(msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	entry(ctx).Warnf(msg, args...)
}

func Fatal(ctx context.Context, msg string, args ...any) {
	entry(ctx).Fatalf(msg, args...)
}
