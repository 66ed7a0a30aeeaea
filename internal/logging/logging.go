// Package logging provides the leveled, context-tagged logger used by the
// config loader, authorization client, and both host adapters.
package logging

import (
	"context"
	"io"
	"log/syslog"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tguy-sgnl/sgnl-linux-host/internal/redaction"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	principalKey contextKey = "principal_id"
)

// Logger wraps logrus with the syslog-aligned 8-level scheme spec.md
// defines and redacts secrets from every field before it reaches the sink.
type Logger struct {
	*logrus.Logger
	component string
}

// Level is the syslog-aligned severity scheme: emerg is most severe, debug
// least. logrus has no native 8-level enum, so emerg/alert/crit all map
// onto logrus's PanicLevel/FatalLevel tier — this adapter owns that
// collapsing, not logrus.
type Level string

const (
	LevelEmerg  Level = "emerg"
	LevelAlert  Level = "alert"
	LevelCrit   Level = "crit"
	LevelErr    Level = "err"
	LevelWarn   Level = "warning"
	LevelNotice Level = "notice"
	LevelInfo   Level = "info"
	LevelDebug  Level = "debug"
)

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case LevelEmerg:
		return logrus.PanicLevel
	case LevelAlert, LevelCrit:
		return logrus.FatalLevel
	case LevelErr:
		return logrus.ErrorLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelNotice, LevelInfo:
		return logrus.InfoLevel
	case LevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Destination selects where log lines are written.
type Destination string

const (
	DestinationStderr Destination = "stderr"
	DestinationSyslog Destination = "syslog"
)

// New builds a Logger for component, writing to stderr by default (leaving
// stdout free for the host-visible accept/reject status the sudo adapter
// emits) or to syslog when dest is "syslog" — the only destination a PAM
// module running inside another process's stdio can safely use.
func New(component string, level Level, dest Destination) *Logger {
	logger := logrus.New()
	logger.SetLevel(level.logrusLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})
	logger.SetOutput(resolveOutput(dest))

	return &Logger{Logger: logger, component: component}
}

func resolveOutput(dest Destination) io.Writer {
	if dest == DestinationSyslog {
		writer, err := syslog.New(syslog.LOG_AUTHPRIV|syslog.LOG_INFO, "sgnl")
		if err == nil {
			return writer
		}
		// Fall through to stderr: a host running without a syslog daemon
		// must not lose diagnostics entirely.
	}
	return os.Stderr
}

// WithContext attaches request/principal tags carried on ctx, if present.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("component", l.component)
	if reqID, ok := ctx.Value(requestIDKey).(string); ok && reqID != "" {
		entry = entry.WithField("request_id", reqID)
	}
	if principal, ok := ctx.Value(principalKey).(string); ok && principal != "" {
		entry = entry.WithField("principal_id", principal)
	}
	return entry
}

// WithRequestID returns a context carrying the request identifier that
// internal/requestid generated for this invocation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithPrincipal returns a context carrying the resolved principal for audit
// correlation.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// Debug is a no-op unless the logger's minimum level admits debug; callers
// use it to gate expensive field construction (full request/response
// bodies) that would otherwise always be built even when discarded.
func (l *Logger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	if l.Logger.Level < logrus.DebugLevel {
		return
	}
	l.WithContext(ctx).WithFields(safeFields(fields)).Debug(message)
}

func (l *Logger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(safeFields(fields)).Info(message)
}

func (l *Logger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(safeFields(fields)).Warn(message)
}

func (l *Logger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	entry := l.WithContext(ctx)
	if err != nil {
		entry = entry.WithField("error", redaction.Text(err.Error()))
	}
	entry.WithFields(safeFields(fields)).Error(message)
}

// Audit records an access decision for the host's audit trail. principal_id
// and reason are intentionally not redacted: spec.md requires them visible.
func (l *Logger) Audit(ctx context.Context, action, assetID, result, reason string) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"audit":    true,
		"action":   action,
		"asset_id": assetID,
		"result":   result,
		"reason":   reason,
	}).Info("access decision")
}

func safeFields(fields map[string]interface{}) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for k, v := range fields {
		if s, ok := v.(string); ok {
			out[k] = redaction.Text(s)
			continue
		}
		out[k] = v
	}
	return out
}

// ParseLevel validates a config-supplied log level string against the
// syslog-aligned scheme, defaulting to info on an unrecognized value.
func ParseLevel(raw string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case LevelEmerg, LevelAlert, LevelCrit, LevelErr, LevelWarn, LevelNotice, LevelInfo, LevelDebug:
		return Level(strings.ToLower(strings.TrimSpace(raw)))
	default:
		return LevelInfo
	}
}
