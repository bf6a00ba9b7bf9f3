package core

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.SugaredLogger

// loggerConfig is the development config when verbose, otherwise a console
// production config at info level. Both use colored levels and short times.
func loggerConfig(verbose bool) zap.Config {
	config := zap.NewDevelopmentConfig()
	if !verbose {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		config.Encoding = "console"
		config.Sampling = nil
	}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	config.DisableStacktrace = !verbose
	return config
}

// InitLogger installs the global logger and routes the std logger to it.
func InitLogger(verbose bool) {
	l, err := loggerConfig(verbose).Build()
	if err != nil {
		panic(err)
	}
	SetLogger(l)
}

// SetLogger replaces the global logger
func SetLogger(l *zap.Logger) {
	zap.ReplaceGlobals(l)
	zap.RedirectStdLog(l)
	logger = l.Sugar()
}

// GetLogger returns the global sugared logger
func GetLogger() *zap.SugaredLogger {
	if logger == nil {
		InitLogger(false)
	}
	return logger
}

// WithSession tags a logger with the conversation it works on.
func WithSession(l *zap.SugaredLogger, sessionID string) *zap.SugaredLogger {
	return l.With("session", sessionID)
}

// WithRequest tags a logger with a front-end request and its session.
func WithRequest(l *zap.SugaredLogger, requestID, sessionID string) *zap.SugaredLogger {
	return WithSession(l.With("request_id", requestID), sessionID)
}

// WithTool tags a logger with one tool invocation.
func WithTool(l *zap.SugaredLogger, toolName, toolCallID string) *zap.SugaredLogger {
	return l.With(
		"tool", toolName,
		"tool_call_id", toolCallID,
	)
}

// LogDuration logs the duration of an operation at debug level.
// Usage: defer LogDuration(logger, "operation_name", time.Now())
func LogDuration(l *zap.SugaredLogger, operation string, start time.Time) {
	duration := time.Since(start)
	l.With(
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	).Debugf("Completed %s in %v", operation, duration)
}
