package logger

import (
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Well known event messages.
const (
	MsgJobSpawned     = "job spawned"
	MsgJobStatus      = "job status"
	MsgJobRegistered  = "job registered"
	MsgSignal         = "signal forwarded"
	MsgForegroundExit = "foreground exit"
)

// ParseLevel converts a configuration level name into a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	err := l.UnmarshalText([]byte(strings.ToLower(level)))
	return l, err
}

// NewJSONLinesLogger creates a logger that writes newline delimited JSON
// objects to w. A nil writer discards everything.
func NewJSONLinesLogger(w io.Writer, level string) (*zap.Logger, error) {
	if w == nil {
		return zap.NewNop(), nil
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core), nil
}

// NewSession tags every entry of the returned logger with a fresh session
// ID, which is also returned.
func NewSession(log *zap.Logger) (*zap.Logger, string) {
	sessionID := uuid.New().String()
	return log.With(zap.String("session_id", sessionID)), sessionID
}
