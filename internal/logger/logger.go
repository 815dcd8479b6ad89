// Package logger owns the zap loggers shared across the app: one for
// application events and one for API errors. Both default to no-ops so
// packages can log before Init runs (tests never call Init).
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	appLogger   = zap.NewNop()
	errorLogger = zap.NewNop()
)

func App() *zap.Logger   { return appLogger }
func Error() *zap.Logger { return errorLogger }

func encoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "msg"
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	cfg.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(level.String())
	}
	cfg.CallerKey = ""
	cfg.StacktraceKey = ""
	return zapcore.NewConsoleEncoder(cfg)
}

// Init points the loggers at date-stamped files under logDir.
func Init(logDir string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	date := time.Now().Format("2006-01-02")

	appFile, err := os.OpenFile(
		filepath.Join(logDir, fmt.Sprintf("app_%s.log", date)),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0o644,
	)
	if err != nil {
		return err
	}
	appLogger = zap.New(zapcore.NewCore(encoder(), zapcore.AddSync(appFile), zap.InfoLevel))

	errFile, err := os.OpenFile(
		filepath.Join(logDir, fmt.Sprintf("error_%s.log", date)),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0o644,
	)
	if err != nil {
		return err
	}
	errorLogger = zap.New(zapcore.NewCore(encoder(), zapcore.AddSync(errFile), zap.ErrorLevel))

	return nil
}

// Sync flushes buffered entries; call on shutdown.
func Sync() {
	_ = appLogger.Sync()
	_ = errorLogger.Sync()
}
