package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application's JSON logger at the given level
// ("debug", "info", "warn", "error"; unknown levels fall back to info).
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	// Keep attribute keys consistent across services.
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// MaskRollNo hides all but the first three characters of a roll number.
func MaskRollNo(rollNo string) string {
	if len(rollNo) <= 3 {
		return "***"
	}
	return rollNo[:3] + "***"
}

// RollNo is a zap field carrying a masked roll number.
func RollNo(rollNo string) zap.Field {
	return zap.String("roll_no", MaskRollNo(rollNo))
}
