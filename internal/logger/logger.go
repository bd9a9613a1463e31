package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger configured from the environment. LOG_ENV (or
// APP_ENV) set to "production" selects the JSON production encoder; LOG_LEVEL
// overrides the default level either way.
func New() (*zap.Logger, error) {
	env := os.Getenv("LOG_ENV")
	if env == "" {
		env = os.Getenv("APP_ENV")
	}

	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.Level = zap.NewAtomicLevelAt(levelFromEnv(zapcore.InfoLevel))
		return cfg.Build(
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
			zap.Fields(zap.String("service", "ficcboard-backend")),
		)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(levelFromEnv(zapcore.DebugLevel))
	return cfg.Build(zap.AddCaller())
}

func levelFromEnv(fallback zapcore.Level) zapcore.Level {
	raw := os.Getenv("LOG_LEVEL")
	if raw == "" {
		return fallback
	}
	level, err := zapcore.ParseLevel(raw)
	if err != nil {
		return fallback
	}
	return level
}
