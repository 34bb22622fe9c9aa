package logger

import (
	"fmt"
	"os"

	"github.com/Payphone-Digital/factbook/internal/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger for environment. Development gets a
// coloured console encoder at debug level, test gets a no-op logger and
// everything else gets JSON at info level.
func New(environment string) (*zap.Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var core zapcore.Core
	switch environment {
	case constants.EnvTest:
		return zap.NewNop(), nil

	case constants.EnvDevelopment:
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core = zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(os.Stdout),
			zapcore.DebugLevel,
		)

	case constants.EnvStaging, constants.EnvProduction:
		// Errors go to stderr as well so container log drivers can split them.
		infoCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.InfoLevel && l < zapcore.ErrorLevel }),
		)
		errorCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.Lock(os.Stderr),
			zapcore.ErrorLevel,
		)
		core = zapcore.NewTee(infoCore, errorCore)

	default:
		return nil, fmt.Errorf("unknown environment %q", environment)
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// LogPanic logs a recovered panic with its stack.
func LogPanic(log *zap.Logger, recovered any) {
	log.Error("Panic recovered",
		zap.Any("panic", recovered),
		zap.Stack("stack"),
	)
}
