package observability

import (
	"fmt"

	domainconfig "brainbrowser/domain/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// levelOff is above every zap level, so nothing is enabled
const levelOff = zapcore.FatalLevel + 1

// Logging bundles the process logger with its runtime level and the
// interaction history teed off it
type Logging struct {
	Logger       *zap.Logger
	Level        zap.AtomicLevel
	Interactions *InteractionLog
}

// NewLogging builds the process logger. Production gets the JSON encoder;
// everything else gets the development console encoder.
func NewLogging(environment, level string) (*Logging, error) {
	atom := zap.NewAtomicLevel()
	if err := atom.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = atom

	interactions := NewInteractionLog(atom, InteractionCapacity)
	logger, err := cfg.Build(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, interactions)
	}))
	if err != nil {
		return nil, err
	}

	return &Logging{Logger: logger, Level: atom, Interactions: interactions}, nil
}

// SetLevel applies an engine log level; LogLevelNone silences the logger
func (l *Logging) SetLevel(level domainconfig.LogLevel) {
	l.Level.SetLevel(ZapLevel(level))
}

// ZapLevel maps an engine log level onto zap
func ZapLevel(level domainconfig.LogLevel) zapcore.Level {
	switch level {
	case domainconfig.LogLevelDebug:
		return zapcore.DebugLevel
	case domainconfig.LogLevelInfo:
		return zapcore.InfoLevel
	case domainconfig.LogLevelWarn:
		return zapcore.WarnLevel
	case domainconfig.LogLevelError:
		return zapcore.ErrorLevel
	case domainconfig.LogLevelNone:
		return levelOff
	default:
		return zapcore.DebugLevel
	}
}
