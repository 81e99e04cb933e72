package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Swind/go-longtask/core"
)

// NewLogger builds the zap-backed core.Logger described by the log section.
func (c LogConfig) NewLogger() (*core.ZapLogger, error) {
	level := zapcore.DebugLevel
	if c.Level != "" {
		if err := level.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, fmt.Errorf("%w: log.level %q: %v", ErrInvalidConfig, c.Level, err)
		}
	}

	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return core.NewZapLogger(l), nil
}
