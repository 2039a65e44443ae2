package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var level = zap.NewAtomicLevelAt(zap.InfoLevel)

// Init replaces the global zap logger. Use zap.L() afterwards.
func Init(environment string) error {
	var cfg zap.Config
	if environment == "development" {
		cfg = zap.NewDevelopmentConfig()
		level.SetLevel(zap.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		level.SetLevel(zap.InfoLevel)
	}
	cfg.Level = level

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("cfg.Build -> %w", err)
	}

	zap.ReplaceGlobals(l)
	return nil
}

// SetLevel changes the level of the global logger at runtime.
func SetLevel(text string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(text)); err != nil {
		return fmt.Errorf("lvl.UnmarshalText -> %w", err)
	}

	if lvl != level.Level() {
		zap.L().Info("log level changed", zap.Stringer("from", level.Level()), zap.Stringer("to", lvl))
		level.SetLevel(lvl)
	}
	return nil
}
