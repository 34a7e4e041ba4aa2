package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewWizardLogger creates a named logger that writes errors only, so log
// lines do not interleave with interactive prompt output.
func NewWizardLogger(name string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger.Named(name)
}
