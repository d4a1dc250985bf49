// Package log wraps a process-wide zap SugaredLogger.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sugar starts as a no-op logger so packages can log before Init runs (tests, tools).
var sugar = zap.NewNop().Sugar()

// Init builds the zap logger from the configured level, encoding and output directory.
func Init(level, format, outputPath string) {
	var zapConfig zap.Config

	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel.SetLevel(zap.InfoLevel)
	}

	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.Encoding = "console"
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Encoding = "json"
	}
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapConfig.Level = logLevel
	zapConfig.OutputPaths = []string{"stdout"}
	if outputPath != "" {
		// stdout plus <outputPath>/mindcare.log
		_ = os.MkdirAll(outputPath, os.ModePerm)
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, outputPath+"/mindcare.log")
	}

	logger, err := zapConfig.Build()
	if err != nil {
		panic(err)
	}
	sugar = logger.Sugar()
}

// Replace swaps the underlying logger, e.g. for zaptest observers.
func Replace(logger *zap.Logger) {
	sugar = logger.Sugar()
}

// Info logs msg at info level.
func Info(msg string) {
	sugar.Info(msg)
}

// Infof logs a formatted message at info level.
func Infof(template string, args ...interface{}) {
	sugar.Infof(template, args...)
}

// Infow logs a message with alternating key/value context.
func Infow(msg string, keysAndValues ...interface{}) {
	sugar.Infow(msg, keysAndValues...)
}

// Debugf logs a formatted message at debug level.
func Debugf(template string, args ...interface{}) {
	sugar.Debugf(template, args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(template string, args ...interface{}) {
	sugar.Warnf(template, args...)
}

// Warnw logs a message at warn level with key/value context.
func Warnw(msg string, keysAndValues ...interface{}) {
	sugar.Warnw(msg, keysAndValues...)
}

// Error logs msg at error level with err attached under the "error" key.
func Error(msg string, err error) {
	sugar.Errorw(msg, "error", err)
}

// Errorf logs a formatted message at error level.
func Errorf(template string, args ...interface{}) {
	sugar.Errorf(template, args...)
}

// Errorw logs a message at error level with key/value context.
func Errorw(msg string, keysAndValues ...interface{}) {
	sugar.Errorw(msg, keysAndValues...)
}

// Fatal logs msg with err and exits the process.
func Fatal(msg string, err error) {
	sugar.Fatalw(msg, "error", err)
}

// Fatalf logs a formatted message and exits the process.
func Fatalf(template string, args ...interface{}) {
	sugar.Fatalf(template, args...)
}

// Sync flushes buffered entries. Call it before the process exits.
func Sync() {
	_ = sugar.Sync()
}
