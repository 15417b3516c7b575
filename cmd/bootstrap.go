package cmd

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bootstrapLogger logs to stderr before the configured logger exists, and serves the link CLI.
// bootstrapLogger 启动阶段与命令行工具使用的控制台日志器
var bootstrapLogger = newBootstrapLogger(os.Getenv("LOG_LEVEL"), os.Getenv("DEBUG") != "")

// newBootstrapLogger 级别取 LOG_LEVEL，设置 DEBUG 时强制 debug
func newBootstrapLogger(level string, debug bool) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl, err := zapcore.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zapcore.InfoLevel
	}
	if debug {
		lvl = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), lvl)
	return zap.New(core, zap.AddCaller()).Named("bootstrap")
}
