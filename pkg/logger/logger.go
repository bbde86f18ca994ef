package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 全局日志实例，InitLogger 之后可用
var Log *zap.Logger

// InitLogger 初始化日志：文件走 JSON 并按大小轮转，控制台走可读格式。
// debug 模式放开 Debug 级别，release 模式控制台只输出 Warn 以上。
func InitLogger(mode string) {
	fileLevel := zap.InfoLevel
	consoleLevel := zap.InfoLevel
	switch mode {
	case "debug":
		fileLevel = zap.DebugLevel
		consoleLevel = zap.DebugLevel
	case "release":
		consoleLevel = zap.WarnLevel
	}

	rotator := &lumberjack.Logger{
		Filename:   "logs/learnhub.log",
		MaxSize:    100, // MB
		MaxBackups: 5,
		MaxAge:     30, // 天
		Compress:   true,
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(rotator), fileLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(os.Stdout), consoleLevel),
	)

	Log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
