package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where and how much the logger writes
type Options struct {
	// Dir holds the log files, "logs" when empty
	Dir          string
	ConsoleLevel string
	FileLevel    string
	// JSONConsole writes JSON to stdout instead of coloured text, for the long-running server
	JSONConsole bool
}

// InitLogger initializes a zap logger with console and file outputs.
// env is used to prefix the log file name. The returned path is the log file.
func InitLogger(env string, opts Options) (*zap.Logger, string, error) {
	consoleLevel, err := parseLevel(opts.ConsoleLevel, zapcore.InfoLevel)
	if err != nil {
		return nil, "", err
	}
	fileLevel, err := parseLevel(opts.FileLevel, zapcore.DebugLevel)
	if err != nil {
		return nil, "", err
	}

	logsDir := opts.Dir
	if logsDir == "" {
		logsDir = "logs"
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logFileName := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", env, timestamp))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}

	// File output is always JSON
	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.TimeKey = "timestamp"
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	fileEncoder := zapcore.NewJSONEncoder(fileEncoderConfig)

	var consoleEncoder zapcore.Encoder
	if opts.JSONConsole {
		consoleEncoder = zapcore.NewJSONEncoder(fileEncoderConfig)
	} else {
		consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
		consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(consoleEncoderConfig)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), consoleLevel),
		zapcore.NewCore(fileEncoder, zapcore.AddSync(logFile), fileLevel),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("env", env))

	return logger, logFileName, nil
}

func parseLevel(level string, fallback zapcore.Level) (zapcore.Level, error) {
	if level == "" {
		return fallback, nil
	}
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return fallback, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}
