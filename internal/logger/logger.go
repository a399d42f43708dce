// ===============================
// File: internal/logger/logger.go
// ===============================
package logger

import (
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config задаёт вывод и ротацию логов сервиса.
type Config struct {
	LogFile     string
	MaxSize     int // мегабайты
	MaxBackups  int
	MaxAge      int // дни
	Compress    bool
	Development bool
}

// DefaultConfig возвращает разумные значения для локального запуска.
func DefaultConfig() *Config {
	return &Config{
		LogFile:    "logs/launchpad.log",
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     14,
	}
}

// Logger расширяет функционал zap.Logger контекстными полями движка.
type Logger struct {
	*zap.Logger
	config *Config
}

// New создает логгер с выводом в консоль и в файл с ротацией.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logRotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)

	level := zapcore.InfoLevel
	if cfg.Development {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level),
		zapcore.NewCore(fileEncoder, zapcore.AddSync(logRotator), level),
	)

	return &Logger{
		Logger: zap.New(core,
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
		config: cfg,
	}, nil
}

// WithOperation создаёт логгер конкретной операции с correlation id.
func (l *Logger) WithOperation(operation string) *zap.Logger {
	return l.With(
		zap.String("operation", operation),
		zap.String("correlation_id", uuid.New().String()),
		zap.Time("start_time", time.Now().UTC()),
	)
}

// WithToken добавляет контекст токена к логам.
func (l *Logger) WithToken(tokenID uint64, symbol string) *zap.Logger {
	return l.With(
		zap.Uint64("token_id", tokenID),
		zap.String("symbol", symbol),
	)
}

// WithCaller добавляет идентичность вызывающего.
func (l *Logger) WithCaller(caller string) *zap.Logger {
	return l.With(zap.String("caller", caller))
}

// Sync реализует безопасный вызов Sync: ошибки синка stdout не считаются.
func (l *Logger) Sync() error {
	err := l.Logger.Sync()
	if err != nil && (err.Error() == "sync /dev/stdout: invalid argument" ||
		err.Error() == "sync /dev/stderr: inappropriate ioctl for device") {
		return nil
	}
	return err
}
