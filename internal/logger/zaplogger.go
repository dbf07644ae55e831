package logger

import (
	"io"
	"os"
	"time"

	"github.com/MrPunder/qrstyle/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ZapLogger struct {
	logZap *zap.SugaredLogger
	logger *zap.Logger // Сохраняем ссылку на оригинальный логгер для вызова Sync()
}

// NewZapLogger создает логгер; пустой путь означает вывод в stdout/stderr
func NewZapLogger(conf config.LogConfig) (*ZapLogger, error) {
	logLevel, err := zap.ParseAtomicLevel(conf.Level)
	if err != nil {
		return nil, err
	}
	// Настройка энкодера
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	stdCore := zapcore.NewCore(
		encoder,
		zapcore.AddSync(rotatingWriter(conf, conf.Path, os.Stdout)),
		logLevel,
	)

	errCore := zapcore.NewCore(
		encoder,
		zapcore.AddSync(rotatingWriter(conf, conf.ErrorPath, os.Stderr)),
		zap.ErrorLevel,
	)

	// Объединение ядер
	core := zapcore.NewTee(stdCore, errCore)

	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	return &ZapLogger{
		logZap: logger.Sugar(),
		logger: logger,
	}, nil
}

// rotatingWriter настраивает ротацию логов через lumberjack
func rotatingWriter(conf config.LogConfig, path string, fallback io.Writer) io.Writer {
	if path == "" {
		return fallback
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    conf.MaxSize,    // Максимальный размер в МБ
		MaxBackups: conf.MaxBackups, // Максимальное количество файлов бэкапа
		MaxAge:     conf.MaxAge,     // Максимальный возраст в днях
		Compress:   conf.Compress,   // Сжимать ротированные файлы
	}
}

// RequestLog makes request log
func (logger *ZapLogger) RequestLog(method string, path string) {
	logger.logZap.Infow("incoming request",
		"method", method,
		"path", path,
	)
}

// Info logs message at info level
func (logger *ZapLogger) Info(mes string) {
	logger.logZap.Info(mes)
}

func (logger *ZapLogger) Infof(str string, arg ...any) {
	logger.logZap.Infof(str, arg...)
}

func (logger *ZapLogger) Errorf(str string, arg ...any) {
	logger.logZap.Errorf(str, arg...)
}

// Error logs message at error level
func (logger *ZapLogger) Error(mes string) {
	logger.logZap.Error(mes)
}

// Debug logs message at debug level
func (logger *ZapLogger) Debug(mes string) {
	logger.logZap.Debug(mes)
}

// Debugf logs formatted message at debug level
func (logger *ZapLogger) Debugf(str string, arg ...any) {
	logger.logZap.Debugf(str, arg...)
}

// ResponseLog makes response log
func (logger *ZapLogger) ResponseLog(status int, size int, duration time.Duration) {
	logger.logZap.Infow("Send response with",
		"status", status,
		"size", size,
		"time", duration.String(),
	)
}

// Close закрывает логгер, сбрасывая все буферизованные логи
func (logger *ZapLogger) Close() error {
	return logger.logger.Sync()
}
