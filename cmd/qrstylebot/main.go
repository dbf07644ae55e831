package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrPunder/qrstyle/internal/config"
	"github.com/MrPunder/qrstyle/internal/configurator"
	"github.com/MrPunder/qrstyle/internal/logger"
	"github.com/MrPunder/qrstyle/internal/storage"
	"github.com/MrPunder/qrstyle/internal/telegrambot"
)

func main() {
	// Парсим флаги командной строки
	var (
		configPath string
		token      string
	)

	flag.StringVar(&configPath, "c", "cmd/qrstyleserver/config.yaml", "config path")
	flag.StringVar(&token, "token", "", "telegram bot token")
	flag.Parse()

	// Загружаем конфигурацию
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем логгер
	zapLogger, err := logger.NewZapLogger(conf.Log)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	zapLogger.Info("Инициализирован логгер")

	// Флаг важнее конфигурации
	if token == "" {
		token = conf.Telegram.Token
	}
	if token == "" {
		zapLogger.Error("Не указан токен бота. Используйте флаг -token или telegram.token")
		os.Exit(1)
	}

	builder, err := configurator.NewBuilder(conf, zapLogger)
	if err != nil {
		zapLogger.Errorf("Ошибка подготовки рендерера: %v", err)
		os.Exit(1)
	}

	store := storage.NewMemstorage(conf.Sessions.Size, conf.Sessions.TTL, builder.Build, zapLogger)
	store.StartJanitor(time.Minute)
	zapLogger.Info("Хранилище сессий инициализировано")

	bot, err := telegrambot.NewBot(telegrambot.Config{
		Token:       token,
		PollTimeout: conf.Telegram.PollTimeout,
	}, store, zapLogger)
	if err != nil {
		zapLogger.Errorf("Ошибка создания бота: %v", err)
		os.Exit(1)
	}

	if err := bot.Start(); err != nil {
		zapLogger.Errorf("Ошибка запуска бота: %v", err)
		os.Exit(1)
	}

	zapLogger.Info("Бот запущен")

	// Ожидаем сигнала завершения
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLogger.Info("Получен сигнал завершения")

	if err := bot.Stop(); err != nil {
		zapLogger.Errorf("Ошибка остановки бота: %v", err)
	}
	store.Close()

	zapLogger.Info("Бот остановлен")
	_ = zapLogger.Close()
}
