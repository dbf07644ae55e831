package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrPunder/qrstyle/internal/config"
	"github.com/MrPunder/qrstyle/internal/configurator"
	"github.com/MrPunder/qrstyle/internal/handlers"
	"github.com/MrPunder/qrstyle/internal/logger"
	"github.com/MrPunder/qrstyle/internal/middleware"
	"github.com/MrPunder/qrstyle/internal/qrserver"
	"github.com/MrPunder/qrstyle/internal/session"
	"github.com/MrPunder/qrstyle/internal/storage"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "c", "", "config path")
	flag.Parse()

	conf, err := config.LoadConfig(configPath)
	if err != nil {
		panic(err)
	}
	log, err := logger.NewZapLogger(conf.Log)
	if err != nil {
		panic(err)
	}
	log.Info("Initialized logger")
	log.Infof("Config parametrs: server=%+v sessions=%+v renderer=%+v", conf.Server, conf.Sessions, conf.Renderer)

	builder, err := configurator.NewBuilder(conf, log)
	if err != nil {
		log.Errorf("Failed to prepare renderer: %v", err)
		panic(err)
	}

	// Живые сессии конфигуратора
	store := storage.NewMemstorage(conf.Sessions.Size, conf.Sessions.TTL, builder.Build, log)
	store.StartJanitor(time.Minute)
	log.Info("Session storage initialized")

	sessions, err := session.NewManager(conf.Auth.SessionSecret, conf.Auth.SessionTTL)
	if err != nil {
		log.Errorf("Failed to init session tokens: %v", err)
		panic(err)
	}
	if conf.Auth.SessionSecret == "" {
		log.Info("Session secret is empty, tokens are valid until restart")
	}

	handler := handlers.NewHandler(log, store, sessions, conf.Style)
	handler.CookieSecure = conf.Auth.CookieSecure
	router := handlers.NewRouter(handler)

	server := qrserver.NewQRServer(conf.Server.RunAddress, router, log)

	hLogger := middleware.NewHTTPLoger(log)
	compressor := middleware.NewGzipCompressor(log)
	tokenAuth := middleware.NewTokenAuth(middleware.TokenAuthConfig{
		APIToken: conf.Auth.APIToken,
		Logger:   log,
	})
	log.Info("Initialized middleware functions")

	server.AddMidleware(tokenAuth.Middleware, compressor.CompressHandler, hLogger.HTTPLogHandler)

	go func() {
		if err := server.RunServer(); err != nil {
			log.Errorf("Server stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Initialized shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Cann't stop server %s", err)
	}

	store.Close()
	log.Info("Sessions closed")

	// stdout не всегда поддерживает Sync, поэтому ошибку только выводим
	if err := log.Close(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
	}
}
