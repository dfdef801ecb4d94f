package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"matchin/internal/api"
	"matchin/internal/api/handlers"
	"matchin/internal/service"
	"matchin/pkg/config"
	"matchin/pkg/logger"

	"go.uber.org/zap"
)

// @title Matchin Upload API
// @version 1.0
// @description Relays invoice and receipt-note documents to the matching workflow webhook

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting matchin relay",
		zap.String("default_environment", string(cfg.Relay.DefaultEnvironment)),
		zap.Duration("forward_timeout", cfg.Relay.ForwardTimeout),
	)

	relayService := service.NewRelayService(&cfg.Relay, appLogger)
	docService := service.NewDocumentService(relayService, appLogger)

	uploadHandler := handlers.NewUploadHandler(docService, relayService, appLogger)

	app := api.SetupRouter(&cfg.Server, uploadHandler, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
