package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bike-rental-backend/config"
	"bike-rental-backend/internal/api"
	"bike-rental-backend/internal/db"
	"bike-rental-backend/internal/logging"
	"bike-rental-backend/internal/notification"
	"bike-rental-backend/internal/pricing"
	"bike-rental-backend/internal/rental"
	"bike-rental-backend/internal/store"
	"bike-rental-backend/internal/sweeper"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("configuration loaded", zap.String("path", configPath))

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Warn("VAPID keys are not configured; availability alerts will fail to send")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, logger.Named("store"))

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize,
		gormDB, &webpushOptions, logger.Named("notification"))
	workerPool.Start(ctx)

	engine := pricing.NewEngine(cfg.Pricing.Location, cfg.Pricing.CurrencySymbol)
	rentals := rental.NewService(appStore, engine, workerPool)

	sweeperSvc := sweeper.NewService(cfg.Sweeper, appStore, workerPool, logger.Named("sweeper"))
	go sweeperSvc.Run(ctx)

	handler := api.NewHandler(rentals, appStore, &webpushOptions)
	router := api.NewRouter(handler, cfg.Server, logger.Named("http"))
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown", zap.Error(err))
		return
	}

	logger.Info("server gracefully stopped")
}
