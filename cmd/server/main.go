package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elvongray/shipping-labels/internal/config"
	"github.com/elvongray/shipping-labels/internal/handler"
	"github.com/elvongray/shipping-labels/internal/infrastructure/database"
	"github.com/elvongray/shipping-labels/internal/logger"
	"github.com/elvongray/shipping-labels/internal/metrics"
	"github.com/elvongray/shipping-labels/internal/repository"
	"github.com/elvongray/shipping-labels/internal/service"
	"github.com/elvongray/shipping-labels/internal/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration",
			slog.String("error", err.Error()))
	}

	poolConfig := database.PoolConfig{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		Database:          cfg.DBName,
		SSLMode:           cfg.DBSSLMode,
		MaxConns:          cfg.DBMaxConns,
		MinConns:          cfg.DBMinConns,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	}

	if err := database.Migrate(poolConfig, cfg.MigrationsDir); err != nil {
		logger.Fatal("Failed to apply migrations",
			slog.String("error", err.Error()))
	}

	pool, err := database.NewPostgres(context.Background(), poolConfig)
	if err != nil {
		logger.Fatal("Failed to connect to database",
			slog.String("error", err.Error()))
	}
	defer pool.Close()

	poolStatsCollector := metrics.NewPoolStatsCollector(pool)
	poolStatsCollector.Start(15 * time.Second)
	defer poolStatsCollector.Stop()

	jobRepo := repository.NewPostgresJobRepository(pool)
	shipmentRepo := repository.NewPostgresShipmentRepository(pool)
	presetRepo := repository.NewPostgresPresetRepository(pool)

	v := validator.NewValidator()
	verifier := service.NewHeuristicVerifier()

	importService := service.NewImportService(jobRepo, shipmentRepo, verifier, cfg.WorkerPoolSize)
	shipmentService := service.NewShipmentService(shipmentRepo, presetRepo, verifier)
	quoteService := service.NewQuoteService(shipmentRepo)
	purchaseService := service.NewPurchaseService(jobRepo, shipmentRepo)
	presetService := service.NewPresetService(presetRepo, v)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.Handlers{
		Import:   handler.NewImportHandler(importService, purchaseService, cfg.UploadMaxBytes),
		Shipment: handler.NewShipmentHandler(shipmentService, cfg.DefaultPageSize, cfg.MaxPageSize),
		Preset:   handler.NewPresetHandler(presetService),
		Shipping: handler.NewShippingHandler(quoteService),
		Health:   handler.NewHealthHandler(pool),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("Starting server",
			slog.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server",
				slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	logger.Info("Closing import service")
	importService.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error",
			slog.String("error", err.Error()))
	}

	logger.Info("Server exited")
}
