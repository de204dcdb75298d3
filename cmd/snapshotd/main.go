package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/moneerbcm20-rgb/decora-erp/internal/config"
	"github.com/moneerbcm20-rgb/decora-erp/internal/snapshotd"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	dsn := config.GetEnvOrDefault("SNAPSHOTD_DSN", "./data/snapshots.db")
	port := config.GetEnvOrDefault("SNAPSHOTD_PORT", "8082")

	db, err := snapshotd.OpenDB(dsn)
	if err != nil {
		zapLogger.Fatal("Failed to open database", zap.Error(err))
	}

	if os.Getenv("SNAPSHOTD_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := snapshotd.NewServer(db, zapLogger)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		zapLogger.Info("snapshotd starting", zap.String("port", port), zap.String("dsn", dsn))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down snapshotd...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("snapshotd exited")
}
