package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roti-erp/internal/auth"
	"roti-erp/internal/config"
	"roti-erp/internal/database"
	"roti-erp/internal/logger"
	"roti-erp/internal/metrics"
	"roti-erp/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	logger.SetGlobal(zl)
	zl.Info("Starting roti-erp", cfg.LogFields()...)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DB, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("Failed to migrate database", zap.Error(err))
	}
	if cfg.DB.Seed {
		if err := database.Seed(db, cfg.DB, zl); err != nil {
			zl.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	var users auth.Authenticator
	switch cfg.AuthStrategy {
	case "fixture":
		users = auth.NewFixtureAuthenticator(auth.DefaultFixtures()...)
		zl.Warn("Using fixture accounts; every role logs in with password \"password\"")
	default:
		users = auth.NewPasswordAuthenticator(db)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := server.NewRouter(server.Deps{
		Config:        cfg,
		DB:            db,
		Log:           zl,
		Metrics:       metrics.New(registry),
		Gatherer:      registry,
		Authenticator: users,
		Tokens:        auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL),
		WebDir:        "./web",
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("Server starting", zap.String("addr", srv.Addr), zap.String("base_url", cfg.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	zl.Info("Server exited")
}
