package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xclues/xclues/internal/analytics"
	"github.com/xclues/xclues/internal/api"
	"github.com/xclues/xclues/internal/config"
	"github.com/xclues/xclues/internal/db"
	"github.com/xclues/xclues/internal/logger"
	"github.com/xclues/xclues/internal/repository/sqlite"
	"github.com/xclues/xclues/internal/services"
)

func main() {
	cfg := config.Load()
	if err := config.Validate(cfg); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Xclues Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("genre=%s", cfg.Genre)
	log.Debug("site_name=%s", cfg.SiteName)
	log.Debug("site_domain=%s", cfg.SiteDomain)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Initialize repositories and services
	puzzleRepo := sqlite.NewPuzzleRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)

	puzzleService := services.NewPuzzleService(puzzleRepo)
	statsService := services.NewStatsService(statsRepo)
	gameService := services.NewGameService(puzzleService, statsService, analytics.NewLogSink(), services.SiteInfo{
		Name:   cfg.SiteName,
		Domain: cfg.SiteDomain,
		Genre:  cfg.Genre,
	})

	srv := &api.Server{
		PuzzleService: puzzleService,
		StatsService:  statsService,
		GameService:   gameService,
		Config:        cfg,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("Xclues Server Stopped")
	log.Info("===========================================")
}
