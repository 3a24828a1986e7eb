package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomerk/chessmetrics/internal/api"
	"github.com/tomerk/chessmetrics/internal/book"
	"github.com/tomerk/chessmetrics/internal/config"
	"github.com/tomerk/chessmetrics/internal/db"
	"github.com/tomerk/chessmetrics/internal/engine"
	"github.com/tomerk/chessmetrics/internal/logger"
	"github.com/tomerk/chessmetrics/internal/repository/sqlite"
	"github.com/tomerk/chessmetrics/internal/services"
	"github.com/tomerk/chessmetrics/internal/worker"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log := logger.New(logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	logger.SetDefault(log)

	log.Info("chessmetrics server starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("stockfish_path=%s depth=%d", cfg.StockfishPath, cfg.StockfishDepth)
	log.Debug("ingest_worker_count=%d queue=%d", cfg.IngestWorkerCount, cfg.IngestQueueSize)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	bk := book.New()
	if cfg.BookDir != "" {
		if err := bk.LoadDir(cfg.BookDir); err != nil {
			log.Error("failed to load opening book: %v", err)
			os.Exit(1)
		}
	}

	eval, err := engine.NewUCI(cfg.StockfishPath, cfg.StockfishDepth)
	if err != nil {
		log.Error("failed to start engine: %v", err)
		os.Exit(1)
	}
	defer eval.Close()

	gameRepo := sqlite.NewGameRepository(database.DB)
	ingestService := services.NewIngestService(gameRepo, bk)
	analysisService := services.NewAnalysisService(eval)

	ingestPool := worker.NewPool(cfg.IngestWorkerCount, cfg.IngestQueueSize)

	srv := &api.Server{
		IngestService:   ingestService,
		AnalysisService: analysisService,
		GameRepo:        gameRepo,
		IngestPool:      ingestPool,
		Username:        cfg.Username,
	}

	ctx, cancel := context.WithCancel(context.Background())
	ingestPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Info("received signal %v, shutting down", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}
	ingestPool.Stop()

	log.Info("chessmetrics server stopped")
}
