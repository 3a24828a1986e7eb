// Package api exposes ingestion and the analytical queries over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomerk/chessmetrics/internal/repository"
	"github.com/tomerk/chessmetrics/internal/services"
	"github.com/tomerk/chessmetrics/internal/worker"
)

type Server struct {
	IngestService   *services.IngestService
	AnalysisService *services.AnalysisService
	GameRepo        repository.GameRepository
	IngestPool      *worker.Pool
	Username        string
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/health", s.handleHealth)

	r.Post("/games/import", s.handleImport)
	r.Post("/games/import-file", s.handleImportFile)
	r.Get("/games", s.handleGames)
	r.Get("/games/export.csv", s.handleExportCSV)

	r.Route("/stats", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/record", s.handleRecord)
		r.Get("/record-by-elo", s.handleRecordByElo)
		r.Get("/openings", s.handleOpenings)
		r.Get("/error-per-move", s.handleErrorPerMove)
		r.Get("/time-per-move", s.handleTimePerMove)
		r.Get("/by-date", s.handleByDate)
		r.Get("/by-time-control", s.handleByTimeControl)
		r.Get("/top-games", s.handleTopGames)
	})

	return r
}
