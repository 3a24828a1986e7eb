package services

import (
	"context"
	"sync"

	"github.com/tomerk/chessmetrics/internal/engine"
	"github.com/tomerk/chessmetrics/internal/game"
	"github.com/tomerk/chessmetrics/internal/logger"
	"github.com/tomerk/chessmetrics/internal/query"
)

// AnalysisService owns the query pipeline and serializes access to it. The
// pipeline itself is not reentrant and the engine is a single stateful
// process, so every Configure call runs under one mutex.
type AnalysisService struct {
	mu       sync.Mutex
	analyzer *query.Analyzer
	log      *logger.Logger
}

// NewAnalysisService creates a service around one evaluator instance.
func NewAnalysisService(ev engine.Evaluator) *AnalysisService {
	return &AnalysisService{
		analyzer: query.NewAnalyzer(ev),
		log:      logger.Default().WithPrefix("analysis"),
	}
}

// AddGames extends the game universe.
func (s *AnalysisService) AddGames(games ...*game.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzer.AddGames(games...)
	s.log.Debug("universe now holds %d games", len(s.analyzer.Universe()))
}

// Universe returns all known games.
func (s *AnalysisService) Universe() []*game.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer.Universe()
}

// Query configures the pipeline with the given criteria and returns the
// filtered view, analyzing any not-yet-analyzed game in the working set.
func (s *AnalysisService) Query(ctx context.Context, c query.Criteria) (*query.FilteredView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer.Configure(ctx, c)
}
