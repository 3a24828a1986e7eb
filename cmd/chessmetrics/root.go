package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomerk/chessmetrics/internal/book"
	"github.com/tomerk/chessmetrics/internal/engine"
	"github.com/tomerk/chessmetrics/internal/logger"
	"github.com/tomerk/chessmetrics/internal/services"
)

var (
	// Global flags.
	username       string
	bookDir        string
	stockfishPath  string
	stockfishDepth int
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "chessmetrics",
	Short: "Analyze your chess games with engine-backed accuracy metrics",
	Long: `Chessmetrics ingests PGN game archives, classifies openings against
a reference book, and runs every position through a UCI engine to
measure centipawn loss per move.

Examples:
  # Summarize a PGN archive
  chessmetrics analyze games.pgn --username magnus

  # Rank your most played openings
  chessmetrics openings games/ --username magnus --top 10

  # Export analyzed games as CSV
  chessmetrics export games.pgn --username magnus --out games.csv`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "username the games belong to")
	rootCmd.PersistentFlags().StringVar(&bookDir, "book-dir", "", "directory with additional opening book TSV files")
	rootCmd.PersistentFlags().StringVar(&stockfishPath, "stockfish", "stockfish", "path to the UCI engine binary")
	rootCmd.PersistentFlags().IntVar(&stockfishDepth, "depth", 12, "engine search depth")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func setupLogger() {
	level := logger.INFO
	if verbose {
		level = logger.DEBUG
	}
	logger.SetDefault(logger.New(logger.WithLevel(level)))
}

func loadBook() (*book.Book, error) {
	bk := book.New()
	if bookDir != "" {
		if err := bk.LoadDir(bookDir); err != nil {
			return nil, err
		}
	}
	return bk, nil
}

// ingestPath loads a PGN file or a directory of PGN files into a fresh
// analysis service backed by the configured engine. The caller must
// Close the returned evaluator.
func ingestPath(ctx context.Context, path string) (*services.AnalysisService, *services.IngestResult, engine.Evaluator, error) {
	bk, err := loadBook()
	if err != nil {
		return nil, nil, nil, err
	}

	ingest := services.NewIngestService(nil, bk)

	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, nil, err
	}

	var result *services.IngestResult
	if info.IsDir() {
		result, err = ingest.IngestDir(ctx, path, username)
	} else {
		result, err = ingest.IngestFile(ctx, path, username)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	eval, err := engine.NewUCI(stockfishPath, stockfishDepth)
	if err != nil {
		return nil, nil, nil, err
	}

	analysis := services.NewAnalysisService(eval)
	analysis.AddGames(result.Games...)
	return analysis, result, eval, nil
}
