package worker

import (
	"context"

	"github.com/tomerk/chessmetrics/internal/logger"
	"github.com/tomerk/chessmetrics/internal/query"
	"github.com/tomerk/chessmetrics/internal/services"
)

// IngestFileJob parses one PGN file in the background and feeds the parsed
// games into the analysis universe.
type IngestFileJob struct {
	Ingest   *services.IngestService
	Analysis *services.AnalysisService
	Path     string
	Username string
}

func (j *IngestFileJob) Name() string { return "ingest_file" }

func (j *IngestFileJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("path", j.Path)

	res, err := j.Ingest.IngestFile(ctx, j.Path, j.Username)
	if err != nil {
		return err
	}
	j.Analysis.AddGames(res.Games...)
	log.Info("ingested %d games, skipped %d", res.Parsed, res.Skipped)
	return nil
}

// WarmupJob drives the lazy engine analysis for the whole universe by
// configuring an unfiltered view, so later queries hit analyzed games.
type WarmupJob struct {
	Analysis *services.AnalysisService
}

func (j *WarmupJob) Name() string { return "analysis_warmup" }

func (j *WarmupJob) Run(ctx context.Context) error {
	view, err := j.Analysis.Query(ctx, query.Criteria{})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("warmed analysis for %d games", view.Size())
	return nil
}
