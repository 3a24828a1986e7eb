package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomerk/chessmetrics/internal/book"
	"github.com/tomerk/chessmetrics/internal/models"
	"github.com/tomerk/chessmetrics/internal/repository/sqlite"
	"github.com/tomerk/chessmetrics/internal/services"
	"github.com/tomerk/chessmetrics/internal/testutil"
)

const poolPGN = `[Event "Live Chess"]
[Date "2024.03.15"]
[White "me"]
[Black "rival"]
[Result "1-0"]
[WhiteElo "1500"]
[BlackElo "1480"]
[TimeControl "300+2"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 4. b4 1-0
`

func writePoolPGN(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "games.pgn")
	require.NoError(t, os.WriteFile(path, []byte(poolPGN), 0o644))
	return path
}

func TestPoolRunsIngestFileJob(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewGameRepository(db)

	ingest := services.NewIngestService(repo, book.New())
	analysis := services.NewAnalysisService(&testutil.FlatEvaluator{})

	pool := NewPool(1, 4)
	pool.Start(context.Background())

	pool.Submit(&IngestFileJob{
		Ingest:   ingest,
		Analysis: analysis,
		Path:     writePoolPGN(t),
		Username: "me",
	})

	assert.Eventually(t, func() bool {
		return len(analysis.Universe()) == 1
	}, time.Second, 10*time.Millisecond)
	pool.Stop()

	count, err := repo.Count(context.Background(), models.GameFilter{Username: "me"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPoolSurvivesFailingJob(t *testing.T) {
	ingest := services.NewIngestService(nil, book.New())
	analysis := services.NewAnalysisService(&testutil.FlatEvaluator{})

	pool := NewPool(1, 4)
	pool.Start(context.Background())

	pool.Submit(&IngestFileJob{
		Ingest:   ingest,
		Analysis: analysis,
		Path:     filepath.Join(t.TempDir(), "missing.pgn"),
		Username: "me",
	})
	pool.Submit(&IngestFileJob{
		Ingest:   ingest,
		Analysis: analysis,
		Path:     writePoolPGN(t),
		Username: "me",
	})

	// The failed job is logged and dropped; the next one still runs.
	assert.Eventually(t, func() bool {
		return len(analysis.Universe()) == 1
	}, time.Second, 10*time.Millisecond)
	pool.Stop()
}

func TestWarmupJobAnalyzesUniverse(t *testing.T) {
	ingest := services.NewIngestService(nil, book.New())
	ev := &testutil.FlatEvaluator{}
	analysis := services.NewAnalysisService(ev)

	res, err := ingest.IngestText(context.Background(), poolPGN, "me")
	require.NoError(t, err)
	analysis.AddGames(res.Games...)

	job := &WarmupJob{Analysis: analysis}
	require.NoError(t, job.Run(context.Background()))
	// 7 plies mean 8 positions to evaluate.
	assert.Equal(t, 8, ev.Calls)

	// A second warmup finds everything analyzed and costs no engine calls.
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 8, ev.Calls)
}
