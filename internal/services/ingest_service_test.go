package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomerk/chessmetrics/internal/book"
	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/game"
	"github.com/tomerk/chessmetrics/internal/models"
	"github.com/tomerk/chessmetrics/internal/repository/sqlite"
	"github.com/tomerk/chessmetrics/internal/testutil"
)

const samplePGN = `[Event "Live Chess"]
[Date "2024.03.15"]
[White "me"]
[Black "rival"]
[Result "1-0"]
[WhiteElo "1500"]
[BlackElo "1480"]
[TimeControl "300+2"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 4. b4 1-0

[Event "Live Chess"]
[Date "2024.03.16"]
[White "rival"]
[Black "me"]
[Result "0-1"]
[WhiteElo "1481"]
[BlackElo "1501"]
[TimeControl "300+2"]

1. e4 1-0
`

func TestIngestTextParsesAndSkipsAtrophied(t *testing.T) {
	svc := NewIngestService(nil, book.New())

	res, err := svc.IngestText(context.Background(), samplePGN, "me")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Parsed)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Games, 1)

	g := res.Games[0]
	assert.Equal(t, game.White, g.UserColor())
	assert.Equal(t, "rival", g.Opponent())
	assert.Equal(t, "Italian Game: Evans Gambit", g.Name())
}

func TestIngestTextRejectsWrongUsername(t *testing.T) {
	svc := NewIngestService(nil, book.New())

	_, err := svc.IngestText(context.Background(), samplePGN, "somebody")
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
}

func TestIngestTextEmptyUsername(t *testing.T) {
	svc := NewIngestService(nil, book.New())

	_, err := svc.IngestText(context.Background(), samplePGN, " ")
	require.Error(t, err)
	assert.True(t, errors.IsContract(err))
}

func TestIngestTextPersistsRecords(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewGameRepository(db)
	svc := NewIngestService(repo, book.New())

	ctx := context.Background()
	res, err := svc.IngestText(ctx, samplePGN, "me")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	// Re-ingesting the same file inserts nothing new.
	res, err = svc.IngestText(ctx, samplePGN, "me")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)

	recs, err := repo.List(ctx, models.GameFilter{Username: "me"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Italian Game", recs[0].OpeningName)
	assert.Equal(t, "Evans Gambit", recs[0].Variation)
	assert.Equal(t, "white", recs[0].PlayedAs)
}

func TestIngestFileRejectsNonPGNExtension(t *testing.T) {
	svc := NewIngestService(nil, book.New())

	_, err := svc.IngestFile(context.Background(), "games.txt", "me")
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
}

func TestIngestDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "march.pgn"), []byte(samplePGN), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("junk"), 0o644))

	svc := NewIngestService(nil, book.New())
	res, err := svc.IngestDir(context.Background(), dir, "me")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Parsed)

	_, err = svc.IngestDir(context.Background(), t.TempDir(), "me")
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
}
