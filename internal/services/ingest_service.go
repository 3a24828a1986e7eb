// Package services wires the domain layers together: file ingestion into
// game records and the serialized analysis facade used by the API and CLI.
package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomerk/chessmetrics/internal/book"
	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/game"
	"github.com/tomerk/chessmetrics/internal/logger"
	"github.com/tomerk/chessmetrics/internal/models"
	"github.com/tomerk/chessmetrics/internal/pgn"
	"github.com/tomerk/chessmetrics/internal/repository"
)

// IngestResult reports one ingestion run.
type IngestResult struct {
	Games    []*game.Game `json:"-"`
	Parsed   int          `json:"parsed"`
	Skipped  int          `json:"skipped"`
	Inserted int          `json:"inserted"`
}

// IngestService turns raw PGN text into game records and persists their
// metadata. The repository may be nil for purely in-memory use.
type IngestService struct {
	repo repository.GameRepository
	book *book.Book
	log  *logger.Logger
}

// NewIngestService creates an IngestService over the given book.
func NewIngestService(repo repository.GameRepository, bk *book.Book) *IngestService {
	return &IngestService{
		repo: repo,
		book: bk,
		log:  logger.Default().WithPrefix("ingest"),
	}
}

// IngestText parses one file's full text for the given username. The file is
// rejected outright when a record names neither side as the username.
// Atrophied placeholder records are skipped with a notice; any other
// malformed record aborts the run.
func (s *IngestService) IngestText(ctx context.Context, text, username string) (*IngestResult, error) {
	log := logger.FromContext(ctx).WithPrefix("ingest")

	if strings.TrimSpace(username) == "" {
		return nil, errors.NewContractError("username must not be empty")
	}

	records, err := pgn.SplitRecords(text)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{}
	var recs []models.GameRecord
	for i, rec := range records {
		meta, err := pgn.ParseMeta(rec.Tags)
		if err != nil {
			return nil, err
		}

		var userColor game.Color
		switch username {
		case meta.White:
			userColor = game.White
		case meta.Black:
			userColor = game.Black
		default:
			return nil, errors.NewParseError("record %d is not a game of %q (white=%q black=%q)",
				i+1, username, meta.White, meta.Black)
		}

		if pgn.IsAtrophied(rec.Movetext) {
			log.Warn("skipping atrophied record %d against %s", i+1, opponentOf(meta, userColor))
			result.Skipped++
			continue
		}

		norm, err := pgn.Normalize(rec.Movetext, meta.Result)
		if err != nil {
			return nil, err
		}
		g, err := game.New(meta, norm, userColor, s.book)
		if err != nil {
			return nil, err
		}
		result.Games = append(result.Games, g)
		result.Parsed++
		recs = append(recs, toRecord(g, username))
	}

	if s.repo != nil && len(recs) > 0 {
		inserted, err := s.repo.InsertBatch(ctx, recs)
		if err != nil {
			return nil, err
		}
		result.Inserted = inserted
	}

	log.Info("ingested %d games for %s (%d skipped)", result.Parsed, username, result.Skipped)
	return result, nil
}

// IngestFile reads and ingests one .pgn file. Any other extension is a parse
// error.
func (s *IngestService) IngestFile(ctx context.Context, path, username string) (*IngestResult, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pgn") {
		return nil, errors.NewParseError("%s is not a .pgn file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewParseError("cannot read %s: %v", path, err)
	}
	return s.IngestText(ctx, string(data), username)
}

// IngestDir ingests every .pgn file in a directory, merging the results.
func (s *IngestService) IngestDir(ctx context.Context, dir, username string) (*IngestResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewParseError("cannot read directory %s: %v", dir, err)
	}

	merged := &IngestResult{}
	files := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pgn") {
			continue
		}
		res, err := s.IngestFile(ctx, filepath.Join(dir, entry.Name()), username)
		if err != nil {
			return nil, err
		}
		merged.Games = append(merged.Games, res.Games...)
		merged.Parsed += res.Parsed
		merged.Skipped += res.Skipped
		merged.Inserted += res.Inserted
		files++
	}
	if files == 0 {
		return nil, errors.NewParseError("no .pgn files in %s", dir)
	}
	return merged, nil
}

func opponentOf(meta pgn.GameMeta, userColor game.Color) string {
	if userColor == game.White {
		return meta.Black
	}
	return meta.White
}

func toRecord(g *game.Game, username string) models.GameRecord {
	moves := strings.Join(g.Moves(), " ")
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%s|%s", username, g.Opponent(), g.Date(), moves)))
	return models.GameRecord{
		Username:    username,
		Opponent:    g.Opponent(),
		PlayedAs:    g.UserColor().String(),
		Result:      g.Result().String(),
		UserElo:     g.UserElo(),
		OpponentElo: g.OpponentElo(),
		PlayedAt:    g.PlayedAt(),
		TimeControl: g.TimeControl(),
		OpeningName: g.MainOpening(),
		Variation:   g.Variation(),
		PlyLeftBook: g.PlyLeftBook(),
		Moves:       moves,
		DedupeKey:   hex.EncodeToString(sum[:]),
	}
}
