// Package sqlite implements the repository interfaces on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/Masterminds/squirrel"

	"github.com/tomerk/chessmetrics/internal/db"
	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/logger"
	"github.com/tomerk/chessmetrics/internal/models"
	"github.com/tomerk/chessmetrics/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const gameColumns = `id, username, opponent, played_as, result, user_elo, opponent_elo,
       played_at, time_control, opening_name, variation, ply_left_book, moves, dedupe_key, created_at`

type gameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a GameRepository backed by SQLite.
func NewGameRepository(database *sql.DB) repository.GameRepository {
	return &gameRepository{db: database}
}

func scanGame(row interface{ Scan(...any) error }) (models.GameRecord, error) {
	var g models.GameRecord
	err := row.Scan(&g.ID, &g.Username, &g.Opponent, &g.PlayedAs, &g.Result,
		&g.UserElo, &g.OpponentElo, &g.PlayedAt, &g.TimeControl,
		&g.OpeningName, &g.Variation, &g.PlyLeftBook, &g.Moves, &g.DedupeKey, &g.CreatedAt)
	return g, err
}

func (r *gameRepository) Get(ctx context.Context, id int64) (*models.GameRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("getting game: id=%d", id)

	row := r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("game", id)
		}
		log.Error("failed to get game: %v", err)
		return nil, err
	}
	return &g, nil
}

func applyFilter(query squirrel.SelectBuilder, filter models.GameFilter) squirrel.SelectBuilder {
	if filter.Username != "" {
		query = query.Where(squirrel.Eq{"username": filter.Username})
	}
	if filter.Opponent != "" {
		query = query.Where(squirrel.Eq{"opponent": filter.Opponent})
	}
	if filter.Result != "" {
		query = query.Where(squirrel.Eq{"result": filter.Result})
	}
	if filter.OpeningName != "" {
		query = query.Where(squirrel.Eq{"opening_name": filter.OpeningName})
	}
	if filter.TimeControl != "" {
		query = query.Where(squirrel.Eq{"time_control": filter.TimeControl})
	}
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"played_at": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"played_at": *filter.To})
	}
	return query
}

func (r *gameRepository) List(ctx context.Context, filter models.GameFilter) ([]models.GameRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")

	query := applyFilter(sqlBuilder.Select(
		"id", "username", "opponent", "played_as", "result", "user_elo", "opponent_elo",
		"played_at", "time_control", "opening_name", "variation", "ply_left_book",
		"moves", "dedupe_key", "created_at",
	).From("games"), filter).OrderBy("played_at ASC, id ASC")

	limit := filter.Limit
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, err
	}
	defer rows.Close()

	var games []models.GameRecord
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			log.Error("failed to scan game row: %v", err)
			return nil, err
		}
		games = append(games, g)
	}
	log.Debug("found %d games", len(games))
	return games, rows.Err()
}

func (r *gameRepository) Count(ctx context.Context, filter models.GameFilter) (int, error) {
	query := applyFilter(sqlBuilder.Select("COUNT(*)").From("games"), filter)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count)
	return count, err
}

const insertGameSQL = `
INSERT INTO games (
    username, opponent, played_as, result, user_elo, opponent_elo,
    played_at, time_control, opening_name, variation, ply_left_book, moves, dedupe_key
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(dedupe_key) DO NOTHING
`

func (r *gameRepository) Insert(ctx context.Context, g models.GameRecord) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("inserting game: opponent=%s, opening=%s", g.Opponent, g.OpeningName)

	res, err := r.db.ExecContext(ctx, insertGameSQL,
		g.Username, g.Opponent, g.PlayedAs, g.Result, g.UserElo, g.OpponentElo,
		g.PlayedAt, g.TimeControl, g.OpeningName, g.Variation, g.PlyLeftBook, g.Moves, g.DedupeKey)
	if err != nil {
		log.Error("failed to insert game: %v", err)
		return 0, err
	}
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		return id, nil
	}
	var id int64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM games WHERE dedupe_key = ?`, g.DedupeKey).Scan(&id)
	return id, err
}

// InsertBatch inserts the records in one transaction, skipping duplicates.
// Returns the number of rows actually inserted.
func (r *gameRepository) InsertBatch(ctx context.Context, recs []models.GameRecord) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("batch inserting %d games", len(recs))

	if len(recs) == 0 {
		return 0, nil
	}

	inserted := 0
	err := db.Tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertGameSQL)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, g := range recs {
			res, err := stmt.ExecContext(ctx,
				g.Username, g.Opponent, g.PlayedAs, g.Result, g.UserElo, g.OpponentElo,
				g.PlayedAt, g.TimeControl, g.OpeningName, g.Variation, g.PlyLeftBook, g.Moves, g.DedupeKey)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("batch insert failed: %v", err)
		return 0, err
	}
	log.Info("inserted %d of %d games (%d duplicates skipped)", inserted, len(recs), len(recs)-inserted)
	return inserted, nil
}

func (r *gameRepository) Openings(ctx context.Context, username string) ([]string, error) {
	return r.distinct(ctx, "opening_name", username)
}

func (r *gameRepository) Opponents(ctx context.Context, username string) ([]string, error) {
	return r.distinct(ctx, "opponent", username)
}

func (r *gameRepository) distinct(ctx context.Context, column, username string) ([]string, error) {
	sqlStr, args, err := sqlBuilder.Select("DISTINCT " + column).From("games").
		Where(squirrel.Eq{"username": username}).OrderBy(column).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
