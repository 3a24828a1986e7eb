// Package repository defines the data-access interfaces over persisted games.
package repository

import (
	"context"

	"github.com/tomerk/chessmetrics/internal/models"
)

// GameRepository handles persisted game metadata.
type GameRepository interface {
	Get(ctx context.Context, id int64) (*models.GameRecord, error)
	List(ctx context.Context, filter models.GameFilter) ([]models.GameRecord, error)
	Count(ctx context.Context, filter models.GameFilter) (int, error)
	Insert(ctx context.Context, rec models.GameRecord) (int64, error)
	InsertBatch(ctx context.Context, recs []models.GameRecord) (int, error)
	Openings(ctx context.Context, username string) ([]string, error)
	Opponents(ctx context.Context, username string) ([]string, error)
}
