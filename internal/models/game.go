package models

import "time"

// GameRecord is the persisted form of one ingested game: its metadata and
// opening classification. Engine evaluations are deliberately not stored;
// analysis results live only in memory for the process lifetime.
type GameRecord struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Opponent    string    `json:"opponent"`
	PlayedAs    string    `json:"played_as"`
	Result      string    `json:"result"`
	UserElo     int       `json:"user_elo"`
	OpponentElo int       `json:"opponent_elo"`
	PlayedAt    time.Time `json:"played_at"`
	TimeControl string    `json:"time_control"`
	OpeningName string    `json:"opening_name"`
	Variation   string    `json:"variation"`
	PlyLeftBook int       `json:"ply_left_book"`
	Moves       string    `json:"moves"`
	DedupeKey   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// GameFilter selects persisted games. Zero values constrain nothing.
type GameFilter struct {
	Username    string
	Opponent    string
	Result      string
	OpeningName string
	TimeControl string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
