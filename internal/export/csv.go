// Package export renders analyzed games as tabular output.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tomerk/chessmetrics/internal/game"
)

var csvHeader = []string{
	"date", "opponent", "result", "user_elo", "opponent_elo",
	"opening", "variation", "ply_left_book", "time_control",
	"game_error", "error_per_move", "time_per_move",
}

// WriteCSV renders one row per game. Games must be analyzed; an unanalyzed
// game surfaces as a contract violation from its accessors.
func WriteCSV(w io.Writer, games []*game.Game) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, g := range games {
		gameErr, err := g.GameError()
		if err != nil {
			return err
		}
		errs, err := g.ErrorPerMove()
		if err != nil {
			return err
		}
		row := []string{
			g.Date(),
			g.Opponent(),
			g.Result().String(),
			strconv.Itoa(g.UserElo()),
			strconv.Itoa(g.OpponentElo()),
			g.MainOpening(),
			g.Variation(),
			strconv.Itoa(g.PlyLeftBook()),
			g.TimeControl(),
			fmt.Sprintf("%.2f", gameErr),
			joinSeries(errs),
			joinSeries(g.TimeSpent()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// joinSeries renders a numeric sequence as "0.10;0.25;1.00".
func joinSeries(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return strings.Join(parts, ";")
}
