package api

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/game"
	"github.com/tomerk/chessmetrics/internal/query"
)

// criteriaFromQuery builds filter criteria from URL query parameters.
// Recognized parameters: openings, opponents, results (comma-separated),
// max_opponent_elo, time_control, from, to (2006-01-02).
func criteriaFromQuery(values url.Values) (query.Criteria, error) {
	var c query.Criteria

	c.Openings = splitParam(values.Get("openings"))
	c.Opponents = splitParam(values.Get("opponents"))
	c.Results = splitParam(values.Get("results"))
	c.TimeControl = values.Get("time_control")

	if v := values.Get("max_opponent_elo"); v != "" {
		elo, err := strconv.Atoi(v)
		if err != nil {
			return c, errors.NewContractError("max_opponent_elo must be an integer, got %q", v)
		}
		c.MaxOpponentElo = &elo
	}
	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{
		{"from", &c.From},
		{"to", &c.To},
	} {
		if v := values.Get(bound.name); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return c, errors.NewContractError("%s must look like 2006-01-02, got %q", bound.name, v)
			}
			*bound.dst = &t
		}
	}
	return c, nil
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func intParam(values url.Values, name string, def int) int {
	if v := values.Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// gameJSON is the wire shape of one game.
type gameJSON struct {
	Date        string  `json:"date"`
	Opponent    string  `json:"opponent"`
	PlayedAs    string  `json:"played_as"`
	Result      string  `json:"result"`
	UserElo     int     `json:"user_elo"`
	OpponentElo int     `json:"opponent_elo"`
	Opening     string  `json:"opening"`
	TimeControl string  `json:"time_control"`
	PlyLeftBook int     `json:"ply_left_book"`
	GameError   float64 `json:"game_error,omitempty"`
}

func toGameJSON(g *game.Game) gameJSON {
	out := gameJSON{
		Date:        g.Date(),
		Opponent:    g.Opponent(),
		PlayedAs:    g.UserColor().String(),
		Result:      g.Result().String(),
		UserElo:     g.UserElo(),
		OpponentElo: g.OpponentElo(),
		Opening:     g.Name(),
		TimeControl: g.TimeControl(),
		PlyLeftBook: g.PlyLeftBook(),
	}
	if g.Analyzed() {
		if e, err := g.GameError(); err == nil {
			out.GameError = e
		}
	}
	return out
}

func toGameJSONList(games []*game.Game) []gameJSON {
	out := make([]gameJSON, len(games))
	for i, g := range games {
		out[i] = toGameJSON(g)
	}
	return out
}
