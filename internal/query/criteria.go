// Package query implements the filter-and-recompute pipeline: a universe of
// games, optional filter criteria intersected into a working set, and the
// analytical queries that run over the freshly aggregated result.
package query

import (
	"strings"
	"time"

	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/game"
)

// Criteria is one query's filter configuration. Every field is optional; an
// absent field constrains nothing. The working set is the intersection of
// the candidate sets produced by the present fields.
type Criteria struct {
	// Openings matches a game's main opening or its full "Main: Variation"
	// name.
	Openings []string
	// Opponents matches the opponent's name exactly.
	Opponents []string
	// Results holds any of "win", "draw", "loss".
	Results []string
	// MaxOpponentElo keeps games whose opponent was rated at or below it.
	MaxOpponentElo *int
	// TimeControl matches the "base+bonus" rendering exactly.
	TimeControl string
	// From and To bound the game date, inclusive on both ends.
	From *time.Time
	To   *time.Time
}

// Validate checks every present field against its recognized values.
func (c Criteria) Validate() error {
	for _, r := range c.Results {
		if _, err := game.ParseResultString(r); err != nil {
			return errors.NewContractError("invalid result filter %q, want win, draw or loss", r)
		}
	}
	if c.MaxOpponentElo != nil && *c.MaxOpponentElo < 0 {
		return errors.NewContractError("opponent Elo bound must be non-negative, got %d", *c.MaxOpponentElo)
	}
	if c.TimeControl != "" && !strings.Contains(c.TimeControl, "+") {
		return errors.NewContractError("time control filter must look like \"base+bonus\", got %q", c.TimeControl)
	}
	if c.From != nil && c.To != nil && c.From.After(*c.To) {
		return errors.NewContractError("date range is inverted: from %s is after to %s",
			c.From.Format("2006-01-02"), c.To.Format("2006-01-02"))
	}
	for _, o := range c.Openings {
		if strings.TrimSpace(o) == "" {
			return errors.NewContractError("opening filter must not be empty")
		}
	}
	for _, o := range c.Opponents {
		if strings.TrimSpace(o) == "" {
			return errors.NewContractError("opponent filter must not be empty")
		}
	}
	return nil
}

// matches reports whether one game satisfies every present criterion.
func (c Criteria) matches(g *game.Game) bool {
	if len(c.Openings) > 0 && !matchesAny(c.Openings, g.MainOpening(), g.Name()) {
		return false
	}
	if len(c.Opponents) > 0 && !matchesAny(c.Opponents, g.Opponent()) {
		return false
	}
	if len(c.Results) > 0 {
		hit := false
		for _, r := range c.Results {
			if res, err := game.ParseResultString(r); err == nil && res == g.Result() {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if c.MaxOpponentElo != nil && g.OpponentElo() > *c.MaxOpponentElo {
		return false
	}
	if c.TimeControl != "" && g.TimeControl() != c.TimeControl {
		return false
	}
	if c.From != nil && g.PlayedAt().Before(*c.From) {
		return false
	}
	if c.To != nil && g.PlayedAt().After(*c.To) {
		return false
	}
	return true
}

func matchesAny(wanted []string, values ...string) bool {
	for _, w := range wanted {
		for _, v := range values {
			if w == v {
				return true
			}
		}
	}
	return false
}

// suggestOpening proposes the closest known opening name for an unknown
// filter value, by case-insensitive substring containment.
func suggestOpening(unknown string, known []string) string {
	needle := strings.ToLower(unknown)
	for _, k := range known {
		if strings.Contains(strings.ToLower(k), needle) {
			return k
		}
	}
	return ""
}

func unknownOpeningError(name, suggestion string) error {
	if suggestion != "" {
		return errors.NewContractError("unknown opening %q, did you mean %q?", name, suggestion)
	}
	return errors.NewContractError("unknown opening %q", name)
}
