// Package pgn normalizes raw PGN records into clean move token streams and
// decodes embedded clock annotations into per-move time deltas.
package pgn

import (
	"regexp"
	"strings"

	"github.com/tomerk/chessmetrics/internal/errors"
)

var (
	headerRe = regexp.MustCompile(`\[(\w+)\s+"([^"]*)"\]`)

	// {[%clk 0:04:58.1]} and the bare [%clk ...] variant, with or without
	// surrounding whitespace inside the braces.
	clkRe = regexp.MustCompile(`\{?\s*\[%clk\s+([0-9:.]+)\s*\]\s*\}?`)

	blackMoveNumRe = regexp.MustCompile(`\b\d+\.\.\.\s*`)
	whiteMoveNumRe = regexp.MustCompile(`\b\d+\.\s*`)
	commentRe      = regexp.MustCompile(`\{[^}]*\}`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// Normalized is the result of normalizing one record's movetext: the SAN
// moves in play order and, when the record carried clock annotations, the
// remaining-clock token recorded after each ply.
type Normalized struct {
	Moves     []string
	Clocks    []string
	HasClocks bool
}

// HasClockAnnotations reports whether the movetext embeds %clk annotations.
func HasClockAnnotations(movetext string) bool {
	return clkRe.MatchString(movetext)
}

// IsAtrophied reports whether a record is a placeholder game in which both
// sides played at most a single move. Such records carry no second move
// number and are skipped by ingestion rather than analyzed.
func IsAtrophied(movetext string) bool {
	return !strings.Contains(movetext, "2.")
}

// Normalize strips the trailing result token, move numbering, and clock
// annotations from raw movetext, collapsing it into a single token stream.
// When clocks are present the returned Clocks slice holds one entry per ply,
// aligned with Moves.
func Normalize(movetext, result string) (Normalized, error) {
	if idx := strings.Index(movetext, result); idx >= 0 {
		movetext = movetext[:idx]
	}
	movetext = strings.ReplaceAll(movetext, "\n", " ")

	hasClocks := HasClockAnnotations(movetext)
	// Clock annotations become bare time tokens interleaved with the moves.
	movetext = clkRe.ReplaceAllString(movetext, " $1 ")
	// Any other brace comment is dropped entirely.
	movetext = commentRe.ReplaceAllString(movetext, " ")

	movetext = blackMoveNumRe.ReplaceAllString(movetext, "")
	movetext = whiteMoveNumRe.ReplaceAllString(movetext, "")
	movetext = strings.TrimSpace(spaceRe.ReplaceAllString(movetext, " "))

	tokens := strings.Fields(movetext)
	if len(tokens) == 0 {
		return Normalized{}, errors.NewParseError("record has no moves")
	}

	if !hasClocks {
		return Normalized{Moves: tokens}, nil
	}

	if len(tokens)%2 != 0 {
		return Normalized{}, errors.NewParseError("clock-annotated record has unpaired tokens")
	}
	norm := Normalized{HasClocks: true}
	for i := 0; i < len(tokens); i += 2 {
		norm.Moves = append(norm.Moves, tokens[i])
		norm.Clocks = append(norm.Clocks, tokens[i+1])
	}
	return norm, nil
}
