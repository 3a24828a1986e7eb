package game

import (
	"fmt"

	"github.com/tomerk/chessmetrics/internal/errors"
)

// Color identifies which side the tracked player held in a game.
type Color int

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Result is the game outcome from the tracked player's perspective.
type Result int

const (
	Loss Result = iota
	Draw
	Win
)

func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "loss"
	}
}

// Points returns the score value of the result: 1 for a win, 0.5 for a draw.
func (r Result) Points() float64 {
	switch r {
	case Win:
		return 1
	case Draw:
		return 0.5
	default:
		return 0
	}
}

// ParseResult maps a standard seven-tag result ("1-0", "0-1", "1/2-1/2") to
// the tracked player's outcome.
func ParseResult(tag string, user Color) (Result, error) {
	switch tag {
	case "1-0":
		if user == White {
			return Win, nil
		}
		return Loss, nil
	case "0-1":
		if user == Black {
			return Win, nil
		}
		return Loss, nil
	case "1/2-1/2":
		return Draw, nil
	}
	return Loss, errors.NewParseError("unrecognized result tag %q", tag)
}

// ParseResultString parses the lowercase result names used by filters.
func ParseResultString(s string) (Result, error) {
	switch s {
	case "win":
		return Win, nil
	case "draw":
		return Draw, nil
	case "loss":
		return Loss, nil
	}
	return Loss, errors.NewValidationError("result", fmt.Sprintf("unknown value %q, want win, draw or loss", s))
}
