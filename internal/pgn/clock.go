package pgn

import (
	"math"
	"regexp"
	"strconv"

	"github.com/tomerk/chessmetrics/internal/errors"
)

var clockRe = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})(\.\d+)?$`)

// parseClock converts an h:mm:ss[.fraction] clock token into seconds.
func parseClock(tok string) (float64, error) {
	m := clockRe.FindStringSubmatch(tok)
	if m == nil {
		return 0, errors.NewParseError("malformed clock token %q", tok)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	total := float64(hours*3600 + minutes*60 + seconds)
	if m[4] != "" {
		frac, _ := strconv.ParseFloat(m[4], 64)
		total += frac
	}
	return total, nil
}

// DecodeClockTimes converts one player's successive remaining-clock tokens
// into the time spent on each move. Elapsed time for one move is
// (previous remaining + bonus) - current remaining; the first reference clock
// is the configured base time. Results are in seconds, rounded to two
// decimals, one entry per token in play order.
func DecodeClockTimes(clocks []string, base, bonus int) ([]float64, error) {
	times := make([]float64, 0, len(clocks))
	prev := float64(base)
	for _, tok := range clocks {
		cur, err := parseClock(tok)
		if err != nil {
			return nil, err
		}
		times = append(times, round2(prev+float64(bonus)-cur))
		prev = cur
	}
	return times, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
