package pgn

import (
	"strconv"
	"strings"
	"time"

	"github.com/tomerk/chessmetrics/internal/errors"
)

// Record is one raw PGN record: its header tags and its movetext block.
type Record struct {
	Tags     map[string]string
	Movetext string
}

// SplitRecords splits the full text of a .pgn file into individual records.
// A record is a tag block followed by a movetext block; the two are separated
// by a blank line, as are consecutive records.
func SplitRecords(text string) ([]Record, error) {
	var records []Record
	cur := Record{Tags: map[string]string{}}
	inMovetext := false

	flush := func() {
		cur.Movetext = strings.TrimSpace(cur.Movetext)
		if len(cur.Tags) > 0 || cur.Movetext != "" {
			records = append(records, cur)
		}
		cur = Record{Tags: map[string]string{}}
		inMovetext = false
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			if m := headerRe.FindStringSubmatch(trimmed); len(m) == 3 {
				if inMovetext {
					// A tag line after movetext starts the next record.
					flush()
				}
				cur.Tags[m[1]] = m[2]
				continue
			}
		}
		if trimmed == "" {
			if inMovetext {
				flush()
			}
			continue
		}
		inMovetext = true
		cur.Movetext += line + "\n"
	}
	flush()

	if len(records) == 0 {
		return nil, errors.NewParseError("no PGN records found in file")
	}
	return records, nil
}

// GameMeta holds the header fields the analyzer needs from one record.
type GameMeta struct {
	Date      time.Time
	White     string
	Black     string
	WhiteElo  int
	BlackElo  int
	Result    string
	TimeBase  int
	TimeBonus int
}

// ParseMeta extracts and validates the required header tags of a record.
func ParseMeta(tags map[string]string) (GameMeta, error) {
	meta := GameMeta{
		White:  tags["White"],
		Black:  tags["Black"],
		Result: tags["Result"],
	}
	if meta.White == "" || meta.Black == "" {
		return GameMeta{}, errors.NewParseError("record is missing White/Black tags")
	}
	if meta.Result == "" {
		return GameMeta{}, errors.NewParseError("record is missing Result tag")
	}

	var err error
	if meta.WhiteElo, err = parseElo(tags["WhiteElo"]); err != nil {
		return GameMeta{}, err
	}
	if meta.BlackElo, err = parseElo(tags["BlackElo"]); err != nil {
		return GameMeta{}, err
	}

	meta.TimeBase, meta.TimeBonus, err = ParseTimeControl(tags["TimeControl"])
	if err != nil {
		return GameMeta{}, err
	}

	meta.Date = parseDate(tags["Date"])
	return meta, nil
}

func parseElo(v string) (int, error) {
	if v == "" {
		return 0, errors.NewParseError("record is missing an Elo tag")
	}
	elo, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.NewParseError("malformed Elo tag %q", v)
	}
	return elo, nil
}

// parseDate parses a PGN date tag. Both the dotted PGN form (2024.01.31) and
// the dashed form are accepted; a missing or unparseable date falls back to
// the current day, matching lenient handling of incomplete exports.
func parseDate(v string) time.Time {
	for _, layout := range []string{"2006.01.02", "2006-01-02"} {
		if d, err := time.Parse(layout, v); err == nil {
			return d
		}
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseTimeControl splits a "base+bonus" time control tag into base seconds
// and bonus seconds per move. A missing bonus part means no increment.
func ParseTimeControl(tc string) (base, bonus int, err error) {
	parts := strings.SplitN(tc, "+", 2)
	base, err = strconv.Atoi(parts[0])
	if err != nil || base < 0 {
		return 0, 0, errors.NewParseError("malformed time control %q", tc)
	}
	if len(parts) == 1 {
		return base, 0, nil
	}
	bonus, err = strconv.Atoi(parts[1])
	if err != nil || bonus < 0 {
		return 0, 0, errors.NewParseError("malformed time control %q", tc)
	}
	return base, bonus, nil
}
