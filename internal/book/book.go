// Package book matches numbered movetext prefixes against a table of known
// opening lines, reporting the longest opening/variation a game followed.
package book

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/logger"
)

// UnknownOpening is the sentinel name for games that never hit the book.
const UnknownOpening = "Unknown Opening"

//go:embed data/openings.tsv
var defaultTSV string

// Book maps exact numbered movetext prefixes (e.g. "1. e4 e5 2. Nf3") to
// opening descriptors of the form "Name" or "Name: Variation".
type Book struct {
	prefixes map[string]string
	log      *logger.Logger
}

// New returns a Book preloaded with the embedded default opening table.
func New() *Book {
	b := &Book{
		prefixes: map[string]string{},
		log:      logger.Default().WithPrefix("book"),
	}
	b.loadTSV(defaultTSV)
	return b
}

// LoadDir merges every .tsv file in dir into the book. Lines in loaded files
// override embedded entries with the same movetext prefix.
func (b *Book) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.NewParseError("cannot read book directory %s: %v", dir, err)
	}
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tsv") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return errors.NewParseError("cannot read book file %s: %v", entry.Name(), err)
		}
		b.loadTSV(string(data))
		loaded++
	}
	if loaded == 0 {
		return errors.NewParseError("no .tsv book files in %s", dir)
	}
	b.log.Info("loaded %d book files from %s, %d lines total", loaded, dir, len(b.prefixes))
	return nil
}

// loadTSV ingests tab-separated lines of either "eco<TAB>name<TAB>moves" or
// "name<TAB>moves" shape. Malformed lines are skipped.
func (b *Book) loadTSV(data string) {
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		var name, moves string
		switch len(cols) {
		case 2:
			name, moves = cols[0], cols[1]
		case 3:
			name, moves = cols[1], cols[2]
		default:
			continue
		}
		name = strings.TrimSpace(name)
		moves = strings.TrimSpace(moves)
		if name == "" || moves == "" || name == "name" {
			continue
		}
		b.prefixes[moves] = name
	}
}

// Len returns the number of distinct movetext prefixes in the book.
func (b *Book) Len() int {
	return len(b.prefixes)
}

// Match looks up an exact movetext prefix and splits the descriptor into
// main opening and variation.
func (b *Book) Match(movetext string) (main, variation string, ok bool) {
	name, ok := b.prefixes[movetext]
	if !ok {
		return "", "", false
	}
	parts := strings.SplitN(name, ":", 2)
	main = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		variation = strings.TrimSpace(parts[1])
	}
	return main, variation, true
}

// Matcher tracks the opening of one game as its moves are replayed. Feed it
// the cumulative numbered movetext after each ply; the longest (latest) hit
// wins. The ply counter records how many of the user's plies were still
// inside the book.
type Matcher struct {
	book      *Book
	main      string
	variation string
	plyInBook int
}

// NewMatcher returns a Matcher over the given book.
func NewMatcher(b *Book) *Matcher {
	return &Matcher{book: b, main: UnknownOpening}
}

// Feed offers the cumulative movetext after one ply. Returns true on a book
// hit; later hits overwrite earlier ones.
func (m *Matcher) Feed(movetext string, userPly bool) bool {
	main, variation, ok := m.book.Match(movetext)
	if !ok {
		return false
	}
	m.main = main
	m.variation = variation
	if userPly {
		m.plyInBook++
	}
	return true
}

// Main returns the matched opening name, or UnknownOpening.
func (m *Matcher) Main() string { return m.main }

// Variation returns the matched variation, or "" when the line had none.
func (m *Matcher) Variation() string { return m.variation }

// PlyLeftBook returns the count of user plies played inside book lines.
func (m *Matcher) PlyLeftBook() int { return m.plyInBook }

// NumberedMovetext renders SAN moves with white-move numbering, the exact
// shape used as book prefix keys: "1. e4 e5 2. Nf3".
func NumberedMovetext(moves []string) string {
	var sb strings.Builder
	for i, mv := range moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i%2 == 0 {
			fmt.Fprintf(&sb, "%d. ", i/2+1)
		}
		sb.WriteString(mv)
	}
	return sb.String()
}
