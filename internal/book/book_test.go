package book

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedBookMatch(t *testing.T) {
	b := New()
	require.Greater(t, b.Len(), 50)

	main, variation, ok := b.Match("1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 4. b4")
	require.True(t, ok)
	assert.Equal(t, "Italian Game", main)
	assert.Equal(t, "Evans Gambit", variation)

	main, variation, ok = b.Match("1. e4 c5")
	require.True(t, ok)
	assert.Equal(t, "Sicilian Defense", main)
	assert.Equal(t, "", variation)

	_, _, ok = b.Match("1. h4")
	assert.False(t, ok)
}

func TestMatcherLongestHitWins(t *testing.T) {
	b := New()
	m := NewMatcher(b)

	moves := []string{"e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5", "b4"}
	for i := range moves {
		m.Feed(NumberedMovetext(moves[:i+1]), i%2 == 0)
	}

	assert.Equal(t, "Italian Game", m.Main())
	assert.Equal(t, "Evans Gambit", m.Variation())
	// User (white) plies that landed on book prefixes: e4, Nf3, Bc4, b4.
	assert.Equal(t, 4, m.PlyLeftBook())
}

func TestMatcherUnknownOpening(t *testing.T) {
	b := New()
	m := NewMatcher(b)
	m.Feed("1. h4", true)

	assert.Equal(t, UnknownOpening, m.Main())
	assert.Equal(t, "", m.Variation())
	assert.Equal(t, 0, m.PlyLeftBook())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	custom := "eco\tname\tmoves\nZ99\tTest Opening: Test Line\t1. h4 h5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.tsv"), []byte(custom), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("junk"), 0o644))

	b := New()
	require.NoError(t, b.LoadDir(dir))

	main, variation, ok := b.Match("1. h4 h5")
	require.True(t, ok)
	assert.Equal(t, "Test Opening", main)
	assert.Equal(t, "Test Line", variation)
}

func TestLoadDirNoBookFiles(t *testing.T) {
	b := New()
	err := b.LoadDir(t.TempDir())
	require.Error(t, err)
}

func TestNumberedMovetext(t *testing.T) {
	assert.Equal(t, "1. e4", NumberedMovetext([]string{"e4"}))
	assert.Equal(t, "1. e4 e5 2. Nf3", NumberedMovetext([]string{"e4", "e5", "Nf3"}))
	assert.Equal(t, "", NumberedMovetext(nil))
}
