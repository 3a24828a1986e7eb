package pgn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlain(t *testing.T) {
	norm, err := Normalize("1. e4 e5 2. Nf3 Nc6 3. Bb5 1/2-1/2", "1/2-1/2")
	require.NoError(t, err)

	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}, norm.Moves)
	assert.False(t, norm.HasClocks)
	assert.Empty(t, norm.Clocks)
}

func TestNormalizeWithClockAnnotations(t *testing.T) {
	movetext := `1. e4 {[%clk 0:04:58]} 1... e5 {[%clk 0:04:56]} 2. Nf3 {[%clk 0:04:55]} 2... Nc6 {[%clk 0:04:51]} 1-0`

	norm, err := Normalize(movetext, "1-0")
	require.NoError(t, err)

	assert.True(t, norm.HasClocks)
	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6"}, norm.Moves)
	assert.Equal(t, []string{"0:04:58", "0:04:56", "0:04:55", "0:04:51"}, norm.Clocks)
}

func TestNormalizeMultilineMovetext(t *testing.T) {
	movetext := "1. d4 d5\n2. c4 e6\n3. Nc3 Nf6 0-1"

	norm, err := Normalize(movetext, "0-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d4", "d5", "c4", "e6", "Nc3", "Nf6"}, norm.Moves)
}

func TestNormalizeDropsPlainComments(t *testing.T) {
	norm, err := Normalize("1. e4 {best by test} e5 2. Nf3 1-0", "1-0")
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e5", "Nf3"}, norm.Moves)
}

func TestNormalizeUnpairedClockTokens(t *testing.T) {
	_, err := Normalize("1. e4 {[%clk 0:04:58]} 1... e5 1-0", "1-0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unpaired")
}

func TestNormalizeEmptyMovetext(t *testing.T) {
	_, err := Normalize("1-0", "1-0")
	require.Error(t, err)
}

func TestIsAtrophied(t *testing.T) {
	assert.True(t, IsAtrophied("1. e4 1-0"))
	assert.True(t, IsAtrophied("1. e4 e5 0-1"))
	assert.False(t, IsAtrophied("1. e4 e5 2. Nf3 1-0"))
}
