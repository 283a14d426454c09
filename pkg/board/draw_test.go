package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/pkg/board"
)

// TestThreefoldRepetition plays the Petrov knight dance from spec.md §8's
// draw-detection scenario: Nf3 Nf6 Ng1 Ng8 Nf3 Nf6 Ng1 Ng8 returns the
// position to the start three times.
func TestThreefoldRepetition(t *testing.T) {
	b := board.NewBoard()
	moves := []string{"g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8"}

	for i, mv := range moves {
		m, err := board.ParseMove(b.Position(), mv)
		require.NoError(t, err)
		require.True(t, b.Position().IsLegal(m), "move %d (%v) not legal", i, mv)
		b.Push(m)
	}

	assert.True(t, b.IsRepetition())
	assert.True(t, b.IsDraw())
}

func TestNotRepetitionBeforeThirdOccurrence(t *testing.T) {
	b := board.NewBoard()
	moves := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for _, mv := range moves {
		m, err := board.ParseMove(b.Position(), mv)
		require.NoError(t, err)
		b.Push(m)
	}
	assert.False(t, b.IsRepetition())
}

func TestFiftyMoveRuleDraw(t *testing.T) {
	b, err := board.NewBoardFromFEN("4k3/8/8/8/8/8/8/4K3 w - - 99 50")
	require.NoError(t, err)
	assert.False(t, b.IsDrawByNoProgress())

	m, err := board.ParseMove(b.Position(), "e1e2")
	require.NoError(t, err)
	b.Push(m)
	assert.True(t, b.IsDrawByNoProgress())
}

func TestBoardForkIsIndependent(t *testing.T) {
	b := board.NewBoard()
	fork := b.Fork()

	m, err := board.ParseMove(b.Position(), "e2e4")
	require.NoError(t, err)
	b.Push(m)

	assert.NotEqual(t, b.Position().FEN(), fork.Position().FEN())
	assert.Equal(t, board.StartFEN, fork.Position().FEN())
}
