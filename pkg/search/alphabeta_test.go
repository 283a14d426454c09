package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/pkg/board"
)

func TestHistoryBonusIsMonotonicAndCapped(t *testing.T) {
	prev := -1
	for d := 1; d <= 20; d++ {
		b := historyBonus(d)
		assert.GreaterOrEqual(t, b, prev)
		assert.LessOrEqual(t, b, 8192)
		prev = b
	}
}

func TestHistoryBonusNeverNegative(t *testing.T) {
	assert.GreaterOrEqual(t, historyBonus(0), 0)
	assert.GreaterOrEqual(t, historyBonus(1), 0)
}

// TestLMRTableGrowsWithDepthAndMoveNumber checks the reduction table's shape
// (spec.md §4.9's log(depth)*log(moveNumber) late-move-reduction formula):
// later moves at deeper depths are reduced at least as much as earlier moves
// at shallower depths.
func TestLMRTableGrowsWithDepthAndMoveNumber(t *testing.T) {
	assert.GreaterOrEqual(t, lmrTable[10][30], lmrTable[10][5])
	assert.GreaterOrEqual(t, lmrTable[20][10], lmrTable[5][10])
	assert.Equal(t, 0, lmrTable[1][1])
}

func TestHasNonPawnMaterialDetectsMinorsAndMajors(t *testing.T) {
	pos := board.NewPosition()
	require.NoError(t, pos.SetFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1"))
	assert.False(t, hasNonPawnMaterial(pos, board.White))

	require.NoError(t, pos.SetFEN("4k3/8/8/8/8/3N4/4P3/4K3 w - - 0 1"))
	assert.True(t, hasNonPawnMaterial(pos, board.White))
	assert.False(t, hasNonPawnMaterial(pos, board.Black))
}

func TestContemptReflectsConfiguredValue(t *testing.T) {
	w := &Worker{Contempt: 37}
	assert.Equal(t, w.Contempt, w.contempt())
}
