package eval_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

func TestMaterialEvaluatesStartPositionAsRoughlyLevel(t *testing.T) {
	b := board.NewBoard()
	s := eval.Material{}.Evaluate(context.Background(), b)
	assert.InDelta(t, 0, int(s), 30)
}

func TestMaterialFavorsSideUpAPiece(t *testing.T) {
	b, err := board.NewBoardFromFEN("4k3/8/8/8/8/3N4/8/4K3 w - - 0 1")
	require.NoError(t, err)
	s := eval.Material{}.Evaluate(context.Background(), b)
	assert.Greater(t, int(s), 250)
}

func TestMaterialIsSideToMoveRelative(t *testing.T) {
	white, err := board.NewBoardFromFEN("4k3/8/8/8/8/3N4/8/4K3 w - - 0 1")
	require.NoError(t, err)
	black, err := board.NewBoardFromFEN("4k3/8/8/8/8/3N4/8/4K3 b - - 0 1")
	require.NoError(t, err)

	ws := eval.Material{}.Evaluate(context.Background(), white)
	bs := eval.Material{}.Evaluate(context.Background(), black)
	assert.Equal(t, int(ws), -int(bs))
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen      string
		expected bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},           // K vs K
		{"4k3/8/8/8/8/3N4/8/4K3 w - - 0 1", true},          // K+N vs K
		{"4k3/8/8/8/8/3B4/8/4K3 w - - 0 1", true},          // K+B vs K
		{"4k3/8/8/8/8/2NN4/8/4K3 w - - 0 1", false},        // K+N+N vs K: two knights
		{"4k3/8/8/8/8/3P4/8/4K3 w - - 0 1", false},         // pawn present
		{"4k3/8/8/8/8/3R4/8/4K3 w - - 0 1", false},         // rook present
	}
	for _, tt := range tests {
		pos := board.NewPosition()
		require.NoError(t, pos.SetFEN(tt.fen))
		assert.Equal(t, tt.expected, eval.InsufficientMaterial(pos), tt.fen)
	}
}
