package board_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/pkg/board"
)

func TestPerftStartPosition(t *testing.T) {
	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
	}

	for _, tt := range tests {
		pos := board.NewPosition()
		require.Equal(t, tt.expected, board.Perft(pos, tt.depth), "depth %d", tt.depth)
	}
}

func TestPerftStartPositionDepth5(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping deep perft in -short mode")
	}
	pos := board.NewPosition()
	require.Equal(t, int64(4865609), board.Perft(pos, 5))
}

func TestPerftKiwipete(t *testing.T) {
	const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -"

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
	}

	for _, tt := range tests {
		pos := board.NewPosition()
		require.NoError(t, pos.SetFEN(kiwipete))
		require.Equal(t, tt.expected, board.Perft(pos, tt.depth), "depth %d", tt.depth)
	}
}

func TestPerftKiwipeteDepth4(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping deep perft in -short mode")
	}
	const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -"

	pos := board.NewPosition()
	require.NoError(t, pos.SetFEN(kiwipete))
	require.Equal(t, int64(4085603), board.Perft(pos, 4))
}
