package fen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/pkg/board/fen"
)

func TestParseStartPosRoundTripsThroughFormat(t *testing.T) {
	pos, err := fen.Parse(fen.StartPos)
	require.NoError(t, err)
	assert.Equal(t, fen.StartPos, fen.Format(pos))
}

func TestParseRejectsMalformedFEN(t *testing.T) {
	_, err := fen.Parse("not a fen string")
	assert.Error(t, err)
}

func TestParseAndFormatRoundTripArbitraryPosition(t *testing.T) {
	in := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	pos, err := fen.Parse(in)
	require.NoError(t, err)
	assert.Equal(t, in, fen.Format(pos))
}

func TestValidAcceptsWellFormedFENs(t *testing.T) {
	assert.True(t, fen.Valid(fen.StartPos))
	assert.True(t, fen.Valid("8/8/8/4k3/8/8/4R3/4K3 w - - 0 1"))
}

func TestValidRejectsMalformedFENs(t *testing.T) {
	assert.False(t, fen.Valid(""))
	assert.False(t, fen.Valid("just some text"))
	assert.False(t, fen.Valid("8/8/8 w - - 0 1"))
}
