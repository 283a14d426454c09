package heur_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/search/heur"
)

func TestKillersUpdateShiftsPreviousIntoSecondSlot(t *testing.T) {
	k := heur.NewKillers(64)
	m1 := board.NewMove(board.E2, board.E4, board.Normal)
	m2 := board.NewMove(board.D2, board.D4, board.Normal)

	k.Update(3, m1)
	assert.Equal(t, [2]board.Move{m1, board.NoMove}, k.Probe(3))

	k.Update(3, m2)
	assert.Equal(t, [2]board.Move{m2, m1}, k.Probe(3))

	// Re-recording the current newest killer must not duplicate it into slot 1.
	k.Update(3, m2)
	assert.Equal(t, [2]board.Move{m2, m1}, k.Probe(3))
}

func TestKillersOutOfRangePlyIsSafe(t *testing.T) {
	k := heur.NewKillers(4)
	m := board.NewMove(board.A2, board.A4, board.Normal)
	k.Update(-1, m)
	k.Update(100, m)
	assert.Equal(t, [2]board.Move{}, k.Probe(100))
}

func TestHistoryRewardsCutoffAndPenalizesTriedQuiets(t *testing.T) {
	var h heur.History
	cutoff := board.NewMove(board.E2, board.E4, board.Normal)
	tried := board.NewMove(board.D2, board.D4, board.Normal)

	h.Update(board.White, cutoff, 64, []board.Move{tried, cutoff})

	assert.Greater(t, h.Score(board.White, cutoff), 0)
	assert.Less(t, h.Score(board.White, tried), 0)
}

func TestHistoryIsBoundedBySaturation(t *testing.T) {
	var h heur.History
	m := board.NewMove(board.G1, board.F3, board.Normal)
	for i := 0; i < 10000; i++ {
		h.Update(board.White, m, 1<<13, nil)
	}
	assert.LessOrEqual(t, h.Score(board.White, m), 1<<14)
}

func TestCaptureHistoryIndexesByPieceDestinationAndVictim(t *testing.T) {
	var h heur.CaptureHistory
	p := board.NewPiece(board.White, board.Knight)
	h.Update(p, board.F3, board.Pawn, 50)

	assert.Greater(t, h.Score(p, board.F3, board.Pawn), 0)
	assert.Equal(t, 0, h.Score(p, board.F3, board.Rook))
}

func TestCounterMoveRecordsAndOverwrites(t *testing.T) {
	var c heur.CounterMove
	prev := board.NewPiece(board.Black, board.Knight)
	reply := board.NewMove(board.E2, board.E4, board.Normal)

	assert.Equal(t, board.NoMove, c.Get(prev, board.F6))

	c.Update(prev, board.F6, reply)
	assert.Equal(t, reply, c.Get(prev, board.F6))

	other := board.NewMove(board.D2, board.D4, board.Normal)
	c.Update(prev, board.F6, other)
	assert.Equal(t, other, c.Get(prev, board.F6))
}

func TestContinuationHistoryScoresPiecePairs(t *testing.T) {
	c := heur.NewContinuationHistory()
	prev := board.NewPiece(board.Black, board.Knight)
	p := board.NewPiece(board.White, board.Queen)

	assert.Equal(t, 0, c.Score(prev, board.F6, p, board.H5))
	c.Update(prev, board.F6, p, board.H5, 30)
	assert.Greater(t, c.Score(prev, board.F6, p, board.H5), 0)
}

func TestMaxGainLowPassFiltersTowardObservedGain(t *testing.T) {
	var g heur.MaxGain
	p := board.NewPiece(board.White, board.Bishop)

	assert.Equal(t, 0, g.Get(p, board.C4))
	for i := 0; i < 200; i++ {
		g.Update(p, board.C4, 300)
	}
	assert.InDelta(t, 300, g.Get(p, board.C4), 10)
}
