package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/corvidchess/corvid/pkg/timectl"
	"github.com/seekerror/stdlib/pkg/lang"
)

// drain exhausts ch, returning the deepest PV sent (the channel is closed
// once the search stops, per Engine.Analyze's contract).
func drain(ch <-chan search.PV) search.PV {
	var last search.PV
	for pv := range ch {
		last = pv
	}
	return last
}

// TestAnalyzeOpeningMoveIsLegalAndQuiet is spec.md §8 scenario 1, relaxed per
// SPEC_FULL.md's classical-evaluator substitution for NNUE: from the start
// position a shallow search must return a legal first move with a near-level
// score, rather than pinning down one exact move the classical evaluator may
// or may not agree with an NNUE-tuned engine about.
func TestAnalyzeOpeningMoveIsLegalAndQuiet(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")

	ch, err := e.Analyze(ctx, engine.AnalyzeOptions{DepthLimit: lang.Some(6)})
	require.NoError(t, err)
	pv := drain(ch)

	require.NotEqual(t, board.NoMove, pv.Move())
	start := board.NewBoard()
	assert.True(t, start.Position().IsLegal(pv.Move()), "engine proposed illegal move %v", pv.Move())
	assert.InDelta(t, 0, int(pv.Score), 150, "opening score should be roughly level, got %v", pv.Score)
}

// TestAnalyzeFindsBackRankMateInOne is spec.md §8 scenario 3 (a back-rank
// mate-in-1), adjusted from the spec's literal Rh8# example to a position
// where the mating rook's path isn't blocked by the boxed-in king's own
// pawns: Re1-e8 delivers mate since f8 and (after the king steps away) h8 are
// both covered by the rook along the back rank, and f7/g7/h7 are occupied.
func TestAnalyzeFindsBackRankMateInOne(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	require.NoError(t, e.Reset(ctx, "6k1/5ppp/8/8/8/8/8/4R1K1 w - - 0 1"))

	ch, err := e.Analyze(ctx, engine.AnalyzeOptions{DepthLimit: lang.Some(4)})
	require.NoError(t, err)
	pv := drain(ch)

	require.NotEmpty(t, pv.Moves)
	assert.Equal(t, "e1e8", pv.Move().String())
	assert.Equal(t, eval.MateIn(1), pv.Score)
}

// TestAnalyzeDetectsStalemate is spec.md §8 scenario 4: the classic Q+K vs K
// stalemate trap (black to move, not in check, zero legal moves) must score
// as a draw rather than a loss, and Analyze must terminate immediately
// without producing a move.
func TestAnalyzeDetectsStalemate(t *testing.T) {
	pos := board.NewPosition()
	require.NoError(t, pos.SetFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"))
	assert.False(t, pos.InCheck())

	list := pos.Generate(board.StageAll, nil)
	for _, m := range list {
		assert.False(t, pos.IsLegal(m), "expected no legal moves in stalemate, found %v", m)
	}

	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	require.NoError(t, e.Reset(ctx, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"))

	ch, err := e.Analyze(ctx, engine.AnalyzeOptions{DepthLimit: lang.Some(4)})
	require.NoError(t, err)
	pv := drain(ch)

	assert.Empty(t, pv.Moves)
	assert.Equal(t, eval.Score(0), pv.Score)
}

// TestKingRookVsKingFindsDecisiveAdvantage is spec.md §8 scenario 2, relaxed
// to a property a shallow search can actually demonstrate: a lone king
// facing king+rook is a clearly winning position for the rook's side, well
// outside any drawn-game window, regardless of how many plies the search
// looks ahead to the literal mate.
func TestKingRookVsKingFindsDecisiveAdvantage(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	require.NoError(t, e.Reset(ctx, "8/8/8/4k3/8/8/4R3/4K3 w - - 0 1"))

	ch, err := e.Analyze(ctx, engine.AnalyzeOptions{DepthLimit: lang.Some(6)})
	require.NoError(t, err)
	pv := drain(ch)

	require.NotEmpty(t, pv.Moves)
	assert.Greater(t, int(pv.Score), 400)
}

// TestMoveReachesThreefoldDraw replays spec.md §8's draw-detection
// knight dance through Engine.Move (rather than board.Board directly),
// exercising the same code path a UCI "position startpos moves ..." command
// would, and checks the engine's board reports a repetition and a draw once
// the starting position has occurred three times.
func TestMoveReachesThreefoldDraw(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")

	moves := []string{"g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8"}
	for _, mv := range moves {
		require.NoError(t, e.Move(ctx, mv))
	}

	assert.True(t, e.Board().IsRepetition())
	assert.True(t, e.Board().IsDraw())
}

// TestSetSyzygyPathDisablesRatherThanErrors checks that pointing the engine
// at a tablebase directory (which this module can't actually read, per
// pkg/tb's documented scope) degrades to tablebase probing staying disabled
// instead of breaking subsequent searches, spec.md §7's TablebaseLoadError
// handling.
func TestSetSyzygyPathDisablesRatherThanErrors(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	e.SetSyzygyPath(ctx, "/nonexistent/syzygy")

	ch, err := e.Analyze(ctx, engine.AnalyzeOptions{DepthLimit: lang.Some(2)})
	require.NoError(t, err)
	pv := drain(ch)

	assert.NotEqual(t, board.NoMove, pv.Move())
}

// TestTimeManagedAnalyzeRespectsMaximum is spec.md §8 scenario 6 end to end:
// an Analyze driven purely by a wall-clock TimeControl (no depth/node limit)
// must return within a small multiple of the computed hard deadline rather
// than searching forever.
func TestTimeManagedAnalyzeRespectsMaximum(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")

	start := time.Now()
	ch, err := e.Analyze(ctx, engine.AnalyzeOptions{
		TimeControl: lang.Some(timectl.Limits{Time: 1 * time.Second}),
	})
	require.NoError(t, err)
	_ = drain(ch)

	assert.Less(t, time.Since(start), 5*time.Second)
}
