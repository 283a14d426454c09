package tb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/tb"
)

func TestNoopProberIsAlwaysUnavailable(t *testing.T) {
	var p tb.NoopProber
	assert.False(t, p.Available())
	assert.Equal(t, 0, p.MaxPieces())

	pos := board.NewPosition()
	assert.False(t, p.ProbeWDL(pos).Found)
	assert.False(t, p.ProbeDTZ(pos).Found)
	assert.False(t, p.ProbeRoot(pos, nil).Found)
}

func TestWDLToScoreOrdering(t *testing.T) {
	win := tb.WDLToScore(tb.WDLWin, 0)
	cursedWin := tb.WDLToScore(tb.WDLCursedWin, 0)
	draw := tb.WDLToScore(tb.WDLDraw, 0)
	blessedLoss := tb.WDLToScore(tb.WDLBlessedLoss, 0)
	loss := tb.WDLToScore(tb.WDLLoss, 0)

	assert.True(t, win > cursedWin)
	assert.True(t, cursedWin > draw)
	assert.Equal(t, eval.Score(0), draw)
	assert.True(t, draw > blessedLoss)
	assert.True(t, blessedLoss > loss)
}

func TestWDLToScoreIsAntisymmetric(t *testing.T) {
	assert.Equal(t, tb.WDLToScore(tb.WDLWin, 3), -tb.WDLToScore(tb.WDLLoss, 3))
	assert.Equal(t, tb.WDLToScore(tb.WDLCursedWin, 2), -tb.WDLToScore(tb.WDLBlessedLoss, 2))
}

func TestCountPiecesMatchesFEN(t *testing.T) {
	pos := board.NewPosition()
	require.NoError(t, pos.SetFEN("4k3/8/8/8/8/3N4/8/4K3 w - - 0 1"))
	assert.Equal(t, 3, tb.CountPieces(pos))
}

// stubProber is a minimal in-memory Prober for exercising CachedProber
// without a real tablebase file reader.
type stubProber struct {
	calls int
	r     tb.ProbeResult
}

func (s *stubProber) ProbeWDL(pos *board.Position) tb.ProbeResult {
	s.calls++
	return s.r
}
func (s *stubProber) ProbeDTZ(pos *board.Position) tb.ProbeResult {
	s.calls++
	return s.r
}
func (s *stubProber) ProbeRoot(pos *board.Position, legal []board.Move) tb.RootResult {
	return tb.RootResult{}
}
func (s *stubProber) MaxPieces() int  { return 6 }
func (s *stubProber) Available() bool { return true }

func TestCachedProberServesRepeatsFromCache(t *testing.T) {
	inner := &stubProber{r: tb.ProbeResult{Found: true, WDL: tb.WDLWin, DTZ: 5}}
	cached := tb.NewCachedProber(inner, 16)

	pos := board.NewPosition()
	require.NoError(t, pos.SetFEN("4k3/8/8/8/8/3N4/8/4K3 w - - 0 1"))

	first := cached.ProbeWDL(pos)
	second := cached.ProbeWDL(pos)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "second probe should be served from cache")
	assert.Greater(t, cached.HitRate(), 0.0)
	assert.True(t, cached.Available())
	assert.Equal(t, 6, cached.MaxPieces())
}
