// Package tb declares the narrow Syzygy tablebase interface spec.md §4.12
// treats as an external collaborator: probe_wdl/probe_dtz at a single
// position, plus a root probe that can filter/score the legal move list.
// Grounded on hailam-chessplay/internal/tablebase/tablebase.go's
// Prober/ProbeResult/RootResult/WDL shape, adapted to this module's
// board.Position/board.Hash/board.Move/eval.Score types. No on-disk Syzygy
// file reader is implemented here (out of scope, per spec.md's external-
// collaborator boundary); NoopProber is the always-on default, and
// SetSyzygyPath in pkg/engine disables tablebase use entirely rather than
// fabricate a probe, matching spec.md §7's SyzygyLoadError handling.
package tb

import (
	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// WDL is a tablebase win/draw/loss verdict from the probed side's
// perspective, including the 50-move-rule-qualified "cursed"/"blessed"
// variants Syzygy reports alongside plain win/draw/loss.
type WDL int

const (
	WDLLoss        WDL = -2
	WDLBlessedLoss WDL = -1 // loss, but the 50-move rule may save it
	WDLDraw        WDL = 0
	WDLCursedWin   WDL = 1 // win, but the 50-move rule may spoil it
	WDLWin         WDL = 2
)

// ProbeResult is one WDL/DTZ lookup at a single position.
type ProbeResult struct {
	Found bool
	WDL   WDL
	DTZ   int // distance to the next zeroing (capture or pawn) move
}

// RootResult is a tablebase-informed root move recommendation: the filtered
// move list's WDL-best choice and its distance to zeroing, per spec.md
// §4.13's "filter root moves by tablebase root-probe (DTZ)".
type RootResult struct {
	Found bool
	Move  board.Move
	WDL   WDL
	DTZ   int
}

// Prober is the interface a loaded Syzygy tablebase set satisfies. Nothing
// in this module implements it against real .rtbw/.rtbz files; Prober exists
// so pkg/engine has a real seam to wire a future implementation into without
// touching search or the UCI driver.
type Prober interface {
	// ProbeWDL looks up the win/draw/loss verdict at pos.
	ProbeWDL(pos *board.Position) ProbeResult

	// ProbeDTZ additionally resolves distance-to-zeroing, more expensive than
	// ProbeWDL alone and normally only worth calling at the search root.
	ProbeDTZ(pos *board.Position) ProbeResult

	// ProbeRoot evaluates every legal root move and returns the tablebase's
	// preferred one, for root move filtering ahead of a normal search.
	ProbeRoot(pos *board.Position, legal []board.Move) RootResult

	// MaxPieces is the largest total piece count (both sides, kings
	// included) this tablebase set covers.
	MaxPieces() int

	// Available reports whether any tablebase files are currently loaded.
	Available() bool
}

// NoopProber always reports "not found"/"unavailable". It is pkg/engine's
// default Prober, so every call site can probe unconditionally instead of
// nil-checking.
type NoopProber struct{}

var _ Prober = NoopProber{}

func (NoopProber) ProbeWDL(pos *board.Position) ProbeResult            { return ProbeResult{} }
func (NoopProber) ProbeDTZ(pos *board.Position) ProbeResult            { return ProbeResult{} }
func (NoopProber) ProbeRoot(pos *board.Position, legal []board.Move) RootResult {
	return RootResult{}
}
func (NoopProber) MaxPieces() int  { return 0 }
func (NoopProber) Available() bool { return false }

// WDLToScore converts a WDL verdict into a search score from the probed
// side's perspective, shading cursed wins/blessed losses slightly toward a
// draw the way herohde-morlock's own mate scores shade by ply, so a tablebase
// hit never outranks an equally-won line the search proved itself.
func WDLToScore(wdl WDL, ply int) eval.Score {
	const cursedMargin = eval.Score(100)
	switch wdl {
	case WDLWin:
		return eval.Mate - eval.Score(ply) - cursedMargin
	case WDLCursedWin:
		return cursedMargin - eval.Score(ply)
	case WDLDraw:
		return 0
	case WDLBlessedLoss:
		return -cursedMargin + eval.Score(ply)
	case WDLLoss:
		return -eval.Mate + eval.Score(ply) + cursedMargin
	default:
		return 0
	}
}

// CountPieces totals both sides' pieces on pos, the figure a Prober compares
// against MaxPieces to decide whether a position is even in range.
func CountPieces(pos *board.Position) int {
	return pos.Occupied().PopCount()
}
