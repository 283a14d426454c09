// Package search implements iterative-deepening principal-variation search
// over pkg/board positions: null-move pruning, razoring, futility pruning,
// late-move reductions and pruning, singular extensions, ProbCut, and
// quiescence search, sharing one transposition table across Lazy-SMP worker
// goroutines. Grounded on herohde-morlock/pkg/search's alphabeta.go/search.go
// family, generalized from the teacher's single-threaded minimax/PVS variants
// to the full pruning/extension suite spec.md §4.7-§4.9 describes.
package search

import (
	"context"
	"time"

	"go.uber.org/atomic"

	"github.com/seekerror/stdlib/pkg/util/contextx"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search/heur"
	"github.com/corvidchess/corvid/pkg/search/picker"
	"github.com/corvidchess/corvid/pkg/tt"
)

// MaxPly bounds search depth/recursion; the per-ply node stack and the PV
// table are preallocated to this size plus a few spare slots at the end.
// Reads of earlier plies check the ply index explicitly (ply > 0, ply >= 2)
// rather than relying on guard slots below ply 0.
const MaxPly = 128

// Signals are the stop/limit flags every worker in a Lazy-SMP pool shares,
// so a "stop" from the UCI driver or the time manager halts every goroutine
// without a broadcast channel per node.
type Signals struct {
	Stop      atomic.Bool
	NodeLimit int64 // 0 = unlimited

	// SoftDeadline is the time manager's "optimal" budget: the iterative
	// driver will not begin a new depth once it is past, but an iteration
	// already underway is allowed to finish (only the hard deadline, carried
	// via ctx's own cancellation, aborts mid-iteration). Zero means no limit.
	SoftDeadline time.Time
}

func (s *Signals) ShouldStop(nodes int64) bool {
	if s.Stop.Load() {
		return true
	}
	return s.NodeLimit > 0 && nodes >= s.NodeLimit
}

// nodeInfo is the per-ply scratch state alphaBeta and qSearch thread through
// recursive calls: the move that reached this node, the piece that made it,
// the static eval computed here, the LMR reduction applied to this node's
// search, and any excluded move (set only during singular-extension probing).
// Grounded on spec.md §4's PositionInfo stack fields, narrowed to the subset
// the search loop itself consults (check/pin bitboards live on board.Position
// instead, computed on demand rather than cached per ply).
type nodeInfo struct {
	move          board.Move
	piece         board.Piece
	staticEval    eval.Score
	evalValid     bool
	lmrReduction  int
	excludedMove  board.Move
	killersQuiets []board.Move // quiets tried so far at this node, for history updates
}

// Worker owns one Lazy-SMP search thread's mutable state: its own board copy
// (via board.Board.Fork), its own move-ordering heuristic tables (these must
// not be shared — concurrent EMA updates from independent threads would
// corrupt each other), its own node counter, and pointers to state shared
// read/write across the whole pool (TT, signals).
type Worker struct {
	ID    int
	Board *board.Board
	Eval  eval.Evaluator
	TT    *tt.Table
	Heur  *picker.Heuristics
	Sig   *Signals

	Nodes     int64
	SelDepth  int
	Contempt  eval.Score

	stack [MaxPly + 4]nodeInfo
	pv    [MaxPly + 1][]board.Move

	callCount int
}

// NewWorker returns a Worker with freshly zeroed heuristic tables, ready to
// search b (which it takes ownership of — callers pass board.Board.Fork()'s
// result, never the root board shared with other workers).
func NewWorker(id int, b *board.Board, ev eval.Evaluator, table *tt.Table, sig *Signals) *Worker {
	return &Worker{
		ID:    id,
		Board: b,
		Eval:  ev,
		TT:    table,
		Sig:   sig,
		Heur: &picker.Heuristics{
			History:      &heur.History{},
			Evasion:      &heur.EvasionHistory{},
			Capture:      &heur.CaptureHistory{},
			MaxGain:      &heur.MaxGain{},
			Counter:      &heur.CounterMove{},
			Continuation: heur.NewContinuationHistory(),
			Killers:      heur.NewKillers(MaxPly + 4),
		},
	}
}

// checkStop runs the "every ~4096 calls" interrupt check spec.md §4.7 step 1
// describes: cheap enough to call on every node without a syscall per call.
func (w *Worker) checkStop(ctx context.Context) bool {
	w.callCount++
	if w.callCount&0xfff != 0 {
		return w.Sig.Stop.Load()
	}
	if contextx.IsCancelled(ctx) {
		w.Sig.Stop.Store(true)
		return true
	}
	return w.Sig.ShouldStop(w.Nodes)
}

func (w *Worker) info(ply int) *nodeInfo { return &w.stack[ply] }
