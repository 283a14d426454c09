package search

import (
	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// PV is one line of a finished (or in-progress) search: the move sequence,
// its score from the root side's perspective, the depth/seldepth reached,
// and the node count spent reaching it. Grounded on spec.md's "Root move =
// (move, prev_score, score, depth, pv, ponder_move)" record.
type PV struct {
	Moves    []board.Move
	Score    eval.Score
	Depth    int
	SelDepth int
	Nodes    int64
	Bound    string // "", "lowerbound", or "upperbound" (aspiration fail high/low)
}

// Move is the first move of pv, or board.NoMove if pv is empty.
func (pv PV) Move() board.Move {
	if len(pv.Moves) == 0 {
		return board.NoMove
	}
	return pv.Moves[0]
}

// Ponder is the second move of pv (the move we expect to ponder on), or
// board.NoMove if the line is too short.
func (pv PV) Ponder() board.Move {
	if len(pv.Moves) < 2 {
		return board.NoMove
	}
	return pv.Moves[1]
}

func (w *Worker) rootPV(score eval.Score, depth int) PV {
	line := w.pv[0]
	moves := make([]board.Move, len(line))
	copy(moves, line)
	return PV{
		Moves:    moves,
		Score:    score,
		Depth:    depth,
		SelDepth: w.SelDepth,
		Nodes:    w.Nodes,
	}
}
