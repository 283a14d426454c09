package search

import (
	"context"
	"sort"
	"time"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

const aspirationInitialDelta = eval.Score(18)

// InfoFunc is called once per completed (or aspiration-widened) root search
// at each depth, letting the caller (typically the UCI driver) emit an
// "info" line as soon as a PV is ready rather than waiting for the whole
// iteration to finish.
type InfoFunc func(PV)

type rootMove struct {
	move  board.Move
	score eval.Score
	pv    []board.Move
}

func legalRootMoves(pos *board.Position) []board.Move {
	var out []board.Move
	for _, m := range pos.Generate(board.StageAll, nil) {
		if pos.IsLegal(m) {
			out = append(out, m)
		}
	}
	return out
}

// Iterate runs iterative deepening from depth 1 to maxDepth (or until ctx is
// done / w.Sig signals a stop), returning the best multiPV lines found at the
// last completed depth. Grounded on herohde-morlock/pkg/search/search.go's
// iterative-deepening driver, generalized with aspiration windows (spec.md
// §4.10) and MultiPV (searching the root move list with the already-ranked
// prefix excluded from each subsequent PV slot, the standard MultiPV scheme).
func (w *Worker) Iterate(ctx context.Context, maxDepth, multiPV int, report InfoFunc) []PV {
	pos := w.Board.Position()
	moves := legalRootMoves(pos)
	if len(moves) == 0 {
		return nil
	}
	if multiPV < 1 {
		multiPV = 1
	}
	if multiPV > len(moves) {
		multiPV = len(moves)
	}

	roots := make([]rootMove, len(moves))
	for i, m := range moves {
		roots[i] = rootMove{move: m}
	}

	var results []PV
	for depth := 1; depth <= maxDepth; depth++ {
		if w.checkStop(ctx) {
			break
		}
		if depth > 1 && !w.Sig.SoftDeadline.IsZero() && time.Now().After(w.Sig.SoftDeadline) {
			break
		}

		for pvIdx := 0; pvIdx < multiPV; pvIdx++ {
			var score eval.Score
			var pv []board.Move

			if depth >= 5 {
				delta := aspirationInitialDelta
				alpha := eval.Max(eval.NegInfinite, roots[pvIdx].score-delta)
				beta := eval.Min(eval.Infinite, roots[pvIdx].score+delta)
				for {
					score, pv = w.searchRootMove(ctx, roots, pvIdx, depth, alpha, beta)
					if w.Sig.Stop.Load() {
						break
					}
					if score <= alpha {
						beta = (alpha + beta) / 2
						alpha = eval.Max(eval.NegInfinite, score-delta)
						if report != nil {
							report(PV{Moves: pv, Score: score, Depth: depth, SelDepth: w.SelDepth, Nodes: w.Nodes, Bound: "upperbound"})
						}
					} else if score >= beta {
						beta = eval.Min(eval.Infinite, score+delta)
						if report != nil {
							report(PV{Moves: pv, Score: score, Depth: depth, SelDepth: w.SelDepth, Nodes: w.Nodes, Bound: "lowerbound"})
						}
					} else {
						break
					}
					delta += delta / 2
				}
			} else {
				score, pv = w.searchRootMove(ctx, roots, pvIdx, depth, eval.NegInfinite, eval.Infinite)
			}

			if w.Sig.Stop.Load() {
				break
			}

			roots[pvIdx].score = score
			roots[pvIdx].pv = pv
			if report != nil {
				report(PV{Moves: pv, Score: score, Depth: depth, SelDepth: w.SelDepth, Nodes: w.Nodes})
			}
		}

		if w.Sig.Stop.Load() {
			break
		}

		out := make([]PV, multiPV)
		for i := 0; i < multiPV; i++ {
			out[i] = PV{Moves: roots[i].pv, Score: roots[i].score, Depth: depth, SelDepth: w.SelDepth, Nodes: w.Nodes}
		}
		results = out
	}

	return results
}

// searchRootMove searches the root candidates roots[pvIdx:] at depth,
// returning the best score/PV among them and promoting the winner to
// roots[pvIdx] so the next depth (or the next MultiPV slot) sees it first.
func (w *Worker) searchRootMove(ctx context.Context, roots []rootMove, pvIdx, depth int, alpha, beta eval.Score) (eval.Score, []board.Move) {
	pos := w.Board.Position()
	info := w.info(0)

	best := eval.NegInfinite
	var bestPV []board.Move
	bestIdx := pvIdx

	for i := pvIdx; i < len(roots); i++ {
		m := roots[i].move

		w.Board.Push(m)
		info.move = m
		info.piece = pos.PieceAt(m.To())

		var score eval.Score
		if i == pvIdx {
			score = -w.AlphaBeta(ctx, -beta, -alpha, depth-1, 1, false, true)
		} else {
			score = -w.AlphaBeta(ctx, -alpha-1, -alpha, depth-1, 1, true, true)
			if score > alpha && score < beta {
				score = -w.AlphaBeta(ctx, -beta, -alpha, depth-1, 1, false, true)
			}
		}

		w.Board.Pop(m)
		roots[i].score = score

		if w.Sig.Stop.Load() {
			return best, bestPV
		}

		if score > best {
			best = score
			bestIdx = i
			bestPV = append([]board.Move{m}, w.pv[1]...)
			if score > alpha {
				alpha = score
			}
		}
	}

	if bestIdx != pvIdx {
		roots[pvIdx], roots[bestIdx] = roots[bestIdx], roots[pvIdx]
	}

	// Keep the untried tail roughly ranked so the next iteration's scout
	// order (and the next MultiPV slot's starting guess) is sensible.
	tail := roots[pvIdx+1:]
	sort.SliceStable(tail, func(i, j int) bool { return tail[i].score > tail[j].score })

	return best, bestPV
}
