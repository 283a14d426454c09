package search

import (
	"context"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search/picker"
	"github.com/corvidchess/corvid/pkg/tt"
)

const deltaMargin = 200

// recaptureDepth is the qsDepth past which quiescence drops from "all
// captures" to "recapture-only" (captures landing on the square the
// previous move vacated to), grounded on original_source/movepick.cpp's
// init_q_search switching to gen_recaptures once depth falls below
// -4 plies from the horizon.
const recaptureDepth = 5

// QSearch resolves captures/checks at the horizon so the search never
// evaluates a position in the middle of an exchange. Grounded on
// herohde-morlock/pkg/search/alphabeta.go's qSearch stand-pat/delta-pruning
// shape, extended with check evasions and a TT probe/store per spec.md §4.8.
// Move selection goes through pkg/search/picker's captures-only and evasion
// pipelines (spec.md §4.6), not hand-rolled generation. qsDepth counts plies
// below the horizon: 0 allows quiet checks, 1..4 captures only, 5+
// recapture-only on the prior move's destination square.
func (w *Worker) QSearch(ctx context.Context, alpha, beta eval.Score, ply, qsDepth int) eval.Score {
	if w.checkStop(ctx) {
		return w.Eval.Evaluate(ctx, w.Board)
	}
	w.Nodes++
	if ply > w.SelDepth {
		w.SelDepth = ply
	}
	if ply >= MaxPly {
		return w.Eval.Evaluate(ctx, w.Board)
	}

	pos := w.Board.Position()
	inCheck := pos.InCheck()
	hash := pos.Hash()

	var ttMove board.Move
	if b, d, s, _, m, ok := w.TT.Probe(hash, ply); ok {
		ttMove = m
		if d >= 0 {
			switch {
			case b == tt.BoundExact:
				return s
			case b == tt.BoundLower && s >= beta:
				return s
			case b == tt.BoundUpper && s <= alpha:
				return s
			}
		}
	}

	var best eval.Score
	var futilityBase eval.Score
	if !inCheck {
		best = w.Eval.Evaluate(ctx, w.Board)
		if best >= beta {
			return best
		}
		if best > alpha {
			alpha = best
		}
		futilityBase = best + deltaMargin
	} else {
		best = -eval.Infinite
	}

	var cfg picker.Config
	cfg.TTMove = ttMove
	if !inCheck {
		cfg.CapturesOnly = true
		cfg.SEEThreshold = 0
		switch {
		case qsDepth == 0:
			cfg.QuietChecks = true
		case qsDepth >= recaptureDepth:
			cfg.HasRecapture = true
			cfg.RecaptureSquare = w.info(ply - 1).move.To()
			cfg.SEEThreshold = picker.NoSEEThreshold
		}
	}
	pk := picker.New(pos, w.Heur, ply, cfg)

	bestMove := board.NoMove
	hasMoves := false
	for {
		m, ok := pk.Next()
		if !ok {
			break
		}
		isCapture := pos.PieceAt(m.To()) != board.NoPiece || m.IsEnPassant()

		if !inCheck && isCapture && !cfg.HasRecapture {
			if futilityBase+eval.Score(capturedValue(pos, m)) <= alpha && pos.SEE(m) <= 0 {
				continue
			}
		}
		if !pos.IsLegal(m) {
			continue
		}
		hasMoves = true

		w.Board.Push(m)
		score := -w.QSearch(ctx, -beta, -alpha, ply+1, qsDepth+1)
		w.Board.Pop(m)

		if w.Sig.Stop.Load() {
			return alpha
		}

		if score > best {
			best = score
			bestMove = m
			if score > alpha {
				alpha = score
				if score >= beta {
					break
				}
			}
		}
	}

	if inCheck && !hasMoves {
		return eval.MatedIn(ply)
	}

	bound := tt.BoundUpper
	if best >= beta {
		bound = tt.BoundLower
	}
	w.TT.Store(hash, bound, ply, 0, best, best, bestMove)

	return best
}

func capturedValue(pos *board.Position, m board.Move) int {
	if m.IsEnPassant() {
		return board.Pawn.NominalValue()
	}
	return pos.PieceAt(m.To()).Type().NominalValue()
}
