package eval

import (
	"context"

	"github.com/corvidchess/corvid/pkg/board"
)

// Evaluator is a static position evaluator, always from the perspective of
// the side to move. Grounded on herohde-morlock/pkg/eval/eval.go's Evaluator
// interface; search treats NNUE and Material as interchangeable
// implementations behind this one seam, per spec.md's "eval is an opaque
// hook" design.
type Evaluator interface {
	Evaluate(ctx context.Context, b *board.Board) Score
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(ctx context.Context, b *board.Board) Score

func (f EvaluatorFunc) Evaluate(ctx context.Context, b *board.Board) Score { return f(ctx, b) }

// InsufficientMaterial reports whether neither side has enough material left
// to force checkmate: K vs K, K+N vs K, or K+B vs K (same- or opposite-colored
// bishops both qualify, since a lone bishop can never mate unassisted).
func InsufficientMaterial(pos *board.Position) bool {
	if pos.ByType(board.Pawn) != 0 || pos.ByType(board.Rook) != 0 || pos.ByType(board.Queen) != 0 {
		return false
	}
	minor := pos.ByType(board.Knight) | pos.ByType(board.Bishop)
	return minor.PopCount() <= 1
}
