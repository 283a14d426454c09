package eval

import (
	"context"

	"github.com/corvidchess/corvid/pkg/board"
)

// Probe is the external NNUE collaborator's entire contract: given a
// position, return a centipawn score from the side-to-move's perspective.
// The core never knows how the network is loaded or evaluated; ok is false
// when no network is available (e.g. not yet loaded), in which case the
// caller should fall back to a classical evaluator.
//
// spec.md §6 specifies NNUE as exactly this kind of opaque
// eval(position)->centipawns hook, with incremental accumulator updates
// (keyed on king moves and piece dirty-lists) left entirely to the
// implementation behind Probe.
type Probe func(pos *board.Position) (cp int32, ok bool)

// NNUE adapts a Probe into an Evaluator, falling back to Fallback whenever
// Probe reports !ok.
type NNUE struct {
	Probe    Probe
	Fallback Evaluator
}

var _ Evaluator = NNUE{}

func (n NNUE) Evaluate(ctx context.Context, b *board.Board) Score {
	if n.Probe != nil {
		if cp, ok := n.Probe(b.Position()); ok {
			return Crop(Score(cp))
		}
	}
	if n.Fallback != nil {
		return n.Fallback.Evaluate(ctx, b)
	}
	return Material{}.Evaluate(ctx, b)
}

// DirtyPiece describes one piece movement an incremental NNUE accumulator
// needs to know about, mirroring the put/remove hook points spec.md §6 says
// the core exposes without mandating how an accumulator consumes them.
type DirtyPiece struct {
	Piece board.Piece
	From  board.Square // board.NoSquare if the piece was placed fresh (promotion, initial setup)
	To    board.Square // board.NoSquare if the piece was removed (capture)
}

// AccumulatorObserver is an optional, narrower seam than Probe: a NNUE
// implementation that wants incremental updates rather than a full
// from-scratch Probe call per node can register one of these with the search
// package's Context to be told about each dirty piece as moves are made and
// unmade, instead of re-deriving dirty lists from board state.
type AccumulatorObserver interface {
	OnPieceMoved(dp DirtyPiece)
	OnKingMoved(c board.Color, to board.Square)
}
