package eval

import (
	"context"

	"github.com/corvidchess/corvid/pkg/board"
)

// Material is the classical fallback evaluator: nominal piece values plus
// piece-square tables, tapered between middlegame and endgame weights by a
// phase counter derived from remaining non-pawn material. Generalizes
// herohde-morlock/pkg/eval/eval.go's Material (which summed NominalValue
// popcount differences only) with the piece-square component spec.md §6
// expects a classical fallback to have, since "material only" scores too
// many positions as equal to usefully test search.
type Material struct{}

var _ Evaluator = Material{}

// pst[piece][square] is in White's orientation (a1=0); Black's values are
// read by mirroring the square vertically.
type pst [board.NumPieceTypes][64]int16

var (
	pstMidgame pst
	pstEndgame pst
)

func init() {
	pstMidgame[board.Pawn] = [64]int16{
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	pstMidgame[board.Knight] = [64]int16{
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	}
	pstMidgame[board.Bishop] = [64]int16{
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	}
	pstMidgame[board.Rook] = [64]int16{
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	pstMidgame[board.Queen] = [64]int16{
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-10, 5, 5, 5, 5, 5, 0, -10,
		0, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	}
	pstMidgame[board.King] = [64]int16{
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	}

	pstEndgame[board.Pawn] = pstMidgame[board.Pawn]
	pstEndgame[board.Knight] = pstMidgame[board.Knight]
	pstEndgame[board.Bishop] = pstMidgame[board.Bishop]
	pstEndgame[board.Rook] = pstMidgame[board.Rook]
	pstEndgame[board.Queen] = pstMidgame[board.Queen]
	pstEndgame[board.King] = [64]int16{
		-50, -30, -30, -30, -30, -30, -30, -50,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-50, -40, -30, -20, -20, -30, -40, -50,
	}
}

// phaseWeight[pt] contributes to the 0..totalPhase taper; only non-pawn,
// non-king pieces count, matching the conventional Fruit/Stockfish taper.
var phaseWeight = [board.NumPieceTypes]int{
	board.Knight: 1,
	board.Bishop: 1,
	board.Rook:   2,
	board.Queen:  4,
}

const totalPhase = 4*1 + 4*1 + 4*2 + 2*4 // 24, both sides' starting non-pawn material

func mirror(sq board.Square) board.Square {
	return board.NewSquare(sq.File(), 7-sq.Rank())
}

func (Material) Evaluate(_ context.Context, b *board.Board) Score {
	pos := b.Position()

	var mg, eg [board.NumColors]int
	phase := 0

	for c := board.ZeroColor; c < board.NumColors; c++ {
		for pt := board.ZeroPieceType; pt < board.NumPieceTypes; pt++ {
			pieces := pos.Pieces(c, pt)
			for pieces != 0 {
				sq := pieces.PopLSB()
				mg[c] += pt.NominalValue()
				eg[c] += pt.NominalValue()

				pstSq := sq
				if c == board.Black {
					pstSq = mirror(sq)
				}
				mg[c] += int(pstMidgame[pt][pstSq])
				eg[c] += int(pstEndgame[pt][pstSq])

				phase += phaseWeight[pt]
			}
		}
	}

	if phase > totalPhase {
		phase = totalPhase
	}

	mgScore := mg[board.White] - mg[board.Black]
	egScore := eg[board.White] - eg[board.Black]
	blended := (mgScore*phase + egScore*(totalPhase-phase)) / totalPhase

	if b.Turn() == board.Black {
		blended = -blended
	}
	return Crop(Score(blended))
}
