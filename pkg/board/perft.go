package board

import (
	"fmt"
	"io"
)

// pseudoLegalMoves generates the full pseudo-legal move set for the side to
// move, picking the evasion-only stage while in check the same way
// pkg/search/picker does, since StageAll never includes StageEvasions.
func pseudoLegalMoves(pos *Position) MoveList {
	if pos.InCheck() {
		return pos.Generate(StageEvasions, nil)
	}
	return pos.Generate(StageAll, nil)
}

// Perft counts leaf positions reached after depth plies of legal play from
// pos, filtering the pseudo-legal generator output through Position.IsLegal,
// per spec.md §4.3's two-stage generate/filter contract and §8's perft
// property. Exported so both the cmd/perft debugging tool and the UCI
// "perft"/"divide" commands share one implementation.
func Perft(pos *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}
	var nodes int64
	for _, m := range pseudoLegalMoves(pos) {
		if !pos.IsLegal(m) {
			continue
		}
		pos.Move(m)
		nodes += Perft(pos, depth-1)
		pos.Unmove(m)
	}
	return nodes
}

// Divide is Perft for depth, additionally writing each legal root move and
// its subtree node count to w before returning the total — the standard
// perft "divide" aid for isolating which root move a movegen bug hides in.
func Divide(pos *Position, depth int, w io.Writer) int64 {
	if depth == 0 {
		return 1
	}
	var nodes int64
	for _, m := range pseudoLegalMoves(pos) {
		if !pos.IsLegal(m) {
			continue
		}
		pos.Move(m)
		count := Perft(pos, depth-1)
		pos.Unmove(m)

		fmt.Fprintf(w, "%v: %v\n", m, count)
		nodes += count
	}
	return nodes
}
