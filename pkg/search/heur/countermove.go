package heur

import "github.com/corvidchess/corvid/pkg/board"

const continuationMax = 1 << 14

// CounterMove records, for each (piece, destination) the opponent's last
// move ended on, the move that has most often refuted it — the single best
// "answer" to look at first when that same pattern recurs. Grounded on
// original_source/movepick.h's counter_move_full_stats.
type CounterMove struct {
	table [board.NumColors * board.NumPieceTypes][64]board.Move
}

func (c *CounterMove) Get(prev board.Piece, prevTo board.Square) board.Move {
	return c.table[pieceIndex(prev)][prevTo]
}

func (c *CounterMove) Update(prev board.Piece, prevTo board.Square, reply board.Move) {
	c.table[pieceIndex(prev)][prevTo] = reply
}

// ContinuationHistory generalizes counter-move history (looking one ply
// back) and follow-up-move history (looking two plies back) into a single
// table keyed by (earlier piece, earlier to, this piece, this to), since
// both are the same "how well did this move pair perform" statistic at a
// different ply offset. Grounded on
// original_source/movepick.h's counter_move_history_stats and
// counter_follow_up_move_stats, which are structurally identical templates
// differing only in which earlier ply they index by.
const numPieceSlots = int(board.NumColors) * int(board.NumPieceTypes)

type ContinuationHistory struct {
	// [prev piece][prev to][this piece][this to]
	table [numPieceSlots][64][numPieceSlots][64]int16
}

func NewContinuationHistory() *ContinuationHistory {
	return &ContinuationHistory{}
}

func (c *ContinuationHistory) Score(prev board.Piece, prevTo board.Square, p board.Piece, to board.Square) int {
	return int(c.table[pieceIndex(prev)][prevTo][pieceIndex(p)][to])
}

func (c *ContinuationHistory) Update(prev board.Piece, prevTo board.Square, p board.Piece, to board.Square, bonus int) {
	statUpdate(&c.table[pieceIndex(prev)][prevTo][pieceIndex(p)][to], bonus, continuationMax)
}
