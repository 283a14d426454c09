package heur

import "github.com/corvidchess/corvid/pkg/board"

const historyMax = 1 << 14

// History is the "butterfly" quiet-move history table: indexed by the
// moving side's color and the move's from/to squares, it tracks how often a
// quiet move has caused a beta cutoff versus how often it was tried and
// failed to. Grounded on original_source/movepick.h's piece_square_stats
// template instantiated for plain history.
type History struct {
	table [board.NumColors][64][64]int16
}

func (h *History) Score(c board.Color, m board.Move) int {
	return int(h.table[c][m.From()][m.To()])
}

// Update rewards m with bonus on a cutoff and penalizes every move in
// quietsSearched that was tried first and failed, the standard "history
// gravity" scheme that keeps the table from saturating toward one move.
func (h *History) Update(c board.Color, m board.Move, bonus int, quietsSearched []board.Move) {
	statUpdate(&h.table[c][m.From()][m.To()], bonus, historyMax)
	for _, q := range quietsSearched {
		if q == m {
			continue
		}
		statUpdate(&h.table[c][q.From()][q.To()], -bonus, historyMax)
	}
}

// EvasionHistory scores quiet check-evasion moves separately from ordinary
// quiets, since a move's value when forced to answer check correlates
// poorly with its value as a free choice (spec.md §4.9's evasion scoring
// stage). Same table shape and update rule as History.
type EvasionHistory struct {
	table [board.NumColors][64][64]int16
}

func (h *EvasionHistory) Score(c board.Color, m board.Move) int {
	return int(h.table[c][m.From()][m.To()])
}

func (h *EvasionHistory) Update(c board.Color, m board.Move, bonus int) {
	statUpdate(&h.table[c][m.From()][m.To()], bonus, historyMax)
}

// CaptureHistory scores captures by (moving piece, destination, captured
// piece type), supplementing MVV ordering with how well a given capture
// shape has performed historically.
type CaptureHistory struct {
	table [board.NumColors * board.NumPieceTypes][64][board.NumPieceTypes]int16
}

func pieceIndex(p board.Piece) int {
	return int(p.Color())*int(board.NumPieceTypes) + int(p.Type())
}

func (h *CaptureHistory) Score(p board.Piece, to board.Square, captured board.PieceType) int {
	return int(h.table[pieceIndex(p)][to][captured])
}

func (h *CaptureHistory) Update(p board.Piece, to board.Square, captured board.PieceType, bonus int) {
	statUpdate(&h.table[pieceIndex(p)][to][captured], bonus, historyMax)
}

// MaxGain records, per (piece, destination), the largest positional eval
// swing seen when that piece lands on that square, smoothed rather than
// saturating-EMA'd: original_source/movepick.h's max_gain_stats uses
// *p_gain += (gain - *p_gain + 8) >> 4, a plain low-pass filter rather than
// the bonus/penalty scheme the other tables use, since "gain" here is a
// measured quantity (eval delta), not a win/loss signal.
type MaxGain struct {
	table [board.NumColors * board.NumPieceTypes][64]int16
}

func (g *MaxGain) Get(p board.Piece, to board.Square) int {
	return int(g.table[pieceIndex(p)][to])
}

func (g *MaxGain) Update(p board.Piece, to board.Square, gain int) {
	cell := &g.table[pieceIndex(p)][to]
	v := int(*cell)
	v += (gain - v + 8) >> 4
	*cell = int16(v)
}
