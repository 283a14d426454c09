package board

// Board augments Position with the game-history bookkeeping a single
// Position doesn't need to carry on its own: repetition detection and the
// fifty-move counter's draw threshold. Grounded on
// herohde-morlock/pkg/board/board.go's Board wrapper, adapted from its
// linked-list node history to a flat hash slice since Position now owns its
// own undo stack for Move/Unmove and doesn't need Board to replay it.
type Board struct {
	pos  *Position
	hist []Hash // the starting position's Hash, then one Hash per ply played
}

const (
	repetitionDrawCount = 3
	noProgressPlyLimit  = 100 // fifty-move rule, counted in halfmoves
)

// NewBoard returns a Board at the standard starting position.
func NewBoard() *Board {
	p := NewPosition()
	return &Board{pos: p, hist: append(make([]Hash, 0, 256), p.Hash())}
}

// NewBoardFromFEN returns a Board set to the given FEN.
func NewBoardFromFEN(fenStr string) (*Board, error) {
	p := NewPosition()
	if err := p.SetFEN(fenStr); err != nil {
		return nil, err
	}
	return &Board{pos: p, hist: append(make([]Hash, 0, 256), p.Hash())}, nil
}

func (b *Board) Position() *Position { return b.pos }
func (b *Board) Turn() Color         { return b.pos.Turn() }

// Push plays m and records its resulting hash for repetition tracking.
func (b *Board) Push(m Move) {
	b.pos.Move(m)
	b.hist = append(b.hist, b.pos.Hash())
}

// Pop undoes the most recently pushed move, which must be m.
func (b *Board) Pop(m Move) {
	b.pos.Unmove(m)
	b.hist = b.hist[:len(b.hist)-1]
}

// Fork returns an independent copy of the board suitable for handing to a
// Lazy-SMP search worker: both the position and its history are deep-copied
// so the worker's Push/Pop never touches the parent's state, the same
// isolation herohde-morlock/pkg/board/board.go's Fork gives each search
// thread.
func (b *Board) Fork() *Board {
	hist := make([]Hash, len(b.hist))
	copy(hist, b.hist)

	posCopy := *b.pos
	posCopy.states = append([]positionState(nil), b.pos.states...)

	return &Board{pos: &posCopy, hist: hist}
}

// repetitionCount returns how many times the current position has occurred,
// including itself, searching back only as far as the halfmove clock allows
// (any capture, pawn move, or castle beyond that point makes the position
// unreachable again).
func (b *Board) repetitionCount() int {
	n := len(b.hist)
	if n == 0 {
		return 1
	}
	limit := n - 1 - b.pos.HalfmoveClock()
	if limit < 0 {
		limit = 0
	}
	target := b.hist[n-1]
	count := 1
	for i := n - 2; i >= limit; i-- {
		if b.hist[i] == target {
			count++
		}
	}
	return count
}

// IsRepetition reports whether the current position has recurred enough
// times (three, including the present occurrence) to claim a draw.
func (b *Board) IsRepetition() bool {
	return b.repetitionCount() >= repetitionDrawCount
}

// IsTwofoldRepetition is the weaker form search uses mid-tree: a single
// earlier occurrence of the current position is treated as drawish, since an
// opponent given the choice to repeat generally will.
func (b *Board) IsTwofoldRepetition() bool {
	return b.repetitionCount() >= 2
}

// IsDrawByNoProgress reports the fifty-move rule.
func (b *Board) IsDrawByNoProgress() bool {
	return b.pos.HalfmoveClock() >= noProgressPlyLimit
}

// IsDraw reports the non-material automatic draw conditions search must
// score as zero. Insufficient material is intentionally not checked here: it
// needs piece counts the evaluator already computes, so it lives in
// eval.InsufficientMaterial instead of duplicating that scan.
func (b *Board) IsDraw() bool {
	return b.IsRepetition() || b.IsDrawByNoProgress()
}

// AdjudicateNoLegalMoves reports the game result when the side to move has no
// legal moves: checkmate if in check, stalemate otherwise. hasLegalMove is
// supplied by the caller (the search root or the UCI driver), since computing
// it requires a full legal-move scan Board itself has no reason to perform.
func (b *Board) AdjudicateNoLegalMoves(hasLegalMove bool) (over, mate bool) {
	if hasLegalMove {
		return false, false
	}
	return true, b.pos.InCheck()
}
