package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// positionState holds the fields Move cannot reconstruct by reversing the
// move itself: castling rights, en passant file, the halfmove clock, the
// captured piece, and the pre-move hash. Position keeps one of these per
// in-flight ply in a slice whose capacity (256 plies plus positionStackGuard
// spare entries) is reserved up front, the way
// herohde-morlock/pkg/board/board.go preallocates its node history instead
// of allocating per-ply during search.
type positionState struct {
	castling Castling
	epFile   File
	epSet    bool
	halfmove int
	captured Piece
	hash     Hash
}

const positionStackGuard = 4

// Position is a bitboard chess position: mailbox array plus redundant
// occupancy bitboards, mutated in place by Move/Unmove rather than copied,
// per spec.md §4.2's make/unmake model.
type Position struct {
	board   [NumSquares]Piece
	byColor [NumColors]Bitboard
	byType  [NumPieceTypes]Bitboard

	turn     Color
	castling Castling
	epFile   File
	epSet    bool
	halfmove int
	fullmove int
	hash     Hash
	kingSq   [NumColors]Square

	states []positionState
}

// NewPosition returns the standard initial position.
func NewPosition() *Position {
	p := &Position{states: make([]positionState, 0, 256+positionStackGuard)}
	if err := p.SetFEN(StartFEN); err != nil {
		panic("board: NewPosition: invalid StartFEN: " + err.Error())
	}
	return p
}

func (p *Position) PieceAt(sq Square) Piece { return p.board[sq] }

func (p *Position) Turn() Color            { return p.turn }
func (p *Position) Castling() Castling     { return p.castling }
func (p *Position) Hash() Hash             { return p.hash }
func (p *Position) HalfmoveClock() int     { return p.halfmove }
func (p *Position) FullmoveNumber() int    { return p.fullmove }
func (p *Position) KingSquare(c Color) Square { return p.kingSq[c] }

func (p *Position) Occupied() Bitboard          { return p.byColor[White] | p.byColor[Black] }
func (p *Position) ByColor(c Color) Bitboard    { return p.byColor[c] }
func (p *Position) ByType(pt PieceType) Bitboard { return p.byType[pt] }
func (p *Position) Pieces(c Color, pt PieceType) Bitboard {
	return p.byColor[c] & p.byType[pt]
}

// EnPassantFile returns the file of the pawn that just double-pushed, if any.
func (p *Position) EnPassantFile() (File, bool) { return p.epFile, p.epSet }

// EnPassantSquare returns the square a capturing pawn would move to, if an en
// passant capture is currently available.
func (p *Position) EnPassantSquare() (Square, bool) {
	if !p.epSet {
		return NoSquare, false
	}
	rank := Rank6
	if p.turn == Black {
		rank = Rank3
	}
	return NewSquare(p.epFile, rank), true
}

func (p *Position) put(pc Piece, sq Square) {
	p.board[sq] = pc
	mask := BitMask(sq)
	p.byColor[pc.Color()] |= mask
	p.byType[pc.Type()] |= mask
	p.hash ^= pieceKey(pc.Color(), pc.Type(), sq)
	if pc.Type() == King {
		p.kingSq[pc.Color()] = sq
	}
}

func (p *Position) remove(sq Square) Piece {
	pc := p.board[sq]
	if pc == NoPiece {
		return NoPiece
	}
	p.board[sq] = NoPiece
	mask := BitMask(sq)
	p.byColor[pc.Color()] &^= mask
	p.byType[pc.Type()] &^= mask
	p.hash ^= pieceKey(pc.Color(), pc.Type(), sq)
	return pc
}

// castleRookSquares maps a standard-chess king destination to the rook's
// start/end squares. Only reachable for the four standard castle moves:
// generateCastles never produces any other king destination for a castle
// move, and SetFEN rejects castling-rights characters other than KQkq, so
// there is no path to a Chess960 castle destination here.
func castleRookSquares(c Color, kingTo Square) (from, to Square) {
	switch {
	case c == White && kingTo == G1:
		return H1, F1
	case c == White && kingTo == C1:
		return A1, D1
	case c == Black && kingTo == G8:
		return H8, F8
	case c == Black && kingTo == C8:
		return A8, D8
	default:
		panic("board: castleRookSquares: invalid castle destination")
	}
}

// Move applies m, pushing enough state onto the undo stack for a matching
// Unmove to restore the position exactly. m must be pseudo-legal (or
// NullMove); Move does not itself check legality, matching the two-stage
// generate/filter design spec.md §4.3 describes.
func (p *Position) Move(m Move) {
	st := positionState{castling: p.castling, epFile: p.epFile, epSet: p.epSet, halfmove: p.halfmove, hash: p.hash}

	if m.IsNull() {
		if p.epSet {
			p.hash ^= enPassantKey(p.epFile)
			p.epSet = false
		}
		p.hash ^= turnKey()
		p.turn = p.turn.Opponent()
		p.halfmove++
		st.captured = NoPiece
		p.states = append(p.states, st)
		return
	}

	from, to := m.From(), m.To()
	moving := p.board[from]
	color := moving.Color()

	capturedSq := to
	if m.IsEnPassant() {
		capturedSq = NewSquare(to.File(), from.Rank())
	}
	captured := p.board[capturedSq]
	st.captured = captured

	if captured != NoPiece {
		p.remove(capturedSq)
	}

	p.remove(from)
	if m.IsPromotion() {
		p.put(NewPiece(color, m.PromotionPiece()), to)
	} else {
		p.put(moving, to)
	}

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(color, to)
		rook := p.remove(rookFrom)
		p.put(rook, rookTo)
	}

	newCastling := p.castling &^ (CastleMask(from) | CastleMask(to))
	if newCastling != p.castling {
		p.hash ^= castlingKey(p.castling) ^ castlingKey(newCastling)
		p.castling = newCastling
	}

	if p.epSet {
		p.hash ^= enPassantKey(p.epFile)
		p.epSet = false
	}
	if moving.Type() == Pawn {
		diff := int(to) - int(from)
		if diff == 16 || diff == -16 {
			p.epFile = from.File()
			p.epSet = true
			p.hash ^= enPassantKey(p.epFile)
		}
	}

	if moving.Type() == Pawn || captured != NoPiece {
		p.halfmove = 0
	} else {
		p.halfmove++
	}
	if color == Black {
		p.fullmove++
	}

	p.turn = p.turn.Opponent()
	p.hash ^= turnKey()

	p.states = append(p.states, st)
}

// Unmove reverses the most recent Move(m) call. m must be the exact move
// just made; Unmove trusts its caller the same way the teacher's make/unmake
// pair does, since the search stack always unwinds in LIFO order.
func (p *Position) Unmove(m Move) {
	n := len(p.states) - 1
	st := p.states[n]
	p.states = p.states[:n]

	p.turn = p.turn.Opponent()

	if m.IsNull() {
		p.castling = st.castling
		p.epFile = st.epFile
		p.epSet = st.epSet
		p.halfmove = st.halfmove
		p.hash = st.hash
		return
	}

	from, to := m.From(), m.To()
	color := p.turn

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(color, to)
		rook := p.remove(rookTo)
		p.put(rook, rookFrom)
	}

	moved := p.remove(to)
	if m.IsPromotion() {
		p.put(NewPiece(color, Pawn), from)
	} else {
		p.put(moved, from)
	}

	if st.captured != NoPiece {
		capturedSq := to
		if m.IsEnPassant() {
			capturedSq = NewSquare(to.File(), from.Rank())
		}
		p.put(st.captured, capturedSq)
	}

	p.castling = st.castling
	p.epFile = st.epFile
	p.epSet = st.epSet
	p.halfmove = st.halfmove
	if color == Black {
		p.fullmove--
	}
	p.hash = st.hash
}

// IsAttacked reports whether sq is attacked by any piece of color by, under
// the position's current occupancy.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	occ := p.Occupied()
	if KnightAttackboard(sq)&p.Pieces(by, Knight) != 0 {
		return true
	}
	if KingAttackboard(sq)&p.Pieces(by, King) != 0 {
		return true
	}
	if PawnAttackSquares(by.Opponent(), sq)&p.Pieces(by, Pawn) != 0 {
		return true
	}
	if BishopAttackboard(sq, occ)&(p.Pieces(by, Bishop)|p.Pieces(by, Queen)) != 0 {
		return true
	}
	if RookAttackboard(sq, occ)&(p.Pieces(by, Rook)|p.Pieces(by, Queen)) != 0 {
		return true
	}
	return false
}

// Attackers returns every piece, of either color, attacking sq under the
// given (possibly hypothetical) occupancy. Used by SEE to reveal x-ray
// attackers as pieces are removed from the exchange.
func (p *Position) Attackers(sq Square, occ Bitboard) Bitboard {
	var att Bitboard
	att |= KnightAttackboard(sq) & p.byType[Knight]
	att |= KingAttackboard(sq) & p.byType[King]
	att |= PawnAttackSquares(Black, sq) & p.Pieces(White, Pawn)
	att |= PawnAttackSquares(White, sq) & p.Pieces(Black, Pawn)
	att |= BishopAttackboard(sq, occ) & (p.byType[Bishop] | p.byType[Queen])
	att |= RookAttackboard(sq, occ) & (p.byType[Rook] | p.byType[Queen])
	return att & occ
}

func (p *Position) InCheck() bool {
	return p.IsAttacked(p.kingSq[p.turn], p.turn.Opponent())
}

// GivesCheck reports whether making m would check the opponent, by playing m
// and testing the enemy king. Used by the main search's move loop.
func (p *Position) GivesCheck(m Move) bool {
	mover := p.turn
	p.Move(m)
	check := p.IsAttacked(p.kingSq[mover.Opponent()], mover)
	p.Unmove(m)
	return check
}

// IsLegal reports whether the pseudo-legal move m leaves the mover's own king
// safe. Implemented by make/unmake rather than a pin-based fast path so it
// stays correct for every special case (en passant discovered check along a
// rank, castling through check) without duplicating that logic; Pinned is
// offered separately for callers that want to skip this check for
// provably-unpinned, non-king, non-en-passant moves (no caller in this
// module does so today).
func (p *Position) IsLegal(m Move) bool {
	mover := p.turn
	p.Move(m)
	legal := !p.IsAttacked(p.kingSq[mover], mover.Opponent())
	p.Unmove(m)
	return legal
}

// Pinned returns the squares of color c's pieces that are absolutely pinned
// to c's king by an enemy slider.
func (p *Position) Pinned(c Color) Bitboard {
	king := p.kingSq[c]
	own := p.byColor[c]
	enemy := p.byColor[c.Opponent()]

	var pinned Bitboard

	rookXray := RookAttackboard(king, enemy) & (p.Pieces(c.Opponent(), Rook) | p.Pieces(c.Opponent(), Queen))
	for rookXray != 0 {
		sq := rookXray.PopLSB()
		between := Between(king, sq) & own
		if between.PopCount() == 1 {
			pinned |= between
		}
	}

	bishopXray := BishopAttackboard(king, enemy) & (p.Pieces(c.Opponent(), Bishop) | p.Pieces(c.Opponent(), Queen))
	for bishopXray != 0 {
		sq := bishopXray.PopLSB()
		between := Between(king, sq) & own
		if between.PopCount() == 1 {
			pinned |= between
		}
	}

	return pinned
}

// SEE performs static exchange evaluation on the capture/non-capture move m,
// returning the net material gain (in centipawns) to the side moving if both
// sides recapture with their least valuable attacker down to a quiet
// position. The swap algorithm is the standard chess-programming-wiki one;
// spec.md §4.9 requires it for capture ordering and losing-capture pruning.
func (p *Position) SEE(m Move) int {
	to, from := m.To(), m.From()
	attacker := p.board[from]

	var gain [32]int
	depth := 0

	if m.IsEnPassant() {
		gain[0] = Pawn.NominalValue()
	} else {
		gain[0] = p.board[to].Type().NominalValue()
	}

	occ := p.Occupied().Clear(from)
	if m.IsEnPassant() {
		occ = occ.Clear(NewSquare(to.File(), from.Rank()))
	}

	attackerValue := attacker.Type().NominalValue()
	if m.IsPromotion() {
		attackerValue = m.PromotionPiece().NominalValue()
	}
	sideToMove := attacker.Color().Opponent()

	for {
		attackers := p.Attackers(to, occ) & occ
		ours := attackers & p.byColor[sideToMove]
		if ours == 0 {
			break
		}

		leastSq := NoSquare
		leastVal := 1 << 30
		tmp := ours
		for tmp != 0 {
			sq := tmp.PopLSB()
			v := p.board[sq].Type().NominalValue()
			if v < leastVal {
				leastVal = v
				leastSq = sq
			}
		}

		depth++
		gain[depth] = attackerValue - gain[depth-1]

		occ = occ.Clear(leastSq)
		attackerValue = leastVal
		sideToMove = sideToMove.Opponent()
	}

	for depth > 0 {
		gain[depth-1] = -max(-gain[depth-1], gain[depth])
		depth--
	}
	return gain[0]
}

// SetFEN resets the position to the given Forsyth-Edwards string.
func (p *Position) SetFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return fmt.Errorf("board: SetFEN: need at least 4 fields, got %d", len(fields))
	}

	*p = Position{states: p.states[:0]}
	if p.states == nil {
		p.states = make([]positionState, 0, 256+positionStackGuard)
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return fmt.Errorf("board: SetFEN: expected 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := Rank(7 - i)
		file := ZeroFile
		for _, r := range rankStr {
			if r >= '1' && r <= '8' {
				file += File(r - '0')
				continue
			}
			pt, ok := ParsePieceType(r)
			if !ok {
				return fmt.Errorf("board: SetFEN: invalid piece char %q", r)
			}
			color := Black
			if r >= 'A' && r <= 'Z' {
				color = White
			}
			if file >= NumFiles {
				return fmt.Errorf("board: SetFEN: rank %d overflows files", i)
			}
			p.put(NewPiece(color, pt), NewSquare(file, rank))
			file++
		}
	}

	switch fields[1] {
	case "w":
		p.turn = White
	case "b":
		p.turn = Black
		p.hash ^= turnKey()
	default:
		return fmt.Errorf("board: SetFEN: invalid side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for _, r := range fields[2] {
			switch r {
			case 'K':
				p.castling |= WhiteKingSide
			case 'Q':
				p.castling |= WhiteQueenSide
			case 'k':
				p.castling |= BlackKingSide
			case 'q':
				p.castling |= BlackQueenSide
			default:
				return fmt.Errorf("board: SetFEN: invalid castling char %q", r)
			}
		}
	}
	p.hash ^= castlingKey(p.castling)

	if fields[3] != "-" {
		sq, err := ParseSquareStr(fields[3])
		if err != nil {
			return fmt.Errorf("board: SetFEN: invalid en passant square: %w", err)
		}
		p.epFile = sq.File()
		p.epSet = true
		p.hash ^= enPassantKey(p.epFile)
	}

	p.halfmove = 0
	if len(fields) > 4 {
		if n, err := strconv.Atoi(fields[4]); err == nil {
			p.halfmove = n
		}
	}
	p.fullmove = 1
	if len(fields) > 5 {
		if n, err := strconv.Atoi(fields[5]); err == nil {
			p.fullmove = n
		}
	}

	return nil
}

// FEN renders the current position in Forsyth-Edwards notation.
func (p *Position) FEN() string {
	var sb strings.Builder
	for i := 0; i < 8; i++ {
		rank := Rank(7 - i)
		empty := 0
		for file := ZeroFile; file < NumFiles; file++ {
			pc := p.board[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if i != 7 {
			sb.WriteRune('/')
		}
	}

	sb.WriteRune(' ')
	if p.turn == White {
		sb.WriteString("w")
	} else {
		sb.WriteString("b")
	}

	sb.WriteRune(' ')
	sb.WriteString(p.castling.String())

	sb.WriteRune(' ')
	if sq, ok := p.EnPassantSquare(); ok {
		sb.WriteString(sq.String())
	} else {
		sb.WriteString("-")
	}

	fmt.Fprintf(&sb, " %d %d", p.halfmove, p.fullmove)
	return sb.String()
}
