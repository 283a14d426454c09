package board

import "fmt"

// Move is a packed move: bits 0-5 are the destination square, bits 6-11 the
// origin square, bits 12-15 the move type. This is the exact encoding spec.md
// §4.2 mandates, chosen so a Move is a plain comparable value cheap enough to
// carry by value through move generation, the picker, and the TT.
type Move uint32

// MoveType occupies bits 12-15 of a Move.
type MoveType uint32

const (
	Normal MoveType = 0

	Castle     MoveType = 9
	EnPassant  MoveType = 10
	PromoKnight MoveType = 11
	PromoBishop MoveType = 12
	PromoRook   MoveType = 13
	PromoQueen  MoveType = 14
)

const (
	moveToShift   = 0
	moveFromShift = 6
	moveTypeShift = 12

	moveToMask   Move = 0x3f << moveToShift
	moveFromMask Move = 0x3f << moveFromShift
	moveTypeMask Move = 0xf << moveTypeShift
)

// NoMove is the zero value: no destination, no origin, Normal type. Never a
// legal move since from == to == a1.
const NoMove Move = 0

// NullMove is the sentinel passed to Position.Move to implement null-move
// pruning (spec.md §4.8): it flips the side to move and resets the en passant
// square without moving any piece.
const NullMove Move = 65

// NewMove packs a from/to/type triple into a Move.
func NewMove(from, to Square, mt MoveType) Move {
	return Move(to)<<moveToShift | Move(from)<<moveFromShift | Move(mt)<<moveTypeShift
}

// NewPromotion packs a promotion move; pt must be Knight, Bishop, Rook, or Queen.
func NewPromotion(from, to Square, pt PieceType) Move {
	var mt MoveType
	switch pt {
	case Knight:
		mt = PromoKnight
	case Bishop:
		mt = PromoBishop
	case Rook:
		mt = PromoRook
	case Queen:
		mt = PromoQueen
	default:
		panic("board: NewPromotion: invalid promotion piece type")
	}
	return NewMove(from, to, mt)
}

func (m Move) From() Square {
	return Square((m & moveFromMask) >> moveFromShift)
}

func (m Move) To() Square {
	return Square((m & moveToMask) >> moveToShift)
}

func (m Move) Type() MoveType {
	return MoveType((m & moveTypeMask) >> moveTypeShift)
}

func (m Move) IsPromotion() bool {
	return m.Type() >= PromoKnight && m.Type() <= PromoQueen
}

// PromotionPiece returns the piece type a promotion move produces. Only valid
// when IsPromotion() is true.
func (m Move) PromotionPiece() PieceType {
	switch m.Type() {
	case PromoKnight:
		return Knight
	case PromoBishop:
		return Bishop
	case PromoRook:
		return Rook
	case PromoQueen:
		return Queen
	default:
		return NoPieceType
	}
}

func (m Move) IsCastle() bool {
	return m.Type() == Castle
}

func (m Move) IsEnPassant() bool {
	return m.Type() == EnPassant
}

func (m Move) IsNull() bool {
	return m == NullMove
}

func (m Move) IsNone() bool {
	return m == NoMove
}

// String renders a move in long algebraic notation ("e2e4", "e7e8q"), the
// form UCI expects on the wire.
func (m Move) String() string {
	if m.IsNone() {
		return "0000"
	}
	if m.IsNull() {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += m.PromotionPiece().String()
	}
	return s
}

// ParseMove decodes a long algebraic move string against the given position,
// determining the move's type (capture/castle/en passant/promotion) from
// board state the way UCI's "position ... moves ..." command must.
func ParseMove(pos *Position, str string) (Move, error) {
	if len(str) < 4 || len(str) > 5 {
		return NoMove, fmt.Errorf("board: ParseMove: invalid move string %q", str)
	}
	from, err := ParseSquareStr(str[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("board: ParseMove: %w", err)
	}
	to, err := ParseSquareStr(str[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("board: ParseMove: %w", err)
	}

	if len(str) == 5 {
		pt, ok := ParsePieceType(rune(str[4]))
		if !ok || pt == King || pt == Pawn {
			return NoMove, fmt.Errorf("board: ParseMove: invalid promotion piece %q", str[4:])
		}
		return NewPromotion(from, to, pt), nil
	}

	pc := pos.PieceAt(from)
	if pc.Type() == King && SquareDistance(from, to) > 1 {
		return NewMove(from, to, Castle), nil
	}
	if pc.Type() == Pawn && to.File() != from.File() && pos.PieceAt(to) == NoPiece {
		return NewMove(from, to, EnPassant), nil
	}
	return NewMove(from, to, Normal), nil
}
