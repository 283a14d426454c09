package board

// Stage identifies a move-generation stage. Search calls Generate per stage
// rather than all-at-once, so it can stop after captures look bad without
// ever materializing quiet moves (spec.md §4.3).
type Stage int

const (
	StageCaptures Stage = iota
	StageQuiets
	StageQuietChecks
	StageEvasions
	StageAll
	StagePawnAdvances
	StageQueenChecks
	StageCastleOnly
)

// MoveList is an append target for generated moves. A plain slice alias
// keeps Generate allocation-free when callers reuse a buffer across plies,
// the same pattern herohde-morlock/pkg/board/movelist.go uses for its
// heap-ordered list, minus the priority-queue machinery search supplies
// separately via pkg/search/picker.
type MoveList []Move

// Generate appends every pseudo-legal move of the requested stage to list and
// returns the extended slice. Moves are pseudo-legal only: callers must still
// call Position.IsLegal (or pre-filter with Position.Pinned) before playing
// one, per the two-stage generate/filter design.
func (p *Position) Generate(stage Stage, list MoveList) MoveList {
	switch stage {
	case StageCaptures:
		return p.generateCapturesAndPromotions(list)
	case StageQuiets:
		return p.generateQuiets(list)
	case StageQuietChecks:
		return p.generateQuietChecks(list)
	case StageEvasions:
		return p.generateEvasions(list)
	case StagePawnAdvances:
		return p.generatePawnAdvances(list)
	case StageQueenChecks:
		return p.generateQueenChecks(list)
	case StageCastleOnly:
		return p.generateCastles(list)
	case StageAll:
		list = p.generateCapturesAndPromotions(list)
		list = p.generateQuiets(list)
		return list
	default:
		return list
	}
}

func (p *Position) pieceAttacks(pt PieceType, from Square, occ Bitboard) Bitboard {
	switch pt {
	case Knight:
		return KnightAttackboard(from)
	case King:
		return KingAttackboard(from)
	default:
		return Attackboard(pt, from, occ)
	}
}

// generateCapturesAndPromotions yields every capture (including en passant)
// and every pawn promotion (capturing or not), the "noisy" move set
// quiescence search explores.
func (p *Position) generateCapturesAndPromotions(list MoveList) MoveList {
	us, them := p.turn, p.turn.Opponent()
	occ := p.Occupied()
	enemy := p.byColor[them]

	list = p.generatePawnCaptures(list, false)

	for _, pt := range []PieceType{Knight, Bishop, Rook, Queen, King} {
		pieces := p.Pieces(us, pt)
		for pieces != 0 {
			from := pieces.PopLSB()
			targets := p.pieceAttacks(pt, from, occ) & enemy
			for targets != 0 {
				to := targets.PopLSB()
				list = append(list, NewMove(from, to, Normal))
			}
		}
	}

	return list
}

// generatePawnCaptures appends pawn captures, en passant, and promotions
// (capturing and, when capturesOnly is false, also non-capturing).
func (p *Position) generatePawnCaptures(list MoveList, capturesOnly bool) MoveList {
	us, them := p.turn, p.turn.Opponent()
	enemy := p.byColor[them]
	promoRank := PawnPromotionRank(us)

	pawns := p.Pieces(us, Pawn)
	for pawns != 0 {
		from := pawns.PopLSB()
		attacks := PawnAttackSquares(us, from) & enemy
		for attacks != 0 {
			to := attacks.PopLSB()
			if BitMask(to)&promoRank != 0 {
				list = append(list, NewPromotion(from, to, Queen))
				list = append(list, NewPromotion(from, to, Rook))
				list = append(list, NewPromotion(from, to, Bishop))
				list = append(list, NewPromotion(from, to, Knight))
			} else {
				list = append(list, NewMove(from, to, Normal))
			}
		}

		if epSq, ok := p.EnPassantSquare(); ok {
			if PawnAttackSquares(us, from)&BitMask(epSq) != 0 {
				list = append(list, NewMove(from, epSq, EnPassant))
			}
		}

		if capturesOnly {
			continue
		}

		// Straight-ahead promotions are not "captures" but are noisy enough
		// (forced material swing) that quiescence should still see them.
		push := pawnPushSquare(us, from)
		if push.IsValid() && p.board[push] == NoPiece && BitMask(push)&promoRank != 0 {
			list = append(list, NewPromotion(from, push, Queen))
			list = append(list, NewPromotion(from, push, Rook))
			list = append(list, NewPromotion(from, push, Bishop))
			list = append(list, NewPromotion(from, push, Knight))
		}
	}
	return list
}

func pawnPushSquare(c Color, from Square) Square {
	if c == White {
		if from.Rank() == Rank8 {
			return NoSquare
		}
		return NewSquare(from.File(), from.Rank()+1)
	}
	if from.Rank() == Rank1 {
		return NoSquare
	}
	return NewSquare(from.File(), from.Rank()-1)
}

// generateQuiets yields non-capturing moves: pawn pushes (single/double,
// excluding promotions already covered by the captures stage), piece quiet
// moves, and castling.
func (p *Position) generateQuiets(list MoveList) MoveList {
	us := p.turn
	occ := p.Occupied()
	promoRank := PawnPromotionRank(us)
	startRank := PawnStartRank(us)

	pawns := p.Pieces(us, Pawn)
	for pawns != 0 {
		from := pawns.PopLSB()
		push := pawnPushSquare(us, from)
		if !push.IsValid() || p.board[push] != NoPiece {
			continue
		}
		if BitMask(push)&promoRank != 0 {
			continue // promotions handled in the captures stage
		}
		list = append(list, NewMove(from, push, Normal))

		if BitMask(from)&startRank != 0 {
			push2 := pawnPushSquare(us, push)
			if push2.IsValid() && p.board[push2] == NoPiece {
				list = append(list, NewMove(from, push2, Normal))
			}
		}
	}

	for _, pt := range []PieceType{Knight, Bishop, Rook, Queen, King} {
		pieces := p.Pieces(us, pt)
		for pieces != 0 {
			from := pieces.PopLSB()
			targets := p.pieceAttacks(pt, from, occ) &^ occ
			for targets != 0 {
				to := targets.PopLSB()
				list = append(list, NewMove(from, to, Normal))
			}
		}
	}

	list = p.generateCastles(list)
	return list
}

// generatePawnAdvances yields pawn pushes only (single and double, excluding
// promotions), used by search heuristics that treat pawn storms specially.
func (p *Position) generatePawnAdvances(list MoveList) MoveList {
	us := p.turn
	promoRank := PawnPromotionRank(us)
	startRank := PawnStartRank(us)

	pawns := p.Pieces(us, Pawn)
	for pawns != 0 {
		from := pawns.PopLSB()
		push := pawnPushSquare(us, from)
		if !push.IsValid() || p.board[push] != NoPiece || BitMask(push)&promoRank != 0 {
			continue
		}
		list = append(list, NewMove(from, push, Normal))
		if BitMask(from)&startRank != 0 {
			push2 := pawnPushSquare(us, push)
			if push2.IsValid() && p.board[push2] == NoPiece {
				list = append(list, NewMove(from, push2, Normal))
			}
		}
	}
	return list
}

// generateQueenChecks yields quiet queen moves that deliver check, a narrow
// slice of StageQuietChecks.
func (p *Position) generateQueenChecks(list MoveList) MoveList {
	us := p.turn
	occ := p.Occupied()
	enemyKing := p.kingSq[us.Opponent()]

	queens := p.Pieces(us, Queen)
	for queens != 0 {
		from := queens.PopLSB()
		targets := QueenAttackboard(from, occ) &^ occ
		for targets != 0 {
			to := targets.PopLSB()
			if QueenAttackboard(to, occ&^BitMask(from)|BitMask(to)).IsSet(enemyKing) {
				list = append(list, NewMove(from, to, Normal))
			}
		}
	}
	return list
}

// generateQuietChecks yields non-capturing moves that give check: direct
// checks by any piece plus discovered checks uncovered by moving a piece off
// a pin-ray to the enemy king.
func (p *Position) generateQuietChecks(list MoveList) MoveList {
	us, them := p.turn, p.turn.Opponent()
	occ := p.Occupied()
	enemyKing := p.kingSq[them]
	discoverers := p.discoveredCheckCandidates(us)

	pawns := p.Pieces(us, Pawn)
	for pawns != 0 {
		from := pawns.PopLSB()
		push := pawnPushSquare(us, from)
		if push.IsValid() && p.board[push] == NoPiece && BitMask(push)&PawnPromotionRank(us) == 0 {
			gives := PawnAttackSquares(us, push).IsSet(enemyKing) || discoverers.IsSet(from)
			if gives {
				list = append(list, NewMove(from, push, Normal))
			}
		}
	}

	for _, pt := range []PieceType{Knight, Bishop, Rook, Queen} {
		pieces := p.Pieces(us, pt)
		for pieces != 0 {
			from := pieces.PopLSB()
			targets := p.pieceAttacks(pt, from, occ) &^ occ
			for targets != 0 {
				to := targets.PopLSB()
				afterOcc := (occ &^ BitMask(from)) | BitMask(to)
				direct := Attackboard(pt, to, afterOcc).IsSet(enemyKing)
				if pt == Knight {
					direct = KnightAttackboard(to).IsSet(enemyKing)
				}
				if direct || discoverers.IsSet(from) {
					list = append(list, NewMove(from, to, Normal))
				}
			}
		}
	}

	return list
}

// discoveredCheckCandidates returns squares of color c's pieces that, if
// moved off their current line, would expose the enemy king to one of c's
// sliders.
func (p *Position) discoveredCheckCandidates(c Color) Bitboard {
	enemyKing := p.kingSq[c.Opponent()]
	own := p.byColor[c]

	var candidates Bitboard
	rookXray := RookAttackboard(enemyKing, own) & (p.Pieces(c, Rook) | p.Pieces(c, Queen))
	for rookXray != 0 {
		sq := rookXray.PopLSB()
		between := Between(enemyKing, sq) & own
		if between.PopCount() == 1 {
			candidates |= between
		}
	}
	bishopXray := BishopAttackboard(enemyKing, own) & (p.Pieces(c, Bishop) | p.Pieces(c, Queen))
	for bishopXray != 0 {
		sq := bishopXray.PopLSB()
		between := Between(enemyKing, sq) & own
		if between.PopCount() == 1 {
			candidates |= between
		}
	}
	return candidates
}

// generateCastles yields the (up to two) pseudo-legal castling moves: rights
// held, squares between king and rook empty, and the king's path not
// currently attacked (the final landing/through-check test still belongs to
// IsLegal, since it requires make/unmake to see revealed attacks).
func (p *Position) generateCastles(list MoveList) MoveList {
	us := p.turn
	occ := p.Occupied()
	them := us.Opponent()

	if p.castling.Allowed(KingSide(us)) {
		var kingFrom, rookTo, kingTo Square
		var empty Bitboard
		if us == White {
			kingFrom, kingTo = E1, G1
			empty = BitMask(F1) | BitMask(G1)
			rookTo = F1
		} else {
			kingFrom, kingTo = E8, G8
			empty = BitMask(F8) | BitMask(G8)
			rookTo = F8
		}
		_ = rookTo
		if occ&empty == 0 && !p.IsAttacked(kingFrom, them) && !p.IsAttacked(squareBetween(kingFrom, kingTo), them) {
			list = append(list, NewMove(kingFrom, kingTo, Castle))
		}
	}

	if p.castling.Allowed(QueenSide(us)) {
		var kingFrom, kingTo Square
		var empty Bitboard
		if us == White {
			kingFrom, kingTo = E1, C1
			empty = BitMask(B1) | BitMask(C1) | BitMask(D1)
		} else {
			kingFrom, kingTo = E8, C8
			empty = BitMask(B8) | BitMask(C8) | BitMask(D8)
		}
		if occ&empty == 0 && !p.IsAttacked(kingFrom, them) && !p.IsAttacked(squareBetween(kingFrom, kingTo), them) {
			list = append(list, NewMove(kingFrom, kingTo, Castle))
		}
	}

	return list
}

func squareBetween(a, b Square) Square {
	af, bf := int(a.File()), int(b.File())
	mid := (af + bf) / 2
	return NewSquare(File(mid), a.Rank())
}

// generateEvasions yields pseudo-legal moves when the side to move is in
// check: king moves off the attacked square, captures of a lone checker, and
// blocks of a lone checking slider. With two or more checkers only king
// moves can be legal, so non-king generation is skipped entirely.
func (p *Position) generateEvasions(list MoveList) MoveList {
	us, them := p.turn, p.turn.Opponent()
	king := p.kingSq[us]
	occ := p.Occupied()

	list = p.generateKingEvasions(list, king, them)

	checkers := p.checkersOf(king, them)
	if checkers.PopCount() != 1 {
		return list // double check: only king moves are legal
	}
	checkerSq := checkers.LSB()

	block := Between(king, checkerSq)
	target := block | checkers

	for _, pt := range []PieceType{Pawn, Knight, Bishop, Rook, Queen} {
		pieces := p.Pieces(us, pt)
		for pieces != 0 {
			from := pieces.PopLSB()
			if pt == Pawn {
				list = p.appendPawnBlocksAndCaptures(list, from, target, checkerSq)
				continue
			}
			targets := p.pieceAttacks(pt, from, occ) & target
			for targets != 0 {
				to := targets.PopLSB()
				list = append(list, NewMove(from, to, Normal))
			}
		}
	}
	return list
}

func (p *Position) generateKingEvasions(list MoveList, king Square, them Color) MoveList {
	occ := p.Occupied()
	own := p.byColor[p.turn]
	targets := KingAttackboard(king) &^ own
	afterOcc := occ &^ BitMask(king)
	for targets != 0 {
		to := targets.PopLSB()
		if !isAttackedWithOcc(p, to, them, afterOcc) {
			list = append(list, NewMove(king, to, Normal))
		}
	}
	return list
}

// isAttackedWithOcc is IsAttacked but against a caller-supplied occupancy, so
// king evasions can pretend the king has already vacated its square (a rook
// or bishop checking through the king's own square must not appear safe).
func isAttackedWithOcc(p *Position, sq Square, by Color, occ Bitboard) bool {
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

func (p *Position) checkersOf(king Square, by Color) Bitboard {
	occ := p.Occupied()
	var checkers Bitboard
	checkers |= KnightAttackboard(king) & p.Pieces(by, Knight)
	checkers |= PawnAttackSquares(by.Opponent(), king) & p.Pieces(by, Pawn)
	checkers |= BishopAttackboard(king, occ) & (p.Pieces(by, Bishop) | p.Pieces(by, Queen))
	checkers |= RookAttackboard(king, occ) & (p.Pieces(by, Rook) | p.Pieces(by, Queen))
	return checkers
}

func (p *Position) appendPawnBlocksAndCaptures(list MoveList, from Square, target Bitboard, checkerSq Square) MoveList {
	us := p.turn
	promoRank := PawnPromotionRank(us)

	if PawnAttackSquares(us, from).IsSet(checkerSq) {
		if BitMask(checkerSq)&promoRank != 0 {
			list = append(list, NewPromotion(from, checkerSq, Queen))
			list = append(list, NewPromotion(from, checkerSq, Rook))
			list = append(list, NewPromotion(from, checkerSq, Bishop))
			list = append(list, NewPromotion(from, checkerSq, Knight))
		} else {
			list = append(list, NewMove(from, checkerSq, Normal))
		}
	}

	if epSq, ok := p.EnPassantSquare(); ok && PawnAttackSquares(us, from).IsSet(epSq) {
		capturedPawnSq := NewSquare(epSq.File(), from.Rank())
		if capturedPawnSq == checkerSq {
			list = append(list, NewMove(from, epSq, EnPassant))
		}
	}

	push := pawnPushSquare(us, from)
	if push.IsValid() && p.board[push] == NoPiece {
		if target.IsSet(push) {
			if BitMask(push)&promoRank != 0 {
				list = append(list, NewPromotion(from, push, Queen))
				list = append(list, NewPromotion(from, push, Rook))
				list = append(list, NewPromotion(from, push, Bishop))
				list = append(list, NewPromotion(from, push, Knight))
			} else {
				list = append(list, NewMove(from, push, Normal))
			}
		}
		if BitMask(from)&PawnStartRank(us) != 0 {
			push2 := pawnPushSquare(us, push)
			if push2.IsValid() && p.board[push2] == NoPiece && target.IsSet(push2) {
				list = append(list, NewMove(from, push2, Normal))
			}
		}
	}
	return list
}
