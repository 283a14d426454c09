package board

import "math/rand"

// Hash is a Zobrist position hash. Updated incrementally by Position.Move /
// Position.Unmove rather than recomputed from scratch, mirroring
// herohde-morlock/pkg/board/zobrist.go's ZobristTable.Move.
type Hash uint64

// zobristTable holds the random keys XORed together to build a Hash. Grounded
// on herohde-morlock's ZobristTable, generalized from its 7-slot piece table
// (NoPieceType included for sparse indexing) to our own Color/PieceType layout.
type zobristTable struct {
	pieces    [NumColors][NumPieceTypes][NumSquares]Hash
	castling  [NumCastling]Hash
	enpassant [NumFiles]Hash
	turn      Hash
}

var zobrist zobristTable

// zobristSeed is fixed so hashes (and therefore TT contents) are reproducible
// across runs of the same binary, matching herohde-morlock's NewZobristTable(seed).
const zobristSeed = 0xC07D1D0A

func init() {
	rnd := rand.New(rand.NewSource(zobristSeed))
	for c := ZeroColor; c < NumColors; c++ {
		for pt := ZeroPieceType; pt < NumPieceTypes; pt++ {
			for sq := ZeroSquare; sq < NumSquares; sq++ {
				zobrist.pieces[c][pt][sq] = Hash(rnd.Uint64())
			}
		}
	}
	for i := range zobrist.castling {
		zobrist.castling[i] = Hash(rnd.Uint64())
	}
	for f := ZeroFile; f < NumFiles; f++ {
		zobrist.enpassant[f] = Hash(rnd.Uint64())
	}
	zobrist.turn = Hash(rnd.Uint64())
}

func pieceKey(c Color, pt PieceType, sq Square) Hash {
	return zobrist.pieces[c][pt][sq]
}

func castlingKey(c Castling) Hash {
	return zobrist.castling[c]
}

func enPassantKey(f File) Hash {
	return zobrist.enpassant[f]
}

func turnKey() Hash {
	return zobrist.turn
}

// computeHash derives a Hash from scratch. Used only by tests that check
// incremental updates against a full recomputation; Position.SetFEN and normal
// play rely on the incremental XORs applied in put/remove and Position.Move/Unmove.
func computeHash(p *Position) Hash {
	var h Hash
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		if pc := p.PieceAt(sq); pc != NoPiece {
			h ^= pieceKey(pc.Color(), pc.Type(), sq)
		}
	}
	h ^= castlingKey(p.castling)
	if f, ok := p.EnPassantFile(); ok {
		h ^= enPassantKey(f)
	}
	if p.turn == Black {
		h ^= turnKey()
	}
	return h
}
