package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
)

// Book represents an opening book: a FEN-prefix-keyed lookup of candidate
// moves, consulted by Engine.BookMove before a search is launched. Grounded
// directly on herohde-morlock/pkg/engine/book.go's Book/Line/NewBook, adapted
// from the teacher's board.ParseMove(str)+fen.Decode/Encode replay loop to
// this module's Board.Push/FEN round-trip.
type Book interface {
	// Find returns a list -- potentially empty -- of moves for a position.
	Find(ctx context.Context, fen string) ([]board.Move, error)
}

// Line is a single opening line, e.g. []string{"e2e4", "e7e5", "g1f3"}.
type Line []string

func (l Line) String() string {
	return strings.Join(l, " ")
}

// NoBook is an empty opening book, consulted for every position and always
// returning no candidates.
var NoBook Book = &book{moves: map[string][]board.Move{}}

// NewBook builds an opening book from a set of lines, replaying each one
// against the standard starting position to validate and key every prefix.
func NewBook(lines []Line) (Book, error) {
	seen := map[string]map[board.Move]bool{}

	for _, line := range lines {
		b, err := board.NewBoardFromFEN(fen.StartPos)
		if err != nil {
			return nil, fmt.Errorf("book: %w", err)
		}

		for _, str := range line {
			key := fenKey(b.Position().FEN())

			m, err := board.ParseMove(b.Position(), str)
			if err != nil || !b.Position().IsLegal(m) {
				return nil, fmt.Errorf("book: invalid line %v: move %v not legal", line, str)
			}

			if seen[key] == nil {
				seen[key] = map[board.Move]bool{}
			}
			seen[key][m] = true

			b.Push(m)
		}
	}

	dedup := map[string][]board.Move{}
	for key, set := range seen {
		list := make([]board.Move, 0, len(set))
		for m := range set {
			list = append(list, m)
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].String() < list[j].String()
		})
		dedup[key] = list
	}
	return &book{moves: dedup}, nil
}

type book struct {
	moves map[string][]board.Move // fen prefix -> candidate moves
}

func (b *book) Find(ctx context.Context, fenStr string) ([]board.Move, error) {
	return b.moves[fenKey(fenStr)], nil
}

// fenKey crops a FEN to its first four fields (board, turn, castling, en
// passant), ignoring the halfmove/fullmove counters so transpositions that
// differ only by move count still hit the same book entry.
func fenKey(pos string) string {
	parts := strings.SplitN(pos, " ", 5)
	if len(parts) < 4 {
		return pos
	}
	return strings.Join(parts[:4], " ")
}
