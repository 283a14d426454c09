// Package fen parses and renders Forsyth-Edwards Notation strings, the wire
// format UCI's "position fen ..." command and the perft/divide tooling use to
// exchange positions.
package fen

import (
	"fmt"
	"strings"

	"github.com/corvidchess/corvid/pkg/board"
)

// StartPos is the standard initial position's FEN.
const StartPos = board.StartFEN

// Parse builds a fresh Position from a FEN string.
func Parse(s string) (*board.Position, error) {
	p := board.NewPosition()
	if err := p.SetFEN(s); err != nil {
		return nil, fmt.Errorf("fen: Parse: %w", err)
	}
	return p, nil
}

// Format renders p as a FEN string.
func Format(p *board.Position) string {
	return p.FEN()
}

// Valid reports whether s looks like a syntactically well-formed FEN: at
// least four whitespace-separated fields (the halfmove and fullmove counters
// are optional, as in Position.SetFEN) with eight ranks in the first. It does not
// verify chess legality (e.g. two kings, pawns on the back rank).
func Valid(s string) bool {
	fields := strings.Fields(s)
	if len(fields) < 4 {
		return false
	}
	return len(strings.Split(fields[0], "/")) == 8
}
