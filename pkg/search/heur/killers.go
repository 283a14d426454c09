package heur

import "github.com/corvidchess/corvid/pkg/board"

// killerSlots is the number of killer moves retained per ply (spec.md §4.9
// names two: the most recent and the one before it).
const killerSlots = 2

// Killers tracks, per search ply, the most recent quiet moves that caused a
// beta cutoff. Grounded on original_source/movepick.h's killer_stats,
// expressed as a flat per-ply array rather than a template since Go has no
// direct equivalent of the C++ template parameterization and none is needed
// for a fixed two-slot ring.
type Killers struct {
	moves [][killerSlots]board.Move
}

// NewKillers preallocates slots for maxPly plies.
func NewKillers(maxPly int) *Killers {
	return &Killers{moves: make([][killerSlots]board.Move, maxPly)}
}

// Probe returns the killer moves recorded for ply, in most-recent-first order.
func (k *Killers) Probe(ply int) [killerSlots]board.Move {
	if ply < 0 || ply >= len(k.moves) {
		return [killerSlots]board.Move{}
	}
	return k.moves[ply]
}

// Update records m as the newest killer at ply, shifting the previous
// newest into the second slot (unless m is already recorded there).
func (k *Killers) Update(ply int, m board.Move) {
	if ply < 0 || ply >= len(k.moves) {
		return
	}
	slot := &k.moves[ply]
	if slot[0] == m {
		return
	}
	slot[1] = slot[0]
	slot[0] = m
}
