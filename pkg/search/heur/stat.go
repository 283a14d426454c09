// Package heur holds the move-ordering heuristic tables search consults when
// picking which move to try next at a node: killers, history, counter-moves,
// continuation history, capture history, and the max-gain table. Grounded on
// original_source/movepick.h's stat templates (piece_square_stats,
// counter_move_full_stats, counter_follow_up_move_stats, max_gain_stats,
// killer_stats), expressed as plain Go arrays instead of C++ templates.
package heur

// statUpdate applies the saturating exponential-moving-average update every
// heuristic table in this package uses: elem -= elem*|bonus|/max; elem +=
// bonus. This keeps each entry bounded in [-max, max] while letting a single
// large bonus move it quickly and repeated small bonuses accumulate slowly.
// Verbatim port of original_source/movepick.h's update_plus/update_minus.
func statUpdate(elem *int16, bonus, max int) {
	v := int(*elem)
	if bonus < 0 {
		v -= v * (-bonus) / max
	} else {
		v -= v * bonus / max
	}
	v += bonus
	switch {
	case v > max:
		v = max
	case v < -max:
		v = -max
	}
	*elem = int16(v)
}
