// Package timectl computes soft/hard search-time budgets from a UCI "go"
// command's clock and increment, porting Fire's timecontrol::init move
// importance curve. Grounded on herohde-morlock/pkg/search/searchctl's
// TimeControl/Limits (the soft/hard split and time.AfterFunc halt idiom),
// with the move-importance math itself ported from
// original_source/chrono.cpp/.h rather than the teacher's flat T/80 formula,
// since spec.md asks for the parabolic/logistic curve by name.
package timectl

import (
	"math"
	"time"
)

// Tunable constants for calcMoveImportance, named and valued exactly as
// original_source/chrono.h's timecontrol private members.
const (
	xScale               = 7.64
	xShift               = 58.4
	skew                 = 0.183
	factorBase           = 1.225
	plyFactor            = 0.00025
	plyMin               = 10
	plyMax               = 70
	baseMoves            = 50
	moveImportanceFactor = 0.89
	movesHorizon         = 50
	maxRatio             = 7.09
	stealRatio           = 0.35

	// UCIMinimumTime is the floor every computed budget is clamped above.
	UCIMinimumTime = 1 * time.Millisecond
	// UCIMoveOverhead is subtracted from the available clock each move to
	// leave headroom for engine/GUI communication latency.
	UCIMoveOverhead = 50 * time.Millisecond
)

// Limits is a clock snapshot for one side at the start of a search, taken
// from the UCI "go" command's wtime/btime/winc/binc/movestogo fields.
type Limits struct {
	Time       time.Duration
	Inc        time.Duration
	MovesToGo  int // 0 == unknown, assume movesHorizon
	PonderOn   bool
}

// Budget is the computed soft ("stop starting new iterations") and hard
// ("abort mid-iteration") time allowance for one move.
type Budget struct {
	Optimal time.Duration
	Maximum time.Duration
}

// calcMoveImportance scores how important the move ply plies from now is
// expected to be, a parabola-windowed logistic decay: ported verbatim from
// original_source/chrono.cpp's calc_move_importance.
func calcMoveImportance(ply int) float64 {
	factor := 1.0
	if ply > plyMin && ply < plyMax {
		d := float64(ply) - float64(baseMoves)
		factor = factorBase - plyFactor*d*d
	}
	return factor * math.Pow(1+math.Exp((float64(ply)-xShift)/xScale), -skew)
}

// Compute derives the optimal/maximum time budget for the move at ply,
// given the clock limits for the side to move. Grounded on
// original_source/chrono.cpp's timecontrol::init loop, which projects the
// relative "importance" of this move against the moves.horizon moves that
// follow it to decide how much of the remaining clock to spend now.
func Compute(l Limits, ply int) Budget {
	maxMoves := movesHorizon
	if l.MovesToGo > 0 && l.MovesToGo < maxMoves {
		maxMoves = l.MovesToGo
	}

	moveImportance := calcMoveImportance(ply) * moveImportanceFactor
	otherMovesImportance := 0.0

	available := float64(l.Time-UCIMoveOverhead) / float64(time.Millisecond)
	inc := float64(l.Inc) / float64(time.Millisecond)
	overhead := float64(UCIMoveOverhead) / float64(time.Millisecond)

	optimal := float64(l.Time) / float64(time.Millisecond)
	maximum := optimal

	for n := 1; n <= maxMoves; n++ {
		ratio1 := moveImportance / (moveImportance + otherMovesImportance)
		t1 := available * ratio1

		ratio2 := maxRatio * moveImportance / (maxRatio*moveImportance + otherMovesImportance)
		ratio3 := (moveImportance + stealRatio*otherMovesImportance) / (moveImportance + otherMovesImportance)
		t2 := available * math.Min(ratio2, ratio3)

		optimal = math.Min(t1, optimal)
		maximum = math.Min(t2, maximum)

		otherMovesImportance += calcMoveImportance(ply + 2*n)
		available += inc - overhead
	}

	optimalDur := time.Duration(optimal) * time.Millisecond
	maximumDur := time.Duration(maximum) * time.Millisecond
	if optimalDur < UCIMinimumTime {
		optimalDur = UCIMinimumTime
	}
	if maximumDur < UCIMinimumTime {
		maximumDur = UCIMinimumTime
	}

	if l.PonderOn {
		optimalDur += optimalDur * 3 / 10
		if optimalDur > maximumDur {
			optimalDur = maximumDur
		}
	}

	return Budget{Optimal: optimalDur, Maximum: maximumDur}
}

// AdjustAfterPonderHit rescales the optimal budget in proportion to the time
// already spent pondering, matching
// original_source/chrono.cpp's adjustment_after_ponder_hit.
func AdjustAfterPonderHit(b Budget, elapsed time.Duration) Budget {
	newMax := b.Maximum + elapsed
	if b.Maximum == 0 {
		return b
	}
	b.Optimal = time.Duration(int64(b.Optimal) * int64(newMax) / int64(b.Maximum))
	b.Maximum = newMax
	return b
}
