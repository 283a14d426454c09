package timectl_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/corvidchess/corvid/pkg/timectl"
)

// TestGameStartBudgetSanity is spec.md §8 end-to-end scenario 6: with
// wtime/btime 60000, winc/binc 0, optimum must land in (1000,3000)ms and
// maximum must not exceed 15000ms at the very start of the game (ply 1).
func TestGameStartBudgetSanity(t *testing.T) {
	limits := timectl.Limits{Time: 60 * time.Second}
	budget := timectl.Compute(limits, 1)

	assert.Greater(t, budget.Optimal, 1*time.Second)
	assert.Less(t, budget.Optimal, 3*time.Second)
	assert.LessOrEqual(t, budget.Maximum, 15*time.Second)
}

func TestMaximumNeverBelowOptimal(t *testing.T) {
	limits := timectl.Limits{Time: 60 * time.Second, Inc: 500 * time.Millisecond}
	for ply := 1; ply < 100; ply += 10 {
		budget := timectl.Compute(limits, ply)
		assert.GreaterOrEqual(t, budget.Maximum, budget.Optimal, "ply=%d", ply)
	}
}

func TestBudgetNeverBelowMinimumTime(t *testing.T) {
	limits := timectl.Limits{Time: 1 * time.Millisecond}
	budget := timectl.Compute(limits, 1)
	assert.GreaterOrEqual(t, budget.Optimal, timectl.UCIMinimumTime)
	assert.GreaterOrEqual(t, budget.Maximum, timectl.UCIMinimumTime)
}

func TestPonderingIncreasesOptimumWithinMaximum(t *testing.T) {
	limits := timectl.Limits{Time: 60 * time.Second}
	plain := timectl.Compute(limits, 1)

	limits.PonderOn = true
	pondering := timectl.Compute(limits, 1)

	assert.GreaterOrEqual(t, pondering.Optimal, plain.Optimal)
	assert.LessOrEqual(t, pondering.Optimal, pondering.Maximum)
}

// TestAdjustAfterPonderHit checks original_source/chrono.cpp's
// adjustment_after_ponder_hit: the hard deadline grows by the elapsed
// pondering time and the soft budget rescales proportionally.
func TestAdjustAfterPonderHit(t *testing.T) {
	before := timectl.Budget{Optimal: 1000 * time.Millisecond, Maximum: 4000 * time.Millisecond}
	after := timectl.AdjustAfterPonderHit(before, 2000*time.Millisecond)

	assert.Equal(t, 6000*time.Millisecond, after.Maximum)
	assert.Equal(t, 1500*time.Millisecond, after.Optimal)
}

func TestMovesToGoShortensHorizon(t *testing.T) {
	limits := timectl.Limits{Time: 10 * time.Second, MovesToGo: 1}
	budget := timectl.Compute(limits, 40)
	// With one move left to the time control, nearly all remaining time
	// should be available as the hard cap.
	assert.Greater(t, budget.Maximum, 5*time.Second)
}
