package eval

import (
	"context"
	"math/rand"

	"github.com/corvidchess/corvid/pkg/board"
)

// Random wraps an Evaluator and perturbs its score by up to +/- Millipawns/20
// centipawns (a total spread of Millipawns/10), so weaker playing strengths can be emulated without touching
// search. Grounded directly on herohde-morlock/pkg/eval's Random helper
// (referenced by engine.Options.Noise / engine.SetNoise), adapted to wrap an
// arbitrary Evaluator instead of being hardwired to Material.
type Random struct {
	Base       Evaluator
	Millipawns int
	rnd        *rand.Rand
}

var _ Evaluator = (*Random)(nil)

// NewRandom returns a Random evaluator layered on base, perturbing by up to
// +/- millipawns/20 centipawns using the given seed (0 selects a fixed default
// seed, keeping evaluation reproducible across identical runs).
func NewRandom(base Evaluator, millipawns int, seed int64) *Random {
	if seed == 0 {
		seed = 1
	}
	return &Random{Base: base, Millipawns: millipawns, rnd: rand.New(rand.NewSource(seed))}
}

func (r *Random) Evaluate(ctx context.Context, b *board.Board) Score {
	base := r.Base.Evaluate(ctx, b)
	if r.Millipawns <= 0 || r.rnd == nil {
		return base
	}
	delta := r.rnd.Intn(r.Millipawns) - r.Millipawns/2
	return Crop(base + Score(delta/10))
}
