// Package tt implements the shared transposition table every Lazy-SMP search
// worker probes and stores into concurrently without a lock, trading strict
// correctness on individual reads for throughput the way spec.md §4.5 and
// §6's concurrency model both call for.
package tt

import (
	"fmt"
	"math/bits"

	"go.uber.org/atomic"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// Bound classifies a stored score relative to the search window that
// produced it. Generalizes herohde-morlock/pkg/search/transposition.go's
// two-valued Bound (Exact/Lower only) to the three-valued Exact/Lower/Upper
// spec.md's alpha-beta store step needs, since fail-low nodes must be
// distinguishable from fail-high ones on probe.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundUpper
	BoundLower
	BoundExact
)

func (b Bound) String() string {
	switch b {
	case BoundUpper:
		return "Upper"
	case BoundLower:
		return "Lower"
	case BoundExact:
		return "Exact"
	default:
		return "None"
	}
}

// entry is a single transposition record: 16 bytes, matching spec.md §4.5's
// storage layout (key16/value16/eval16 verbatim, move packed to 16 bits since
// board.Move's encoding already fits that width, depth and generation+bound
// packed into one byte each).
type entry struct {
	key16     uint16
	move16    uint16
	value16   int16
	eval16    int16
	depth8    uint8
	genBound8 uint8
	_         [6]byte // pad to 16 bytes
}

func packGenBound(generation uint8, bound Bound) uint8 {
	return generation<<2 | uint8(bound)
}

func (e *entry) generation() uint8 { return e.genBound8 >> 2 }
func (e *entry) bound() Bound      { return Bound(e.genBound8 & 0x3) }

// bucketSize is the number of candidate entries probed/replaced per hash
// index, matching spec.md §4.5's bucketed design (3 entries/bucket) rather
// than the teacher's one-entry-per-slot table.
const bucketSize = 3

type bucket struct {
	slots [bucketSize]atomic.Pointer[entry]
}

// Table is a fixed-size, power-of-two-bucketed transposition table. All
// methods are safe for concurrent use by multiple search worker goroutines;
// writes are intentionally racy (last writer to a slot wins, no
// read-modify-write locking), the same trade the teacher's
// atomic-CAS-pointer table makes, generalized from one entry per slot to a
// bucket of bucketSize candidates.
type Table struct {
	buckets    []bucket
	mask       uint64
	generation atomic.Uint32
}

// New allocates a table sized to approximately sizeBytes, rounded down to a
// power-of-two bucket count.
func New(sizeBytes uint64) *Table {
	entrySize := uint64(16)
	bucketBytes := entrySize * bucketSize
	n := sizeBytes / bucketBytes
	if n == 0 {
		n = 1
	}
	shift := 63 - bits.LeadingZeros64(n)
	count := uint64(1) << shift

	return &Table{
		buckets: make([]bucket, count),
		mask:    count - 1,
	}
}

// NewGrounded is identical to New: it applies New's bucket rounding, not a
// separate size/32 entry rounding.
func NewGrounded(sizeBytes uint64) *Table {
	return New(sizeBytes)
}

func (t *Table) Size() uint64 {
	return uint64(len(t.buckets)) * bucketSize * 16
}

// Used estimates occupancy by sampling every slot of the first 1000
// buckets, the same cheap approximation UCI's "hashfull" wants rather than a
// maintained atomic counter that every store would have to touch.
func (t *Table) Used() int {
	sample := len(t.buckets)
	if sample > 1000 {
		sample = 1000
	}
	if sample == 0 {
		return 0
	}
	used := 0
	for i := 0; i < sample; i++ {
		for s := 0; s < bucketSize; s++ {
			if t.buckets[i].slots[s].Load() != nil {
				used++
			}
		}
	}
	return used * 1000 / (sample * bucketSize)
}

// NewSearch bumps the table generation, marking every existing entry as one
// generation older for replacement-priority purposes. Call once per
// "ucinewgame" / per root search the way age counters conventionally reset.
func (t *Table) NewSearch() {
	t.generation.Add(1)
}

// Probe looks up hash and, on a hit, returns the stored bound/depth/score
// (mate-adjusted for ply)/eval/move. ply is the current search ply, used to
// translate the stored mate score back to be relative to the root.
func (t *Table) Probe(hash board.Hash, ply int) (b Bound, depth int, score eval.Score, staticEval eval.Score, move board.Move, ok bool) {
	idx := uint64(hash) & t.mask
	key16 := uint16(hash >> 48)

	bkt := &t.buckets[idx]
	for s := 0; s < bucketSize; s++ {
		e := bkt.slots[s].Load()
		if e == nil || e.key16 != key16 {
			continue
		}
		score = eval.FromTT(eval.Score(e.value16), ply)
		return e.bound(), int(e.depth8), score, eval.Score(e.eval16), board.Move(e.move16), true
	}
	return BoundNone, 0, 0, 0, board.NoMove, false
}

// Store saves an entry for hash, choosing a replacement victim from the
// bucket when no slot already holds this key: prefer an empty slot, then the
// slot with the lowest (generation, depth) "value" the way spec.md's
// replacement/aging policy describes.
func (t *Table) Store(hash board.Hash, b Bound, ply, depth int, score, staticEval eval.Score, move board.Move) {
	idx := uint64(hash) & t.mask
	key16 := uint16(hash >> 48)
	gen := uint8(t.generation.Load())

	fresh := &entry{
		key16:     key16,
		move16:    uint16(move),
		value16:   int16(eval.ToTT(score, ply)),
		eval16:    int16(staticEval),
		depth8:    clampDepth(depth),
		genBound8: packGenBound(gen, b),
	}
	bkt := &t.buckets[idx]

	for s := 0; s < bucketSize; s++ {
		if e := bkt.slots[s].Load(); e != nil && e.key16 == key16 {
			if fresh.move16 == 0 && e.move16 != 0 {
				fresh.move16 = e.move16
			}
			if b != BoundExact && e.bound() == BoundExact && e.generation() == gen && int(e.depth8) > depth {
				return // don't displace a same-generation exact entry with a shallower inexact one
			}
			bkt.slots[s].Store(fresh)
			return
		}
	}

	worst := 0
	worstVal := replacementValue(bkt.slots[0].Load(), gen)
	for s := 1; s < bucketSize; s++ {
		v := replacementValue(bkt.slots[s].Load(), gen)
		if v < worstVal {
			worstVal = v
			worst = s
		}
	}
	bkt.slots[worst].Store(fresh)
}

func clampDepth(depth int) uint8 {
	if depth < 0 {
		return 0
	}
	if depth > 255 {
		return 255
	}
	return uint8(depth)
}

// replacementValue ranks an existing slot for eviction: empty slots always
// lose first, then older generations, then shallower searches.
func replacementValue(e *entry, currentGen uint8) int {
	if e == nil {
		return -1 << 30
	}
	genPenalty := int(currentGen - e.generation())
	return int(e.depth8) - genPenalty*8
}

func (t *Table) String() string {
	return fmt.Sprintf("TT[%dMB, %d buckets, %d%% full]", t.Size()>>20, len(t.buckets), t.Used()/10)
}
