package tb

import (
	"sync"

	"github.com/corvidchess/corvid/pkg/board"
)

// CachedProber wraps another Prober with a bounded WDL/DTZ cache keyed on
// position hash, so repeated probes of the same endgame position during a
// search (transpositions are common once the tree is this shallow) don't
// re-hit whatever backs inner. Grounded on
// hailam-chessplay/internal/tablebase/cached.go's CachedProber, adapted to
// board.Hash keys and this module's Prober split between ProbeWDL/ProbeDTZ.
type CachedProber struct {
	inner   Prober
	mu      sync.RWMutex
	wdl     map[board.Hash]ProbeResult
	dtz     map[board.Hash]ProbeResult
	maxSize int
	hits    uint64
	misses  uint64
}

var _ Prober = (*CachedProber)(nil)

// NewCachedProber wraps inner with a cache holding up to cacheSize entries
// per lookup kind (WDL and DTZ are cached separately since a DTZ probe is
// strictly more expensive and not every caller wants it).
func NewCachedProber(inner Prober, cacheSize int) *CachedProber {
	return &CachedProber{
		inner:   inner,
		wdl:     make(map[board.Hash]ProbeResult, cacheSize),
		dtz:     make(map[board.Hash]ProbeResult, cacheSize),
		maxSize: cacheSize,
	}
}

func (cp *CachedProber) ProbeWDL(pos *board.Position) ProbeResult {
	return cp.probe(pos, cp.wdl, cp.inner.ProbeWDL)
}

func (cp *CachedProber) ProbeDTZ(pos *board.Position) ProbeResult {
	return cp.probe(pos, cp.dtz, cp.inner.ProbeDTZ)
}

func (cp *CachedProber) probe(pos *board.Position, cache map[board.Hash]ProbeResult, miss func(*board.Position) ProbeResult) ProbeResult {
	h := pos.Hash()

	cp.mu.RLock()
	if r, ok := cache[h]; ok {
		cp.mu.RUnlock()
		cp.mu.Lock()
		cp.hits++
		cp.mu.Unlock()
		return r
	}
	cp.mu.RUnlock()

	r := miss(pos)

	cp.mu.Lock()
	cp.misses++
	if len(cache) >= cp.maxSize {
		evictHalf(cache, cp.maxSize)
	}
	cache[h] = r
	cp.mu.Unlock()

	return r
}

func evictHalf(cache map[board.Hash]ProbeResult, maxSize int) {
	i := 0
	for k := range cache {
		if i >= maxSize/2 {
			break
		}
		delete(cache, k)
		i++
	}
}

// ProbeRoot is not cached: it depends on the full legal move list, which
// changes at every root.
func (cp *CachedProber) ProbeRoot(pos *board.Position, legal []board.Move) RootResult {
	return cp.inner.ProbeRoot(pos, legal)
}

func (cp *CachedProber) MaxPieces() int  { return cp.inner.MaxPieces() }
func (cp *CachedProber) Available() bool { return cp.inner.Available() }

// HitRate returns the cache hit rate as a percentage, for UCI "info string"
// diagnostics.
func (cp *CachedProber) HitRate() float64 {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	total := cp.hits + cp.misses
	if total == 0 {
		return 0
	}
	return float64(cp.hits) / float64(total) * 100
}

// Clear empties both caches and resets the hit/miss counters.
func (cp *CachedProber) Clear() {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	cp.wdl = make(map[board.Hash]ProbeResult, cp.maxSize)
	cp.dtz = make(map[board.Hash]ProbeResult, cp.maxSize)
	cp.hits, cp.misses = 0, 0
}
