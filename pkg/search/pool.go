package search

import (
	"context"
	"sync"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/tt"
)

// Searcher abstracts "run one search over the current position", the seam
// engine.Engine.Analyze drives: normally *Pool, but substitutable (e.g. by
// pkg/engine/remote) with a non-searching move source that still speaks the
// same Search/Stop/TotalNodes surface, so the UCI front end never has to
// know which one it's talking to.
type Searcher interface {
	Search(ctx context.Context, maxDepth, multiPV int, report InfoFunc) []PV
	Stop()
	TotalNodes() int64
}

// Pool runs Lazy-SMP search: every worker searches the same root
// independently at its own pace, sharing one transposition table so a
// helper thread's discoveries feed the main thread's move ordering (and
// vice versa) without any explicit work division. Grounded on
// herohde-morlock/pkg/search/search.go's single-worker driver, generalized
// to N goroutines per spec.md §4.11 ("Lazy SMP: shared transposition table,
// no explicit work division, differing depths/skip patterns across
// threads").
type Pool struct {
	TT      *tt.Table
	Sig     *Signals
	workers []*Worker
}

var _ Searcher = (*Pool)(nil)

// NewPool builds a pool of n workers, each with its own forked board copy
// and heuristic tables, all sharing table and sig.
func NewPool(n int, b *board.Board, ev eval.Evaluator, table *tt.Table, sig *Signals) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{TT: table, Sig: sig, workers: make([]*Worker, n)}
	for i := 0; i < n; i++ {
		p.workers[i] = NewWorker(i, b.Fork(), ev, table, sig)
	}
	return p
}

// skipDepth lowers some helper threads' maximum depth slightly (every
// thread still iterates from depth 1; a common Lazy-SMP diversification
// trick: identical search trees across every thread would waste the extra
// cores) per spec.md §4.11.
func skipDepth(workerID, depth int) int {
	if workerID == 0 {
		return depth
	}
	if workerID%2 == 1 && depth > 1 {
		return depth - 1
	}
	return depth
}

// Search runs the pool to maxDepth (or until ctx is done), reporting only
// the main worker's (ID 0) PVs through report, and returns its final lines.
// Helper threads run purely to populate the shared TT; their own PVs are
// discarded, matching how Lazy SMP pools are conventionally driven.
func (p *Pool) Search(ctx context.Context, maxDepth, multiPV int, report InfoFunc) []PV {
	p.Sig.Stop.Store(false)
	p.TT.NewSearch()

	var wg sync.WaitGroup
	var mainResult []PV

	for _, w := range p.workers {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := maxDepth
			if w.ID != 0 {
				d = skipDepth(w.ID, maxDepth)
				if d < 1 {
					d = 1
				}
			}
			lines := w.Iterate(ctx, d, multiPV, reportFor(w, report))
			if w.ID == 0 {
				mainResult = lines
			}
		}()
	}
	wg.Wait()

	return mainResult
}

// reportFor suppresses info callbacks from every worker but the main one,
// so a UCI driver watching report never sees interleaved PVs from helper
// threads searching at a different depth.
func reportFor(w *Worker, report InfoFunc) InfoFunc {
	if report == nil || w.ID != 0 {
		return nil
	}
	return report
}

// Stop signals every worker in the pool to return as soon as it next checks
// in (spec.md's "stop" UCI command), safe to call from any goroutine.
func (p *Pool) Stop() {
	p.Sig.Stop.Store(true)
}

// TotalNodes sums the node counts of every worker, the conventional
// Lazy-SMP "nodes searched" figure reported to the UCI driver.
func (p *Pool) TotalNodes() int64 {
	var total int64
	for _, w := range p.workers {
		total += w.Nodes
	}
	return total
}
