// Package remote bridges a physical or remote chess board (reached through
// herohde/livechess-go's DGT EBoard feed) into engine.Engine as an
// alternative search.Searcher: instead of computing a move, it waits for the
// board to report one of the position's legal candidates and proposes that.
// Grounded on herohde-morlock/cmd/livechess-uci/main.go's adaptor, adapted
// from the teacher's search.Search plug-in point (morlock's engine.New takes
// a search.Search directly) to this module's engine.SearcherFactory seam, so
// the UCI front end (pkg/engine/uci) is reused completely unchanged.
package remote

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/herohde/livechess-go/pkg/livechess"
	"github.com/seekerror/stdlib/pkg/util/iox"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/corvidchess/corvid/pkg/tt"
)

// Source proposes the next move for the position on b, blocking until the
// external board confirms one of its legal candidates or ctx is cancelled.
type Source interface {
	Propose(ctx context.Context, b *board.Board) (board.Move, error)
}

// Bridge implements Source against a livechess-go EBoard feed: it tracks the
// most recent board event and wakes any blocked Propose call through a
// Pulse, the same idle/wake idiom the teacher's adaptor uses.
type Bridge struct {
	client livechess.FeedClient

	mu   sync.Mutex
	last *livechess.EBoardEventResponse

	pulse *iox.Pulse
}

// NewBridge starts consuming events off a livechess feed, returning a Bridge
// ready to serve as a Source.
func NewBridge(ctx context.Context, client livechess.FeedClient, events <-chan livechess.EBoardEventResponse) *Bridge {
	br := &Bridge{client: client, pulse: iox.NewPulse()}
	go br.process(ctx, events)
	return br
}

func (br *Bridge) process(ctx context.Context, events <-chan livechess.EBoardEventResponse) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if len(event.San) > 0 {
				br.mu.Lock()
				e := event
				br.last = &e
				br.mu.Unlock()
				br.pulse.Emit()
			}

		case <-ctx.Done():
			return
		}
	}
}

// Propose waits for the board to report a move matching one of the current
// position's legal candidates (keyed by the resulting position's FEN board
// field, which is what a livechess event reports), per
// herohde-morlock/cmd/livechess-uci/main.go's adaptor.Search.
func (br *Bridge) Propose(ctx context.Context, b *board.Board) (board.Move, error) {
	candidates := map[string]board.Move{}
	for _, m := range b.Position().Generate(board.StageAll, nil) {
		if !b.Position().IsLegal(m) {
			continue
		}
		b.Push(m)
		candidates[strings.SplitN(b.Position().FEN(), " ", 2)[0]] = m
		b.Pop(m)
	}
	if len(candidates) == 0 {
		return board.NoMove, nil
	}

	for {
		br.mu.Lock()
		last := br.last
		br.mu.Unlock()

		if last != nil {
			if m, ok := candidates[last.Board]; ok {
				return m, nil
			}
		}

		select {
		case <-br.pulse.Chan():
			// board changed; re-check candidates
		case <-ctx.Done():
			return board.NoMove, ctx.Err()
		}
	}
}

// NewSearcherFactory adapts source into an engine.SearcherFactory, so
// engine.New(ctx, name, author, engine.WithSearcherFactory(remote.NewSearcherFactory(src)))
// drives the UCI front end off the external board instead of searching.
func NewSearcherFactory(source Source) engine.SearcherFactory {
	return func(threads int, b *board.Board, ev eval.Evaluator, table *tt.Table, sig *search.Signals) search.Searcher {
		return &boardSearcher{source: source, b: b, sig: sig}
	}
}

// boardSearcher implements search.Searcher by delegating to a Source instead
// of running alpha-beta; Engine.Analyze and pkg/engine/uci never notice the
// difference.
type boardSearcher struct {
	source Source
	b      *board.Board
	sig    *search.Signals

	mu     sync.Mutex
	cancel context.CancelFunc
}

func (s *boardSearcher) Search(ctx context.Context, maxDepth, multiPV int, report search.InfoFunc) []search.PV {
	localCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	m, err := s.source.Propose(localCtx, s.b)
	if err != nil || m.IsNone() {
		return nil
	}

	pv := search.PV{Moves: []board.Move{m}, Depth: 1}
	if report != nil {
		report(pv)
	}
	return []search.PV{pv}
}

func (s *boardSearcher) Stop() {
	s.sig.Stop.Store(true)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *boardSearcher) TotalNodes() int64 { return 0 }

// DescribeBoard renders a short diagnostic string for cmd/corvid-remote's
// startup banner.
func DescribeBoard(id livechess.EBoardSerial) string {
	return fmt.Sprintf("eboard %v", id)
}
