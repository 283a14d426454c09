package remote_test

import (
	"context"
	"errors"
	"testing"

	"github.com/herohde/livechess-go/pkg/livechess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/engine/remote"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/corvidchess/corvid/pkg/tt"
)

// stubSource implements remote.Source without touching any livechess wire
// types, standing in for a physical board reporting one fixed move.
type stubSource struct {
	move board.Move
	err  error
}

func (s stubSource) Propose(ctx context.Context, b *board.Board) (board.Move, error) {
	return s.move, s.err
}

// TestSearcherFactoryReportsProposedMove checks the search.Searcher adaptor
// NewSearcherFactory builds: the returned Search result is exactly the
// single move the Source proposes, wrapped as a depth-1 PV.
func TestSearcherFactoryReportsProposedMove(t *testing.T) {
	b := board.NewBoard()
	move := board.NewMove(board.E2, board.E4, board.Normal)

	factory := remote.NewSearcherFactory(stubSource{move: move})
	table := tt.New(1 << 20)
	searcher := factory(1, b, eval.Material{}, table, &search.Signals{})

	var reported []search.PV
	lines := searcher.Search(context.Background(), 1, 1, func(pv search.PV) {
		reported = append(reported, pv)
	})

	require.Len(t, lines, 1)
	assert.Equal(t, move, lines[0].Move())
	require.Len(t, reported, 1, "report callback should fire once with the same PV")
	assert.Equal(t, move, reported[0].Move())
	assert.EqualValues(t, 0, searcher.TotalNodes())
}

// TestSearcherFactoryReturnsNoLinesOnSourceError checks a Propose failure (the
// board feed dying mid-wait, or ctx cancellation) surfaces as no PVs rather
// than a panic or a bogus move.
func TestSearcherFactoryReturnsNoLinesOnSourceError(t *testing.T) {
	b := board.NewBoard()
	factory := remote.NewSearcherFactory(stubSource{err: errors.New("feed closed")})
	searcher := factory(1, b, eval.Material{}, tt.New(1<<20), &search.Signals{})

	lines := searcher.Search(context.Background(), 1, 1, nil)
	assert.Nil(t, lines)
}

// TestSearcherFactoryReturnsNoLinesForNoMove checks board.NoMove (the "no
// legal move matched yet" sentinel Source.Propose may return) is treated the
// same as an error rather than reported as a move.
func TestSearcherFactoryReturnsNoLinesForNoMove(t *testing.T) {
	b := board.NewBoard()
	factory := remote.NewSearcherFactory(stubSource{move: board.NoMove})
	searcher := factory(1, b, eval.Material{}, tt.New(1<<20), &search.Signals{})

	lines := searcher.Search(context.Background(), 1, 1, nil)
	assert.Nil(t, lines)
}

// TestSearcherStopHaltsSignalsAndCancelsContext checks Stop both flips the
// shared Signals.Stop flag and cancels the in-flight Search call's context,
// unblocking a Source.Propose call waiting on ctx.Done().
func TestSearcherStopHaltsSignalsAndCancelsContext(t *testing.T) {
	b := board.NewBoard()
	sig := &search.Signals{}
	src := blockingSource{ready: make(chan struct{})}
	factory := remote.NewSearcherFactory(src)
	searcher := factory(1, b, eval.Material{}, tt.New(1<<20), sig)

	done := make(chan []search.PV, 1)
	go func() {
		done <- searcher.Search(context.Background(), 1, 1, nil)
	}()

	<-src.ready // Propose is blocked on ctx.Done(); s.cancel is now set
	searcher.Stop()
	<-done

	assert.True(t, sig.Stop.Load())
}

// blockingSource signals ready once Propose starts waiting, then blocks on
// ctx cancellation, simulating a board feed that never reports a matching
// move until the search is stopped.
type blockingSource struct {
	ready chan struct{}
}

func (s blockingSource) Propose(ctx context.Context, b *board.Board) (board.Move, error) {
	close(s.ready)
	<-ctx.Done()
	return board.NoMove, ctx.Err()
}

// TestDescribeBoardRendersSerial is a light sanity check on the startup
// banner helper cmd/corvid-remote prints.
func TestDescribeBoardRendersSerial(t *testing.T) {
	got := remote.DescribeBoard(livechess.EBoardSerial("ABC123"))
	assert.Contains(t, got, "ABC123")
}
