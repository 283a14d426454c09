package uci_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/engine/uci"
)

// readUntil drains out until a line equal to want is seen (inclusive),
// failing the test if closed/timed out first. Used to skip past the
// greeting block (id/option/uciok) a fresh Driver sends unprompted.
func readUntil(t *testing.T, out <-chan string, want string) {
	t.Helper()
	for {
		select {
		case line, ok := <-out:
			if !ok {
				t.Fatalf("output closed before seeing %q", want)
			}
			if line == want {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func readOne(t *testing.T, out <-chan string) string {
	t.Helper()
	select {
	case line, ok := <-out:
		require.True(t, ok, "output closed unexpectedly")
		return line
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a line")
		return ""
	}
}

// TestDriverSendsGreetingThenUCIOk checks the handshake spec.md §6 requires:
// id name/author, an option block, then "uciok", sent unprompted as soon as
// the session starts.
func TestDriverSendsGreetingThenUCIOk(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := uci.NewDriver(ctx, e, in)

	first := readOne(t, out)
	assert.Contains(t, first, "id name")
	readUntil(t, out, "uciok")
}

// TestDriverRespondsReadyOkToIsReady checks the synchronous isready/readyok
// handshake.
func TestDriverRespondsReadyOkToIsReady(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := uci.NewDriver(ctx, e, in)
	readUntil(t, out, "uciok")

	in <- "isready"
	assert.Equal(t, "readyok", readOne(t, out))
}

// TestDriverSetOptionHashAppliesToEngine checks setoption wiring reaches
// Engine.SetHash rather than being silently accepted and dropped.
func TestDriverSetOptionHashAppliesToEngine(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := uci.NewDriver(ctx, e, in)
	readUntil(t, out, "uciok")

	in <- "setoption name Hash value 32"
	in <- "isready"
	assert.Equal(t, "readyok", readOne(t, out))
	assert.EqualValues(t, 32, e.Options().Hash)
}

// TestDriverPositionStartposWithMovesUpdatesBoard checks the "position
// startpos moves ..." command replays each move against the engine's board,
// the same path a GUI uses for every search request.
func TestDriverPositionStartposWithMovesUpdatesBoard(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := uci.NewDriver(ctx, e, in)
	readUntil(t, out, "uciok")

	in <- "position startpos moves e2e4 e7e5"
	in <- "isready"
	assert.Equal(t, "readyok", readOne(t, out))

	fenStr := e.Board().Position().FEN()
	assert.Contains(t, fenStr, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR")
}

// TestDriverQuitClosesOutputAndDriver checks "quit" ends the session loop,
// closing both the output channel and the Closed() signal.
func TestDriverQuitClosesOutputAndDriver(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	d, out := uci.NewDriver(ctx, e, in)
	readUntil(t, out, "uciok")

	in <- "quit"

	select {
	case <-d.Closed():
	case <-time.After(5 * time.Second):
		t.Fatal("driver did not close after quit")
	}

	// The output channel is closed once the process loop returns.
	for range out {
	}
}

// TestDriverPerftReportsNodeCountForStartPosition checks "perft <depth>"
// walks the live position (startpos by default) rather than requiring a
// prior "position" command.
func TestDriverPerftReportsNodeCountForStartPosition(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := uci.NewDriver(ctx, e, in)
	readUntil(t, out, "uciok")

	in <- "perft 3"
	line := readOne(t, out)
	assert.True(t, strings.HasPrefix(line, "perft depth 3 nodes 8902 "), "got %q", line)
}

// TestDriverPerftAcceptsExplicitFEN checks a FEN argument after the depth is
// used in place of the live position.
func TestDriverPerftAcceptsExplicitFEN(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := uci.NewDriver(ctx, e, in)
	readUntil(t, out, "uciok")

	in <- "perft 1 r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	line := readOne(t, out)
	assert.True(t, strings.HasPrefix(line, "perft depth 1 nodes 48 "), "got %q", line)
}

// TestDriverDivideListsPerMoveCountsBeforeTheSummary checks "divide <depth>"
// streams one "<move>: <count>" line per legal root move ahead of the same
// summary line "perft" produces.
func TestDriverDivideListsPerMoveCountsBeforeTheSummary(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := uci.NewDriver(ctx, e, in)
	readUntil(t, out, "uciok")

	in <- "divide 1"

	var moveLines []string
	var summary string
	for i := 0; i < 21; i++ {
		line := readOne(t, out)
		if strings.HasPrefix(line, "perft depth") {
			summary = line
			break
		}
		moveLines = append(moveLines, line)
	}

	assert.Len(t, moveLines, 20)
	for _, line := range moveLines {
		assert.Contains(t, line, ": ")
	}
	assert.True(t, strings.HasPrefix(summary, "perft depth 1 nodes 20 "), "got %q", summary)
}

// TestDriverBenchReportsNodesAcrossBuiltinPositions checks "bench [depth]"
// runs independently of any "position"/"go" state and reports a summary
// line covering every built-in benchmark position.
func TestDriverBenchReportsNodesAcrossBuiltinPositions(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := uci.NewDriver(ctx, e, in)
	readUntil(t, out, "uciok")

	in <- "bench 1"
	line := readOne(t, out)
	assert.True(t, strings.HasPrefix(line, "bench depth 1 positions 2 nodes "), "got %q", line)
	assert.Contains(t, line, "nps")
}
