package console_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/engine/console"
)

// boardLineCount is printBoard's fixed output size: a blank line, the files
// header, a horizontal rule, 8 ranks each followed by a horizontal rule, the
// files header again, a blank line, the "fen:" line, the "turn:" line, and a
// final blank line.
const boardLineCount = 3 + 8*2 + 5

// fenLineIndex is the zero-based position of the "fen:" line in one render.
const fenLineIndex = 3 + 8*2 + 2

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

// readBoard drains exactly one printBoard render and returns its
// "fen: ..." line.
func readBoard(t *testing.T, out <-chan string) string {
	t.Helper()
	var fenLine string
	for i := 0; i < boardLineCount; i++ {
		line := readOne(t, out)
		if i == fenLineIndex {
			fenLine = line
		}
	}
	require.True(t, strings.HasPrefix(fenLine, "fen:"), "expected a fen line, got %q", fenLine)
	return fenLine
}

// TestDriverPrintsGreetingAndBoardOnStart checks the unprompted startup
// output: an engine banner followed by the initial board render.
func TestDriverPrintsGreetingAndBoardOnStart(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := console.NewDriver(ctx, e, in)

	greeting := readOne(t, out)
	assert.Contains(t, greeting, "corvid")
	assert.Contains(t, greeting, "test")

	fenLine := readBoard(t, out)
	assert.Contains(t, fenLine, "rnbqkbnr")
}

// TestDriverBareMoveTokenAppliesAsAMove checks the default branch: any input
// that isn't a recognized command is tried as a move against the board.
func TestDriverBareMoveTokenAppliesAsAMove(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := console.NewDriver(ctx, e, in)
	readOne(t, out)
	readBoard(t, out)

	in <- "e2e4"
	fenLine := readBoard(t, out)
	assert.Contains(t, fenLine, "4P3")
}

// TestDriverUndoReversesTheLastMove checks "undo" pops the move just applied
// via TakeBack, restoring the starting position.
func TestDriverUndoReversesTheLastMove(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := console.NewDriver(ctx, e, in)
	readOne(t, out)
	readBoard(t, out)

	in <- "e2e4"
	readBoard(t, out)

	in <- "undo"
	fenLine := readBoard(t, out)
	assert.Contains(t, fenLine, "RNBQKBNR")
	assert.Contains(t, fenLine, "rnbqkbnr")
}

// TestDriverHashCommandAppliesToEngine checks the "hash <mb>" console command
// reaches Engine.SetHash.
func TestDriverHashCommandAppliesToEngine(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	_, out := console.NewDriver(ctx, e, in)
	readOne(t, out)
	readBoard(t, out)

	in <- "hash 32"
	in <- "print"
	readBoard(t, out)

	assert.EqualValues(t, 32, e.Options().Hash)
}

// TestDriverQuitClosesTheSession checks "quit" closes the Closed() signal.
func TestDriverQuitClosesTheSession(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid", "test")
	in := make(chan string, 10)
	d, out := console.NewDriver(ctx, e, in)
	readOne(t, out)
	readBoard(t, out)

	in <- "quit"

	select {
	case <-d.Closed():
	case <-time.After(5 * time.Second):
		t.Fatal("driver did not close after quit")
	}
	for range out {
	}
}
