// perft is a movegen debugging tool. See:
// https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/seekerror/build"
	"github.com/seekerror/logw"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
)

var version = build.NewVersion(0, 1, 0)

var (
	depth    = flag.Int("depth", 4, "Search depth")
	position = flag.String("fen", "", "Start position (default to standard)")
	divide   = flag.Bool("divide", false, "Divide counts by initial move")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	if *position == "" {
		*position = fen.StartPos
	}

	b, err := board.NewBoardFromFEN(*position)
	if err != nil {
		logw.Exitf(ctx, "Invalid fen %q: %v", *position, err)
	}

	fmt.Printf("perft %v, fen=%q\n", version, *position)
	for i := 1; i <= *depth; i++ {
		start := time.Now()
		var nodes int64
		if *divide && i == *depth {
			nodes = board.Divide(b.Position(), i, os.Stdout)
		} else {
			nodes = board.Perft(b.Position(), i)
		}
		elapsed := time.Since(start)

		fmt.Printf("perft,%v,%v,%v,%v\n", *position, i, nodes, elapsed.Microseconds())
	}
}
