// Package console implements a human-readable, non-UCI REPL driver for an
// engine.Engine: print the board, play/undo moves, kick off an analysis and
// watch its PVs stream by. Grounded directly on
// herohde-morlock/pkg/engine/console/console.go's Driver, trimmed of the
// teacher's per-move ponder breakdown (that leans on a single-move
// search.Search entry point this module's Pool-oriented search doesn't
// expose) and adapted to this module's AnalyzeOptions/PV shapes.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/atomic"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/search"
)

const ProtocolName = "console"

// Driver implements a console driver for interactive debugging.
type Driver struct {
	e   *engine.Engine
	out chan<- string

	depth   int
	active  atomic.Bool
	started time.Time

	quit   chan struct{}
	closed atomic.Bool
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:     e,
		out:   out,
		depth: 8,
		quit:  make(chan struct{}),
	}
	go d.process(ctx, in)
	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} { return d.quit }

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard()

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}
			d.handle(ctx, line)

		case <-d.quit:
			d.ensureInactive(ctx)
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) handle(ctx context.Context, line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "reset", "r":
		d.ensureInactive(ctx)
		pos := fen.StartPos
		move := false
		if len(args) > 0 && args[0] != "moves" {
			pos = strings.Join(args, " ") // caller is expected to quote/space a full FEN
		}
		if err := d.e.Reset(ctx, pos); err != nil {
			logw.Errorf(ctx, "Invalid position: %v", line)
			return
		}
		for _, arg := range args {
			if arg == "moves" {
				move = true
				continue
			}
			if !move {
				continue
			}
			if err := d.e.Move(ctx, arg); err != nil {
				logw.Errorf(ctx, "Invalid move %q: %v", arg, err)
				return
			}
		}
		d.printBoard()

	case "undo", "u":
		d.ensureInactive(ctx)
		if err := d.e.TakeBack(ctx); err != nil {
			d.out <- fmt.Sprintf("%v", err)
		}
		d.printBoard()

	case "print", "p":
		d.printBoard()

	case "analyze", "a":
		d.ensureInactive(ctx)

		opt := engine.AnalyzeOptions{DepthLimit: lang.Some(d.depth)}
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				opt.DepthLimit = lang.Some(n)
			}
		}

		out, err := d.e.Analyze(ctx, opt)
		if err != nil {
			logw.Errorf(ctx, "Analyze failed: %v", err)
			return
		}
		d.active.Store(true)
		d.started = time.Now()

		go func() {
			var last search.PV
			for pv := range out {
				last = pv
				d.out <- d.formatPV(pv)
			}
			d.searchCompleted(last)
		}()

	case "depth", "d":
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				d.depth = n
			}
		}

	case "hash":
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				d.e.SetHash(uint(n))
			}
		}

	case "nohash":
		d.e.SetHash(0)

	case "threads":
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				d.e.SetThreads(uint(n))
			}
		}

	case "multipv":
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				d.e.SetMultiPV(uint(n))
			}
		}

	case "noise":
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				d.e.SetNoise(uint(n))
			}
		}

	case "nonoise":
		d.e.SetNoise(0)

	case "halt", "stop":
		d.e.Halt(ctx)

	case "quit", "exit", "q":
		d.ensureInactive(ctx)
		d.Close()

	case "":
		// ignore empty line

	default:
		// Assume a move if not a recognized command.
		d.ensureInactive(ctx)
		if err := d.e.Move(ctx, cmd); err != nil {
			d.out <- fmt.Sprintf("invalid move: %q", cmd)
		} else {
			d.printBoard()
		}
	}
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(pv search.PV) {
	if !d.active.CAS(true, false) {
		return
	}
	if len(pv.Moves) > 0 {
		d.out <- fmt.Sprintf("bestmove %v", pv.Move())
	} else {
		d.out <- "bestmove 0000"
	}
}

func (d *Driver) formatPV(pv search.PV) string {
	moves := make([]string, len(pv.Moves))
	for i, m := range pv.Moves {
		moves[i] = m.String()
	}
	return fmt.Sprintf("depth=%-3v score=%-8v nodes=%-10v time=%-6v pv %v",
		pv.Depth, pv.Score, pv.Nodes, time.Since(d.started).Round(time.Millisecond), strings.Join(moves, " "))
}

const (
	filesLine  = "    a   b   c   d   e   f   g   h"
	horizontal = "  ---------------------------------"
	vertical   = " | "
)

func (d *Driver) printBoard() {
	b := d.e.Board()
	p := b.Position()

	d.out <- ""
	d.out <- filesLine
	d.out <- horizontal
	for rank := 7; rank >= 0; rank-- {
		var sb strings.Builder
		sb.WriteString(strconv.Itoa(rank+1) + vertical)
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(board.File(file), board.Rank(rank))
			pc := p.PieceAt(sq)
			if pc == board.NoPiece {
				sb.WriteString(" ")
			} else {
				sb.WriteString(printPiece(pc))
			}
			sb.WriteString(vertical)
		}
		d.out <- sb.String()
		d.out <- horizontal
	}
	d.out <- filesLine
	d.out <- ""
	d.out <- fmt.Sprintf("fen:    %v", d.e.Position())
	d.out <- fmt.Sprintf("turn:   %v, halfmove: %v, fullmove: %v, hash: 0x%x",
		p.Turn(), p.HalfmoveClock(), p.FullmoveNumber(), p.Hash())
	d.out <- ""
}

func printPiece(p board.Piece) string {
	if p.Color() == board.White {
		return strings.ToUpper(p.Type().String())
	}
	return strings.ToLower(p.Type().String())
}
