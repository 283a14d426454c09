// Package uci drives an engine.Engine over the UCI protocol on stdin/stdout
// (or any pair of line channels).
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
package uci

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"go.uber.org/atomic"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/corvidchess/corvid/pkg/timectl"
	"github.com/corvidchess/corvid/pkg/tt"
)

// benchDepth is the default search depth for "bench" when none is given —
// deep enough to exercise the pruning/extension suite without making a
// build-sanity check slow.
const benchDepth = 10

// benchPositions is the fixed suite "bench" runs: the start position plus
// Kiwipete (the same heavily-branching middlegame FEN pkg/board/perft_test.go
// uses), chosen to exercise both quiet middlegame play and a position dense
// with captures/castling/en passant/promotion candidates.
var benchPositions = []string{
	fen.StartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
}

// ProtocolName is the name this driver activates on.
const ProtocolName = "uci"

// Option configures a Driver at construction.
type Option func(*options)

type options struct {
	book engine.Book
	rand *rand.Rand
}

// UseBook enables an opening book, consulted before every search.
func UseBook(book engine.Book, seed int64) Option {
	return func(o *options) {
		o.book = book
		o.rand = rand.New(rand.NewSource(seed))
	}
}

// Driver implements a UCI protocol session against a single engine.Engine.
// Grounded directly on herohde-morlock/pkg/engine/uci/uci.go's Driver: a
// process loop reading a line channel, writing an output line channel,
// generalized for this module's multi-line PV (search.PV has no single
// "Time" field, so the driver stamps wall-clock itself) and soft/hard
// time-budget split (timectl.Limits/Compute instead of the teacher's flat
// TimeControl.White/Black division).
type Driver struct {
	e   *engine.Engine
	opt options

	out chan<- string

	useBook atomic.Bool
	active  atomic.Bool
	pondering atomic.Bool

	pv chan search.PV

	lastPosition string
	lastTC       timectl.Limits
	started      time.Time

	quit   chan struct{}
	closed atomic.Bool
}

// NewDriver starts a driver reading commands off in, returning the output
// line channel (closed when the session ends).
func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string, opts ...Option) (*Driver, <-chan string) {
	var opt options
	for _, fn := range opts {
		fn(&opt)
	}

	out := make(chan string, 100)
	d := &Driver{
		e:    e,
		opt:  opt,
		out:  out,
		pv:   make(chan search.PV, 400),
		quit: make(chan struct{}),
	}
	if opt.book != nil {
		d.useBook.Store(true)
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

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())
	d.sendOptions()
	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}
			if quit := d.handle(ctx, line); quit {
				return
			}

		case pv := <-d.pv:
			if d.active.Load() {
				d.out <- d.formatInfo(pv)
			}

		case <-d.quit:
			d.ensureInactive(ctx)
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

// sendOptions advertises every option spec.md §6 names, even the ones this
// core doesn't act on (SyzygyPath et al.): a GUI that always sends
// "setoption" for every advertised option shouldn't get a ProtocolError for
// options this build can't yet honor.
func (d *Driver) sendOptions() {
	o := d.e.Options()
	d.out <- fmt.Sprintf("option name Hash type spin default %v min 1 max 65536", o.Hash)
	d.out <- fmt.Sprintf("option name Threads type spin default %v min 1 max 512", o.Threads)
	d.out <- fmt.Sprintf("option name MultiPV type spin default %v min 1 max 256", o.MultiPV)
	d.out <- fmt.Sprintf("option name Contempt type spin default %v min -100 max 100", o.Contempt)
	d.out <- fmt.Sprintf("option name Move Overhead type spin default %v min 0 max 5000", o.MoveOverhead.Milliseconds())
	d.out <- fmt.Sprintf("option name Minimum Thinking Time type spin default %v min 0 max 5000", o.MinimumTime.Milliseconds())
	d.out <- fmt.Sprintf("option name Ponder type check default %v", o.Ponder)
	d.out <- "option name Clear Hash type button"
	d.out <- fmt.Sprintf("option name EngineMode type combo default %v var nnue var random", o.EngineMode)
	d.out <- fmt.Sprintf("option name Noise type spin default %v min 0 max 1000", o.Noise)
	d.out <- "option name SyzygyPath type string default <empty>"
	d.out <- fmt.Sprintf("option name SyzygyProbeDepth type spin default %v min 1 max 100", o.SyzygyProbeDepth)
	d.out <- fmt.Sprintf("option name SyzygyProbeLimit type spin default %v min 0 max 7", o.SyzygyProbeLimit)
	d.out <- fmt.Sprintf("option name Syzygy50MoveRule type check default %v", o.Syzygy50MoveRule)
	d.out <- "option name MCTS type check default false"
	if d.opt.book != nil {
		d.out <- fmt.Sprintf("option name OwnBook type check default %v", d.useBook.Load())
	}
}

// handle processes one input line, returning true if the session should end.
func (d *Driver) handle(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "isready":
		d.out <- "readyok"

	case "debug":
		// spec.md §6: accepted, no behavioral change in this build.

	case "setoption":
		d.handleSetOption(ctx, args, line)

	case "register":
		// no-op: this engine doesn't require registration.

	case "ucinewgame":
		d.ensureInactive(ctx)
		d.lastPosition = ""

	case "position":
		d.handlePosition(ctx, args, line)

	case "go":
		d.handleGo(ctx, args, line)

	case "stop":
		d.e.Halt(ctx)

	case "ponderhit":
		d.pondering.Store(false)

	case "perft":
		d.handlePerft(ctx, args, false)

	case "divide":
		d.handlePerft(ctx, args, true)

	case "bench":
		d.handleBench(ctx, args)

	case "quit":
		return true

	default:
		logw.Warningf(ctx, "Unknown command %q: %v", cmd, args)
	}
	return false
}

func (d *Driver) handleSetOption(ctx context.Context, args []string, line string) {
	name, value := parseSetOption(args)
	switch name {
	case "Hash":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetHash(uint(n))
		}
	case "Threads":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetThreads(uint(n))
		}
	case "MultiPV":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetMultiPV(uint(n))
		}
	case "Contempt":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetContempt(n)
		}
	case "Move Overhead":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetMoveOverhead(time.Duration(n) * time.Millisecond)
		}
	case "Minimum Thinking Time":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetMinimumTime(time.Duration(n) * time.Millisecond)
		}
	case "Ponder":
		d.e.SetPonder(value == "true")
	case "Noise":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetNoise(uint(n))
		}
	case "EngineMode":
		d.e.SetEngineMode(value)
	case "Clear Hash":
		d.e.ClearHash()
	case "OwnBook":
		d.useBook.Store(value == "true")
	case "SyzygyPath":
		d.e.SetSyzygyPath(ctx, value)
	case "SyzygyProbeDepth":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetSyzygyProbeDepth(n)
		}
	case "SyzygyProbeLimit":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetSyzygyProbeLimit(n)
		}
	case "Syzygy50MoveRule":
		d.e.SetSyzygy50MoveRule(value == "true")
	case "MCTS":
		// accepted per spec.md §6's setoption surface; MCTS is an orthogonal
		// alternative search mode this core doesn't implement.
	default:
		logw.Warningf(ctx, "Unknown option %q: %v", name, line)
	}
}

func parseSetOption(args []string) (name, value string) {
	var nameParts, valueParts []string
	mode := 0 // 0=skip, 1=name, 2=value
	for _, a := range args {
		switch a {
		case "name":
			mode = 1
		case "value":
			mode = 2
		default:
			switch mode {
			case 1:
				nameParts = append(nameParts, a)
			case 2:
				valueParts = append(valueParts, a)
			}
		}
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " ")
}

func (d *Driver) handlePosition(ctx context.Context, args []string, line string) {
	d.ensureInactive(ctx)

	if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
		rest := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
		for _, arg := range strings.Fields(rest) {
			if arg == "moves" {
				continue
			}
			if err := d.e.Move(ctx, arg); err != nil {
				logw.Errorf(ctx, "Invalid move %q in %q: %v", arg, line, err)
				return
			}
		}
		d.lastPosition = line
		return
	}

	position := fen.StartPos
	rest := args
	if len(args) > 0 && args[0] == "fen" {
		rest = args[1:]
		var fenParts []string
		for len(rest) > 0 && rest[0] != "moves" {
			fenParts = append(fenParts, rest[0])
			rest = rest[1:]
		}
		position = strings.Join(fenParts, " ")
	} else if len(args) > 0 && args[0] == "startpos" {
		rest = args[1:]
	}

	if err := d.e.Reset(ctx, position); err != nil {
		logw.Errorf(ctx, "Invalid position %q: %v", line, err)
		return
	}

	move := false
	for _, arg := range rest {
		if arg == "moves" {
			move = true
			continue
		}
		if !move {
			continue
		}
		if err := d.e.Move(ctx, arg); err != nil {
			logw.Errorf(ctx, "Invalid move %q in %q: %v", arg, line, err)
			return
		}
	}
	d.lastPosition = line
}

// handlePerft implements spec.md §6's "perft <depth> [fen]" and
// "divide <depth> [fen]": movegen-correctness node counting reusing
// pkg/board's Perft/Divide (the same logic cmd/perft's standalone binary
// runs). With no fen argument it perfts the board currently loaded via
// "position", a forked copy so it never disturbs engine state mid-game.
func (d *Driver) handlePerft(ctx context.Context, args []string, divide bool) {
	if len(args) == 0 {
		logw.Warningf(ctx, "perft: missing depth")
		return
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 0 {
		logw.Warningf(ctx, "perft: invalid depth %q", args[0])
		return
	}

	var b *board.Board
	if len(args) > 1 {
		b, err = board.NewBoardFromFEN(strings.Join(args[1:], " "))
		if err != nil {
			logw.Errorf(ctx, "perft: invalid fen %q: %v", strings.Join(args[1:], " "), err)
			return
		}
	} else {
		b = d.e.Board()
	}

	start := time.Now()
	pos := b.Position()
	var nodes int64
	if divide {
		nodes = board.Divide(pos, depth, channelWriter{d.out})
	} else {
		nodes = board.Perft(pos, depth)
	}
	elapsed := time.Since(start)

	d.out <- fmt.Sprintf("perft depth %v nodes %v time %v", depth, nodes, elapsed.Milliseconds())
}

// handleBench implements spec.md §6's "bench [depth]": a self-contained
// search-layer sanity check over benchPositions, independent of any engine
// state "position"/"go" commands have set up, reporting total nodes and an
// NPS figure the same way Stockfish-lineage engines' "bench" does for
// build-to-build performance comparison. Runs single-threaded with a fresh
// transposition table per position so results don't depend on prior search
// history.
func (d *Driver) handleBench(ctx context.Context, args []string) {
	depth := benchDepth
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			depth = n
		}
	}

	start := time.Now()
	var totalNodes int64
	for _, position := range benchPositions {
		b, err := board.NewBoardFromFEN(position)
		if err != nil {
			logw.Errorf(ctx, "bench: invalid built-in fen %q: %v", position, err)
			continue
		}
		table := tt.New(16 << 20)
		pool := search.NewPool(1, b, eval.Material{}, table, &search.Signals{})
		pool.Search(ctx, depth, 1, nil)
		totalNodes += pool.TotalNodes()
	}
	elapsed := time.Since(start)

	nps := int64(0)
	if elapsed > 0 {
		nps = int64(float64(totalNodes) / elapsed.Seconds())
	}
	d.out <- fmt.Sprintf("bench depth %v positions %v nodes %v time %v nps %v",
		depth, len(benchPositions), totalNodes, elapsed.Milliseconds(), nps)
}

func (d *Driver) handleGo(ctx context.Context, args []string, line string) {
	d.ensureInactive(ctx)

	var opt engine.AnalyzeOptions
	tc := timectl.Limits{}
	haveTC := false
	ponder := false
	turn := d.e.Board().Turn()

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "wtime", "btime", "winc", "binc", "movestogo", "depth", "nodes", "movetime":
			cmd := args[i]
			i++
			if i == len(args) {
				logw.Errorf(ctx, "No argument for %v: %v", cmd, line)
				return
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				logw.Errorf(ctx, "Invalid argument for %v: %v", cmd, line)
				return
			}
			switch cmd {
			case "depth":
				opt.DepthLimit = lang.Some(n)
			case "nodes":
				opt.NodeLimit = lang.Some(int64(n))
			case "movetime":
				opt.MoveTime = lang.Some(time.Duration(n) * time.Millisecond)
			case "wtime":
				haveTC = true
				if turn == board.White {
					tc.Time = time.Duration(n) * time.Millisecond
				}
			case "btime":
				haveTC = true
				if turn == board.Black {
					tc.Time = time.Duration(n) * time.Millisecond
				}
			case "winc":
				haveTC = true
				if turn == board.White {
					tc.Inc = time.Duration(n) * time.Millisecond
				}
			case "binc":
				haveTC = true
				if turn == board.Black {
					tc.Inc = time.Duration(n) * time.Millisecond
				}
			case "movestogo":
				haveTC = true
				tc.MovesToGo = n
			}

		case "infinite":
			opt.Infinite = true

		case "ponder":
			ponder = true

		default:
			// searchmoves, mate: accepted by the parser, not restricted in
			// this build's search (spec.md §6 lists them as optional).
		}
	}

	if ponder {
		tc.PonderOn = true
		d.pondering.Store(true)
	}
	if haveTC {
		opt.TimeControl = lang.Some(tc)
		d.lastTC = tc
	}

	if d.useBook.Load() && d.opt.book != nil {
		if m, ok := d.e.BookMove(ctx); ok {
			d.active.Store(true)
			d.searchCompleted(ctx, search.PV{Moves: []board.Move{m}})
			return
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
			d.pv <- pv
		}
		if !opt.Infinite {
			d.searchCompleted(ctx, last)
		}
	}()
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	d.pondering.Store(false)
	d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if !d.active.CAS(true, false) {
		return // stale or duplicate result
	}
	if len(pv.Moves) == 0 {
		d.out <- "bestmove 0000"
		return
	}
	d.out <- d.formatInfo(pv)
	best := fmt.Sprintf("bestmove %v", pv.Move())
	if ponder := pv.Ponder(); !ponder.IsNone() {
		best += fmt.Sprintf(" ponder %v", ponder)
	}
	d.out <- best
}

func (d *Driver) formatInfo(pv search.PV) string {
	parts := []string{"info", fmt.Sprintf("depth %v", pv.Depth)}
	if pv.SelDepth > 0 {
		parts = append(parts, fmt.Sprintf("seldepth %v", pv.SelDepth))
	}

	if n, ok := pv.Score.MateDistance(); ok {
		parts = append(parts, fmt.Sprintf("score mate %v", (n+1)/2))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))
	}
	if pv.Bound != "" {
		parts = append(parts, pv.Bound)
	}

	elapsed := time.Since(d.started)
	parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	parts = append(parts, fmt.Sprintf("time %v", elapsed.Milliseconds()))
	if elapsed > 0 {
		nps := int64(float64(pv.Nodes) / elapsed.Seconds())
		parts = append(parts, fmt.Sprintf("nps %v", nps))
	}

	if len(pv.Moves) > 0 {
		moves := make([]string, len(pv.Moves))
		for i, m := range pv.Moves {
			moves[i] = m.String()
		}
		parts = append(parts, "pv", strings.Join(moves, " "))
	}
	return strings.Join(parts, " ")
}

// channelWriter adapts the driver's output channel to an io.Writer, for
// board.Divide to print one line per root move the same way it would to a
// terminal in cmd/perft.
type channelWriter struct {
	out chan<- string
}

func (w channelWriter) Write(p []byte) (int, error) {
	w.out <- strings.TrimRight(string(p), "\n")
	return len(p), nil
}
