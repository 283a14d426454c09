// Package engine wires together board, eval, search, and time-control into
// a single game-playing object that a UCI or console driver front-end calls
// into. Grounded directly on herohde-morlock/pkg/engine/engine.go's Engine
// (name/author/options, mutex-guarded board, functional Option constructors,
// Reset/Move/TakeBack/Analyze/Halt surface), adapted from the teacher's
// single-threaded searchctl.Launcher to this module's Lazy-SMP
// search.Pool and timectl time manager.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/corvidchess/corvid/pkg/tb"
	"github.com/corvidchess/corvid/pkg/timectl"
	"github.com/corvidchess/corvid/pkg/tt"
)

var version = build.NewVersion(0, 1, 0)

// Options are the engine-wide knobs spec.md §6's "setoption" surface
// configures, threaded explicitly into Engine rather than stored as package
// globals (spec.md §9's REDESIGN FLAGS calls out global UCI-option state as
// a design smell to fix).
type Options struct {
	Hash         uint // MB; there is always a table (0 keeps the current one on SetHash, 1MB on Reset)
	Threads      uint
	MultiPV      uint
	Contempt     int // centipawns, from the engine's own perspective
	MoveOverhead time.Duration
	MinimumTime  time.Duration
	Ponder       bool
	Noise        uint // millipawns of eval randomness
	EngineMode   string // "nnue" | "random"

	SyzygyPath       string // empty disables tablebase probing
	SyzygyProbeDepth int
	SyzygyProbeLimit int
	Syzygy50MoveRule bool
}

func (o Options) String() string {
	return fmt.Sprintf("{hash=%vMB threads=%v multipv=%v contempt=%v mode=%v}",
		o.Hash, o.Threads, o.MultiPV, o.Contempt, o.EngineMode)
}

func defaultOptions() Options {
	return Options{
		Hash:         16,
		Threads:      1,
		MultiPV:      1,
		MoveOverhead: timectl.UCIMoveOverhead,
		MinimumTime:  timectl.UCIMinimumTime,
		EngineMode:   "nnue",

		SyzygyProbeDepth: 1,
		SyzygyProbeLimit: 7,
		Syzygy50MoveRule: true,
	}
}

// AnalyzeOptions configures one search: how deep/how long/how many lines.
// Grounded on herohde-morlock/pkg/search/searchctl.Options, using
// lang.Optional[T] the same way for the "unset means no limit" fields.
type AnalyzeOptions struct {
	DepthLimit  lang.Optional[int]
	NodeLimit   lang.Optional[int64]
	MoveTime    lang.Optional[time.Duration] // exact time for this move
	TimeControl lang.Optional[timectl.Limits]
	Infinite    bool
	MultiPV     int // 0 = use Options.MultiPV
}

// Engine encapsulates game-playing logic: the current position, the shared
// transposition table, the evaluator, and the active search (if any).
type Engine struct {
	name, author string

	seed int64
	opts Options

	b       *board.Board
	moves   []board.Move // played-move stack, since Board.Pop needs the move to undo
	tt      *tt.Table
	ev      eval.Evaluator
	book    Book
	tb      tb.Prober
	rand    *rand.Rand

	searcherFactory SearcherFactory
	active          search.Searcher
	mu              sync.Mutex
}

// SearcherFactory builds the search.Searcher Analyze drives for one search.
// Pluggable so pkg/engine/remote can substitute a livechess-fed move source
// for the real Lazy-SMP pool, reusing the UCI front end unchanged.
type SearcherFactory func(threads int, b *board.Board, ev eval.Evaluator, table *tt.Table, sig *search.Signals) search.Searcher

func defaultSearcherFactory(threads int, b *board.Board, ev eval.Evaluator, table *tt.Table, sig *search.Signals) search.Searcher {
	return search.NewPool(threads, b, ev, table, sig)
}

// Option is an engine construction option.
type Option func(*Engine)

// WithOptions sets the engine's default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) { e.opts = opts }
}

// WithZobrist configures a non-default Zobrist seed (board.Position's own
// hashing is seeded once at package init, so this only affects e.rand/noise
// reproducibility, matching the teacher's WithZobrist seed plumbing).
func WithZobrist(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithBook configures an opening book consulted before every Analyze.
func WithBook(book Book) Option {
	return func(e *Engine) { e.book = book }
}

// WithSearcherFactory overrides how Analyze builds its search.Searcher,
// e.g. pkg/engine/remote's bridge to an external board feed.
func WithSearcherFactory(f SearcherFactory) Option {
	return func(e *Engine) { e.searcherFactory = f }
}

// New constructs an engine at the standard starting position.
func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:            name,
		author:          author,
		opts:            defaultOptions(),
		book:            NoBook,
		tb:              tb.NoopProber{},
		searcherFactory: defaultSearcherFactory,
	}
	for _, fn := range opts {
		fn(e)
	}
	e.rand = rand.New(rand.NewSource(e.seed))

	if err := e.Reset(ctx, fen.StartPos); err != nil {
		logw.Exitf(ctx, "Invalid starting position: %v", err)
	}

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version, per spec.md's "id name" output.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the engine author, per spec.md's "id author" output.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

func (e *Engine) SetHash(mb uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Hash = mb
	if mb > 0 {
		e.tt = tt.New(uint64(mb) << 20)
	}
}

func (e *Engine) ClearHash() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.opts.Hash > 0 {
		e.tt = tt.New(uint64(e.opts.Hash) << 20)
	}
}

func (e *Engine) SetThreads(n uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n < 1 {
		n = 1
	}
	e.opts.Threads = n
}

func (e *Engine) SetMultiPV(n uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n < 1 {
		n = 1
	}
	e.opts.MultiPV = n
}

func (e *Engine) SetContempt(cp int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Contempt = cp
}

func (e *Engine) SetMoveOverhead(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.MoveOverhead = d
}

func (e *Engine) SetMinimumTime(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.MinimumTime = d
}

func (e *Engine) SetPonder(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Ponder = on
}

func (e *Engine) SetNoise(millipawns uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Noise = millipawns
	e.refreshEvaluator()
}

// SetSyzygyPath points the engine at a Syzygy tablebase directory. No file
// reader is implemented (spec.md's NNUE/tablebase interfaces are external
// collaborators the core only calls through, per pkg/tb's Prober seam), so
// any non-empty path is a TablebaseLoadError: logged and otherwise ignored,
// leaving tablebase probing disabled exactly as if SyzygyPath were empty.
func (e *Engine) SetSyzygyPath(ctx context.Context, path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.SyzygyPath = path
	e.tb = tb.NoopProber{}
	if path != "" {
		logw.Warnf(ctx, "SyzygyLoadError: no tablebase reader available, ignoring SyzygyPath=%v", path)
	}
}

func (e *Engine) SetSyzygyProbeDepth(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.SyzygyProbeDepth = n
}

func (e *Engine) SetSyzygyProbeLimit(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.SyzygyProbeLimit = n
}

func (e *Engine) SetSyzygy50MoveRule(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Syzygy50MoveRule = on
}

func (e *Engine) SetEngineMode(mode string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.EngineMode = mode
	e.refreshEvaluator()
}

// refreshEvaluator rebuilds e.ev from the current EngineMode/Noise options.
// Caller must hold e.mu.
func (e *Engine) refreshEvaluator() {
	var base eval.Evaluator = eval.Material{}
	switch e.opts.EngineMode {
	case "nnue":
		base = eval.NNUE{Fallback: eval.Material{}}
	case "random":
		// handled by the Noise wrapper below regardless; "random" mode just
		// guarantees noise is applied even if Noise was left at zero.
		if e.opts.Noise == 0 {
			e.opts.Noise = 100
		}
	}
	if e.opts.Noise > 0 {
		e.ev = eval.NewRandom(base, int(e.opts.Noise), e.seed)
		return
	}
	e.ev = base
}

// Board returns a forked copy of the current board, safe for the caller to
// mutate or search independently.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.b.Fork()
}

// Position returns the current position in FEN, a convenience accessor.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.b.Position().FEN()
}

// Reset resets the engine to a new starting position, given in FEN.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, hash=%vMB, threads=%v", position, e.opts.Hash, e.opts.Threads)

	e.haltSearchIfActive(ctx)

	b, err := board.NewBoardFromFEN(position)
	if err != nil {
		return err
	}
	e.b = b
	e.moves = nil

	if e.opts.Hash > 0 {
		e.tt = tt.New(uint64(e.opts.Hash) << 20)
	} else {
		e.tt = tt.New(1 << 20) // minimal table; spec.md requires one always exists
	}
	e.refreshEvaluator()

	return nil
}

// Move plays move (in long algebraic form), usually an opponent's move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltSearchIfActive(ctx)

	m, err := board.ParseMove(e.b.Position(), move)
	if err != nil {
		return fmt.Errorf("invalid move: %w", err)
	}
	if !e.b.Position().IsLegal(m) {
		return fmt.Errorf("illegal move: %v", m)
	}
	e.b.Push(m)
	e.moves = append(e.moves, m)

	logw.Infof(ctx, "Move %v: %v", m, e.b.Position().FEN())
	return nil
}

// TakeBack undoes the most recent move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltSearchIfActive(ctx)

	if len(e.moves) == 0 {
		return fmt.Errorf("no move to take back")
	}
	last := e.moves[len(e.moves)-1]
	e.moves = e.moves[:len(e.moves)-1]
	e.b.Pop(last)
	return nil
}

// Analyze starts a search on the current position, returning a stream of
// progressively deeper PVs. The caller must eventually drain the channel
// (it is closed when the search completes or Halt is called).
func (e *Engine) Analyze(ctx context.Context, opt AnalyzeOptions) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	if pv, ok := e.probeTablebaseRoot(); ok {
		out := make(chan search.PV, 1)
		out <- pv
		close(out)
		return out, nil
	}

	threads := int(e.opts.Threads)
	if threads < 1 {
		threads = 1
	}
	multiPV := opt.MultiPV
	if multiPV < 1 {
		multiPV = int(e.opts.MultiPV)
	}
	if multiPV < 1 {
		multiPV = 1
	}

	maxDepth := search.MaxPly - 4
	if d, ok := opt.DepthLimit.V(); ok && d > 0 {
		maxDepth = d
	}

	var nodeLimit int64
	if n, ok := opt.NodeLimit.V(); ok {
		nodeLimit = n
	}
	sig := &search.Signals{NodeLimit: nodeLimit}
	searchCtx, cancel := context.WithCancel(ctx)

	tc, haveTC := opt.TimeControl.V()
	moveTime, haveMoveTime := opt.MoveTime.V()

	switch {
	case haveMoveTime && moveTime > 0:
		time.AfterFunc(moveTime, cancel)
	case haveTC && !opt.Infinite:
		budget := timectl.Compute(tc, e.b.Position().FullmoveNumber()*2)
		sig.SoftDeadline = time.Now().Add(budget.Optimal)
		time.AfterFunc(budget.Maximum, cancel)
	}

	s := e.searcherFactory(threads, e.b.Fork(), e.ev, e.tt, sig)
	e.active = s

	out := make(chan search.PV, 64)
	go func() {
		defer cancel()
		defer close(out)
		s.Search(searchCtx, maxDepth, multiPV, func(pv search.PV) {
			out <- pv
		})
	}()

	return out, nil
}

// probeTablebaseRoot consults the configured Prober (a no-op unless a real
// tablebase reader is ever wired in per SetSyzygyPath) before launching a
// search, per spec.md §4.13's "gather legal root moves; optionally filter by
// tablebase root-probe (DTZ)". Caller must hold e.mu.
func (e *Engine) probeTablebaseRoot() (search.PV, bool) {
	if !e.tb.Available() {
		return search.PV{}, false
	}
	if tb.CountPieces(e.b.Position()) > e.tb.MaxPieces() {
		return search.PV{}, false
	}

	var legal []board.Move
	for _, m := range e.b.Position().Generate(board.StageAll, nil) {
		if e.b.Position().IsLegal(m) {
			legal = append(legal, m)
		}
	}
	if e.b.Position().InCheck() {
		for _, m := range e.b.Position().Generate(board.StageEvasions, nil) {
			if e.b.Position().IsLegal(m) {
				legal = append(legal, m)
			}
		}
	}

	root := e.tb.ProbeRoot(e.b.Position(), legal)
	if !root.Found {
		return search.PV{}, false
	}
	return search.PV{Moves: []board.Move{root.Move}, Score: tb.WDLToScore(root.WDL, 0)}, true
}

// Halt halts any active search and clears it. Safe to call with none active.
func (e *Engine) Halt(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.haltSearchIfActive(ctx)
}

func (e *Engine) haltSearchIfActive(ctx context.Context) {
	if e.active != nil {
		logw.Infof(ctx, "Halting active search, %v nodes", e.active.TotalNodes())
		e.active.Stop()
		e.active = nil
	}
}

// BookMove consults the configured opening book, if any, for the current
// position, picking uniformly at random among the returned candidates.
func (e *Engine) BookMove(ctx context.Context) (board.Move, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.book == nil {
		return board.NoMove, false
	}
	moves, err := e.book.Find(ctx, e.b.Position().FEN())
	if err != nil || len(moves) == 0 {
		return board.NoMove, false
	}
	return moves[e.rand.Intn(len(moves))], true
}
