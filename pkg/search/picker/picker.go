// Package picker implements the staged move picker: a small state machine
// that yields one move at a time to the search loop in the priority order
// spec.md §4.9 prescribes, generating and scoring each stage lazily so a
// beta cutoff on an early move never pays for generating or sorting the
// rest. Grounded in spirit on herohde-morlock/pkg/board/movelist.go's
// heap-ordered MoveList (itself a by-priority yield abstraction), but
// reimplemented as an explicit stage sequence since spec.md's stage list
// (hash move, good captures, killers, countermove, quiets, bad captures,
// evasions) is richer than a single priority comparator can express well.
package picker

import (
	"sort"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/search/heur"
)

type stage int

const (
	stageTT stage = iota
	stageGenCaptures
	stageGoodCaptures
	stageKiller1
	stageKiller2
	stageCounter
	stageGenQuiets
	stageQuiets
	stageBadCaptures
	stageDone

	stageEvasionTT stage = 100 + iota
	stageGenEvasions
	stageEvasions
	stageEvasionsDone

	// stageCapturesOnly* is the captures/ProbCut/recapture pipeline spec.md
	// §4.6 describes: an optional hash-move stage (skipped entirely for
	// recapture-only, which spec.md doesn't give one), captures clearing a
	// caller-supplied SEE floor (optionally restricted to one destination
	// square for recapture-only), and optional trailing quiet checks for
	// quiescence's qsDepth==0 stage. No killers, counters, or ordinary
	// quiets — this pipeline never reaches the main-search stage list.
	stageCapturesOnlyTT stage = 200 + iota
	stageCapturesOnlyGen
	stageCapturesOnlyYield
	stageQuietChecksGen
	stageQuietChecksYield
	stageCapturesOnlyDone
)

// NoSEEThreshold disables the SEE floor on a CapturesOnly Picker, for
// recapture-only's "any capture on this square" semantics.
const NoSEEThreshold = -(1 << 30)

type scoredMove struct {
	move  board.Move
	score int
}

// Heuristics bundles the move-ordering tables a Picker consults. A single
// instance is shared by one search worker goroutine across the whole tree,
// the tables being keyed by ply/piece/square so concurrent workers each need
// their own (Lazy SMP workers never share a Heuristics value).
type Heuristics struct {
	History     *heur.History
	Evasion     *heur.EvasionHistory
	Capture     *heur.CaptureHistory
	MaxGain     *heur.MaxGain
	Counter     *heur.CounterMove
	Continuation *heur.ContinuationHistory
	Killers     *heur.Killers
}

// Picker yields pseudo-legal moves for one node, one at a time, in
// spec.md §4.9's priority order. Callers must still run board.Position.IsLegal
// on each yielded move before playing it.
type Picker struct {
	pos  *board.Position
	h    *Heuristics
	ply  int
	us   board.Color

	ttMove       board.Move
	prevPiece    board.Piece
	prevTo       board.Square
	priorPiece   board.Piece
	priorTo      board.Square
	threatened   board.Bitboard

	stage stage
	list  []scoredMove
	idx   int

	badCaptures []scoredMove

	inCheck bool
	cfg     Config
}

// Config carries the context a Picker needs beyond the position itself:
// the TT move to try first, the previous two moves played (for counter-move
// and follow-up-move lookups), and a bitboard of squares the opponent
// currently threatens (for the quiet-move "threat bonus" spec.md §4.9 names).
type Config struct {
	TTMove     board.Move
	PrevPiece  board.Piece // piece that made the opponent's last move
	PrevTo     board.Square
	PriorPiece board.Piece // piece that made our own move two plies ago
	PriorTo    board.Square
	Threatened board.Bitboard

	// CapturesOnly selects the captures/ProbCut/recapture pipeline
	// (spec.md §4.6) instead of the full main-search stage list: no
	// killers, counters, or quiets, just captures clearing SEEThreshold,
	// optionally restricted to RecaptureSquare and followed by quiet
	// checks. Ignored while the side to move is in check, since evasions
	// always take the evasion pipeline regardless of CapturesOnly.
	CapturesOnly bool
	SEEThreshold int

	// StrictTTMove requires the hash move itself to be a capture/promotion
	// clearing SEEThreshold before it's yielded first, ProbCut's "hash move
	// (only if capture/promo AND SEE >= threshold)" rule (spec.md §4.6).
	// Quiescence's hash-move stage has no such qualifier: any cached TTMove
	// is tried first unconditionally.
	StrictTTMove bool

	// HasRecapture restricts CapturesOnly generation to captures landing on
	// RecaptureSquare and skips the hash-move stage entirely, deep
	// quiescence's recapture-only stage (spec.md §4.6 gives it no hash-move
	// step), grounded on original_source/movepick.cpp's gen_recaptures.
	// Pair with SEEThreshold: NoSEEThreshold for "any capture there".
	HasRecapture    bool
	RecaptureSquare board.Square

	// QuietChecks yields non-capturing checks after captures are exhausted,
	// for quiescence's qsDepth==0 stage.
	QuietChecks bool
}

// New returns a Picker for the side to move in pos at the given ply.
func New(pos *board.Position, h *Heuristics, ply int, cfg Config) *Picker {
	p := &Picker{
		pos:        pos,
		h:          h,
		ply:        ply,
		us:         pos.Turn(),
		ttMove:     cfg.TTMove,
		prevPiece:  cfg.PrevPiece,
		prevTo:     cfg.PrevTo,
		priorPiece: cfg.PriorPiece,
		priorTo:    cfg.PriorTo,
		threatened: cfg.Threatened,
		inCheck:    pos.InCheck(),
		cfg:        cfg,
	}
	switch {
	case p.inCheck:
		p.stage = stageEvasionTT
	case cfg.CapturesOnly && cfg.HasRecapture:
		p.stage = stageCapturesOnlyGen
	case cfg.CapturesOnly:
		p.stage = stageCapturesOnlyTT
	default:
		p.stage = stageTT
	}
	return p
}

// Next returns the next pseudo-legal move to try, or (NoMove, false) when
// the picker is exhausted.
func (p *Picker) Next() (board.Move, bool) {
	switch {
	case p.inCheck:
		mv, ok := p.nextInCheck()
		return mv, ok
	case p.cfg.CapturesOnly:
		mv, ok := p.nextCapturesOnly()
		return mv, ok
	default:
		mv, ok := p.nextNormal()
		return mv, ok
	}
}

func (p *Picker) nextNormal() (board.Move, bool) {
	for {
		switch p.stage {
		case stageTT:
			p.stage = stageGenCaptures
			if p.ttMove != board.NoMove {
				return p.ttMove, true
			}

		case stageGenCaptures:
			moves := p.pos.Generate(board.StageCaptures, nil)
			p.list = p.list[:0]
			p.badCaptures = p.badCaptures[:0]
			for _, m := range moves {
				if m == p.ttMove {
					continue
				}
				see := p.pos.SEE(m)
				captured := p.capturedType(m)
				score := mvvScore(captured) + p.h.Capture.Score(p.pos.PieceAt(m.From()), m.To(), captured)
				if see < 0 {
					p.badCaptures = append(p.badCaptures, scoredMove{m, score})
					continue
				}
				p.list = append(p.list, scoredMove{m, score})
			}
			sort.SliceStable(p.list, func(i, j int) bool { return p.list[i].score > p.list[j].score })
			p.idx = 0
			p.stage = stageGoodCaptures

		case stageGoodCaptures:
			if p.idx < len(p.list) {
				m := p.list[p.idx].move
				p.idx++
				return m, true
			}
			p.stage = stageKiller1

		case stageKiller1:
			p.stage = stageKiller2
			k := p.h.Killers.Probe(p.ply)[0]
			if k != board.NoMove && k != p.ttMove && p.pseudoLegalQuiet(k) {
				return k, true
			}

		case stageKiller2:
			p.stage = stageCounter
			k := p.h.Killers.Probe(p.ply)[1]
			if k != board.NoMove && k != p.ttMove && p.pseudoLegalQuiet(k) {
				return k, true
			}

		case stageCounter:
			p.stage = stageGenQuiets
			if p.prevPiece != board.NoPiece {
				c := p.h.Counter.Get(p.prevPiece, p.prevTo)
				killers := p.h.Killers.Probe(p.ply)
				if c != board.NoMove && c != p.ttMove && c != killers[0] && c != killers[1] && p.pseudoLegalQuiet(c) {
					return c, true
				}
			}

		case stageGenQuiets:
			moves := p.pos.Generate(board.StageQuiets, nil)
			killers := p.h.Killers.Probe(p.ply)
			p.list = p.list[:0]
			for _, m := range moves {
				if m == p.ttMove || m == killers[0] || m == killers[1] {
					continue
				}
				if p.prevPiece != board.NoPiece && m == p.h.Counter.Get(p.prevPiece, p.prevTo) {
					continue
				}
				p.list = append(p.list, scoredMove{m, p.quietScore(m)})
			}
			sort.SliceStable(p.list, func(i, j int) bool { return p.list[i].score > p.list[j].score })
			p.idx = 0
			p.stage = stageQuiets

		case stageQuiets:
			if p.idx < len(p.list) {
				m := p.list[p.idx].move
				p.idx++
				return m, true
			}
			p.list = p.badCaptures
			p.idx = 0
			p.stage = stageBadCaptures

		case stageBadCaptures:
			if p.idx < len(p.list) {
				m := p.list[p.idx].move
				p.idx++
				return m, true
			}
			p.stage = stageDone

		case stageDone:
			return board.NoMove, false
		}
	}
}

func (p *Picker) nextInCheck() (board.Move, bool) {
	for {
		switch p.stage {
		case stageEvasionTT:
			p.stage = stageGenEvasions
			if p.ttMove != board.NoMove {
				return p.ttMove, true
			}

		case stageGenEvasions:
			moves := p.pos.Generate(board.StageEvasions, nil)
			p.list = p.list[:0]
			for _, m := range moves {
				if m == p.ttMove {
					continue
				}
				var score int
				if captured := p.capturedType(m); captured != board.NoPieceType || m.IsEnPassant() {
					score = 1<<20 + mvvScore(captured)
				} else {
					score = p.h.Evasion.Score(p.us, m)
				}
				p.list = append(p.list, scoredMove{m, score})
			}
			sort.SliceStable(p.list, func(i, j int) bool { return p.list[i].score > p.list[j].score })
			p.idx = 0
			p.stage = stageEvasions

		case stageEvasions:
			if p.idx < len(p.list) {
				m := p.list[p.idx].move
				p.idx++
				return m, true
			}
			p.stage = stageEvasionsDone

		case stageEvasionsDone:
			return board.NoMove, false
		}
	}
}

// nextCapturesOnly drives the captures/ProbCut/recapture pipeline: captures
// clearing cfg.SEEThreshold (optionally restricted to cfg.RecaptureSquare),
// then cfg.QuietChecks's non-capturing checks if requested.
func (p *Picker) nextCapturesOnly() (board.Move, bool) {
	for {
		switch p.stage {
		case stageCapturesOnlyTT:
			p.stage = stageCapturesOnlyGen
			if p.ttMove != board.NoMove && p.ttMoveQualifies() {
				return p.ttMove, true
			}

		case stageCapturesOnlyGen:
			moves := p.pos.Generate(board.StageCaptures, nil)
			p.list = p.list[:0]
			for _, m := range moves {
				if m == p.ttMove && !p.cfg.HasRecapture {
					continue
				}
				if p.cfg.HasRecapture && m.To() != p.cfg.RecaptureSquare {
					continue
				}
				if p.pos.SEE(m) < p.cfg.SEEThreshold {
					continue
				}
				captured := p.capturedType(m)
				score := mvvScore(captured) + p.h.Capture.Score(p.pos.PieceAt(m.From()), m.To(), captured)
				p.list = append(p.list, scoredMove{m, score})
			}
			sort.SliceStable(p.list, func(i, j int) bool { return p.list[i].score > p.list[j].score })
			p.idx = 0
			p.stage = stageCapturesOnlyYield

		case stageCapturesOnlyYield:
			if p.idx < len(p.list) {
				m := p.list[p.idx].move
				p.idx++
				return m, true
			}
			if p.cfg.QuietChecks {
				p.stage = stageQuietChecksGen
			} else {
				p.stage = stageCapturesOnlyDone
			}

		case stageQuietChecksGen:
			moves := p.pos.Generate(board.StageQuietChecks, nil)
			p.list = p.list[:0]
			for _, m := range moves {
				if m == p.ttMove {
					continue
				}
				p.list = append(p.list, scoredMove{m, p.quietScore(m)})
			}
			sort.SliceStable(p.list, func(i, j int) bool { return p.list[i].score > p.list[j].score })
			p.idx = 0
			p.stage = stageQuietChecksYield

		case stageQuietChecksYield:
			if p.idx < len(p.list) {
				m := p.list[p.idx].move
				p.idx++
				return m, true
			}
			p.stage = stageCapturesOnlyDone

		case stageCapturesOnlyDone:
			return board.NoMove, false
		}
	}
}

// ttMoveQualifies reports whether the cached hash move should be yielded
// first by the captures-only pipeline: unconditionally for quiescence, or
// (when cfg.StrictTTMove is set, ProbCut's rule) only if it's itself a
// capture/promotion clearing SEEThreshold.
func (p *Picker) ttMoveQualifies() bool {
	if !p.cfg.StrictTTMove {
		return true
	}
	isCaptureOrPromo := p.pos.PieceAt(p.ttMove.To()) != board.NoPiece || p.ttMove.IsEnPassant() || p.ttMove.IsPromotion()
	if !isCaptureOrPromo {
		return false
	}
	return p.pos.SEE(p.ttMove) >= p.cfg.SEEThreshold
}

func (p *Picker) capturedType(m board.Move) board.PieceType {
	if m.IsEnPassant() {
		return board.Pawn
	}
	return p.pos.PieceAt(m.To()).Type()
}

// pseudoLegalQuiet reports whether a cached killer/counter move is still a
// legal-looking quiet move in the current position: destination empty and
// the origin holds the expected side's piece, and the move appears in this
// position's generated quiet list. Necessary since killers/counters are
// recorded from sibling nodes that may not share this position's state.
func (p *Picker) pseudoLegalQuiet(m board.Move) bool {
	if p.pos.PieceAt(m.From()).Color() != p.us {
		return false
	}
	if p.pos.PieceAt(m.To()) != board.NoPiece {
		return false
	}
	quiets := p.pos.Generate(board.StageQuiets, nil)
	for _, q := range quiets {
		if q == m {
			return true
		}
	}
	return false
}

func (p *Picker) quietScore(m board.Move) int {
	piece := p.pos.PieceAt(m.From())
	score := p.h.History.Score(p.us, m)
	if p.prevPiece != board.NoPiece {
		score += p.h.Continuation.Score(p.prevPiece, p.prevTo, piece, m.To())
	}
	if p.priorPiece != board.NoPiece {
		score += p.h.Continuation.Score(p.priorPiece, p.priorTo, piece, m.To())
	}
	score += p.h.MaxGain.Get(piece, m.To())
	if p.threatened.IsSet(m.From()) {
		score += 2 * threatBonus
	}
	return score
}

const threatBonus = 64

// mvvScore ranks captures by the value of the captured piece (most valuable
// victim first); the capturing piece's own value is handled separately by
// SEE's good/bad split rather than folded into this ordinal.
func mvvScore(captured board.PieceType) int {
	return captured.NominalValue() * 16
}
