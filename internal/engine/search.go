package engine

import (
	"sync/atomic"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 20000
	MaxPly    = 128

	// MateThreshold separates mate scores from material scores.
	MateThreshold = MateScore - 2048
)

// SearchStatistics counts the work done by one search. It is returned
// with the results instead of being kept in shared counters, so repeated
// or concurrent searches never mix their numbers.
type SearchStatistics struct {
	Nodes      uint64 // negamax nodes
	QNodes     uint64 // quiescence nodes
	TTProbes   uint64
	TTHits     uint64
	Researches uint64 // root moves re-searched after leaving the aspiration window
}

// Add accumulates o into s.
func (s *SearchStatistics) Add(o SearchStatistics) {
	s.Nodes += o.Nodes
	s.QNodes += o.QNodes
	s.TTProbes += o.TTProbes
	s.TTHits += o.TTHits
	s.Researches += o.Researches
}

// Searcher runs negamax over a single Position that is mutated in place
// and restored move by move.
type Searcher struct {
	pos   *board.Position
	tt    *TranspositionTable
	eval  Evaluator
	stats SearchStatistics

	stop    *atomic.Bool
	aborted bool
}

// NewSearcher creates a searcher over pos. stop may be nil.
func NewSearcher(pos *board.Position, tt *TranspositionTable, eval Evaluator, stop *atomic.Bool) *Searcher {
	if stop == nil {
		stop = new(atomic.Bool)
	}
	return &Searcher{pos: pos, tt: tt, eval: eval, stop: stop}
}

// Stats returns the counters accumulated so far.
func (s *Searcher) Stats() SearchStatistics {
	return s.stats
}

// Aborted reports whether the stop flag interrupted the search. Scores
// returned after an abort are meaningless.
func (s *Searcher) Aborted() bool {
	return s.aborted
}

func (s *Searcher) stopped() bool {
	if !s.aborted && s.stop.Load() {
		s.aborted = true
	}
	return s.aborted
}

// probe applies a stored entry to the window. It returns the entry's move
// and, when the entry settles the node, its score.
func (s *Searcher) probe(depth, ply int, alpha, beta *int) (board.Move, int, bool) {
	s.stats.TTProbes++
	e, ok := s.tt.Probe(s.pos.Hash)
	if !ok {
		return board.NoMove, 0, false
	}
	s.stats.TTHits++
	if int(e.Depth) < depth {
		return e.BestMove, 0, false
	}
	score := AdjustScoreFromTT(int(e.Score), ply)
	switch e.Flag {
	case TTExact:
		return e.BestMove, score, true
	case TTLowerBound:
		*alpha = max(*alpha, score)
	case TTUpperBound:
		*beta = min(*beta, score)
	}
	return e.BestMove, score, *alpha >= *beta
}

func boundFor(score, alpha, beta int) TTFlag {
	switch {
	case score <= alpha:
		return TTUpperBound
	case score >= beta:
		return TTLowerBound
	default:
		return TTExact
	}
}

// Negamax searches the position to depth and returns its fail-soft score
// for the side to move.
func (s *Searcher) Negamax(depth, alpha, beta int) int {
	return s.negamax(depth, 0, alpha, beta)
}

func (s *Searcher) negamax(depth, ply, alpha, beta int) int {
	if s.stopped() {
		return 0
	}
	if depth <= 0 || ply >= MaxPly {
		return s.quiescence(ply, alpha, beta)
	}
	s.stats.Nodes++
	pos := s.pos

	ttMove, ttScore, cut := s.probe(depth, ply, &alpha, &beta)
	if cut {
		return ttScore
	}

	moves, inCheck := pos.GenerateLegalMoves(false)
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	var scores moveScores
	scoreMoves(pos, &moves, ttMove, &scores)

	alphaStart := alpha
	best, bestMove := -Infinity, board.NoMove
	for i := 0; i < moves.Len(); i++ {
		pickMove(&moves, &scores, i)
		m := moves.Get(i)

		u := pos.ApplyMove(m)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha)
		pos.ApplyUnmove(u)
		if s.aborted {
			return 0
		}

		if score > best {
			best, bestMove = score, m
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}

	s.tt.Store(pos.Hash, bestMove, AdjustScoreToTT(best, ply), depth, boundFor(best, alphaStart, beta))
	return best
}

// Quiescence resolves captures at the horizon so that no score comes from
// the middle of an exchange.
func (s *Searcher) Quiescence(alpha, beta int) int {
	return s.quiescence(0, alpha, beta)
}

func (s *Searcher) quiescence(ply, alpha, beta int) int {
	if s.stopped() {
		return 0
	}
	s.stats.QNodes++
	pos := s.pos

	ttMove, ttScore, cut := s.probe(0, ply, &alpha, &beta)
	if cut {
		return ttScore
	}

	inCheck := pos.IsInCheck()
	if ply >= MaxPly {
		return s.eval.relative(pos, alpha, beta)
	}

	alphaStart := alpha
	if !inCheck {
		standPat := s.eval.relative(pos, alpha, beta)
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	// In check every evasion is searched, since standing pat is not an option.
	moves, _ := pos.GenerateLegalMoves(!inCheck)
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return alpha
	}

	var scores moveScores
	scoreMoves(pos, &moves, ttMove, &scores)

	bestMove := board.NoMove
	for i := 0; i < moves.Len(); i++ {
		pickMove(&moves, &scores, i)
		m := moves.Get(i)

		u := pos.ApplyMove(m)
		score := -s.quiescence(ply+1, -beta, -alpha)
		pos.ApplyUnmove(u)
		if s.aborted {
			return 0
		}

		if score > alpha {
			alpha, bestMove = score, m
		}
		if alpha >= beta {
			break
		}
	}

	s.tt.Store(pos.Hash, bestMove, AdjustScoreToTT(alpha, ply), 0, boundFor(alpha, alphaStart, beta))
	return alpha
}
