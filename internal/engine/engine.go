package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

// ErrSearchAborted is returned when a search is cancelled before its first
// depth completes.
var ErrSearchAborted = errors.New("search aborted")

// Default option values.
const (
	DefaultHashMB           = 64
	DefaultMaxDepth         = 6
	DefaultAspirationWindow = 50
)

// Options configures an Engine. Zero fields take the defaults.
type Options struct {
	HashMB           int
	MaxDepth         int
	AspirationWindow int
	LazyMargin       int
	// DisableMobility drops the controlled-squares term from evaluation.
	DisableMobility bool
}

func (o Options) withDefaults() Options {
	if o.HashMB <= 0 {
		o.HashMB = DefaultHashMB
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.AspirationWindow <= 0 {
		o.AspirationWindow = DefaultAspirationWindow
	}
	if o.LazyMargin <= 0 {
		o.LazyMargin = DefaultLazyMargin
	}
	return o
}

// RootResult is one root move and its score for the side to move.
type RootResult struct {
	Move  board.Move
	Score int
}

// Result is the outcome of the deepest completed iteration.
type Result struct {
	Moves    []RootResult // best first
	Depth    int
	Stats    SearchStatistics
	Elapsed  time.Duration
	HashFull int
}

// Best returns the top move, or NoMove when the side to move has none.
func (r Result) Best() (RootResult, bool) {
	if len(r.Moves) == 0 {
		return RootResult{Move: board.NoMove}, false
	}
	return r.Moves[0], true
}

// Engine owns a transposition table and runs iterative-deepening searches
// on it. Searches on one Engine are serialized.
type Engine struct {
	opts Options
	tt   *TranspositionTable
	eval Evaluator
	mu   sync.Mutex

	// OnDepth, if set, is called after each completed depth.
	OnDepth func(Result)
}

// NewEngine creates an engine with the given options.
func NewEngine(opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		opts: opts,
		tt:   NewTranspositionTable(opts.HashMB),
		eval: Evaluator{LazyMargin: opts.LazyMargin, Mobility: !opts.DisableMobility},
	}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// TT exposes the engine's table.
func (e *Engine) TT() *TranspositionTable {
	return e.tt
}

// Clear empties the transposition table.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Clear()
}

// EvaluateAllMoves searches pos to depth and returns every legal root move
// with its score, best first. pos is restored before returning.
func (e *Engine) EvaluateAllMoves(pos *board.Position, depth int) ([]RootResult, SearchStatistics) {
	res, _ := e.Search(context.Background(), pos, depth)
	return res.Moves, res.Stats
}

// Search runs iterative deepening to depth (the configured MaxDepth when
// depth <= 0). Cancelling ctx stops the search at the next node; the
// deepest completed iteration is returned, or ErrSearchAborted if none
// completed.
func (e *Engine) Search(ctx context.Context, pos *board.Position, depth int) (Result, error) {
	return e.run(ctx, pos, depth, e.OnDepth)
}

func (e *Engine) run(ctx context.Context, pos *board.Position, depth int, publish func(Result)) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var stop atomic.Bool
	release := context.AfterFunc(ctx, func() { stop.Store(true) })
	defer release()
	if ctx.Err() != nil {
		stop.Store(true)
	}

	if depth <= 0 {
		depth = e.opts.MaxDepth
	}
	if depth > MaxPly {
		depth = MaxPly
	}
	res := e.iterate(pos, depth, &stop, publish)
	if res.Depth == 0 && stop.Load() {
		return res, fmt.Errorf("%w: %w", ErrSearchAborted, context.Cause(ctx))
	}
	return res, nil
}

func (e *Engine) iterate(pos *board.Position, maxDepth int, stop *atomic.Bool, publish func(Result)) Result {
	start := time.Now()
	s := NewSearcher(pos, e.tt, e.eval, stop)

	moves, _ := pos.GenerateLegalMoves(false)
	if moves.Len() == 0 {
		return Result{}
	}

	// Seed the first iteration with capture ordering.
	var seed moveScores
	scoreMoves(pos, &moves, board.NoMove, &seed)
	root := make([]RootResult, moves.Len())
	for i := range root {
		pickMove(&moves, &seed, i)
		root[i] = RootResult{Move: moves.Get(i)}
	}

	var res Result
	scores := make([]int, len(root))
	lastBest := 0

	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 {
			slices.SortStableFunc(root, func(a, b RootResult) int { return cmp.Compare(b.Score, a.Score) })
		}

		alpha, beta := -Infinity, Infinity
		if depth > 1 {
			alpha = lastBest - e.opts.AspirationWindow
			beta = lastBest + e.opts.AspirationWindow
		}

		best, bestMove := -Infinity, board.NoMove
		for i := range root {
			u := pos.ApplyMove(root[i].Move)
			score := -s.negamax(depth-1, 1, -beta, -alpha)
			if !s.aborted && (score <= alpha || score >= beta) && depth > 1 {
				s.stats.Researches++
				score = -s.negamax(depth-1, 1, -Infinity, Infinity)
			}
			pos.ApplyUnmove(u)
			if s.aborted {
				break
			}
			scores[i] = score
			if score > best {
				best, bestMove = score, root[i].Move
			}
		}
		if s.aborted {
			log.Debug().Int("depth", depth).Msg("search-aborted")
			break
		}

		for i := range root {
			root[i].Score = scores[i]
		}
		e.tt.Store(pos.Hash, bestMove, AdjustScoreToTT(best, 0), depth, boundFor(best, alpha, beta))
		e.tt.BumpGeneration()
		lastBest = best

		res = Result{
			Moves:    sortedCopy(root),
			Depth:    depth,
			Stats:    s.stats,
			Elapsed:  time.Since(start),
			HashFull: e.tt.HashFull(),
		}
		log.Debug().
			Int("depth", depth).
			Int("score", best).
			Str("best", bestMove.String()).
			Uint64("nodes", s.stats.Nodes).
			Uint64("qnodes", s.stats.QNodes).
			Uint64("tthits", s.stats.TTHits).
			Msg("depth-complete")
		if publish != nil {
			publish(res)
		}
	}

	res.Stats = s.stats
	res.Elapsed = time.Since(start)
	log.Info().
		Int("depth", res.Depth).
		Uint64("nodes", res.Stats.Nodes+res.Stats.QNodes).
		Dur("elapsed", res.Elapsed).
		Msg("search-done")
	return res
}

func sortedCopy(root []RootResult) []RootResult {
	out := slices.Clone(root)
	slices.SortStableFunc(out, func(a, b RootResult) int { return cmp.Compare(b.Score, a.Score) })
	return out
}

// MateIn returns the number of moves to mate encoded in score: positive
// when the side to move mates, negative when it is mated. ok is false for
// ordinary scores.
func MateIn(score int) (moves int, ok bool) {
	switch {
	case score > MateThreshold:
		return (MateScore - score + 1) / 2, true
	case score < -MateThreshold:
		return -(MateScore + score + 1) / 2, true
	}
	return 0, false
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if n, ok := MateIn(score); ok {
		if n > 0 {
			return "Mate in " + strconv.Itoa(n)
		}
		return "Mated in " + strconv.Itoa(-n)
	}
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
