// Package engine searches a board.Position for the best move: static
// evaluation, a bucketed transposition table, negamax with quiescence and
// an iterative-deepening driver.
package engine

import (
	"github.com/benzhenwen/anotherchessengine/internal/board"
)

// Evaluation constants
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
)

// pieceValues is indexed by board.PieceType. The king carries no material;
// mate is scored by the search.
var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0, 0}

const (
	castleSingleBonus = 20 // one castling right left
	castleDoubleBonus = 30 // both rights left
	mobilityWeight    = 1  // per controlled square

	DefaultLazyMargin = 150
)

var castleBonus = [3]int{0, castleSingleBonus, castleDoubleBonus}

// Evaluator scores positions from White's point of view.
type Evaluator struct {
	// LazyMargin is how far outside [alpha, beta] the material score may
	// fall before the mobility term is skipped.
	LazyMargin int
	// Mobility enables the controlled-squares term.
	Mobility bool
}

// DefaultEvaluator is material, castling rights and mobility with the
// standard lazy margin.
var DefaultEvaluator = Evaluator{LazyMargin: DefaultLazyMargin, Mobility: true}

// Evaluate returns the full static score of pos, White-positive.
func Evaluate(pos *board.Position) int {
	return DefaultEvaluator.Evaluate(pos, -Infinity, Infinity)
}

// Evaluate scores pos White-positive. alpha and beta are a White-relative
// window; when material and castling rights already land more than
// LazyMargin outside it, that cheap score is returned without mobility.
func (ev Evaluator) Evaluate(pos *board.Position, alpha, beta int) int {
	score := 0
	for pt := board.Pawn; pt < board.King; pt++ {
		score += (pos.Pieces[board.White][pt].PopCount() - pos.Pieces[board.Black][pt].PopCount()) * pieceValues[pt]
	}
	score += castleBonus[pos.CastlingRights.Count(board.White)]
	score -= castleBonus[pos.CastlingRights.Count(board.Black)]

	if !ev.Mobility || score-ev.LazyMargin >= beta || score+ev.LazyMargin <= alpha {
		return score
	}

	white := pos.ControlledSquares(board.White).PopCount()
	black := pos.ControlledSquares(board.Black).PopCount()
	return score + (white-black)*mobilityWeight
}

// relative converts a side-to-move window to White's view, evaluates and
// converts the score back.
func (ev Evaluator) relative(pos *board.Position, alpha, beta int) int {
	if pos.SideToMove == board.White {
		return ev.Evaluate(pos, alpha, beta)
	}
	return -ev.Evaluate(pos, -beta, -alpha)
}
