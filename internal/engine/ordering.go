package engine

import (
	"github.com/benzhenwen/anotherchessengine/internal/board"
)

// Move ordering priorities
const (
	TTMoveScore     = 10000000 // TT move gets highest priority
	GoodCaptureBase = 1000000  // Base score for captures
	PromotionBase   = 900000   // Quiet promotions, below every capture
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
// Score = victimValue * 10 - attackerValue
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11}, // Pawn victim
	/* N */ {25, 24, 24, 23, 22, 21}, // Knight victim
	/* B */ {35, 34, 34, 33, 32, 31}, // Bishop victim
	/* R */ {45, 44, 44, 43, 42, 41}, // Rook victim
	/* Q */ {55, 54, 54, 53, 52, 51}, // Queen victim
	/* K */ {0, 0, 0, 0, 0, 0},       // King can't be captured
}

// moveScores parallels a MoveList.
type moveScores [board.MaxMoves]int

// scoreMoves fills scores for moves in pos. ttMove only gets its bonus if
// it appears in the list, which doubles as its legality check.
func scoreMoves(pos *board.Position, moves *board.MoveList, ttMove board.Move, scores *moveScores) {
	us, them := pos.SideToMove, pos.SideToMove.Other()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		switch {
		case m == ttMove:
			scores[i] = TTMoveScore
		case m.IsCapture():
			victim := board.Pawn
			if !pos.IsEnPassantMove(m) {
				victim = pos.PieceTypeAt(m.To(), them)
			}
			attacker := pos.PieceTypeAt(m.From(), us)
			scores[i] = GoodCaptureBase + mvvLva[victim][attacker]*1000
		case m.IsPromotion():
			scores[i] = PromotionBase + int(m.Promotion())*100
		default:
			scores[i] = 0
		}
		if m.IsCapture() && m.IsPromotion() && m != ttMove {
			scores[i] += int(m.Promotion()) * 100
		}
	}
}

// pickMove moves the best-scored move at or after index to index. Lists
// are consumed one move at a time, so a beta cutoff saves sorting the rest.
func pickMove(moves *board.MoveList, scores *moveScores, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}
