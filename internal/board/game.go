package board

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is returned when a move is not in the legal move list.
var ErrIllegalMove = errors.New("illegal move")

// ParseUCIMove resolves coordinate text ("e2e4", "e7e8q") against the legal
// moves of p, which fills in the capture flag.
func ParseUCIMove(p *Position, s string) (Move, error) {
	moves, _ := p.GenerateLegalMoves(false)
	for _, m := range moves.Slice() {
		if m.String() == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, s)
}

// Game is a position plus the stack of records needed to take moves back.
type Game struct {
	pos     *Position
	history []Unmove
}

// NewGame starts a game from a copy of pos.
func NewGame(pos *Position) *Game {
	return &Game{pos: pos.Copy()}
}

// Position returns the current position. Callers must not mutate it.
func (g *Game) Position() *Position {
	return g.pos
}

// LegalMoves returns the legal moves of the side to move.
func (g *Game) LegalMoves() []Move {
	moves, _ := g.pos.GenerateLegalMoves(false)
	return append([]Move(nil), moves.Slice()...)
}

// Push plays m if it is legal. An illegal move leaves the game untouched.
func (g *Game) Push(m Move) error {
	moves, _ := g.pos.GenerateLegalMoves(false)
	if !moves.Contains(m) {
		return fmt.Errorf("%w: %v", ErrIllegalMove, m)
	}
	g.history = append(g.history, g.pos.ApplyMove(m))
	return nil
}

// PushUCI parses s and plays it.
func (g *Game) PushUCI(s string) error {
	m, err := ParseUCIMove(g.pos, s)
	if err != nil {
		return err
	}
	g.history = append(g.history, g.pos.ApplyMove(m))
	return nil
}

// Pop takes back the last move. It returns false if there is none.
func (g *Game) Pop() bool {
	if len(g.history) == 0 {
		return false
	}
	u := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.pos.ApplyUnmove(u)
	return true
}
