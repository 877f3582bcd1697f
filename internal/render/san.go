package render

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

// SAN returns m in standard algebraic notation for pos, e.g. "Nf3",
// "exd6", "O-O" or "e8=Q+".
func SAN(pos *board.Position, m board.Move) (string, error) {
	cp, err := notnilPosition(pos)
	if err != nil {
		return "", err
	}
	// Valid moves carry the check and capture tags the encoder needs.
	uci := m.String()
	for _, mv := range cp.ValidMoves() {
		if mv.String() == uci {
			return chess.AlgebraicNotation{}.Encode(cp, mv), nil
		}
	}
	return "", fmt.Errorf("%w: %s", board.ErrIllegalMove, uci)
}

// SANLine renders a sequence of moves played from pos with move numbers,
// e.g. "1. e4 e5 2. Nf3" or "3... Nc6 4. Bb5". pos is left unchanged.
func SANLine(pos *board.Position, moves []board.Move) (string, error) {
	work := pos.Copy()
	var sb strings.Builder
	for i, m := range moves {
		san, err := SAN(work, m)
		if err != nil {
			return "", err
		}
		if work.SideToMove == board.White {
			fmt.Fprintf(&sb, "%d. ", work.FullMoveNumber)
		} else if i == 0 {
			fmt.Fprintf(&sb, "%d... ", work.FullMoveNumber)
		}
		sb.WriteString(san)
		if i < len(moves)-1 {
			sb.WriteByte(' ')
		}
		work.ApplyMove(m)
	}
	return sb.String(), nil
}

func notnilPosition(pos *board.Position) (*chess.Position, error) {
	opt, err := chess.FEN(pos.ToFEN())
	if err != nil {
		return nil, fmt.Errorf("load position: %w", err)
	}
	return chess.NewGame(opt).Position(), nil
}
