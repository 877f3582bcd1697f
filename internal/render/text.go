package render

import (
	"strings"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

// Unicode chess glyphs indexed by board.PieceType.
var (
	outlineGlyphs = [6]rune{'♙', '♘', '♗', '♖', '♕', '♔'}
	solidGlyphs   = [6]rune{'♟', '♞', '♝', '♜', '♛', '♚'}
)

// Glyph returns the Unicode figure for p.
func Glyph(p board.Piece) rune {
	if p == board.NoPiece {
		return '·'
	}
	if p.Color() == board.White {
		return outlineGlyphs[p.Type()]
	}
	return solidGlyphs[p.Type()]
}

// Diagram draws pos as a text board with rank and file labels. With
// unicode set pieces are drawn as chess figures, otherwise as FEN letters.
func Diagram(pos *board.Position, unicode, flip bool) string {
	var sb strings.Builder
	for i := 0; i < 8; i++ {
		rank := 7 - i
		if flip {
			rank = i
		}
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for j := 0; j < 8; j++ {
			file := j
			if flip {
				file = 7 - j
			}
			p := pos.PieceAt(board.NewSquare(file, rank))
			switch {
			case unicode:
				sb.WriteRune(Glyph(p))
			case p == board.NoPiece:
				sb.WriteByte('.')
			default:
				sb.WriteString(p.String())
			}
			if j < 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	if flip {
		sb.WriteString("  h g f e d c b a\n")
	} else {
		sb.WriteString("  a b c d e f g h\n")
	}
	return sb.String()
}
