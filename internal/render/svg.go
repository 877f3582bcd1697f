// Package render draws positions for people: SVG diagrams, text boards and
// standard algebraic notation.
package render

import (
	"fmt"
	"image/color"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

// Theme defines the color scheme for the board.
type Theme struct {
	LightSquare   color.RGBA
	DarkSquare    color.RGBA
	HighlightMove color.RGBA
	CheckColor    color.RGBA
	WhitePiece    color.RGBA
	BlackPiece    color.RGBA
	TextColor     color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare:   color.RGBA{240, 217, 181, 255}, // Tan
		DarkSquare:    color.RGBA{181, 136, 99, 255},  // Brown
		HighlightMove: color.RGBA{180, 190, 100, 160},
		CheckColor:    color.RGBA{255, 100, 100, 180}, // Red
		WhitePiece:    color.RGBA{255, 255, 255, 255},
		BlackPiece:    color.RGBA{20, 20, 20, 255},
		TextColor:     color.RGBA{60, 60, 60, 255},
	}
}

// Renderer writes SVG board diagrams.
type Renderer struct {
	theme      *Theme
	squareSize int
	margin     int
	// Flip draws the board from Black's side.
	Flip bool
}

// NewRenderer creates a renderer with the given square size in pixels.
func NewRenderer(squareSize int) *Renderer {
	if squareSize <= 0 {
		squareSize = 45
	}
	return &Renderer{
		theme:      DefaultTheme(),
		squareSize: squareSize,
		margin:     squareSize / 2,
	}
}

// SetTheme replaces the color scheme.
func (r *Renderer) SetTheme(t *Theme) {
	r.theme = t
}

// Size returns the width and height of the drawing.
func (r *Renderer) Size() int {
	return 8*r.squareSize + 2*r.margin
}

// Render writes pos as an SVG document to w. When highlight is not
// board.NoMove its from and to squares are tinted.
func (r *Renderer) Render(w io.Writer, pos *board.Position, highlight board.Move) {
	canvas := svg.New(w)
	size := r.Size()
	canvas.Start(size, size)
	canvas.Rect(0, 0, size, size, fill(r.theme.LightSquare))

	r.drawBoard(canvas)
	if highlight != board.NoMove {
		r.highlightSquare(canvas, highlight.From(), r.theme.HighlightMove)
		r.highlightSquare(canvas, highlight.To(), r.theme.HighlightMove)
	}
	if pos.IsInCheck() {
		r.highlightSquare(canvas, pos.KingSquare(pos.SideToMove), r.theme.CheckColor)
	}
	r.drawPieces(canvas, pos)
	r.drawCoordinates(canvas)
	canvas.End()
}

// origin returns the top-left pixel of sq.
func (r *Renderer) origin(sq board.Square) (int, int) {
	file, rank := sq.File(), sq.Rank()
	if r.Flip {
		file, rank = 7-file, 7-rank
	}
	return r.margin + file*r.squareSize, r.margin + (7-rank)*r.squareSize
}

func (r *Renderer) drawBoard(canvas *svg.SVG) {
	for sq := board.A1; sq <= board.H8; sq++ {
		c := r.theme.LightSquare
		if (sq.File()+sq.Rank())%2 == 0 {
			c = r.theme.DarkSquare
		}
		x, y := r.origin(sq)
		canvas.Rect(x, y, r.squareSize, r.squareSize, fill(c))
	}
}

func (r *Renderer) highlightSquare(canvas *svg.SVG, sq board.Square, c color.RGBA) {
	x, y := r.origin(sq)
	canvas.Rect(x, y, r.squareSize, r.squareSize, fill(c))
}

func (r *Renderer) drawPieces(canvas *svg.SVG, pos *board.Position) {
	fontSize := r.squareSize * 4 / 5
	for sq := board.A1; sq <= board.H8; sq++ {
		piece := pos.PieceAt(sq)
		if piece == board.NoPiece {
			continue
		}
		c := r.theme.WhitePiece
		if piece.Color() == board.Black {
			c = r.theme.BlackPiece
		}
		x, y := r.origin(sq)
		style := fmt.Sprintf("text-anchor:middle;font-size:%dpx;%s;stroke:black;stroke-width:1", fontSize, fill(c))
		canvas.Text(x+r.squareSize/2, y+r.squareSize*4/5, string(solidGlyphs[piece.Type()]), style)
	}
}

func (r *Renderer) drawCoordinates(canvas *svg.SVG) {
	style := fmt.Sprintf("text-anchor:middle;font-size:%dpx;%s", r.margin*2/3, fill(r.theme.TextColor))
	for i := 0; i < 8; i++ {
		file, rank := i, i
		if r.Flip {
			file, rank = 7-i, 7-i
		}
		x := r.margin + i*r.squareSize + r.squareSize/2
		canvas.Text(x, r.Size()-r.margin/4, string(rune('a'+file)), style)
		y := r.margin + (7-i)*r.squareSize + r.squareSize/2 + r.margin/4
		canvas.Text(r.margin/2, y, fmt.Sprint(rank+1), style)
	}
}

func fill(c color.RGBA) string {
	return fmt.Sprintf("fill:rgb(%d,%d,%d);fill-opacity:%.2f", c.R, c.G, c.B, float64(c.A)/255)
}
