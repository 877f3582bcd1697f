package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

func mustFEN(t testing.TB, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN %q: %v", fen, err)
	}
	return pos
}

func mustMove(t testing.TB, pos *board.Position, uci string) board.Move {
	t.Helper()
	m, err := board.ParseUCIMove(pos, uci)
	if err != nil {
		t.Fatalf("ParseUCIMove(%q): %v", uci, err)
	}
	return m
}

func TestSAN(t *testing.T) {
	tests := []struct {
		fen  string
		move string
		want string
	}{
		{board.StartFEN, "g1f3", "Nf3"},
		{board.StartFEN, "e2e4", "e4"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8c8", "O-O-O"},
		{"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2", "e5d6", "exd6"},
		{"8/4P3/8/8/8/8/k7/4K3 w - - 0 1", "e7e8q", "e8=Q"},
		{"4k3/8/4K3/8/8/8/8/R7 w - - 0 1", "a1a8", "Ra8#"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			pos := mustFEN(t, tt.fen)
			got, err := SAN(pos, mustMove(t, pos, tt.move))
			if err != nil {
				t.Fatalf("SAN: %v", err)
			}
			if got != tt.want {
				t.Errorf("SAN(%s) = %q, want %q", tt.move, got, tt.want)
			}
		})
	}
}

func TestSANLine(t *testing.T) {
	pos := board.NewPosition()
	var moves []board.Move
	work := pos.Copy()
	for _, s := range []string{"e2e4", "e7e5", "g1f3"} {
		m := mustMove(t, work, s)
		work.ApplyMove(m)
		moves = append(moves, m)
	}

	got, err := SANLine(pos, moves)
	if err != nil {
		t.Fatal(err)
	}
	if got != "1. e4 e5 2. Nf3" {
		t.Errorf("SANLine = %q", got)
	}
	if !pos.Equal(board.NewPosition()) {
		t.Error("SANLine modified its input")
	}

	black := work.Copy()
	reply := mustMove(t, black, "b8c6")
	got, err = SANLine(black, []board.Move{reply})
	if err != nil {
		t.Fatal(err)
	}
	if got != "2... Nc6" {
		t.Errorf("SANLine from Black = %q", got)
	}
}

func TestDiagram(t *testing.T) {
	pos := board.NewPosition()

	plain := Diagram(pos, false, false)
	lines := strings.Split(strings.TrimRight(plain, "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("got %d lines, want 9:\n%s", len(lines), plain)
	}
	if lines[0] != "8 r n b q k b n r" {
		t.Errorf("top rank %q", lines[0])
	}
	if lines[7] != "1 R N B Q K B N R" {
		t.Errorf("bottom rank %q", lines[7])
	}

	flipped := strings.Split(Diagram(pos, false, true), "\n")
	if flipped[0] != "1 R N B K Q B N R" {
		t.Errorf("flipped top rank %q", flipped[0])
	}
	if flipped[8] != "  h g f e d c b a" {
		t.Errorf("flipped file labels %q", flipped[8])
	}

	fancy := Diagram(pos, true, false)
	if !strings.Contains(fancy, "♔") || !strings.Contains(fancy, "♚") {
		t.Errorf("unicode diagram is missing kings:\n%s", fancy)
	}
}

func TestRenderSVG(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/4R1K1 b - - 0 1")

	var buf bytes.Buffer
	r := NewRenderer(40)
	r.Render(&buf, pos, board.NoMove)

	out := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(out), "<?xml") {
		t.Errorf("output does not start with an XML header: %.40q", out)
	}
	if !strings.Contains(out, "</svg>") {
		t.Error("svg element not closed")
	}
	// 64 squares, a background and the check highlight.
	if n := strings.Count(out, "<rect"); n != 66 {
		t.Errorf("got %d rects, want 66", n)
	}
	if n := strings.Count(out, "♚"); n != 2 {
		t.Errorf("got %d king glyphs, want 2", n)
	}
}
