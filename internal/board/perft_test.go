package board

import (
	"strings"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"golang.org/x/exp/slices"
)

const (
	kiwipeteFEN  = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -"
	position3FEN = "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -"
	position4FEN = "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1"
	position5FEN = "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8"
)

func mustFEN(t testing.TB, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN %q: %v", fen, err)
	}
	return pos
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		depth    int
		expected uint64
	}{
		{"start", StartFEN, 1, 20},
		{"start", StartFEN, 2, 400},
		{"start", StartFEN, 3, 8902},
		{"start", StartFEN, 4, 197281},
		{"kiwipete", kiwipeteFEN, 1, 48},
		{"kiwipete", kiwipeteFEN, 2, 2039},
		{"kiwipete", kiwipeteFEN, 3, 97862},
		{"position3", position3FEN, 1, 14},
		{"position3", position3FEN, 2, 191},
		{"position3", position3FEN, 3, 2812},
		{"position3", position3FEN, 4, 43238},
		{"position4", position4FEN, 1, 6},
		{"position4", position4FEN, 2, 264},
		{"position4", position4FEN, 3, 9467},
		{"position5", position5FEN, 1, 44},
		{"position5", position5FEN, 2, 1486},
		{"position5", position5FEN, 3, 62379},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			before := *pos
			got := Perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
			if !pos.Equal(&before) {
				t.Errorf("position changed after perft(%d)", tc.depth)
			}
		})
	}
}

// TestPerftEnPassantPin covers the capture that would clear the rank
// between the black king on a4 and the white rook on h4.
func TestPerftEnPassantPin(t *testing.T) {
	pos := mustFEN(t, "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")

	moves, _ := pos.GenerateLegalMoves(false)
	for _, m := range moves.Slice() {
		if pos.IsEnPassantMove(m) {
			t.Errorf("En passant move %v should be illegal (horizontal pin)", m)
		}
	}

	if got := Perft(pos, 1); got != 6 {
		t.Errorf("perft(1) = %d, want 6", got)
	}
	if got := Perft(pos, 2); got != 94 {
		t.Errorf("perft(2) = %d, want 94", got)
	}
}

func TestEnPassantEvasion(t *testing.T) {
	// The d5 pawn gives check after d7d5; exd6 removes the checker.
	pos := mustFEN(t, "8/8/8/3pP3/4K3/8/8/7k w - d6 0 2")
	moves, inCheck := pos.GenerateLegalMoves(false)
	if !inCheck {
		t.Fatal("expected white to be in check")
	}
	want := NewMove(E5, D6, NoPieceType, true)
	if !moves.Contains(want) {
		t.Errorf("expected %v among evasions %v", want, moves.Slice())
	}
}

func TestCastlingThroughAttack(t *testing.T) {
	// f1 is covered by the bishop on c4; only queen side castling remains.
	pos := mustFEN(t, "4k3/8/8/8/2b5/8/8/R3K2R w KQ - 0 1")
	moves, _ := pos.GenerateLegalMoves(false)
	if moves.Contains(NewMove(E1, G1, NoPieceType, false)) {
		t.Error("king side castling through f1 should be illegal")
	}
	if !moves.Contains(NewMove(E1, C1, NoPieceType, false)) {
		t.Error("queen side castling should be legal")
	}
}

func TestCapturesOnly(t *testing.T) {
	pos := mustFEN(t, kiwipeteFEN)
	all, _ := pos.GenerateLegalMoves(false)
	caps, _ := pos.GenerateLegalMoves(true)

	var want int
	for _, m := range all.Slice() {
		if m.IsCapture() {
			want++
			if !caps.Contains(m) {
				t.Errorf("capture %v missing from captures-only list", m)
			}
		}
	}
	if caps.Len() != want {
		t.Errorf("captures-only returned %d moves, want %d", caps.Len(), want)
	}
}

func TestPerftDivideSums(t *testing.T) {
	pos := mustFEN(t, kiwipeteFEN)
	var sum uint64
	for _, e := range PerftDivide(pos, 2) {
		sum += e.Nodes
	}
	if sum != 2039 {
		t.Errorf("divide sum = %d, want 2039", sum)
	}
}

func dragontoothDivide(b *dragontoothmg.Board, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	for _, m := range b.GenerateLegalMoves() {
		undo := b.Apply(m)
		out[strings.ToLower(m.String())] = dragontoothPerft(b, depth-1)
		undo()
	}
	return out
}

func dragontoothPerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		undo := b.Apply(m)
		n += dragontoothPerft(b, depth-1)
		undo()
	}
	return n
}

// TestDivideMatchesDragontooth compares per-move subtree sizes against an
// independent generator, which localises a mismatch to a single root move.
func TestDivideMatchesDragontooth(t *testing.T) {
	for _, fen := range []string{StartFEN, kiwipeteFEN, position3FEN, position4FEN, position5FEN} {
		t.Run(fen, func(t *testing.T) {
			pos := mustFEN(t, fen)
			ref := dragontoothmg.ParseFen(pos.ToFEN())
			want := dragontoothDivide(&ref, 2)

			got := make(map[string]uint64)
			for _, e := range PerftDivide(pos, 2) {
				got[e.Move.String()] = e.Nodes
			}

			keys := make([]string, 0, len(want))
			for k := range want {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				if got[k] != want[k] {
					t.Errorf("%s: got %d, want %d", k, got[k], want[k])
				}
			}
			if len(got) != len(want) {
				t.Errorf("root moves: got %d, want %d", len(got), len(want))
			}
		})
	}
}

func BenchmarkPerftKiwipete(b *testing.B) {
	pos := mustFEN(b, kiwipeteFEN)
	for i := 0; i < b.N; i++ {
		Perft(pos, 3)
	}
}
